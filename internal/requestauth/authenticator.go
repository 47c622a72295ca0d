// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/wwstay-skill/internal/cache"
	"github.com/ManuGH/wwstay-skill/internal/log"
	"github.com/ManuGH/wwstay-skill/internal/metrics"
	xnet "github.com/ManuGH/wwstay-skill/internal/platform/net"
	"github.com/ManuGH/wwstay-skill/internal/skill"
	"github.com/ManuGH/wwstay-skill/internal/telemetry"
)

// Platform defaults.
const (
	DefaultCertHost       = "s3.amazonaws.com"
	DefaultCertPathPrefix = "/echo.api/"
	DefaultRequiredSAN    = "echo-api.amazon.com"
)

// Settings is the immutable verification configuration.
type Settings struct {
	ApplicationID  string
	CertHost       string
	CertPathPrefix string
	RequiredSAN    string
	Tolerance      time.Duration
	Algorithm      Algorithm
}

// DefaultSettings returns the platform settings for applicationID.
func DefaultSettings(applicationID string) Settings {
	return Settings{
		ApplicationID:  applicationID,
		CertHost:       DefaultCertHost,
		CertPathPrefix: DefaultCertPathPrefix,
		RequiredSAN:    DefaultRequiredSAN,
		Tolerance:      DefaultTolerance,
		Algorithm:      AlgorithmSHA1,
	}
}

// Options carries the collaborators of an Authenticator.
type Options struct {
	Client   *http.Client
	Cache    cache.Store
	CacheTTL time.Duration
	Clock    Clock
}

// Authenticator is the single entry point of request verification. It is
// safe for concurrent use; no per-request state is shared between calls
// other than the certificate byte cache.
type Authenticator struct {
	settings  Settings
	fetcher   *Fetcher
	validator *Validator
	verifier  *SignatureVerifier
	freshness *FreshnessChecker
	tracer    trace.Tracer
}

// New builds an Authenticator.
func New(s Settings, opts Options) (*Authenticator, error) {
	if s.ApplicationID == "" {
		return nil, errors.New("application id is required")
	}
	if s.RequiredSAN == "" {
		return nil, errors.New("required certificate identity is empty")
	}
	alg, err := ParseAlgorithm(string(s.Algorithm))
	if err != nil {
		return nil, err
	}
	s.Algorithm = alg

	fetcher, err := NewFetcher(FetcherOptions{
		Host:       s.CertHost,
		PathPrefix: s.CertPathPrefix,
		Client:     opts.Client,
		Cache:      opts.Cache,
		CacheTTL:   opts.CacheTTL,
	})
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &Authenticator{
		settings:  s,
		fetcher:   fetcher,
		validator: NewValidator(s.RequiredSAN, clock),
		verifier:  NewSignatureVerifier(alg),
		freshness: NewFreshnessChecker(s.Tolerance, clock),
		tracer:    telemetry.Tracer("wwstay/requestauth"),
	}, nil
}

// SignatureHeader names the header the configured algorithm reads.
func (a *Authenticator) SignatureHeader() string {
	return a.settings.Algorithm.Header()
}

// Verify runs every check in order and returns on the first failure. The
// verdict is recorded in metrics and, when invalid, logged with its reason.
func (a *Authenticator) Verify(ctx context.Context, ev *skill.Event) Verdict {
	ctx, span := a.tracer.Start(ctx, "requestauth.verify")
	defer span.End()

	err := a.verify(ctx, ev)
	reason := ReasonOf(err)
	metrics.RecordAuthVerdict(err == nil, reason)
	span.SetAttributes(
		attribute.Bool(telemetry.AuthValidKey, err == nil),
		attribute.String(telemetry.AuthReasonKey, reason),
	)

	if err != nil {
		span.SetStatus(codes.Error, reason)
		logger := log.WithComponentFromContext(ctx, "requestauth")
		entry := logger.Warn().
			Err(err).
			Str(log.FieldEvent, "auth.rejected").
			Str(log.FieldReason, reason)
		if ev != nil {
			entry = entry.
				Str(log.FieldSkillRequestID, ev.RequestID).
				Str(log.FieldCertURL, xnet.SanitizeURL(ev.CertChainURL))
		}
		entry.Msg("request rejected")
		return invalid(err)
	}
	return valid()
}

func (a *Authenticator) verify(ctx context.Context, ev *skill.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: no event", ErrInvalidApplicationID)
	}
	if ev.ApplicationID != a.settings.ApplicationID {
		return fmt.Errorf("%w: %q", ErrInvalidApplicationID, ev.ApplicationID)
	}

	chain, err := a.fetcher.Fetch(ctx, ev.CertChainURL)
	if err != nil {
		return err
	}
	leaf := chain.Leaf()

	if err := a.validator.Validate(leaf); err != nil {
		return err
	}
	if err := a.verifier.Verify(leaf, ev.Signature, ev.RawBody); err != nil {
		return err
	}
	return a.freshness.Check(ev.Timestamp)
}
