// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the skill endpoint: it authenticates inbound platform
// requests, runs the dialog, and writes the response envelope.
package api

import (
	"fmt"
	"net/http"

	"github.com/ManuGH/wwstay-skill/internal/cache"
	"github.com/ManuGH/wwstay-skill/internal/config"
	"github.com/ManuGH/wwstay-skill/internal/dialog"
	"github.com/ManuGH/wwstay-skill/internal/requestauth"
)

// Pipeline is the config-derived request path. It is immutable; a reload
// builds a new one and swaps it in.
type Pipeline struct {
	Auth    *requestauth.Authenticator
	Machine *dialog.Machine
	MaxBody int64
}

// PipelineDeps are the long-lived collaborators shared across reloads.
type PipelineDeps struct {
	CertClient *http.Client
	CertCache  cache.Store
	Clock      requestauth.Clock
}

// BuildPipeline derives a Pipeline from cfg.
func BuildPipeline(cfg config.AppConfig, deps PipelineDeps) (*Pipeline, error) {
	alg, err := requestauth.ParseAlgorithm(cfg.Verification.SignatureAlgorithm)
	if err != nil {
		return nil, err
	}
	auth, err := requestauth.New(requestauth.Settings{
		ApplicationID:  cfg.Skill.ApplicationID,
		CertHost:       cfg.Verification.CertHost,
		CertPathPrefix: cfg.Verification.CertPathPrefix,
		RequiredSAN:    cfg.Verification.RequiredSAN,
		Tolerance:      cfg.Verification.Tolerance,
		Algorithm:      alg,
	}, requestauth.Options{
		Client:   deps.CertClient,
		Cache:    deps.CertCache,
		CacheTTL: cfg.Verification.CacheTTL,
		Clock:    deps.Clock,
	})
	if err != nil {
		return nil, fmt.Errorf("build authenticator: %w", err)
	}

	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.DefaultMaxBodyBytes
	}

	return &Pipeline{
		Auth: auth,
		Machine: dialog.NewMachine(dialog.Policy{
			BookingIntent:        cfg.Skill.BookingIntent,
			HelpResetsAttributes: cfg.Skill.HelpResetsAttributes,
		}),
		MaxBody: maxBody,
	}, nil
}
