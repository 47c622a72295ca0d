// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"context"
	"crypto"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/wwstay-skill/internal/cache"
	"github.com/ManuGH/wwstay-skill/internal/requestauth/authtest"
	"github.com/ManuGH/wwstay-skill/internal/skill"
)

const testAppID = "amzn1.ask.skill.test-wwstay"

type harness struct {
	now    time.Time
	signer *authtest.Signer
	tr     *authtest.Transport
	auth   *Authenticator
}

func newHarness(t *testing.T, certOpts authtest.CertOptions, mutate func(*Settings)) *harness {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	signer := authtest.NewSigner(t, certOpts)
	tr := authtest.NewTransport(authtest.CertURL, signer.PEM)

	s := DefaultSettings(testAppID)
	if mutate != nil {
		mutate(&s)
	}
	a, err := New(s, Options{
		Client:   tr.Client(),
		Cache:    cache.NewMemoryStore(0),
		CacheTTL: time.Hour,
		Clock:    FixedClock(now),
	})
	require.NoError(t, err)
	return &harness{now: now, signer: signer, tr: tr, auth: a}
}

func (h *harness) body(appID string, ts time.Time) []byte {
	return []byte(fmt.Sprintf(`{"version":"1.0","session":{"new":true,"sessionId":"s1","application":{"applicationId":%q},"attributes":{}},"request":{"type":"LaunchRequest","requestId":"r1","timestamp":%q,"locale":"en-US"}}`,
		appID, authtest.Timestamp(ts)))
}

// event parses body and attaches headers the way the HTTP layer does.
func (h *harness) event(t *testing.T, body []byte, certURL, signature string) *skill.Event {
	t.Helper()
	ev, err := skill.ParseEvent(body)
	require.NoError(t, err)
	hdr := http.Header{}
	hdr.Set(skill.HeaderCertChainURL, certURL)
	hdr.Set(h.auth.SignatureHeader(), signature)
	ev.AttachHeaders(hdr, h.auth.SignatureHeader())
	return ev
}

func TestAuthenticator_AcceptsGenuineRequest(t *testing.T) {
	h := newHarness(t, authtest.CertOptions{}, nil)
	body := h.body(testAppID, h.now.Add(-10*time.Second))
	ev := h.event(t, body, authtest.CertURL, h.signer.Sign(t, body, crypto.SHA1))

	v := h.auth.Verify(context.Background(), ev)
	require.True(t, v.Valid(), "unexpected rejection: %v", v.Err())
	assert.Equal(t, "none", v.Reason())
}

func TestAuthenticator_SHA256Header(t *testing.T) {
	h := newHarness(t, authtest.CertOptions{}, func(s *Settings) { s.Algorithm = AlgorithmSHA256 })
	assert.Equal(t, skill.HeaderSignature256, h.auth.SignatureHeader())

	body := h.body(testAppID, h.now)
	ev := h.event(t, body, authtest.CertURL, h.signer.Sign(t, body, crypto.SHA256))
	assert.True(t, h.auth.Verify(context.Background(), ev).Valid())
}

func TestAuthenticator_Rejections(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)

	tests := []struct {
		name     string
		certOpts authtest.CertOptions
		appID    string
		certURL  string
		tamper   bool
		skew     time.Duration
		want     error
		reason   string
		noFetch  bool
	}{
		{name: "wrong application", appID: "amzn1.ask.skill.other", want: ErrInvalidApplicationID, reason: "invalid_application_id", noFetch: true},
		{name: "wrong application beats bad url", appID: "amzn1.ask.skill.other", certURL: "http://evil.example/x.pem", want: ErrInvalidApplicationID, noFetch: true},
		{name: "bad cert url", certURL: "https://s3.amazonaws.com/invalid.path/cert.pem", want: ErrInvalidCertificateURL, reason: "invalid_certificate_url", noFetch: true},
		{name: "unreachable cert", certURL: "https://s3.amazonaws.com/echo.api/missing.pem", want: ErrCertificateFetch, reason: "certificate_fetch_error"},
		{name: "expired cert", certOpts: authtest.CertOptions{NotBefore: past, NotAfter: past.Add(time.Hour)}, want: ErrCertificateExpired, reason: "certificate_expired"},
		{name: "expired cert beats bad signature", certOpts: authtest.CertOptions{NotBefore: past, NotAfter: past.Add(time.Hour)}, tamper: true, want: ErrCertificateExpired},
		{name: "identity mismatch", certOpts: authtest.CertOptions{DNSNames: []string{"evil.example"}}, want: ErrCertificateIdentityMismatch, reason: "certificate_identity_mismatch"},
		{name: "tampered body", tamper: true, want: ErrSignatureVerification, reason: "signature_verification_error"},
		{name: "tampered body beats stale timestamp", tamper: true, skew: -time.Hour, want: ErrSignatureVerification},
		{name: "stale", skew: -151 * time.Second, want: ErrStaleOrFutureRequest, reason: "stale_or_future_request"},
		{name: "future", skew: 151 * time.Second, want: ErrStaleOrFutureRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.certOpts, nil)
			appID := tt.appID
			if appID == "" {
				appID = testAppID
			}
			certURL := tt.certURL
			if certURL == "" {
				certURL = authtest.CertURL
			}

			body := h.body(appID, h.now.Add(tt.skew))
			sig := h.signer.Sign(t, body, crypto.SHA1)
			if tt.tamper {
				body = append(body[:len(body)-1:len(body)-1], ' ', '}')
			}

			v := h.auth.Verify(context.Background(), h.event(t, body, certURL, sig))
			require.False(t, v.Valid())
			assert.ErrorIs(t, v.Err(), tt.want)
			if tt.reason != "" {
				assert.Equal(t, tt.reason, v.Reason())
			}
			if tt.noFetch {
				assert.Zero(t, h.tr.Calls())
			}
		})
	}
}

func TestAuthenticator_MissingSignature(t *testing.T) {
	h := newHarness(t, authtest.CertOptions{}, nil)
	body := h.body(testAppID, h.now)
	v := h.auth.Verify(context.Background(), h.event(t, body, authtest.CertURL, ""))
	assert.ErrorIs(t, v.Err(), ErrSignatureDecode)
	assert.Equal(t, "signature_decode_error", v.Reason())
}

func TestAuthenticator_NilEvent(t *testing.T) {
	h := newHarness(t, authtest.CertOptions{}, nil)
	assert.False(t, h.auth.Verify(context.Background(), nil).Valid())
}

func TestAuthenticator_ReusesCachedChain(t *testing.T) {
	h := newHarness(t, authtest.CertOptions{}, nil)
	for i := 0; i < 3; i++ {
		body := h.body(testAppID, h.now)
		ev := h.event(t, body, authtest.CertURL, h.signer.Sign(t, body, crypto.SHA1))
		require.True(t, h.auth.Verify(context.Background(), ev).Valid())
	}
	assert.Equal(t, int64(1), h.tr.Calls())
}

func TestNew_RejectsIncompleteSettings(t *testing.T) {
	client := authtest.NewTransport(authtest.CertURL, nil).Client()

	_, err := New(DefaultSettings(""), Options{Client: client})
	assert.Error(t, err)

	s := DefaultSettings(testAppID)
	s.Algorithm = "md5"
	_, err = New(s, Options{Client: client})
	assert.Error(t, err)

	s = DefaultSettings(testAppID)
	s.RequiredSAN = ""
	_, err = New(s, Options{Client: client})
	assert.Error(t, err)
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, "none", ReasonOf(nil))
	assert.Equal(t, "internal", ReasonOf(context.Canceled))
	assert.Equal(t, "certificate_parse_error", ReasonOf(fmt.Errorf("wrap: %w", ErrCertificateParse)))
}
