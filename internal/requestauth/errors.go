// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import "errors"

// Rejection classes. Callers classify with errors.Is; the wrapped detail is
// for server-side logs only and must never reach the client.
var (
	ErrInvalidApplicationID        = errors.New("invalid application id")
	ErrInvalidCertificateURL       = errors.New("invalid certificate url")
	ErrCertificateFetch            = errors.New("certificate fetch failed")
	ErrCertificateParse            = errors.New("certificate parse failed")
	ErrCertificateExpired          = errors.New("certificate expired")
	ErrCertificateNotYetValid      = errors.New("certificate not yet valid")
	ErrCertificateIdentityMismatch = errors.New("certificate identity mismatch")
	ErrSignatureDecode             = errors.New("signature decode failed")
	ErrSignatureVerification       = errors.New("signature verification failed")
	ErrStaleOrFutureRequest        = errors.New("request timestamp outside tolerance")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrInvalidApplicationID, "invalid_application_id"},
	{ErrInvalidCertificateURL, "invalid_certificate_url"},
	{ErrCertificateFetch, "certificate_fetch_error"},
	{ErrCertificateParse, "certificate_parse_error"},
	{ErrCertificateExpired, "certificate_expired"},
	{ErrCertificateNotYetValid, "certificate_not_yet_valid"},
	{ErrCertificateIdentityMismatch, "certificate_identity_mismatch"},
	{ErrSignatureDecode, "signature_decode_error"},
	{ErrSignatureVerification, "signature_verification_error"},
	{ErrStaleOrFutureRequest, "stale_or_future_request"},
}

// ReasonOf maps err to a stable label for logs and metrics.
func ReasonOf(err error) string {
	if err == nil {
		return "none"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal"
}

// Verdict is the terminal outcome of Authenticator.Verify.
type Verdict struct {
	err error
}

// Valid reports whether the request is authentic.
func (v Verdict) Valid() bool { return v.err == nil }

// Err returns the rejection cause, or nil for a valid verdict.
func (v Verdict) Err() error { return v.err }

// Reason returns the rejection label, or "none" for a valid verdict.
func (v Verdict) Reason() string { return ReasonOf(v.err) }

func valid() Verdict { return Verdict{} }

func invalid(err error) Verdict { return Verdict{err: err} }
