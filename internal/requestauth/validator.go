// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"crypto/x509"
	"fmt"
)

// Validator checks the leaf certificate's validity window and identity.
type Validator struct {
	requiredSAN string
	clock       Clock
}

// NewValidator creates a Validator requiring the DNS SAN requiredSAN.
func NewValidator(requiredSAN string, clock Clock) *Validator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Validator{requiredSAN: requiredSAN, clock: clock}
}

// Validate fails when now is at or past NotAfter, before NotBefore, or when
// no DNS SAN equals the required identity.
func (v *Validator) Validate(leaf *x509.Certificate) error {
	if leaf == nil {
		return fmt.Errorf("%w: no leaf certificate", ErrCertificateParse)
	}

	now := v.clock.Now().UTC()
	if !now.Before(leaf.NotAfter) {
		return fmt.Errorf("%w: not after %s", ErrCertificateExpired, leaf.NotAfter.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if now.Before(leaf.NotBefore) {
		return fmt.Errorf("%w: not before %s", ErrCertificateNotYetValid, leaf.NotBefore.UTC().Format("2006-01-02T15:04:05Z"))
	}

	for _, name := range leaf.DNSNames {
		if name == v.requiredSAN {
			return nil
		}
	}
	return fmt.Errorf("%w: %q not in subject alternative names", ErrCertificateIdentityMismatch, v.requiredSAN)
}
