// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"crypto"
	"crypto/rsa"
	_ "crypto/sha1" // registers crypto.SHA1
	_ "crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ManuGH/wwstay-skill/internal/skill"
)

// Algorithm selects the digest of the request signature.
type Algorithm string

const (
	// AlgorithmSHA1 is the platform's legacy scheme and the default.
	AlgorithmSHA1   Algorithm = "sha1"
	AlgorithmSHA256 Algorithm = "sha256"
)

// ParseAlgorithm parses a configured algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgorithmSHA1, AlgorithmSHA256:
		return a, nil
	case "":
		return AlgorithmSHA1, nil
	default:
		return "", fmt.Errorf("unsupported signature algorithm %q", s)
	}
}

// Header returns the request header that carries signatures of this algorithm.
func (a Algorithm) Header() string {
	if a == AlgorithmSHA256 {
		return skill.HeaderSignature256
	}
	return skill.HeaderSignature
}

func (a Algorithm) hash() crypto.Hash {
	if a == AlgorithmSHA256 {
		return crypto.SHA256
	}
	return crypto.SHA1
}

// SignatureVerifier checks RSA PKCS#1 v1.5 signatures over raw request bytes.
type SignatureVerifier struct {
	alg Algorithm
}

// NewSignatureVerifier creates a verifier for alg.
func NewSignatureVerifier(alg Algorithm) *SignatureVerifier {
	if alg == "" {
		alg = AlgorithmSHA1
	}
	return &SignatureVerifier{alg: alg}
}

// Algorithm returns the configured digest algorithm.
func (s *SignatureVerifier) Algorithm() Algorithm { return s.alg }

// Verify checks sigB64 over body with the leaf's public key. body must be
// the exact bytes received on the wire.
func (s *SignatureVerifier) Verify(leaf *x509.Certificate, sigB64 string, body []byte) error {
	if sigB64 == "" {
		return fmt.Errorf("%w: empty signature", ErrSignatureDecode)
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureDecode, err)
	}
	if leaf == nil {
		return fmt.Errorf("%w: no leaf certificate", ErrSignatureVerification)
	}
	pub, ok := leaf.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: leaf key is %T, want RSA", ErrSignatureVerification, leaf.PublicKey)
	}

	h := s.alg.hash().New()
	h.Write(body)
	if err := rsa.VerifyPKCS1v15(pub, s.alg.hash(), h.Sum(nil), sig); err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}
	return nil
}
