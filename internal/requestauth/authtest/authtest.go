// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package authtest mints signing certificates and signed requests for tests
// of request verification. It must only be imported from _test.go files.
package authtest

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"io"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Platform values used by default.
const (
	CertURL     = "https://s3.amazonaws.com/echo.api/echo-api-cert-test.pem"
	RequiredSAN = "echo-api.amazon.com"
)

var (
	keyOnce   sync.Once
	sharedKey *rsa.PrivateKey
	keyErr    error
)

// key returns a process-wide RSA key; generating one per test is slow.
func key(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		sharedKey, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, keyErr)
	return sharedKey
}

// CertOptions shapes a test certificate. Zero values get sensible defaults.
type CertOptions struct {
	DNSNames  []string
	NotBefore time.Time
	NotAfter  time.Time
	// Key overrides the shared RSA key.
	Key *rsa.PrivateKey
}

// Signer holds a self-signed certificate and its private key.
type Signer struct {
	Key  *rsa.PrivateKey
	Cert *x509.Certificate
	PEM  []byte
}

// NewSigner creates a self-signed RSA certificate. By default it carries
// RequiredSAN and is valid from an hour before now until a day after.
func NewSigner(t testing.TB, opts CertOptions) *Signer {
	t.Helper()

	k := opts.Key
	if k == nil {
		k = key(t)
	}
	now := time.Now()
	if opts.NotBefore.IsZero() {
		opts.NotBefore = now.Add(-time.Hour)
	}
	if opts.NotAfter.IsZero() {
		opts.NotAfter = now.Add(24 * time.Hour)
	}
	if opts.DNSNames == nil {
		opts.DNSNames = []string{RequiredSAN}
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "echo-api.amazon.com", Organization: []string{"wwstay test"}},
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              opts.DNSNames,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &k.PublicKey, k)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &Signer{
		Key:  k,
		Cert: cert,
		PEM:  pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}
}

// Sign returns the base64 RSA PKCS#1 v1.5 signature of body under hash.
func (s *Signer) Sign(t testing.TB, body []byte, hash crypto.Hash) string {
	t.Helper()
	h := hash.New()
	h.Write(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.Key, hash, h.Sum(nil))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(sig)
}

// Timestamp formats t the way the platform does.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Transport is an http.RoundTripper serving fixed bodies by URL.
type Transport struct {
	mu     sync.Mutex
	bodies map[string][]byte
	calls  atomic.Int64
	// Delay stalls every response.
	Delay time.Duration
}

// NewTransport returns a Transport serving body at url.
func NewTransport(url string, body []byte) *Transport {
	tr := &Transport{bodies: map[string][]byte{}}
	tr.Serve(url, body)
	return tr
}

// Serve registers body for url.
func (tr *Transport) Serve(url string, body []byte) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.bodies[url] = body
}

// Calls returns how many requests reached the transport.
func (tr *Transport) Calls() int64 { return tr.calls.Load() }

func (tr *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr.calls.Add(1)
	if tr.Delay > 0 {
		select {
		case <-time.After(tr.Delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	tr.mu.Lock()
	body, ok := tr.bodies[req.URL.String()]
	tr.mu.Unlock()

	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
		body = []byte("not found")
	}
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        http.Header{"Content-Type": []string{"application/x-pem-file"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// Client returns an *http.Client using tr.
func (tr *Transport) Client() *http.Client {
	return &http.Client{Transport: tr, Timeout: 5 * time.Second}
}
