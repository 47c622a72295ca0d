// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"context"
	"encoding/pem"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/wwstay-skill/internal/cache"
	"github.com/ManuGH/wwstay-skill/internal/requestauth/authtest"
)

func newTestFetcher(t *testing.T, tr *authtest.Transport, store cache.Store) *Fetcher {
	t.Helper()
	f, err := NewFetcher(FetcherOptions{
		Host:       DefaultCertHost,
		PathPrefix: DefaultCertPathPrefix,
		Client:     tr.Client(),
		Cache:      store,
		CacheTTL:   time.Hour,
	})
	require.NoError(t, err)
	return f
}

func TestCheckURL_Accepts(t *testing.T) {
	f := newTestFetcher(t, authtest.NewTransport(authtest.CertURL, nil), nil)

	tests := map[string]string{
		"https://s3.amazonaws.com/echo.api/echo-api-cert.pem":            "https://s3.amazonaws.com/echo.api/echo-api-cert.pem",
		"HTTPS://s3.amazonaws.com/echo.api/echo-api-cert.pem":            "https://s3.amazonaws.com/echo.api/echo-api-cert.pem",
		"https://S3.AMAZONAWS.COM/echo.api/echo-api-cert.pem":            "https://S3.AMAZONAWS.COM/echo.api/echo-api-cert.pem",
		"https://s3.amazonaws.com:443/echo.api/echo-api-cert.pem":        "https://s3.amazonaws.com:443/echo.api/echo-api-cert.pem",
		"https://s3.amazonaws.com/echo.api/../echo.api/echo-api-cert.pem": "https://s3.amazonaws.com/echo.api/echo-api-cert.pem",
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			u, err := f.CheckURL(raw)
			require.NoError(t, err)
			assert.Equal(t, want, u.String())
		})
	}
}

func TestCheckURL_RejectsBeforeAnyNetworkCall(t *testing.T) {
	tr := authtest.NewTransport(authtest.CertURL, nil)
	f := newTestFetcher(t, tr, nil)

	bad := []string{
		"",
		"http://s3.amazonaws.com/echo.api/echo-api-cert.pem",
		"ftp://s3.amazonaws.com/echo.api/echo-api-cert.pem",
		"https://notamazon.com/echo.api/echo-api-cert.pem",
		"https://s3.amazonaws.com.evil.com/echo.api/echo-api-cert.pem",
		"https://s3.amazonaws.com./echo.api/echo-api-cert.pem",
		"https://s3.amazonaws.com:563/echo.api/echo-api-cert.pem",
		"https://s3.amazonaws.com/EcHo.aPi/echo-api-cert.pem",
		"https://s3.amazonaws.com/invalid.path/echo-api-cert.pem",
		"https://s3.amazonaws.com/echo.api/../invalid.path/echo-api-cert.pem",
		"https://s3.amazonaws.com/echo.api",
		"https://s3.amazonaws.com/echo.api.evil/echo-api-cert.pem",
		"https://user@s3.amazonaws.com/echo.api/echo-api-cert.pem",
		"https://s3.amazonaws.com",
		"s3.amazonaws.com/echo.api/echo-api-cert.pem",
		"https://%zz/echo.api/",
	}
	for _, raw := range bad {
		t.Run(raw, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCertificateURL)
		})
	}
	assert.Zero(t, tr.Calls())
}

func TestFetch_ParsesPEMChain(t *testing.T) {
	leaf := authtest.NewSigner(t, authtest.CertOptions{})
	other := authtest.NewSigner(t, authtest.CertOptions{DNSNames: []string{"intermediate.example"}})
	body := append(append([]byte{}, leaf.PEM...), other.PEM...)

	f := newTestFetcher(t, authtest.NewTransport(authtest.CertURL, body), nil)
	chain, err := f.Fetch(context.Background(), authtest.CertURL)
	require.NoError(t, err)

	require.Len(t, chain.Certificates, 2)
	assert.Equal(t, leaf.Cert.SerialNumber, chain.Leaf().SerialNumber)
}

func TestFetch_Errors(t *testing.T) {
	signer := authtest.NewSigner(t, authtest.CertOptions{})
	der, _ := pem.Decode(signer.PEM)

	tests := []struct {
		name string
		body []byte
		url  string
		want error
	}{
		{"not found", nil, "https://s3.amazonaws.com/echo.api/missing.pem", ErrCertificateFetch},
		{"DER is not accepted", der.Bytes, authtest.CertURL, ErrCertificateParse},
		{"garbage", []byte("hello"), authtest.CertURL, ErrCertificateParse},
		{"corrupt certificate block", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}}), authtest.CertURL, ErrCertificateParse},
		{"oversized", []byte(strings.Repeat("A", defaultMaxChainBytes+1)), authtest.CertURL, ErrCertificateFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t, authtest.NewTransport(authtest.CertURL, tt.body), nil)
			_, err := f.Fetch(context.Background(), tt.url)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetch_CachesValidChains(t *testing.T) {
	signer := authtest.NewSigner(t, authtest.CertOptions{})
	tr := authtest.NewTransport(authtest.CertURL, signer.PEM)
	store := cache.NewMemoryStore(0)
	f := newTestFetcher(t, tr, store)

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), authtest.CertURL)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), tr.Calls())
	assert.Equal(t, int64(2), store.Stats().Hits)
}

func TestFetch_DoesNotCacheFailures(t *testing.T) {
	tr := authtest.NewTransport(authtest.CertURL, []byte("not pem"))
	store := cache.NewMemoryStore(0)
	f := newTestFetcher(t, tr, store)

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), authtest.CertURL)
		require.ErrorIs(t, err, ErrCertificateParse)
	}
	assert.Equal(t, int64(2), tr.Calls())
	assert.Zero(t, store.Stats().Sets)
}

func TestFetch_WithoutCacheAlwaysDownloads(t *testing.T) {
	signer := authtest.NewSigner(t, authtest.CertOptions{})
	tr := authtest.NewTransport(authtest.CertURL, signer.PEM)
	f := newTestFetcher(t, tr, nil)

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), authtest.CertURL)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), tr.Calls())
}

func TestFetch_CoalescesConcurrentMisses(t *testing.T) {
	signer := authtest.NewSigner(t, authtest.CertOptions{})
	tr := authtest.NewTransport(authtest.CertURL, signer.PEM)
	tr.Delay = 100 * time.Millisecond
	f := newTestFetcher(t, tr, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Fetch(context.Background(), authtest.CertURL)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, tr.Calls(), int64(8))
}

func TestFetch_HonorsContextDeadline(t *testing.T) {
	signer := authtest.NewSigner(t, authtest.CertOptions{})
	tr := authtest.NewTransport(authtest.CertURL, signer.PEM)
	tr.Delay = time.Second
	f := newTestFetcher(t, tr, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, authtest.CertURL)
	assert.ErrorIs(t, err, ErrCertificateFetch)
}

func TestFetch_CancelledCallerDoesNotFailCoalescedWaiters(t *testing.T) {
	signer := authtest.NewSigner(t, authtest.CertOptions{})
	tr := authtest.NewTransport(authtest.CertURL, signer.PEM)
	tr.Delay = 200 * time.Millisecond
	f := newTestFetcher(t, tr, nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.Fetch(first, authtest.CertURL)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return tr.Calls() == 1 }, time.Second, 5*time.Millisecond)

	waiterErr := make(chan error, 1)
	go func() {
		_, err := f.Fetch(context.Background(), authtest.CertURL)
		waiterErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-firstErr, ErrCertificateFetch)
	assert.NoError(t, <-waiterErr)
	assert.Equal(t, int64(1), tr.Calls())
}

func TestNewFetcher_Validation(t *testing.T) {
	_, err := NewFetcher(FetcherOptions{Host: "", PathPrefix: "/echo.api/", Client: authtest.NewTransport("", nil).Client()})
	assert.Error(t, err)
	_, err = NewFetcher(FetcherOptions{Host: DefaultCertHost, PathPrefix: "echo.api/", Client: authtest.NewTransport("", nil).Client()})
	assert.Error(t, err)
	_, err = NewFetcher(FetcherOptions{Host: DefaultCertHost, PathPrefix: "/echo.api", Client: authtest.NewTransport("", nil).Client()})
	assert.Error(t, err, "a prefix without a trailing slash would match sibling directories")
	_, err = NewFetcher(FetcherOptions{Host: DefaultCertHost, PathPrefix: "/echo.api/"})
	assert.Error(t, err)
}
