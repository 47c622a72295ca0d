// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/wwstay-skill/internal/cache"
	"github.com/ManuGH/wwstay-skill/internal/log"
	"github.com/ManuGH/wwstay-skill/internal/metrics"
	xnet "github.com/ManuGH/wwstay-skill/internal/platform/net"
)

const defaultMaxChainBytes = 64 << 10

// CertificateChain is the ordered certificate sequence from the PEM document.
type CertificateChain struct {
	Certificates []*x509.Certificate
}

// Leaf returns the end-entity certificate.
func (c *CertificateChain) Leaf() *x509.Certificate {
	if c == nil || len(c.Certificates) == 0 {
		return nil
	}
	return c.Certificates[0]
}

// ParseChain decodes every CERTIFICATE block of a PEM document.
// Input without PEM certificate blocks fails.
func ParseChain(data []byte) (*CertificateChain, error) {
	chain := &CertificateChain{}
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertificateParse, err)
		}
		chain.Certificates = append(chain.Certificates, cert)
	}
	if len(chain.Certificates) == 0 {
		return nil, fmt.Errorf("%w: no PEM certificate found", ErrCertificateParse)
	}
	return chain, nil
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	Host       string
	PathPrefix string
	Client     *http.Client
	// Cache holds downloaded PEM bytes keyed by canonical URL. Nil disables caching.
	Cache    cache.Store
	CacheTTL time.Duration
	MaxBytes int64
}

// Fetcher downloads signing certificate chains from the platform's
// distribution host. It never retries.
type Fetcher struct {
	host     string
	prefix   string
	client   *http.Client
	cache    cache.Store
	ttl      time.Duration
	maxBytes int64
	group    singleflight.Group
	logger   zerolog.Logger
}

// NewFetcher creates a Fetcher. The host is normalized once here.
func NewFetcher(opts FetcherOptions) (*Fetcher, error) {
	host, err := xnet.NormalizeHost(opts.Host)
	if err != nil {
		return nil, fmt.Errorf("certificate host: %w", err)
	}
	if !strings.HasPrefix(opts.PathPrefix, "/") || !strings.HasSuffix(opts.PathPrefix, "/") {
		return nil, fmt.Errorf("certificate path prefix must be an absolute directory ending in /: %q", opts.PathPrefix)
	}
	if opts.Client == nil {
		return nil, errors.New("certificate fetcher requires an http client")
	}
	store := opts.Cache
	if store == nil {
		store = cache.NoopStore{}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxChainBytes
	}
	return &Fetcher{
		host:     host,
		prefix:   opts.PathPrefix,
		client:   opts.Client,
		cache:    store,
		ttl:      opts.CacheTTL,
		maxBytes: maxBytes,
		logger:   log.WithComponent("requestauth"),
	}, nil
}

// CheckURL validates the certificate URL shape and returns its canonical
// form. Scheme and host compare case-insensitively; an explicit port must be
// 443; the dot-segment-resolved path must start with the configured prefix.
func (f *Fetcher) CheckURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCertificateURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCertificateURL, err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidCertificateURL, u.Scheme)
	}
	if u.Opaque != "" || u.User != nil {
		return nil, fmt.Errorf("%w: unexpected authority form", ErrInvalidCertificateURL)
	}

	hostname := u.Hostname()
	if strings.HasSuffix(hostname, ".") {
		return nil, fmt.Errorf("%w: host %q", ErrInvalidCertificateURL, hostname)
	}
	host, err := xnet.NormalizeHost(hostname)
	if err != nil || host != f.host {
		return nil, fmt.Errorf("%w: host %q", ErrInvalidCertificateURL, hostname)
	}
	if port := u.Port(); port != "" && port != "443" {
		return nil, fmt.Errorf("%w: port %q", ErrInvalidCertificateURL, port)
	}

	if u.Path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidCertificateURL)
	}
	cleaned := path.Clean(u.Path)
	if !strings.HasPrefix(cleaned, f.prefix) {
		return nil, fmt.Errorf("%w: path %q", ErrInvalidCertificateURL, cleaned)
	}

	return &url.URL{Scheme: "https", Host: u.Host, Path: cleaned, RawQuery: u.RawQuery}, nil
}

// Fetch checks certURL, then returns the parsed chain from cache or a single
// GET. Concurrent misses for the same URL share one download.
func (f *Fetcher) Fetch(ctx context.Context, certURL string) (*CertificateChain, error) {
	u, err := f.CheckURL(certURL)
	if err != nil {
		return nil, err
	}
	key := u.String()

	if data, ok := f.lookup(ctx, key); ok {
		if chain, err := ParseChain(data); err == nil {
			return chain, nil
		}
		_ = f.cache.Delete(ctx, key)
	}

	// The shared download outlives any single caller; the client timeout bounds it.
	ch := f.group.DoChan(key, func() (any, error) {
		return f.download(context.WithoutCancel(ctx), key)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrCertificateFetch, ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}
	data := res.Val.([]byte)

	chain, err := ParseChain(data)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		f.logger.Warn().Err(err).Str(log.FieldEvent, "auth.cert_cache_store_failed").Msg("failed to cache certificate")
	}
	return chain, nil
}

func (f *Fetcher) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := f.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCertCacheLookup("error")
		f.logger.Warn().Err(err).Str(log.FieldEvent, "auth.cert_cache_error").Msg("certificate cache lookup failed")
		return nil, false
	case ok:
		metrics.RecordCertCacheLookup("hit")
		return data, true
	default:
		metrics.RecordCertCacheLookup("miss")
		return nil, false
	}
}

func (f *Fetcher) download(ctx context.Context, certURL string) (data []byte, err error) {
	start := time.Now()
	outcome := "fetch_error"
	defer func() { metrics.ObserveCertFetch(outcome, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, certURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateFetch, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrCertificateFetch, resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrCertificateFetch, f.maxBytes)
	}

	if _, err := ParseChain(data); err != nil {
		outcome = "parse_error"
		return nil, err
	}
	outcome = "success"
	return data, nil
}
