// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/wwstay-skill/internal/resilience"
)

// Submitter hands a stay request to the booking backend.
type Submitter interface {
	Submit(ctx context.Context, req Request) error
}

// Config configures the HTTP submitter.
type Config struct {
	Endpoint         string
	Timeout          time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
}

// HTTPSubmitter posts form-encoded stay requests to the backend endpoint.
type HTTPSubmitter struct {
	endpoint string
	client   *http.Client
	breaker  *resilience.CircuitBreaker
}

// NewHTTPSubmitter creates a submitter for cfg.Endpoint using client.
func NewHTTPSubmitter(cfg Config, client *http.Client) (*HTTPSubmitter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("booking endpoint is empty")
	}
	if client == nil {
		return nil, errors.New("booking submitter requires an http client")
	}
	return &HTTPSubmitter{
		endpoint: cfg.Endpoint,
		client:   client,
		breaker:  resilience.NewCircuitBreaker("booking", cfg.BreakerThreshold, cfg.BreakerReset),
	}, nil
}

// Submit posts req. Non-2xx responses are errors. While the breaker is open
// it returns resilience.ErrCircuitOpen without contacting the backend.
func (s *HTTPSubmitter) Submit(ctx context.Context, req Request) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.post(ctx, req)
	})
}

func (s *HTTPSubmitter) post(ctx context.Context, req Request) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(req.Form().Encode()))
	if err != nil {
		return fmt.Errorf("build booking request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post booking request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("booking backend returned status %d", resp.StatusCode)
	}
	return nil
}

// State reports the circuit breaker state.
func (s *HTTPSubmitter) State() resilience.State {
	return s.breaker.State()
}
