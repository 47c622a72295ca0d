// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/wwstay-skill/internal/log"
	"github.com/ManuGH/wwstay-skill/internal/metrics"
	"github.com/ManuGH/wwstay-skill/internal/resilience"
	"github.com/ManuGH/wwstay-skill/internal/skill"
)

// Dispatcher submits finalized requests in the background so the skill
// response never waits on, or changes because of, the booking backend.
type Dispatcher struct {
	submitter Submitter
	timeout   time.Duration
	logger    zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A nil submitter disables submission.
func NewDispatcher(s Submitter, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		submitter: s,
		timeout:   timeout,
		logger:    log.WithComponent("booking"),
	}
}

// Enabled reports whether a submitter is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.submitter != nil
}

// Dispatch starts an asynchronous submission for attrs. The request id from
// ctx is kept for logging; ctx cancellation does not abort the submission.
func (d *Dispatcher) Dispatch(ctx context.Context, attrs skill.Attributes) {
	if !d.Enabled() {
		metrics.RecordBookingSubmission("skipped")
		return
	}

	req, err := RequestFromAttributes(attrs)
	if err != nil {
		metrics.RecordBookingSubmission("skipped")
		logger := log.WithComponentFromContext(ctx, "booking")
		logger.Warn().Err(err).Str(log.FieldEvent, "booking.skipped").Msg("booking request incomplete")
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		metrics.RecordBookingSubmission("skipped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	requestID := log.RequestIDFromContext(ctx)
	go func() {
		defer d.wg.Done()
		subCtx, cancel := context.WithTimeout(log.ContextWithRequestID(context.Background(), requestID), d.timeout)
		defer cancel()
		d.submit(subCtx, req)
	}()
}

func (d *Dispatcher) submit(ctx context.Context, req Request) {
	logger := log.WithComponentFromContext(ctx, "booking")
	start := time.Now()

	err := d.submitter.Submit(ctx, req)
	switch {
	case err == nil:
		metrics.RecordBookingSubmission("success")
		logger.Info().
			Str(log.FieldEvent, "booking.submitted").
			Str("check_in", req.CheckIn).
			Str("check_out", req.CheckOut).
			Dur(log.FieldDuration, time.Since(start)).
			Msg("booking request submitted")
	case errors.Is(err, resilience.ErrCircuitOpen):
		metrics.RecordBookingSubmission("circuit_open")
		logger.Warn().Str(log.FieldEvent, "booking.circuit_open").Msg("booking backend unavailable, request dropped")
	default:
		metrics.RecordBookingSubmission("failure")
		logger.Error().Err(err).Str(log.FieldEvent, "booking.failed").Msg("booking request failed")
	}
}

// Close stops accepting submissions and waits for in-flight ones or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
