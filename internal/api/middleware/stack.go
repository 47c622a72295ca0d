// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/wwstay-skill/internal/log"
)

// StackConfig configures the canonical HTTP ingress middleware stack.
type StackConfig struct {
	EnableSecurityHeaders bool
	CSP                   string

	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	EnableRateLimit bool
	PerIPRequests   int
	Window          time.Duration
	GlobalRPS       float64
	GlobalBurst     int
}

// NewRouter constructs a chi router with the canonical middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the middleware stack to r, outermost first.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Recoverer)
	r.Use(RequestID)
	if cfg.EnableSecurityHeaders {
		r.Use(SecurityHeaders(cfg.CSP))
	}
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	if cfg.TracingService != "" {
		r.Use(Tracing(cfg.TracingService))
	}
	if cfg.EnableLogging {
		r.Use(log.Middleware())
	}
	if cfg.EnableRateLimit {
		if cfg.GlobalRPS > 0 {
			r.Use(GlobalLimit(cfg.GlobalRPS, cfg.GlobalBurst))
		}
		if cfg.PerIPRequests > 0 && cfg.Window > 0 {
			r.Use(RateLimit(RateLimitConfig{RequestLimit: cfg.PerIPRequests, WindowSize: cfg.Window}))
		}
	}
}
