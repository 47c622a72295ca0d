// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/wwstay-skill/internal/api"
	"github.com/ManuGH/wwstay-skill/internal/booking"
	"github.com/ManuGH/wwstay-skill/internal/cache"
	"github.com/ManuGH/wwstay-skill/internal/config"
	"github.com/ManuGH/wwstay-skill/internal/health"
	"github.com/ManuGH/wwstay-skill/internal/platform/httpx"
	"github.com/ManuGH/wwstay-skill/internal/requestauth"
	"github.com/ManuGH/wwstay-skill/internal/telemetry"
)

// BuildOptions tunes Build for tests and embedding.
type BuildOptions struct {
	Logger zerolog.Logger
	// CertTransport replaces the network transport of the certificate fetcher.
	CertTransport http.RoundTripper
	// BookingClient replaces the booking HTTP client.
	BookingClient *http.Client
	Clock         requestauth.Clock
}

// Runtime is the wired process.
type Runtime struct {
	Config  config.AppConfig
	API     *api.Server
	Health  *health.Manager
	Manager Manager
}

// Build wires every component for cfg. Resources acquired before a failure
// are released before Build returns the error.
func Build(ctx context.Context, cfg config.AppConfig, opts BuildOptions) (rt *Runtime, err error) {
	logger := opts.Logger
	var hooks []namedHook
	defer func() {
		if err == nil {
			return
		}
		for i := len(hooks) - 1; i >= 0; i-- {
			if herr := hooks[i].hook(context.WithoutCancel(ctx)); herr != nil {
				logger.Warn().Err(herr).Str("hook", hooks[i].name).Msg("cleanup after failed build")
			}
		}
	}()

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	hooks = append(hooks, namedHook{"telemetry", provider.Shutdown})

	hm := health.NewManager(cfg.Version)

	store, closeStore, err := newCertCache(ctx, cfg.Cache, logger, hm)
	if err != nil {
		return nil, err
	}
	hooks = append(hooks, namedHook{"cert-cache", closeStore})

	certClient := httpx.NewClient(cfg.Verification.FetchTimeout)
	if opts.CertTransport != nil {
		certClient = httpx.Wrap(opts.CertTransport, cfg.Verification.FetchTimeout)
	}

	var submitter booking.Submitter
	if cfg.Booking.Endpoint != "" {
		client := opts.BookingClient
		if client == nil {
			client = httpx.NewClient(cfg.Booking.Timeout)
		}
		sub, err := booking.NewHTTPSubmitter(booking.Config{
			Endpoint:         cfg.Booking.Endpoint,
			Timeout:          cfg.Booking.Timeout,
			BreakerThreshold: cfg.Booking.BreakerThreshold,
			BreakerReset:     cfg.Booking.BreakerReset,
		}, client)
		if err != nil {
			return nil, fmt.Errorf("booking: %w", err)
		}
		submitter = sub
		hm.RegisterChecker(health.NewBreakerChecker("booking", func() string { return string(sub.State()) }))
	}
	dispatcher := booking.NewDispatcher(submitter, cfg.Booking.Timeout)
	hooks = append(hooks, namedHook{"booking", dispatcher.Close})

	srv, err := api.New(api.Options{
		Config: cfg,
		Pipeline: api.PipelineDeps{
			CertClient: certClient,
			CertCache:  store,
			Clock:      opts.Clock,
		},
		Health:  hm,
		Booking: dispatcher,
	})
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}

	deps := Deps{Logger: logger, APIHandler: srv.Handler()}
	if cfg.Metrics.Enabled {
		deps.MetricsHandler = promhttp.Handler()
		deps.MetricsAddr = cfg.Metrics.Addr
	}
	mgr, err := NewManager(config.ServerConfigFrom(cfg), deps)
	if err != nil {
		return nil, err
	}
	for _, h := range hooks {
		mgr.RegisterShutdownHook(h.name, h.hook)
	}

	return &Runtime{Config: cfg, API: srv, Health: hm, Manager: mgr}, nil
}

// newCertCache builds the configured certificate cache and its close hook.
func newCertCache(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger, hm *health.Manager) (cache.Store, ShutdownHook, error) {
	switch cfg.Backend {
	case "", "memory":
		store := cache.NewMemoryStore(config.DefaultCertCacheTTL / 4)
		return store, func(context.Context) error { return store.Close() }, nil
	case "redis":
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("certificate cache: %w", err)
		}
		// A failing cache degrades to direct fetches, so it never blocks readiness.
		hm.RegisterChecker(health.NewPingChecker("cert_cache", store.Ping, true))
		return store, func(context.Context) error { return store.Close() }, nil
	case "none":
		return cache.NoopStore{}, func(context.Context) error { return nil }, nil
	default:
		return nil, nil, errors.New("unknown cache backend " + cfg.Backend)
	}
}
