// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/wwstay-skill/internal/api/middleware"
	"github.com/ManuGH/wwstay-skill/internal/api/problem"
	"github.com/ManuGH/wwstay-skill/internal/booking"
	"github.com/ManuGH/wwstay-skill/internal/config"
	"github.com/ManuGH/wwstay-skill/internal/health"
	"github.com/ManuGH/wwstay-skill/internal/log"
)

// Options wires a Server.
type Options struct {
	Config   config.AppConfig
	Pipeline PipelineDeps
	Health   *health.Manager
	Booking  *booking.Dispatcher
}

// Server is the skill HTTP handler.
type Server struct {
	pipeline     atomic.Pointer[Pipeline]
	deps         PipelineDeps
	endpointPath string
	health       *health.Manager
	booking      *booking.Dispatcher
	router       chi.Router
	logger       zerolog.Logger
}

// New builds a Server for opts.Config.
func New(opts Options) (*Server, error) {
	if opts.Health == nil {
		return nil, errors.New("api: health manager is required")
	}
	p, err := BuildPipeline(opts.Config, opts.Pipeline)
	if err != nil {
		return nil, err
	}
	dispatcher := opts.Booking
	if dispatcher == nil {
		dispatcher = booking.NewDispatcher(nil, 0)
	}

	s := &Server{
		deps:         opts.Pipeline,
		endpointPath: opts.Config.Skill.EndpointPath,
		health:       opts.Health,
		booking:      dispatcher,
		logger:       log.WithComponent("api"),
	}
	s.pipeline.Store(p)
	s.router = s.routes(opts.Config)
	return s, nil
}

func (s *Server) routes(cfg config.AppConfig) chi.Router {
	tracing := ""
	if cfg.Tracing.Enabled {
		tracing = cfg.LogService
	}
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         cfg.Metrics.Enabled,
		TracingService:        tracing,
		EnableLogging:         true,
		EnableRateLimit:       cfg.RateLimit.Enabled,
		PerIPRequests:         cfg.RateLimit.PerIPRequests,
		Window:                cfg.RateLimit.Window,
		GlobalRPS:             cfg.RateLimit.GlobalRPS,
		GlobalBurst:           cfg.RateLimit.GlobalBurst,
	})

	r.Post(s.endpointPath, s.handleSkill)
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, "system/not-found", "Not found", "NOT_FOUND", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusMethodNotAllowed, "system/method-not-allowed", "Method not allowed", "METHOD_NOT_ALLOWED", "")
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ApplyConfig rebuilds the request pipeline from cfg and swaps it in
// atomically. In-flight requests finish on the pipeline they started with.
// Listener and route settings need a restart.
func (s *Server) ApplyConfig(cfg config.AppConfig) error {
	p, err := BuildPipeline(cfg, s.deps)
	if err != nil {
		return err
	}
	s.pipeline.Store(p)
	if cfg.Skill.EndpointPath != s.endpointPath {
		s.logger.Warn().
			Str(log.FieldEvent, "config.restart_required").
			Str("endpoint_path", cfg.Skill.EndpointPath).
			Msg("endpoint path change takes effect after restart")
	}
	s.logger.Info().Str(log.FieldEvent, "config.applied").Msg("skill pipeline rebuilt")
	return nil
}

// Pipeline returns the active pipeline.
func (s *Server) Pipeline() *Pipeline {
	return s.pipeline.Load()
}
