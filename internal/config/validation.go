// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"

	"github.com/ManuGH/wwstay-skill/internal/validate"
)

var (
	signatureAlgorithms = []string{"sha1", "sha256"}
	cacheBackends       = []string{"memory", "redis", "none"}
	tracingExporters    = []string{"grpc", "http"}
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("Server.ListenAddr", cfg.Server.ListenAddr)
	v.PositiveDuration("Server.ShutdownTimeout", cfg.Server.ShutdownTimeout)
	if cfg.Server.MaxBodyBytes <= 0 {
		v.AddError("Server.MaxBodyBytes", "value must be positive", cfg.Server.MaxBodyBytes)
	}

	v.NotEmpty("Skill.ApplicationID", cfg.Skill.ApplicationID)
	v.AbsolutePath("Skill.EndpointPath", cfg.Skill.EndpointPath)
	v.NotEmpty("Skill.BookingIntent", cfg.Skill.BookingIntent)

	v.NotEmpty("Verification.CertHost", cfg.Verification.CertHost)
	v.AbsolutePath("Verification.CertPathPrefix", cfg.Verification.CertPathPrefix)
	if !strings.HasSuffix(cfg.Verification.CertPathPrefix, "/") {
		v.AddError("Verification.CertPathPrefix", "must end with /", cfg.Verification.CertPathPrefix)
	}
	v.NotEmpty("Verification.RequiredSAN", cfg.Verification.RequiredSAN)
	v.PositiveDuration("Verification.Tolerance", cfg.Verification.Tolerance)
	v.PositiveDuration("Verification.FetchTimeout", cfg.Verification.FetchTimeout)
	v.OneOf("Verification.SignatureAlgorithm", cfg.Verification.SignatureAlgorithm, signatureAlgorithms)

	v.OneOf("Cache.Backend", cfg.Cache.Backend, cacheBackends)
	if cfg.Cache.Backend != "none" {
		v.PositiveDuration("Verification.CacheTTL", cfg.Verification.CacheTTL)
	}
	if cfg.Cache.Backend == "redis" {
		v.NotEmpty("Cache.RedisAddr", cfg.Cache.RedisAddr)
		v.NonNegative("Cache.RedisDB", cfg.Cache.RedisDB)
	}

	if strings.TrimSpace(cfg.Booking.Endpoint) != "" {
		v.URL("Booking.Endpoint", cfg.Booking.Endpoint, []string{"http", "https"})
		v.PositiveDuration("Booking.Timeout", cfg.Booking.Timeout)
		v.Positive("Booking.BreakerThreshold", cfg.Booking.BreakerThreshold)
	}

	if cfg.Metrics.Enabled {
		v.NotEmpty("Metrics.Addr", cfg.Metrics.Addr)
	}

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, tracingExporters)
		v.NotEmpty("Tracing.Endpoint", cfg.Tracing.Endpoint)
		v.Fraction("Tracing.SamplingRate", cfg.Tracing.SamplingRate)
	}

	if cfg.RateLimit.Enabled {
		v.Positive("RateLimit.PerIPRequests", cfg.RateLimit.PerIPRequests)
		v.PositiveDuration("RateLimit.Window", cfg.RateLimit.Window)
		v.Positive("RateLimit.GlobalBurst", cfg.RateLimit.GlobalBurst)
		if cfg.RateLimit.GlobalRPS <= 0 {
			v.AddError("RateLimit.GlobalRPS", "value must be positive", cfg.RateLimit.GlobalRPS)
		}
	}

	return v.Err()
}
