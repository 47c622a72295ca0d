// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

const (
	DefaultListenAddr      = ":8088"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
	DefaultMaxBodyBytes    = 256 << 10

	DefaultEndpointPath  = "/alexa"
	DefaultBookingIntent = "HotelBook"

	DefaultCertHost           = "s3.amazonaws.com"
	DefaultCertPathPrefix     = "/echo.api/"
	DefaultRequiredSAN        = "echo-api.amazon.com"
	DefaultTolerance          = 150 * time.Second
	DefaultSignatureAlgorithm = "sha1"
	DefaultFetchTimeout       = 5 * time.Second
	DefaultCertCacheTTL       = time.Hour

	DefaultCacheBackend = "memory"

	DefaultBookingTimeout   = 10 * time.Second
	DefaultBreakerThreshold = 3
	DefaultBreakerReset     = 30 * time.Second

	DefaultMetricsAddr = ":9090"

	DefaultTracingExporter = "grpc"
	DefaultTracingEndpoint = "localhost:4317"

	DefaultPerIPRequests = 600
	DefaultWindow        = time.Minute
	DefaultGlobalRPS     = 50
	DefaultGlobalBurst   = 100
)

// Defaults returns the baseline configuration before file and env overrides.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "wwstay",
		Server: ServerSettings{
			ListenAddr:      DefaultListenAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxHeaderBytes:  DefaultMaxHeaderBytes,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Skill: SkillConfig{
			EndpointPath:         DefaultEndpointPath,
			BookingIntent:        DefaultBookingIntent,
			HelpResetsAttributes: true,
		},
		Verification: VerificationConfig{
			CertHost:           DefaultCertHost,
			CertPathPrefix:     DefaultCertPathPrefix,
			RequiredSAN:        DefaultRequiredSAN,
			Tolerance:          DefaultTolerance,
			SignatureAlgorithm: DefaultSignatureAlgorithm,
			FetchTimeout:       DefaultFetchTimeout,
			CacheTTL:           DefaultCertCacheTTL,
		},
		Cache: CacheConfig{
			Backend: DefaultCacheBackend,
		},
		Booking: BookingConfig{
			Timeout:          DefaultBookingTimeout,
			BreakerThreshold: DefaultBreakerThreshold,
			BreakerReset:     DefaultBreakerReset,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    DefaultMetricsAddr,
		},
		Tracing: TracingConfig{
			Exporter:     DefaultTracingExporter,
			Endpoint:     DefaultTracingEndpoint,
			Environment:  "production",
			SamplingRate: 1.0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			PerIPRequests: DefaultPerIPRequests,
			Window:        DefaultWindow,
			GlobalRPS:     DefaultGlobalRPS,
			GlobalBurst:   DefaultGlobalBurst,
		},
	}
}
