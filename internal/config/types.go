// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the fully merged runtime configuration.
type AppConfig struct {
	Version    string
	LogLevel   string
	LogService string

	Server       ServerSettings
	Skill        SkillConfig
	Verification VerificationConfig
	Cache        CacheConfig
	Booking      BookingConfig
	Metrics      MetricsConfig
	Tracing      TracingConfig
	RateLimit    RateLimitConfig
}

// ServerSettings holds the HTTP listener settings of the skill endpoint.
type ServerSettings struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodyBytes    int64
}

// SkillConfig identifies the skill and shapes the dialog.
type SkillConfig struct {
	// ApplicationID is the only application id accepted on inbound requests.
	ApplicationID string
	EndpointPath  string
	BookingIntent string
	// HelpResetsAttributes drops collected slot attributes when the user asks for help.
	HelpResetsAttributes bool
}

// VerificationConfig controls request authenticity checks.
type VerificationConfig struct {
	CertHost           string
	CertPathPrefix     string
	RequiredSAN        string
	Tolerance          time.Duration
	SignatureAlgorithm string // sha1 or sha256
	FetchTimeout       time.Duration
	CacheTTL           time.Duration
}

// CacheConfig selects the certificate cache backend.
type CacheConfig struct {
	Backend       string // memory, redis or none
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// BookingConfig describes the downstream booking endpoint.
type BookingConfig struct {
	Endpoint         string // empty disables submission
	Timeout          time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool
	Exporter     string // grpc or http
	Endpoint     string
	Environment  string
	SamplingRate float64
}

// RateLimitConfig controls ingress throttling.
type RateLimitConfig struct {
	Enabled       bool
	PerIPRequests int
	Window        time.Duration
	GlobalRPS     float64
	GlobalBurst   int
}

// FileConfig is the on-disk YAML representation. Pointer fields distinguish
// "not set" from an explicit zero value.
type FileConfig struct {
	LogLevel     string                 `yaml:"logLevel,omitempty"`
	LogService   string                 `yaml:"logService,omitempty"`
	Server       FileServerConfig       `yaml:"server,omitempty"`
	Skill        FileSkillConfig        `yaml:"skill,omitempty"`
	Verification FileVerificationConfig `yaml:"verification,omitempty"`
	Cache        FileCacheConfig        `yaml:"cache,omitempty"`
	Booking      FileBookingConfig      `yaml:"booking,omitempty"`
	Metrics      FileMetricsConfig      `yaml:"metrics,omitempty"`
	Tracing      FileTracingConfig      `yaml:"tracing,omitempty"`
	RateLimit    FileRateLimitConfig    `yaml:"rateLimit,omitempty"`
}

type FileServerConfig struct {
	ListenAddr      string        `yaml:"listenAddr,omitempty"`
	ReadTimeout     time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"writeTimeout,omitempty"`
	IdleTimeout     time.Duration `yaml:"idleTimeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes,omitempty"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes,omitempty"`
}

type FileSkillConfig struct {
	ApplicationID        string `yaml:"applicationId,omitempty"`
	EndpointPath         string `yaml:"endpointPath,omitempty"`
	BookingIntent        string `yaml:"bookingIntent,omitempty"`
	HelpResetsAttributes *bool  `yaml:"helpResetsAttributes,omitempty"`
}

type FileVerificationConfig struct {
	CertHost           string        `yaml:"certHost,omitempty"`
	CertPathPrefix     string        `yaml:"certPathPrefix,omitempty"`
	RequiredSAN        string        `yaml:"requiredSan,omitempty"`
	Tolerance          time.Duration `yaml:"tolerance,omitempty"`
	SignatureAlgorithm string        `yaml:"signatureAlgorithm,omitempty"`
	FetchTimeout       time.Duration `yaml:"fetchTimeout,omitempty"`
	CacheTTL           time.Duration `yaml:"cacheTtl,omitempty"`
}

type FileCacheConfig struct {
	Backend       string `yaml:"backend,omitempty"`
	RedisAddr     string `yaml:"redisAddr,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       *int   `yaml:"redisDb,omitempty"`
}

type FileBookingConfig struct {
	Endpoint         string        `yaml:"endpoint,omitempty"`
	Timeout          time.Duration `yaml:"timeout,omitempty"`
	BreakerThreshold int           `yaml:"breakerThreshold,omitempty"`
	BreakerReset     time.Duration `yaml:"breakerReset,omitempty"`
}

type FileMetricsConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Addr    string `yaml:"addr,omitempty"`
}

type FileTracingConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}

type FileRateLimitConfig struct {
	Enabled       *bool         `yaml:"enabled,omitempty"`
	PerIPRequests int           `yaml:"perIpRequests,omitempty"`
	Window        time.Duration `yaml:"window,omitempty"`
	GlobalRPS     float64       `yaml:"globalRps,omitempty"`
	GlobalBurst   int           `yaml:"globalBurst,omitempty"`
}
