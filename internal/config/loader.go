// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // keys read during the last Load
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envInt64(key string, defaultVal int64) int64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt64(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order: defaults -> strict file parse -> env overrides -> validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	cfg.Verification.SignatureAlgorithm = strings.ToLower(strings.TrimSpace(cfg.Verification.SignatureAlgorithm))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields are a fatal error.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return decodeStrict(data)
}

func decodeStrict(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}

	return &fileCfg, nil
}

// mergeFileConfig copies every field the file sets over the defaults.
func mergeFileConfig(cfg *AppConfig, fc *FileConfig) {
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogService, fc.LogService)

	s := fc.Server
	setString(&cfg.Server.ListenAddr, s.ListenAddr)
	setDuration(&cfg.Server.ReadTimeout, s.ReadTimeout)
	setDuration(&cfg.Server.WriteTimeout, s.WriteTimeout)
	setDuration(&cfg.Server.IdleTimeout, s.IdleTimeout)
	setDuration(&cfg.Server.ShutdownTimeout, s.ShutdownTimeout)
	setInt(&cfg.Server.MaxHeaderBytes, s.MaxHeaderBytes)
	if s.MaxBodyBytes > 0 {
		cfg.Server.MaxBodyBytes = s.MaxBodyBytes
	}

	sk := fc.Skill
	setString(&cfg.Skill.ApplicationID, sk.ApplicationID)
	setString(&cfg.Skill.EndpointPath, sk.EndpointPath)
	setString(&cfg.Skill.BookingIntent, sk.BookingIntent)
	setBool(&cfg.Skill.HelpResetsAttributes, sk.HelpResetsAttributes)

	v := fc.Verification
	setString(&cfg.Verification.CertHost, v.CertHost)
	setString(&cfg.Verification.CertPathPrefix, v.CertPathPrefix)
	setString(&cfg.Verification.RequiredSAN, v.RequiredSAN)
	setDuration(&cfg.Verification.Tolerance, v.Tolerance)
	setString(&cfg.Verification.SignatureAlgorithm, v.SignatureAlgorithm)
	setDuration(&cfg.Verification.FetchTimeout, v.FetchTimeout)
	setDuration(&cfg.Verification.CacheTTL, v.CacheTTL)

	c := fc.Cache
	setString(&cfg.Cache.Backend, c.Backend)
	setString(&cfg.Cache.RedisAddr, c.RedisAddr)
	setString(&cfg.Cache.RedisPassword, c.RedisPassword)
	if c.RedisDB != nil {
		cfg.Cache.RedisDB = *c.RedisDB
	}

	b := fc.Booking
	setString(&cfg.Booking.Endpoint, b.Endpoint)
	setDuration(&cfg.Booking.Timeout, b.Timeout)
	setInt(&cfg.Booking.BreakerThreshold, b.BreakerThreshold)
	setDuration(&cfg.Booking.BreakerReset, b.BreakerReset)

	setBool(&cfg.Metrics.Enabled, fc.Metrics.Enabled)
	setString(&cfg.Metrics.Addr, fc.Metrics.Addr)

	t := fc.Tracing
	setBool(&cfg.Tracing.Enabled, t.Enabled)
	setString(&cfg.Tracing.Exporter, t.Exporter)
	setString(&cfg.Tracing.Endpoint, t.Endpoint)
	setString(&cfg.Tracing.Environment, t.Environment)
	if t.SamplingRate != nil {
		cfg.Tracing.SamplingRate = *t.SamplingRate
	}

	r := fc.RateLimit
	setBool(&cfg.RateLimit.Enabled, r.Enabled)
	setInt(&cfg.RateLimit.PerIPRequests, r.PerIPRequests)
	setDuration(&cfg.RateLimit.Window, r.Window)
	if r.GlobalRPS > 0 {
		cfg.RateLimit.GlobalRPS = r.GlobalRPS
	}
	setInt(&cfg.RateLimit.GlobalBurst, r.GlobalBurst)
}

// mergeEnvConfig applies environment overrides; each key defaults to the
// value already merged from defaults and file.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString("WWSTAY_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("WWSTAY_LOG_SERVICE", cfg.LogService)

	cfg.Server.ListenAddr = l.envString("WWSTAY_LISTEN", cfg.Server.ListenAddr)
	cfg.Server.ReadTimeout = l.envDuration("WWSTAY_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration("WWSTAY_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration("WWSTAY_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration("WWSTAY_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.MaxBodyBytes = l.envInt64("WWSTAY_MAX_BODY_BYTES", cfg.Server.MaxBodyBytes)

	cfg.Skill.ApplicationID = l.envString("WWSTAY_APPLICATION_ID", cfg.Skill.ApplicationID)
	cfg.Skill.EndpointPath = l.envString("WWSTAY_ENDPOINT_PATH", cfg.Skill.EndpointPath)
	cfg.Skill.BookingIntent = l.envString("WWSTAY_BOOKING_INTENT", cfg.Skill.BookingIntent)
	cfg.Skill.HelpResetsAttributes = l.envBool("WWSTAY_HELP_RESETS_ATTRIBUTES", cfg.Skill.HelpResetsAttributes)

	cfg.Verification.CertHost = l.envString("WWSTAY_CERT_HOST", cfg.Verification.CertHost)
	cfg.Verification.CertPathPrefix = l.envString("WWSTAY_CERT_PATH_PREFIX", cfg.Verification.CertPathPrefix)
	cfg.Verification.RequiredSAN = l.envString("WWSTAY_CERT_SAN", cfg.Verification.RequiredSAN)
	cfg.Verification.Tolerance = l.envDuration("WWSTAY_TIMESTAMP_TOLERANCE", cfg.Verification.Tolerance)
	cfg.Verification.SignatureAlgorithm = l.envString("WWSTAY_SIGNATURE_ALGORITHM", cfg.Verification.SignatureAlgorithm)
	cfg.Verification.FetchTimeout = l.envDuration("WWSTAY_CERT_FETCH_TIMEOUT", cfg.Verification.FetchTimeout)
	cfg.Verification.CacheTTL = l.envDuration("WWSTAY_CERT_CACHE_TTL", cfg.Verification.CacheTTL)

	cfg.Cache.Backend = l.envString("WWSTAY_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.RedisAddr = l.envString("WWSTAY_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString("WWSTAY_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt("WWSTAY_REDIS_DB", cfg.Cache.RedisDB)

	cfg.Booking.Endpoint = l.envString("WWSTAY_BOOKING_ENDPOINT", cfg.Booking.Endpoint)
	cfg.Booking.Timeout = l.envDuration("WWSTAY_BOOKING_TIMEOUT", cfg.Booking.Timeout)

	cfg.Metrics.Enabled = l.envBool("WWSTAY_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = l.envString("WWSTAY_METRICS_ADDR", cfg.Metrics.Addr)

	cfg.Tracing.Enabled = l.envBool("WWSTAY_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString("WWSTAY_TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString("WWSTAY_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat("WWSTAY_TRACING_SAMPLING_RATE", cfg.Tracing.SamplingRate)

	cfg.RateLimit.Enabled = l.envBool("WWSTAY_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.PerIPRequests = l.envInt("WWSTAY_RATE_LIMIT_PER_IP", cfg.RateLimit.PerIPRequests)
	cfg.RateLimit.GlobalRPS = l.envFloat("WWSTAY_RATE_LIMIT_GLOBAL_RPS", cfg.RateLimit.GlobalRPS)
	cfg.RateLimit.GlobalBurst = l.envInt("WWSTAY_RATE_LIMIT_GLOBAL_BURST", cfg.RateLimit.GlobalBurst)
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
