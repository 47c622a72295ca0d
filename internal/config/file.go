// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// LoadFileConfig parses a config file strictly without applying defaults,
// env overrides or validation.
func LoadFileConfig(path string) (*FileConfig, error) {
	return NewLoader(path, "").loadFile(path)
}

// ToFileConfig maps an effective configuration back to its on-disk form.
// Secrets are written as-is; callers printing the result should use Redacted.
func ToFileConfig(cfg AppConfig) FileConfig {
	return FileConfig{
		LogLevel:   cfg.LogLevel,
		LogService: cfg.LogService,
		Server: FileServerConfig{
			ListenAddr:      cfg.Server.ListenAddr,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			IdleTimeout:     cfg.Server.IdleTimeout,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			MaxHeaderBytes:  cfg.Server.MaxHeaderBytes,
			MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		},
		Skill: FileSkillConfig{
			ApplicationID:        cfg.Skill.ApplicationID,
			EndpointPath:         cfg.Skill.EndpointPath,
			BookingIntent:        cfg.Skill.BookingIntent,
			HelpResetsAttributes: boolPtr(cfg.Skill.HelpResetsAttributes),
		},
		Verification: FileVerificationConfig{
			CertHost:           cfg.Verification.CertHost,
			CertPathPrefix:     cfg.Verification.CertPathPrefix,
			RequiredSAN:        cfg.Verification.RequiredSAN,
			Tolerance:          cfg.Verification.Tolerance,
			SignatureAlgorithm: cfg.Verification.SignatureAlgorithm,
			FetchTimeout:       cfg.Verification.FetchTimeout,
			CacheTTL:           cfg.Verification.CacheTTL,
		},
		Cache: FileCacheConfig{
			Backend:       cfg.Cache.Backend,
			RedisAddr:     cfg.Cache.RedisAddr,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       intPtr(cfg.Cache.RedisDB),
		},
		Booking: FileBookingConfig{
			Endpoint:         cfg.Booking.Endpoint,
			Timeout:          cfg.Booking.Timeout,
			BreakerThreshold: cfg.Booking.BreakerThreshold,
			BreakerReset:     cfg.Booking.BreakerReset,
		},
		Metrics: FileMetricsConfig{
			Enabled: boolPtr(cfg.Metrics.Enabled),
			Addr:    cfg.Metrics.Addr,
		},
		Tracing: FileTracingConfig{
			Enabled:      boolPtr(cfg.Tracing.Enabled),
			Exporter:     cfg.Tracing.Exporter,
			Endpoint:     cfg.Tracing.Endpoint,
			Environment:  cfg.Tracing.Environment,
			SamplingRate: float64Ptr(cfg.Tracing.SamplingRate),
		},
		RateLimit: FileRateLimitConfig{
			Enabled:       boolPtr(cfg.RateLimit.Enabled),
			PerIPRequests: cfg.RateLimit.PerIPRequests,
			Window:        cfg.RateLimit.Window,
			GlobalRPS:     cfg.RateLimit.GlobalRPS,
			GlobalBurst:   cfg.RateLimit.GlobalBurst,
		},
	}
}

// Redacted returns a copy of fc with secrets masked.
func (fc FileConfig) Redacted() FileConfig {
	if fc.Cache.RedisPassword != "" {
		fc.Cache.RedisPassword = "***"
	}
	return fc
}

// Marshal renders fc as YAML.
func (fc FileConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(fc)
}

// WriteFile atomically writes fc to path. The file is fsynced before it
// replaces any previous version.
func WriteFile(path string, fc FileConfig) error {
	data, err := fc.Marshal()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write config data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}
	return nil
}

func boolPtr(v bool) *bool          { return &v }
func intPtr(v int) *int             { return &v }
func float64Ptr(v float64) *float64 { return &v }
