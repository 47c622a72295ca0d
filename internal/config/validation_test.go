// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/wwstay-skill/internal/validate"
)

func validConfig() AppConfig {
	cfg := Defaults()
	cfg.Skill.ApplicationID = testAppID
	return cfg
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr validate.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
	out := make([]string, 0, len(verr.Errors()))
	for _, e := range verr.Errors() {
		out = append(out, e.Field)
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"relative endpoint path", func(c *AppConfig) { c.Skill.EndpointPath = "alexa" }, "Skill.EndpointPath"},
		{"zero tolerance", func(c *AppConfig) { c.Verification.Tolerance = 0 }, "Verification.Tolerance"},
		{"unknown algorithm", func(c *AppConfig) { c.Verification.SignatureAlgorithm = "md5" }, "Verification.SignatureAlgorithm"},
		{"unknown cache backend", func(c *AppConfig) { c.Cache.Backend = "disk" }, "Cache.Backend"},
		{"redis without addr", func(c *AppConfig) { c.Cache.Backend = "redis" }, "Cache.RedisAddr"},
		{"booking endpoint scheme", func(c *AppConfig) { c.Booking.Endpoint = "ftp://example.com/book" }, "Booking.Endpoint"},
		{"tracing sampling out of range", func(c *AppConfig) {
			c.Tracing.Enabled = true
			c.Tracing.SamplingRate = 1.5
		}, "Tracing.SamplingRate"},
		{"empty cert host", func(c *AppConfig) { c.Verification.CertHost = "" }, "Verification.CertHost"},
		{"cert path prefix without trailing slash", func(c *AppConfig) { c.Verification.CertPathPrefix = "/echo.api" }, "Verification.CertPathPrefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidate_NoCacheSkipsTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "none"
	cfg.Verification.CacheTTL = 0
	assert.NoError(t, Validate(cfg))
}
