// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppID = "amzn1.ask.skill.test-0001"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithEnvApplicationID(t *testing.T) {
	t.Setenv("WWSTAY_APPLICATION_ID", testAppID)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, testAppID, cfg.Skill.ApplicationID)
	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, DefaultEndpointPath, cfg.Skill.EndpointPath)
	assert.Equal(t, DefaultTolerance, cfg.Verification.Tolerance)
	assert.Equal(t, "sha1", cfg.Verification.SignatureAlgorithm)
	assert.True(t, cfg.Skill.HelpResetsAttributes)
	assert.Equal(t, int64(256<<10), cfg.Server.MaxBodyBytes)
}

func TestLoad_MissingApplicationIDFails(t *testing.T) {
	_, err := NewLoader("", "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Skill.ApplicationID")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
logLevel: debug
skill:
  applicationId: `+testAppID+`
  helpResetsAttributes: false
verification:
  tolerance: 90s
  signatureAlgorithm: SHA256
cache:
  backend: redis
  redisAddr: localhost:6379
  redisDb: 0
`)

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Skill.HelpResetsAttributes)
	assert.Equal(t, 90*time.Second, cfg.Verification.Tolerance)
	assert.Equal(t, "sha256", cfg.Verification.SignatureAlgorithm)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
skill:
  applicationId: from-file
verification:
  tolerance: 90s
`)
	t.Setenv("WWSTAY_APPLICATION_ID", testAppID)
	t.Setenv("WWSTAY_TIMESTAMP_TOLERANCE", "not-a-duration")

	loader := NewLoader(path, "")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, testAppID, cfg.Skill.ApplicationID)
	// Unparsable env values fall back to the file value.
	assert.Equal(t, 90*time.Second, cfg.Verification.Tolerance)
	assert.Contains(t, loader.ConsumedEnvKeys, "WWSTAY_APPLICATION_ID")
}

func TestLoad_UnknownFieldIsRejected(t *testing.T) {
	path := writeConfig(t, `
skill:
  applicationId: x
  unknownField: true
`)

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
}

func TestLoad_MultipleDocumentsRejected(t *testing.T) {
	path := writeConfig(t, "skill:\n  applicationId: a\n---\nskill:\n  applicationId: b\n")

	_, err := NewLoader(path, "").Load()
	require.ErrorIs(t, err, ErrMultipleDocuments)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "only YAML supported"))
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("WWSTAY_APPLICATION_ID", testAppID)

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultCertHost, cfg.Verification.CertHost)
}
