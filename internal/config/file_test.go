// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile_LoadsBackIdentically(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = "127.0.0.1:6379"
	cfg.Booking.Endpoint = "https://booking.example.com/stay"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteFile(path, ToFileConfig(cfg)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRedacted_MasksRedisPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.RedisPassword = "hunter2"

	fc := ToFileConfig(cfg).Redacted()
	out, err := fc.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
	assert.Equal(t, "hunter2", cfg.Cache.RedisPassword)
}
