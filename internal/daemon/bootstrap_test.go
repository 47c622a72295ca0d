// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"bytes"
	"context"
	"crypto"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/wwstay-skill/internal/config"
	"github.com/ManuGH/wwstay-skill/internal/health"
	"github.com/ManuGH/wwstay-skill/internal/requestauth/authtest"
	"github.com/ManuGH/wwstay-skill/internal/skill"
)

const testAppID = "amzn1.ask.skill.daemon-test"

func buildConfig() config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.Skill.ApplicationID = testAppID
	cfg.Server.ListenAddr = "127.0.0.1:0"
	cfg.Metrics.Enabled = false
	cfg.RateLimit.Enabled = false
	return cfg
}

func launchBody() []byte {
	return []byte(fmt.Sprintf(`{"version":"1.0","session":{"new":true,"sessionId":"s","application":{"applicationId":%q},"attributes":{}},"request":{"type":"LaunchRequest","requestId":"r","timestamp":%q}}`,
		testAppID, authtest.Timestamp(time.Now())))
}

func TestBuild_ServesSignedRequestEndToEnd(t *testing.T) {
	signer := authtest.NewSigner(t, authtest.CertOptions{})
	tr := authtest.NewTransport(authtest.CertURL, signer.PEM)

	rt, err := Build(context.Background(), buildConfig(), BuildOptions{Logger: testLogger(), CertTransport: tr})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Manager.Start(ctx) }()
	addr := waitForAddr(t, rt.Manager)

	body := launchBody()
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/alexa", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(skill.HeaderCertChainURL, authtest.CertURL)
	req.Header.Set(skill.HeaderSignature, signer.Sign(t, body, crypto.SHA1))

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	var env skill.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Response.Card)
	assert.Equal(t, "WWStay - Welcome", env.Response.Card.Title)

	cancel()
	require.NoError(t, <-done)
}

func TestBuild_RedisCacheRegistersReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := buildConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = mr.Addr()
	cfg.Booking.Endpoint = "https://booking.example/requests"

	rt, err := Build(context.Background(), cfg, BuildOptions{Logger: testLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Manager.Start(ctx) }()
	waitForAddr(t, rt.Manager)

	ready := rt.Health.Ready(context.Background())
	assert.True(t, ready.Ready)
	assert.Contains(t, ready.Checks, "cert_cache")
	assert.Contains(t, ready.Checks, "booking")

	mr.Close()
	ready = rt.Health.Ready(context.Background())
	assert.True(t, ready.Ready, "cache outage only degrades")
	assert.Equal(t, health.StatusDegraded, ready.Status)

	cancel()
	require.NoError(t, <-done)
}

func TestBuild_Failures(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := buildConfig()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = addr
	_, err := Build(context.Background(), cfg, BuildOptions{Logger: testLogger()})
	assert.Error(t, err)

	cfg = buildConfig()
	cfg.Cache.Backend = "memcached"
	_, err = Build(context.Background(), cfg, BuildOptions{Logger: testLogger()})
	assert.Error(t, err)

	cfg = buildConfig()
	cfg.Skill.ApplicationID = ""
	_, err = Build(context.Background(), cfg, BuildOptions{Logger: testLogger()})
	assert.Error(t, err)
}
