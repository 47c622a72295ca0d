// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/wwstay-skill/internal/api/problem"
	"github.com/ManuGH/wwstay-skill/internal/log"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestRecoverer(t *testing.T) {
	h := RequestID(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/alexa", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL", body["code"])
	assert.NotEmpty(t, body[problem.JSONKeyRequestID])
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = log.RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(problem.HeaderRequestID, "upstream-42")
	h.ServeHTTP(w, r)
	assert.Equal(t, "upstream-42", seen)
	assert.Equal(t, "upstream-42", w.Header().Get(problem.HeaderRequestID))

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(problem.HeaderRequestID, "bad id\nwith newline")
	h.ServeHTTP(w, r)
	assert.NotEqual(t, "bad id\nwith newline", seen)
	assert.Len(t, seen, 36)
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders("")(http.HandlerFunc(ok))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")
	h.ServeHTTP(w, r)

	assert.Equal(t, DefaultCSP, w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 2, WindowSize: time.Minute})(http.HandlerFunc(ok))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/alexa", nil)
		r.RemoteAddr = "192.0.2.10:5555"
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/alexa", nil)
	r.RemoteAddr = "192.0.2.11:5555"
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code, "other clients keep their own budget")
}

func TestGlobalLimit(t *testing.T) {
	h := GlobalLimit(0.001, 2)(http.HandlerFunc(ok))

	var limited int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/alexa", nil))
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 3, limited)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Post("/alexa", ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/alexa", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(httpRequestDuration, "wwstay_http_request_duration_seconds"), 1)
	assert.Zero(t, testutil.ToFloat64(httpRequestsInFlight))

	req := httptest.NewRequest(http.MethodGet, "/alexa", nil)
	assert.Equal(t, "unmatched", routePattern(req))
}
