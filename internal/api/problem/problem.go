// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package problem writes RFC 7807 problem responses.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/wwstay-skill/internal/log"
)

const (
	// HeaderRequestID carries the request correlation id.
	HeaderRequestID = "X-Request-ID"
	// JSONKeyRequestID is the problem member carrying the request id.
	JSONKeyRequestID = "requestId"
)

// Write writes an RFC 7807 problem details response.
//
//   - type: canonical machine identifier (e.g. "skill/request-rejected").
//   - title: short human-readable label.
//   - code: stable machine-readable short code (e.g. "UNKNOWN_INTENT").
//   - detail: optional explanation; never carries verification internals.
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string) {
	reqID := ""
	instance := ""
	if r != nil {
		reqID = log.RequestIDFromContext(r.Context())
		instance = r.URL.EscapedPath()
	}
	if reqID == "" {
		reqID = w.Header().Get(HeaderRequestID)
	}

	res := map[string]any{
		"type":           problemType,
		"title":          title,
		"status":         status,
		"code":           code,
		JSONKeyRequestID: reqID,
	}
	if detail != "" {
		res["detail"] = detail
	}
	if instance != "" {
		res["instance"] = instance
	}

	if reqID != "" {
		w.Header().Set(HeaderRequestID, reqID)
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.L().Error().
			Err(err).
			Str("type", problemType).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}
