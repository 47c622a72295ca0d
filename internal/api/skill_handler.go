// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/wwstay-skill/internal/api/problem"
	"github.com/ManuGH/wwstay-skill/internal/dialog"
	"github.com/ManuGH/wwstay-skill/internal/log"
	"github.com/ManuGH/wwstay-skill/internal/metrics"
	"github.com/ManuGH/wwstay-skill/internal/skill"
	"github.com/ManuGH/wwstay-skill/internal/telemetry"
)

// Problem codes of the skill endpoint.
const (
	CodeRequestRejected    = "REQUEST_REJECTED"
	CodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	CodeUnknownIntent      = "UNKNOWN_INTENT"
	CodeUnknownRequestType = "UNKNOWN_REQUEST_TYPE"
	CodeInternal           = "INTERNAL"
)

func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request) {
	p := s.pipeline.Load()
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, p.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			problem.Write(w, r, http.StatusRequestEntityTooLarge, "skill/request-too-large", "Request too large", CodeRequestTooLarge, "")
			return
		}
		writeRejected(w, r)
		return
	}

	ev, err := skill.ParseEvent(body)
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "api")
		logger.Warn().Err(err).Str(log.FieldEvent, "skill.malformed").Msg("malformed skill request")
		writeRejected(w, r)
		return
	}
	ev.AttachHeaders(r.Header, p.Auth.SignatureHeader())

	if verdict := p.Auth.Verify(ctx, ev); !verdict.Valid() {
		writeRejected(w, r)
		return
	}

	ctx = log.ContextWithSessionID(ctx, ev.SessionID)
	logger := log.WithComponentFromContext(ctx, "dialog")
	trace.SpanFromContext(ctx).SetAttributes(telemetry.SkillAttributes(ev.Type.String(), ev.IntentName(), ev.NewSession)...)

	if ev.NewSession {
		logger.Info().
			Str(log.FieldEvent, "session.started").
			Str(log.FieldSkillRequestID, ev.RequestID).
			Msg("session started")
	}

	decision, err := p.Machine.Handle(ev)
	if err != nil {
		metrics.RecordDialogDecision("error")
		s.writeDialogError(w, r, ev, err)
		return
	}
	metrics.RecordDialogDecision(decision.Kind.String())
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(telemetry.DialogDecisionKey, decision.Kind.String()))
	logger.Info().
		Str(log.FieldEvent, "dialog."+decision.Kind.String()).
		Str(log.FieldRequestType, ev.Type.String()).
		Str(log.FieldIntent, ev.IntentName()).
		Str(log.FieldSkillRequestID, ev.RequestID).
		Msg("dialog decision")

	if decision.Kind == dialog.KindFinalize {
		s.booking.Dispatch(ctx, decision.Attributes)
	}

	if !decision.HasBody() {
		w.WriteHeader(http.StatusOK)
		return
	}

	env, err := dialog.Build(decision)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "dialog.build_failed").Msg("failed to build response")
		problem.Write(w, r, http.StatusInternalServerError, "system/internal", "Internal server error", CodeInternal, "")
		return
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "dialog.encode_failed").Msg("failed to encode response")
	}
}

// writeRejected answers every authentication or parse failure with the same
// problem so callers learn nothing about which check failed.
func writeRejected(w http.ResponseWriter, r *http.Request) {
	problem.Write(w, r, http.StatusBadRequest, "skill/request-rejected", "Request rejected", CodeRequestRejected, "")
}

func (s *Server) writeDialogError(w http.ResponseWriter, r *http.Request, ev *skill.Event, err error) {
	logger := log.WithComponentFromContext(r.Context(), "dialog")
	logger.Warn().
		Err(err).
		Str(log.FieldEvent, "dialog.rejected").
		Str(log.FieldRequestType, ev.RawType).
		Str(log.FieldIntent, ev.IntentName()).
		Msg("unhandled request")

	switch {
	case errors.Is(err, dialog.ErrUnknownIntent):
		problem.Write(w, r, http.StatusBadRequest, "skill/unknown-intent", "Unknown intent", CodeUnknownIntent, "")
	case errors.Is(err, dialog.ErrUnknownRequestType):
		problem.Write(w, r, http.StatusBadRequest, "skill/unknown-request-type", "Unknown request type", CodeUnknownRequestType, "")
	default:
		problem.Write(w, r, http.StatusInternalServerError, "system/internal", "Internal server error", CodeInternal, "")
	}
}
