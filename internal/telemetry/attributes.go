// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys.
const (
	HTTPMethodKey     = "http.method"
	HTTPRouteKey      = "http.route"
	HTTPStatusCodeKey = "http.status_code"

	SkillRequestTypeKey = "skill.request_type"
	SkillIntentKey      = "skill.intent"
	SkillNewSessionKey  = "skill.new_session"

	AuthValidKey  = "auth.valid"
	AuthReasonKey = "auth.reason"

	DialogDecisionKey = "dialog.decision"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// SkillAttributes describes an inbound skill event.
func SkillAttributes(requestType, intent string, newSession bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(SkillRequestTypeKey, requestType),
		attribute.Bool(SkillNewSessionKey, newSession),
	}
	if intent != "" {
		attrs = append(attrs, attribute.String(SkillIntentKey, intent))
	}
	return attrs
}
