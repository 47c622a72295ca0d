// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package skill

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Header names carrying authenticity material.
const (
	HeaderCertChainURL = "SignatureCertChainUrl"
	HeaderSignature    = "Signature"
	HeaderSignature256 = "Signature-256"
)

// ErrMalformedEvent is returned when the request body is not a decodable event.
var ErrMalformedEvent = errors.New("malformed skill event")

// RequestType enumerates the request kinds the skill understands.
type RequestType int

const (
	RequestUnknown RequestType = iota
	RequestLaunch
	RequestIntent
	RequestSessionEnded
)

var requestTypeNames = map[string]RequestType{
	"LaunchRequest":       RequestLaunch,
	"IntentRequest":       RequestIntent,
	"SessionEndedRequest": RequestSessionEnded,
}

// ParseRequestType maps a wire request type. Unrecognized names map to RequestUnknown.
func ParseRequestType(s string) RequestType {
	return requestTypeNames[s]
}

func (t RequestType) String() string {
	switch t {
	case RequestLaunch:
		return "LaunchRequest"
	case RequestIntent:
		return "IntentRequest"
	case RequestSessionEnded:
		return "SessionEndedRequest"
	default:
		return "unknown"
	}
}

// Slot is a named intent parameter. Value is nil when the slot is declared but unfilled.
type Slot struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

// Intent is a named user goal with its slots.
type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

// SlotValue returns the value of the named slot and whether it is filled.
// An empty string counts as unfilled.
func (i Intent) SlotValue(name string) (string, bool) {
	s, ok := i.Slots[name]
	if !ok || s.Value == nil || *s.Value == "" {
		return "", false
	}
	return *s.Value, true
}

// Attributes is the opaque session bag echoed by the platform between turns.
// A nil value encodes JSON null.
type Attributes map[string]*string

// Clone returns a copy that shares no pointers with a.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		if v == nil {
			out[k] = nil
			continue
		}
		s := *v
		out[k] = &s
	}
	return out
}

// Value returns the non-null value stored under key.
func (a Attributes) Value(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == nil || *v == "" {
		return "", false
	}
	return *v, true
}

// String returns a pointer to s for use as an attribute or slot value.
func String(s string) *string { return &s }

// Event is one inbound platform request. It is immutable after ParseEvent
// and AttachHeaders, and lives only for the duration of one request.
type Event struct {
	Version       string
	SessionID     string
	NewSession    bool
	ApplicationID string
	Type          RequestType
	RawType       string
	RequestID     string
	Timestamp     string
	Locale        string
	Intent        *Intent
	Attributes    Attributes
	// Reason is set on session-ended requests.
	Reason string

	RawBody      []byte
	Signature    string
	CertChainURL string
}

type wireApplication struct {
	ApplicationID string `json:"applicationId"`
}

type wireEvent struct {
	Version string `json:"version"`
	Session *struct {
		New         bool            `json:"new"`
		SessionID   string          `json:"sessionId"`
		Application wireApplication `json:"application"`
		Attributes  Attributes      `json:"attributes"`
	} `json:"session"`
	Context *struct {
		System struct {
			Application wireApplication `json:"application"`
		} `json:"System"`
	} `json:"context"`
	Request struct {
		Type      string  `json:"type"`
		RequestID string  `json:"requestId"`
		Timestamp string  `json:"timestamp"`
		Locale    string  `json:"locale"`
		Intent    *Intent `json:"intent"`
		Reason    string  `json:"reason"`
	} `json:"request"`
}

// ParseEvent decodes a raw request body. The bytes are retained verbatim for
// signature verification. The application id comes from the session and
// falls back to context.System.application when no session is present.
func ParseEvent(raw []byte) (*Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	ev := &Event{
		Version:   w.Version,
		Type:      ParseRequestType(w.Request.Type),
		RawType:   w.Request.Type,
		RequestID: w.Request.RequestID,
		Timestamp: w.Request.Timestamp,
		Locale:    w.Request.Locale,
		Intent:    w.Request.Intent,
		Reason:    w.Request.Reason,
		RawBody:   append([]byte(nil), raw...),
	}

	if w.Session != nil {
		ev.SessionID = w.Session.SessionID
		ev.NewSession = w.Session.New
		ev.ApplicationID = w.Session.Application.ApplicationID
		ev.Attributes = w.Session.Attributes
	}
	if ev.ApplicationID == "" && w.Context != nil {
		ev.ApplicationID = w.Context.System.Application.ApplicationID
	}
	if ev.Attributes == nil {
		ev.Attributes = Attributes{}
	}

	return ev, nil
}

// AttachHeaders copies the certificate URL and the signature read from
// signatureHeader into the event.
func (e *Event) AttachHeaders(h http.Header, signatureHeader string) {
	e.CertChainURL = strings.TrimSpace(h.Get(HeaderCertChainURL))
	e.Signature = strings.TrimSpace(h.Get(signatureHeader))
}

// IntentName returns the intent name or "" for non-intent requests.
func (e *Event) IntentName() string {
	if e.Intent == nil {
		return ""
	}
	return e.Intent.Name
}
