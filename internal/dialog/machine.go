// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dialog

import (
	"errors"
	"fmt"

	"github.com/ManuGH/wwstay-skill/internal/skill"
)

var (
	// ErrUnknownIntent is returned for intent names the skill does not handle.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrUnknownRequestType is returned for request types the skill does not handle.
	ErrUnknownRequestType = errors.New("unknown request type")
)

// Built-in intent names.
const (
	IntentHelp   = "AMAZON.HelpIntent"
	IntentCancel = "AMAZON.CancelIntent"
	IntentStop   = "AMAZON.StopIntent"
)

// Slot names of the booking intent.
const (
	SlotLocation = "location"
	SlotFromDate = "fromDate"
	SlotToDate   = "toDate"
	SlotDuration = "duration"
)

var bookingSlots = []string{SlotLocation, SlotFromDate, SlotToDate, SlotDuration}

const (
	welcomeTitle  = "Welcome"
	welcomeSpeech = "Welcome to the WWStay. " +
		"WWStay helps you to find accommodation globally. " +
		"Please tell me where would you like to stay by saying, " +
		"I need a stay in new york."
	welcomeReprompt = "Please tell me where would you like to stay by saying, " +
		"I need a stay in new york."

	endSessionTitle  = "Session Ended"
	endSessionSpeech = "Thank you for trying WWStay. Have a nice day! "
)

// Policy holds the tunable parts of the dialog.
type Policy struct {
	// BookingIntent is the intent that collects the stay slots.
	BookingIntent string
	// HelpResetsAttributes clears collected slots when the user asks for help.
	HelpResetsAttributes bool
}

// DefaultPolicy returns the production dialog policy.
func DefaultPolicy() Policy {
	return Policy{
		BookingIntent:        "HotelBook",
		HelpResetsAttributes: true,
	}
}

type intentKind int

const (
	intentUnknown intentKind = iota
	intentBooking
	intentHelp
	intentCancel
)

// Machine decides the next dialog step from one event. It keeps no state
// between calls; all continuity travels in the event's attributes.
type Machine struct {
	policy Policy
}

// NewMachine creates a Machine for p.
func NewMachine(p Policy) *Machine {
	if p.BookingIntent == "" {
		p.BookingIntent = DefaultPolicy().BookingIntent
	}
	return &Machine{policy: p}
}

// Policy returns the policy the machine was built with.
func (m *Machine) Policy() Policy {
	return m.policy
}

// Handle computes the decision for ev. It does not modify ev.
func (m *Machine) Handle(ev *skill.Event) (Decision, error) {
	switch ev.Type {
	case skill.RequestLaunch:
		return welcome(nil), nil
	case skill.RequestIntent:
		return m.handleIntent(ev)
	case skill.RequestSessionEnded:
		return Decision{Kind: KindSilent}, nil
	case skill.RequestUnknown:
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownRequestType, ev.RawType)
	default:
		return Decision{}, fmt.Errorf("%w: %v", ErrUnknownRequestType, ev.Type)
	}
}

func (m *Machine) classify(name string) intentKind {
	switch name {
	case m.policy.BookingIntent:
		return intentBooking
	case IntentHelp:
		return intentHelp
	case IntentCancel, IntentStop:
		return intentCancel
	default:
		return intentUnknown
	}
}

func (m *Machine) handleIntent(ev *skill.Event) (Decision, error) {
	if ev.Intent == nil || ev.Intent.Name == "" {
		return Decision{}, fmt.Errorf("%w: intent request without intent", ErrUnknownIntent)
	}

	switch m.classify(ev.Intent.Name) {
	case intentBooking:
		return collect(*ev.Intent, ev.Attributes), nil
	case intentHelp:
		if m.policy.HelpResetsAttributes {
			return welcome(nil), nil
		}
		return welcome(ev.Attributes), nil
	case intentCancel:
		return Decision{
			Kind:       KindEndSession,
			Title:      endSessionTitle,
			Speech:     endSessionSpeech,
			Attributes: skill.Attributes{},
		}, nil
	default:
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownIntent, ev.Intent.Name)
	}
}

func welcome(carry skill.Attributes) Decision {
	attrs := skill.Attributes{}
	if carry != nil {
		attrs = carry.Clone()
	}
	return Decision{
		Kind:       KindWelcome,
		Title:      welcomeTitle,
		Speech:     welcomeSpeech,
		Reprompt:   welcomeReprompt,
		Attributes: attrs,
	}
}

// collect writes this turn's booking slots over the inbound attributes,
// nulling unfilled ones, and decides between finalizing and delegating slot
// elicitation back to the platform. Inbound keys that are not booking slots
// are kept.
func collect(intent skill.Intent, inbound skill.Attributes) Decision {
	attrs := inbound.Clone()
	for _, name := range bookingSlots {
		if v, ok := intent.SlotValue(name); ok {
			attrs[name] = skill.String(v)
			continue
		}
		attrs[name] = nil
	}

	location, hasLocation := intent.SlotValue(SlotLocation)
	fromDate, hasFrom := intent.SlotValue(SlotFromDate)
	toDate, hasTo := intent.SlotValue(SlotToDate)
	duration, hasDuration := intent.SlotValue(SlotDuration)

	if !hasLocation || !hasFrom || (!hasDuration && !hasTo) {
		return Decision{Kind: KindDelegate, Attributes: attrs}
	}

	stay := " to " + toDate
	if hasDuration {
		stay = " for " + duration + " nights"
	}

	return Decision{
		Kind:  KindFinalize,
		Title: intent.Name,
		Speech: "We have received your request to stay at " + location +
			" from " + fromDate + stay + ". We will get back with quotations. Bye.",
		Attributes: attrs,
	}
}
