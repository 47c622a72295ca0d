// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dialog

import (
	"errors"
	"fmt"

	"github.com/ManuGH/wwstay-skill/internal/skill"
)

// CardTitlePrefix precedes every card title.
const CardTitlePrefix = "WWStay - "

// ErrNoResponseBody is returned by Build for decisions that answer without a body.
var ErrNoResponseBody = errors.New("decision has no response body")

// Build maps a decision to the response envelope. It has no side effects.
func Build(d Decision) (skill.Envelope, error) {
	attrs := d.Attributes
	if attrs == nil {
		attrs = skill.Attributes{}
	}
	env := skill.Envelope{
		Version:           skill.EnvelopeVersion,
		SessionAttributes: attrs,
	}

	switch d.Kind {
	case KindDelegate:
		env.Response = skill.Response{
			ShouldEndSession: false,
			Directives:       []skill.Directive{{Type: skill.DirectiveDelegate}},
		}
	case KindWelcome:
		env.Response = speechlet(d, false)
	case KindFinalize, KindEndSession:
		env.Response = speechlet(d, true)
	case KindSilent:
		return skill.Envelope{}, ErrNoResponseBody
	default:
		return skill.Envelope{}, fmt.Errorf("unrecognized decision kind %d", int(d.Kind))
	}
	return env, nil
}

func speechlet(d Decision, end bool) skill.Response {
	r := skill.Response{
		ShouldEndSession: end,
		OutputSpeech:     skill.PlainText(d.Speech),
		Card: &skill.Card{
			Type:    skill.CardSimple,
			Title:   CardTitlePrefix + d.Title,
			Content: d.Speech,
		},
	}
	if d.Reprompt != "" {
		r.Reprompt = &skill.Reprompt{OutputSpeech: *skill.PlainText(d.Reprompt)}
	}
	return r
}
