// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dialog

import "github.com/ManuGH/wwstay-skill/internal/skill"

// Kind tags the variant of a Decision.
type Kind int

const (
	KindInvalid Kind = iota
	KindWelcome
	KindDelegate
	KindFinalize
	KindEndSession
	// KindSilent answers platform notifications that take no response body.
	KindSilent
)

func (k Kind) String() string {
	switch k {
	case KindWelcome:
		return "welcome"
	case KindDelegate:
		return "delegate"
	case KindFinalize:
		return "finalize"
	case KindEndSession:
		return "end_session"
	case KindSilent:
		return "silent"
	default:
		return "invalid"
	}
}

// Decision is the outcome of one dialog turn.
type Decision struct {
	Kind Kind
	// Title is the card title suffix; the card is titled "WWStay - <Title>".
	Title    string
	Speech   string
	Reprompt string
	// Attributes is the complete bag echoed to the platform for the next turn.
	Attributes skill.Attributes
}

// HasBody reports whether the decision produces a response envelope.
func (d Decision) HasBody() bool {
	return d.Kind != KindSilent
}
