// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package skill

// EnvelopeVersion is the response format version expected by the platform.
const EnvelopeVersion = "1.0"

// Envelope is the response document returned to the platform.
type Envelope struct {
	Version           string     `json:"version"`
	SessionAttributes Attributes `json:"sessionAttributes"`
	Response          Response   `json:"response"`
}

// Response carries the speech, card and directives of one turn.
type Response struct {
	ShouldEndSession bool          `json:"shouldEndSession"`
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Directive struct {
	Type string `json:"type"`
}

const (
	SpeechPlainText   = "PlainText"
	CardSimple        = "Simple"
	DirectiveDelegate = "Dialog.Delegate"
)

// PlainText builds a plain text speech block.
func PlainText(text string) *OutputSpeech {
	return &OutputSpeech{Type: SpeechPlainText, Text: text}
}
