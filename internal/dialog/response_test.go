// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dialog

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/wwstay-skill/internal/skill"
)

func TestBuild_Welcome(t *testing.T) {
	env, err := Build(welcome(nil))
	require.NoError(t, err)

	want := skill.Envelope{
		Version:           "1.0",
		SessionAttributes: skill.Attributes{},
		Response: skill.Response{
			ShouldEndSession: false,
			OutputSpeech:     &skill.OutputSpeech{Type: "PlainText", Text: welcomeSpeech},
			Reprompt:         &skill.Reprompt{OutputSpeech: skill.OutputSpeech{Type: "PlainText", Text: welcomeReprompt}},
			Card:             &skill.Card{Type: "Simple", Title: "WWStay - Welcome", Content: welcomeSpeech},
		},
	}
	if diff := cmp.Diff(want, env); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DelegateJSON(t *testing.T) {
	env, err := Build(Decision{
		Kind:       KindDelegate,
		Attributes: skill.Attributes{"location": skill.String("new york"), "fromDate": nil},
	})
	require.NoError(t, err)

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "version": "1.0",
	  "sessionAttributes": {"location": "new york", "fromDate": null},
	  "response": {
	    "shouldEndSession": false,
	    "directives": [{"type": "Dialog.Delegate"}]
	  }
	}`, string(out))
}

func TestBuild_EndSessionJSON(t *testing.T) {
	env, err := Build(Decision{Kind: KindEndSession, Title: endSessionTitle, Speech: endSessionSpeech})
	require.NoError(t, err)

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "version": "1.0",
	  "sessionAttributes": {},
	  "response": {
	    "shouldEndSession": true,
	    "outputSpeech": {"type": "PlainText", "text": "Thank you for trying WWStay. Have a nice day! "},
	    "card": {"type": "Simple", "title": "WWStay - Session Ended", "content": "Thank you for trying WWStay. Have a nice day! "}
	  }
	}`, string(out))
}

func TestBuild_FinalizeEndsSession(t *testing.T) {
	env, err := Build(Decision{Kind: KindFinalize, Title: "HotelBook", Speech: "done"})
	require.NoError(t, err)
	assert.True(t, env.Response.ShouldEndSession)
	assert.Nil(t, env.Response.Reprompt)
	assert.Nil(t, env.Response.Directives)
	assert.Equal(t, "WWStay - HotelBook", env.Response.Card.Title)
}

func TestBuild_RejectsBodilessAndInvalid(t *testing.T) {
	_, err := Build(Decision{Kind: KindSilent})
	assert.ErrorIs(t, err, ErrNoResponseBody)

	_, err = Build(Decision{})
	assert.Error(t, err)
}
