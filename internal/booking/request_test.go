// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/wwstay-skill/internal/skill"
)

func TestRequestFromAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs skill.Attributes
		want  Request
	}{
		{
			name:  "explicit check-out",
			attrs: skill.Attributes{"location": skill.String("paris"), "fromDate": skill.String("2024-05-01"), "toDate": skill.String("2024-05-04"), "duration": nil},
			want:  Request{WorkAddress: "paris", CheckIn: "2024-05-01", CheckOut: "2024-05-04"},
		},
		{
			name:  "nights",
			attrs: skill.Attributes{"location": skill.String("paris"), "fromDate": skill.String("2024-05-30"), "duration": skill.String("3")},
			want:  Request{WorkAddress: "paris", CheckIn: "2024-05-30", CheckOut: "2024-06-02"},
		},
		{
			name:  "ISO period",
			attrs: skill.Attributes{"location": skill.String("oslo"), "fromDate": skill.String("2024-12-30"), "duration": skill.String("P2D")},
			want:  Request{WorkAddress: "oslo", CheckIn: "2024-12-30", CheckOut: "2025-01-01"},
		},
		{
			name:  "toDate wins over duration",
			attrs: skill.Attributes{"location": skill.String("rome"), "fromDate": skill.String("2024-05-01"), "toDate": skill.String("2024-05-02"), "duration": skill.String("9")},
			want:  Request{WorkAddress: "rome", CheckIn: "2024-05-01", CheckOut: "2024-05-02"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequestFromAttributes(tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestFromAttributes_Incomplete(t *testing.T) {
	tests := map[string]skill.Attributes{
		"empty":            {},
		"no location":      {"fromDate": skill.String("2024-05-01"), "toDate": skill.String("2024-05-02")},
		"no dates":         {"location": skill.String("paris")},
		"no end":           {"location": skill.String("paris"), "fromDate": skill.String("2024-05-01")},
		"zero nights":      {"location": skill.String("paris"), "fromDate": skill.String("2024-05-01"), "duration": skill.String("0")},
		"words for nights": {"location": skill.String("paris"), "fromDate": skill.String("2024-05-01"), "duration": skill.String("three")},
		"unparsable date":  {"location": skill.String("paris"), "fromDate": skill.String("next week"), "duration": skill.String("2")},
	}
	for name, attrs := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := RequestFromAttributes(attrs)
			assert.ErrorIs(t, err, ErrIncompleteRequest)
		})
	}
}

func TestRequestForm(t *testing.T) {
	r := Request{WorkAddress: "new york", CheckIn: "2024-05-01", CheckOut: "2024-05-03"}
	assert.Equal(t, "check_in=2024-05-01&check_out=2024-05-03&work_address=new+york", r.Form().Encode())
}
