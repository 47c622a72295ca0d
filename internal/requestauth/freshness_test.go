// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuGH/wwstay-skill/internal/requestauth/authtest"
)

func TestFreshnessChecker_Boundaries(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := NewFreshnessChecker(150*time.Second, FixedClock(now))

	tests := []struct {
		name   string
		offset time.Duration
		ok     bool
	}{
		{"now", 0, true},
		{"150s old", -150 * time.Second, true},
		{"151s old", -151 * time.Second, false},
		{"150s ahead", 150 * time.Second, true},
		{"151s ahead", 151 * time.Second, false},
		{"an hour old", -time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Check(authtest.Timestamp(now.Add(tt.offset)))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrStaleOrFutureRequest)
			}
		})
	}
}

func TestFreshnessChecker_Formats(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := NewFreshnessChecker(0, FixedClock(now))

	assert.NoError(t, f.Check("2024-05-01T12:01:00.123Z"))
	assert.NoError(t, f.Check("2024-05-01T14:01:00+02:00"))
	assert.NoError(t, f.Check("2024-05-01T11:59:00"), "zone-less timestamps are UTC")

	assert.ErrorIs(t, f.Check(""), ErrStaleOrFutureRequest)
	assert.ErrorIs(t, f.Check("yesterday"), ErrStaleOrFutureRequest)
	assert.ErrorIs(t, f.Check("2024-05-01T14:01:00Z"), ErrStaleOrFutureRequest)
}
