// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package requestauth

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTolerance bounds the accepted clock skew of request timestamps.
const DefaultTolerance = 150 * time.Second

// Timestamps without a zone designator are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// FreshnessChecker rejects requests whose declared timestamp is too far from now.
type FreshnessChecker struct {
	tolerance time.Duration
	clock     Clock
}

// NewFreshnessChecker creates a checker. A non-positive tolerance uses DefaultTolerance.
func NewFreshnessChecker(tolerance time.Duration, clock Clock) *FreshnessChecker {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &FreshnessChecker{tolerance: tolerance, clock: clock}
}

// Check passes when |now - timestamp| is at most the tolerance, in either
// direction. Unparsable timestamps fail.
func (f *FreshnessChecker) Check(timestamp string) error {
	ts, err := parseTimestamp(timestamp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStaleOrFutureRequest, err)
	}

	skew := f.clock.Now().UTC().Sub(ts)
	if skew < 0 {
		skew = -skew
	}
	if skew > f.tolerance {
		return fmt.Errorf("%w: skew %s exceeds %s", ErrStaleOrFutureRequest, skew, f.tolerance)
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}
