// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package booking forwards completed stay requests to the booking backend.
package booking

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/wwstay-skill/internal/dialog"
	"github.com/ManuGH/wwstay-skill/internal/skill"
)

// DateLayout is the calendar date format used by the voice platform and the backend.
const DateLayout = "2006-01-02"

// ErrIncompleteRequest is returned when the attributes cannot form a stay request.
var ErrIncompleteRequest = errors.New("incomplete booking request")

// Request is one stay request as the backend expects it.
type Request struct {
	WorkAddress string
	CheckIn     string
	CheckOut    string
}

// Form encodes the request as the backend's form body.
func (r Request) Form() url.Values {
	return url.Values{
		"work_address": {r.WorkAddress},
		"check_in":     {r.CheckIn},
		"check_out":    {r.CheckOut},
	}
}

// RequestFromAttributes builds a Request from the attributes of a finalized
// dialog. The check-out date is the toDate slot when present, otherwise the
// check-in date plus the requested number of nights.
func RequestFromAttributes(attrs skill.Attributes) (Request, error) {
	location, ok := attrs.Value(dialog.SlotLocation)
	if !ok {
		return Request{}, fmt.Errorf("%w: missing %s", ErrIncompleteRequest, dialog.SlotLocation)
	}
	from, ok := attrs.Value(dialog.SlotFromDate)
	if !ok {
		return Request{}, fmt.Errorf("%w: missing %s", ErrIncompleteRequest, dialog.SlotFromDate)
	}

	req := Request{WorkAddress: location, CheckIn: from}
	if to, ok := attrs.Value(dialog.SlotToDate); ok {
		req.CheckOut = to
		return req, nil
	}

	raw, ok := attrs.Value(dialog.SlotDuration)
	if !ok {
		return Request{}, fmt.Errorf("%w: neither %s nor %s", ErrIncompleteRequest, dialog.SlotToDate, dialog.SlotDuration)
	}
	nights, err := parseNights(raw)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrIncompleteRequest, err)
	}
	checkIn, err := time.Parse(DateLayout, from)
	if err != nil {
		return Request{}, fmt.Errorf("%w: check-in %q: %v", ErrIncompleteRequest, from, err)
	}
	req.CheckOut = checkIn.AddDate(0, 0, nights).Format(DateLayout)
	return req, nil
}

// parseNights accepts a plain count ("3") or an ISO-8601 day period ("P3D").
func parseNights(s string) (int, error) {
	s = strings.TrimSpace(s)
	if p := strings.ToUpper(s); strings.HasPrefix(p, "P") && strings.HasSuffix(p, "D") {
		s = p[1 : len(p)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid number of nights %q", s)
	}
	return n, nil
}
