// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dialogDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wwstay_dialog_decisions_total",
		Help: "Dialog decisions by kind",
	}, []string{"decision"}) // decision=welcome|delegate|finalize|end_session|silent|error

	bookingSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wwstay_booking_submissions_total",
		Help: "Booking hand-offs to the downstream endpoint by result",
	}, []string{"result"}) // result=success|failure|circuit_open|skipped
)

// RecordDialogDecision counts one dialog decision.
func RecordDialogDecision(decision string) {
	dialogDecisions.WithLabelValues(decision).Inc()
}

// RecordBookingSubmission counts one booking hand-off.
func RecordBookingSubmission(result string) {
	bookingSubmissions.WithLabelValues(result).Inc()
}
