// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics registers the Prometheus collectors of the skill backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wwstay_auth_verdicts_total",
		Help: "Request authenticity verdicts by result and rejection reason",
	}, []string{"result", "reason"}) // result=valid|invalid

	certFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wwstay_cert_fetch_duration_seconds",
		Help:    "Duration of signing certificate downloads",
		Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"outcome"}) // outcome=success|fetch_error|parse_error

	certCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wwstay_cert_cache_lookups_total",
		Help: "Certificate cache lookups by result",
	}, []string{"result"}) // result=hit|miss|error
)

// RecordAuthVerdict counts one authentication verdict. Valid verdicts use reason "none".
func RecordAuthVerdict(valid bool, reason string) {
	result := "invalid"
	if valid {
		result = "valid"
		reason = "none"
	}
	authVerdicts.WithLabelValues(result, reason).Inc()
}

// ObserveCertFetch records one certificate download.
func ObserveCertFetch(outcome string, d time.Duration) {
	certFetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordCertCacheLookup counts a certificate cache lookup.
func RecordCertCacheLookup(result string) {
	certCacheLookups.WithLabelValues(result).Inc()
}
