// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the prometheus collectors for HTTP traffic and
// election events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Vote rejection reasons.
const (
	RejectIneligible = "ineligible"
	RejectDuplicate  = "duplicate"
	RejectClosed     = "closed"
	RejectCandidate  = "candidate"
)

// Metrics is a set of collectors. Collectors work unregistered, so tests
// can use New without a registry.
type Metrics struct {
	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	VotesCast          prometheus.Counter
	VotesRejected      *prometheus.CounterVec
	VoterRegistrations prometheus.Counter
	VoterIDCollisions  prometheus.Counter
	AuditFailures      prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),

		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballotdesk_votes_cast_total",
			Help: "Ballots accepted.",
		}),
		VotesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotdesk_votes_rejected_total",
			Help: "Ballots refused, by reason.",
		}, []string{"reason"}),
		VoterRegistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballotdesk_voter_registrations_total",
			Help: "Voter registrations stored.",
		}),
		VoterIDCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballotdesk_voter_id_collisions_total",
			Help: "Generated voter ids that were already taken.",
		}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballotdesk_audit_failures_total",
			Help: "Audit entries that could not be written.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotdesk_status_transitions_total",
			Help: "Stored election status labels refreshed, by new status.",
		}, []string{"status"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
		m.VotesCast, m.VotesRejected, m.VoterRegistrations,
		m.VoterIDCollisions, m.AuditFailures, m.StatusTransitions,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Instrument records in-flight requests, totals and latency. The path label
// is the matched route pattern so ids do not explode cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(sw.code)
		m.httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
