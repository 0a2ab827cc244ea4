// Package metrics defines the Prometheus instrumentation of the Connect server.
//
// Metrics are registered on an explicit registry so tests and the CLI can use
// their own. Every Record method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "connect"

// Metrics holds every collector the server exports.
type Metrics struct {
	registry *prometheus.Registry

	// Suggestion generation
	GenerationDuration  prometheus.Histogram
	CandidatesScanned   prometheus.Counter
	ResultsReturned     prometheus.Histogram
	PersistFailures     prometheus.Counter
	GenerationsTotal    *prometheus.CounterVec // outcome: ok, empty, error
	DomainGroupsServed  *prometheus.CounterVec // domain
	TaxonomyReloads     *prometheus.CounterVec // outcome: success, failure
	RateLimitedRequests prometheus.Counter

	// HTTP
	APIRequestsTotal   *prometheus.CounterVec   // method, route, status
	APIRequestDuration *prometheus.HistogramVec // method, route
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		GenerationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_generation_duration_seconds",
			Help:      "Time to compute, rank and persist suggestions for one user",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CandidatesScanned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_candidates_scanned_total",
			Help:      "Candidate users compared against a requester",
		}),
		ResultsReturned: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestion_results",
			Help:      "Number of suggestions returned per generation",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_persist_failures_total",
			Help:      "Suggestion batches that failed to persist and were rolled back",
		}),
		GenerationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_generations_total",
			Help:      "Suggestion generations by outcome",
		}, []string{"outcome"}),
		DomainGroupsServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_domain_groups_total",
			Help:      "Non-empty domain groups returned by per-domain queries",
		}, []string{"domain"}),
		TaxonomyReloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taxonomy_reloads_total",
			Help:      "Taxonomy file reload attempts by outcome",
		}, []string{"outcome"}),
		RateLimitedRequests: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-IP rate limiter",
		}),

		APIRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status",
		}, []string{"method", "route", "status"}),
		APIRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordGeneration records one completed generation.
func (m *Metrics) RecordGeneration(duration time.Duration, candidates, results int, err error) {
	if m == nil {
		return
	}
	m.GenerationDuration.Observe(duration.Seconds())
	m.CandidatesScanned.Add(float64(candidates))

	switch {
	case err != nil:
		m.GenerationsTotal.WithLabelValues("error").Inc()
		return
	case results == 0:
		m.GenerationsTotal.WithLabelValues("empty").Inc()
	default:
		m.GenerationsTotal.WithLabelValues("ok").Inc()
	}
	m.ResultsReturned.Observe(float64(results))
}

// RecordPersistFailure counts a rolled-back suggestion batch.
func (m *Metrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

// RecordDomainGroup counts one non-empty group returned for domain.
func (m *Metrics) RecordDomainGroup(domain string) {
	if m == nil {
		return
	}
	m.DomainGroupsServed.WithLabelValues(domain).Inc()
}

// RecordTaxonomyReload counts a reload attempt.
func (m *Metrics) RecordTaxonomyReload(err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.TaxonomyReloads.WithLabelValues(outcome).Inc()
}

// RecordRateLimited counts a rejected request.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedRequests.Inc()
}

// RecordAPIRequest records an HTTP request. route is the matched pattern, not
// the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordAPIRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
