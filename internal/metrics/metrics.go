// Package metrics holds Prometheus instruments that are used across the
// site.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method, and status class.",
		}, []string{"route", "method", "status"})

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"})

	PanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_panics_total",
			Help: "Handler panics recovered by middleware.",
		})

	// Catalog

	CatalogQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_queries_total",
			Help: "Catalog filter/sort queries by cache outcome (hit, miss).",
		}, []string{"outcome"})

	CatalogCourses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_courses",
			Help: "Valid courses in the loaded dataset.",
		})

	// Contact

	ContactSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "contact_sessions",
			Help: "Contact-form controllers currently held in memory.",
		})

	ContactEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_evict_total",
			Help: "Contact-form controllers evicted for idleness or pressure.",
		})

	ContactSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact submissions by outcome (success, error, invalid, busy).",
		}, []string{"outcome"})

	CaptchaVerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captcha_verify_total",
			Help: "reCAPTCHA verifications by result (pass, fail, error, skipped).",
		}, []string{"result"})

	// Analytics

	AnalyticsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_total",
			Help: "Analytics events by delivery result (sent, dropped, failed).",
		}, []string{"result"})

	AnalyticsRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_retries_total",
			Help: "Analytics delivery retries.",
		})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		PanicsTotal,
		CatalogQueriesTotal,
		CatalogCourses,
		ContactSessions,
		ContactEvictTotal,
		ContactSubmissionsTotal,
		CaptchaVerifyTotal,
		AnalyticsEventsTotal,
		AnalyticsRetriesTotal,
	)
}
