// Package metrics holds the Prometheus instruments used across the service.
// All collectors are registered with the global registry, so importing this
// package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantmap_resolve_total",
			Help: "Site configuration resolutions by result.",
		}, []string{"result"})

	StoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantmap_store_requests_total",
			Help: "DynamoDB calls by operation and outcome.",
		}, []string{"operation", "outcome"})

	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenantmap_store_request_duration_seconds",
			Help:    "DynamoDB call latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantmap_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"})

	RetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenantmap_store_retries_total",
			Help: "Requests retried after the store was unavailable.",
		})

	SecretFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenantmap_secret_fetch_total",
			Help: "Secret source reads by result.",
		}, []string{"result"})
)

// Resolve results.
const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

func init() {
	prometheus.MustRegister(
		ResolveTotal,
		StoreRequestsTotal,
		StoreRequestDuration,
		HTTPRequestsTotal,
		RetriesTotal,
		SecretFetchTotal,
	)
}
