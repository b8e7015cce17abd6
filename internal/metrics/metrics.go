package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookfinder_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "path", "status"})

	HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookfinder_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	// CatalogRequestsTotal counts upstream catalog calls by operation
	// (search, get) and outcome (ok, skipped, error).
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookfinder_catalog_requests_total",
		Help: "Total number of requests to the remote book catalog",
	}, []string{"op", "outcome"})

	CatalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookfinder_catalog_request_duration_seconds",
		Help:    "Duration of remote catalog requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	StaleResponsesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookfinder_stale_responses_discarded_total",
		Help: "Search responses dropped because the page state moved on",
	})

	FavoritesCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookfinder_favorites",
		Help: "Number of items in the favorites set",
	})
)
