// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogRequests counts outbound catalog requests by source and outcome.
	CatalogRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anirank_catalog_requests_total",
		Help: "Outbound catalog source requests",
	}, []string{"source", "outcome"})

	// CatalogCacheHits counts request-cache hits by source.
	CatalogCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anirank_catalog_cache_hits_total",
		Help: "Catalog request cache hits",
	}, []string{"source"})

	// CatalogCacheMisses counts request-cache misses by source.
	CatalogCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anirank_catalog_cache_misses_total",
		Help: "Catalog request cache misses",
	}, []string{"source"})

	// CatalogRetries counts retry attempts against the primary source.
	CatalogRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "anirank_catalog_retries_total",
		Help: "Retried catalog requests",
	})

	// HTTPRequestDuration observes inbound request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "anirank_http_request_duration_seconds",
		Help:    "Inbound HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})
)
