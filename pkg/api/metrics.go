package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heroes_api_requests_total",
		Help: "Total incident page requests by HTTP status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "heroes_api_request_duration_seconds",
		Help:    "Incident page request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heroes_api_errors_total",
		Help: "Total failed incident page fetches by error kind",
	}, []string{"kind"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heroes_cache_hits_total",
		Help: "Incident pages served from the redis cache",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heroes_cache_misses_total",
		Help: "Incident pages not found in the redis cache",
	})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heroes_cache_errors_total",
		Help: "Redis cache operation errors",
	}, []string{"operation"}) // "get", "set", "purge"
)
