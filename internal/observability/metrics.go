// Package observability exposes the Prometheus metrics shared across the
// service. Everything registers on the default registry; /metrics serves
// it through promhttp.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	fovSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fov_searches_total",
			Help: "FOV searches by shape and outcome.",
		},
		[]string{"fov_type", "status"},
	)

	fovSearchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fov_search_duration_seconds",
			Help:    "End-to-end FOV search duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"fov_type", "status"},
	)

	catalogOpenDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_open_duration_seconds",
			Help:    "Time to open one catalog box stream, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"band", "status"},
	)

	starsScannedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stars_scanned_total",
			Help: "Catalog rows pulled through the magnitude merge.",
		},
	)

	starsMatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stars_matched_total",
			Help: "Catalog rows accepted into an FOV.",
		},
	)

	cacheOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Duration of cache operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"op", "status"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache results by outcome and tier.",
		},
		[]string{"outcome", "tier"},
	)

	catalogGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_generation",
			Help: "Generation counter of the catalog file, bumped on reload.",
		},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveHTTP(method, route string, statusCode int, durationSeconds float64) {
	st := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveSearch(fovType string, err error, durationSeconds float64) {
	st := status(err)
	fovSearchesTotal.WithLabelValues(fovType, st).Inc()
	fovSearchDurationSeconds.WithLabelValues(fovType, st).Observe(durationSeconds)
}

func ObserveCatalogOpen(band string, err error, durationSeconds float64) {
	catalogOpenDurationSeconds.WithLabelValues(band, status(err)).Observe(durationSeconds)
}

func AddStarsScanned(n int) {
	if n > 0 {
		starsScannedTotal.Add(float64(n))
	}
}

func AddStarsMatched(n int) {
	if n > 0 {
		starsMatchedTotal.Add(float64(n))
	}
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	cacheOpDurationSeconds.WithLabelValues(op, status(err)).Observe(durationSeconds)
}

func IncCacheHit(tier string) {
	cacheResults.WithLabelValues("hit", tier).Inc()
}

func IncCacheMiss(tier string) {
	cacheResults.WithLabelValues("miss", tier).Inc()
}

func SetCatalogGeneration(gen uint64) {
	catalogGeneration.Set(float64(gen))
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
