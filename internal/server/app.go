// Package server is the HTTP face of the FOV query engine: one query
// route, health and readiness probes, and the Prometheus scrape
// endpoint, behind the usual middleware stack.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/starcat-io/starfov/internal/cache"
	"github.com/starcat-io/starfov/internal/query"
)

// App bundles what the handlers need. Cache is optional; a nil Cache
// disables response caching entirely. Ready is consulted by the
// readiness probe, nil meaning always ready.
type App struct {
	Engine *query.Engine

	Cache          cache.Interface
	CacheTTL       time.Duration
	CacheOpTimeout time.Duration

	// Generation reports the current catalog generation for cache keys.
	Generation func() uint64

	Ready func(ctx context.Context) error

	DefaultLimit int
	MaxLimit     int

	Log zerolog.Logger
}

func (a *App) generation() uint64 {
	if a.Generation == nil {
		return 0
	}
	return a.Generation()
}

// Routes builds the full route tree.
func Routes(a *App) chi.Router {
	r := chi.NewRouter()
	r.Use(Recover(a.Log))
	r.Use(Logging(a.Log))
	r.Use(CORS())

	r.Get("/healthz", Liveness())
	r.Get("/readyz", a.handleReady)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/v1/query", a.handleQuery)

	return r
}

func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	}
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		Status     string `json:"status"`
		Generation uint64 `json:"generation"`
	}

	out := resp{Status: "ready", Generation: a.generation()}
	code := http.StatusOK
	if a.Ready != nil {
		if err := a.Ready(r.Context()); err != nil {
			out.Status = "not_ready"
			code = http.StatusServiceUnavailable
			a.Log.Warn().Err(err).Msg("readiness probe failed")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(out)
}
