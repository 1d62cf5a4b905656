package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/starcat-io/starfov/internal/cache/keys"
	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/fov"
	"github.com/starcat-io/starfov/internal/logger"
	"github.com/starcat-io/starfov/internal/observability"
)

const queryRoute = "/v1/query"

func (a *App) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
	ctx := r.Context()
	log := logger.FromContext(ctx, &a.Log)

	p, warn, refresh, err := ParseQueryRequest(r, a.DefaultLimit, a.MaxLimit)
	if warn != "" {
		log.Warn().Msg(warn)
	}
	if err != nil {
		http.Error(sw, err.Error(), http.StatusBadRequest)
		observability.ObserveHTTP(r.Method, queryRoute, sw.code, time.Since(start).Seconds())
		return
	}

	var key string
	if a.Cache != nil {
		key = keys.Key(a.generation(), keys.Canonical(p))
		if refresh {
			if err := a.cacheDel(ctx, key); err != nil {
				log.Warn().Err(err).Msg("cache del failed")
			}
		} else if body, ok, err := a.cacheGet(ctx, key); err != nil {
			log.Warn().Err(err).Msg("cache get failed")
		} else if ok {
			logger.FromContext(logger.WithHitClass(ctx, "hit"), &a.Log).
				Debug().Str("key", key).Msg("query served from cache")
			writeJSON(sw, body, "hit")
			observability.ObserveHTTP(r.Method, queryRoute, sw.code, time.Since(start).Seconds())
			return
		}
	}

	resp, err := a.Engine.Search(ctx, p)
	if err != nil {
		writeQueryError(sw, err)
		observability.ObserveHTTP(r.Method, queryRoute, sw.code, time.Since(start).Seconds())
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(sw, "internal server error", http.StatusInternalServerError)
		observability.ObserveHTTP(r.Method, queryRoute, sw.code, time.Since(start).Seconds())
		return
	}

	hitClass := "bypass"
	if a.Cache != nil {
		hitClass = "miss"
		if err := a.cacheSet(ctx, key, body); err != nil {
			log.Warn().Err(err).Msg("cache set failed")
		}
	}

	writeJSON(sw, body, hitClass)
	observability.ObserveHTTP(r.Method, queryRoute, sw.code, time.Since(start).Seconds())
}

// writeQueryError maps engine errors onto status codes: malformed input
// and bad geometry are the client's fault, catalog failures are the
// store's, anything else is ours.
func writeQueryError(w http.ResponseWriter, err error) {
	var ve *fov.ValidationError
	var ge *fov.GeometryError
	var re *catalog.ResourceError
	switch {
	case errors.As(err, &ve), errors.As(err, &ge):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &re):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, body []byte, hitClass string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", hitClass)
	_, _ = w.Write(body)
}

func (a *App) cacheGet(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := a.cacheCtx(ctx)
	defer cancel()
	return a.Cache.Get(ctx, key)
}

func (a *App) cacheSet(ctx context.Context, key string, body []byte) error {
	ctx, cancel := a.cacheCtx(ctx)
	defer cancel()
	return a.Cache.Set(ctx, key, body, a.CacheTTL)
}

func (a *App) cacheDel(ctx context.Context, key string) error {
	ctx, cancel := a.cacheCtx(ctx)
	defer cancel()
	return a.Cache.Del(ctx, key)
}

// cacheCtx bounds cache operations so a slow tier cannot stall the
// query path.
func (a *App) cacheCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.CacheOpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.CacheOpTimeout)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
