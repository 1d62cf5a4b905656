package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/starcat-io/starfov/internal/cache/lrustore"
	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/fov"
	"github.com/starcat-io/starfov/internal/query"
)

type fakeCursor struct {
	rows []catalog.Row
	pos  int
}

func (c *fakeCursor) Next() (catalog.Row, bool, error) {
	if c.pos >= len(c.rows) {
		return catalog.Row{}, false, nil
	}
	row := c.rows[c.pos]
	c.pos++
	return row, true, nil
}

func (c *fakeCursor) Close() error { return nil }

type fakeSource struct {
	rows    []catalog.Row
	opens   int
	openErr error
}

func (s *fakeSource) Open(context.Context, fov.Box, catalog.Request) (catalog.Cursor, error) {
	s.opens++
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &fakeCursor{rows: s.rows}, nil
}

func starRows() []catalog.Row {
	return []catalog.Row{
		{IDOffset: 1, RA: 5, Dec: 0, Mag: 9.0},
		{IDOffset: 2, RA: 6, Dec: 1, Mag: 10.5},
	}
}

func newApp(src catalog.Source) *App {
	return &App{
		Engine:       query.New(src, "gaia.sqlite3", zerolog.Nop()),
		DefaultLimit: 200,
		Log:          zerolog.Nop(),
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const rangeQuery = "/v1/query?ralohi=0,10&declohi=-5,5&limit=10"

func TestQueryEndpointHappyPath(t *testing.T) {
	src := &fakeSource{rows: starRows()}
	h := Routes(newApp(src))

	rr := get(t, h, rangeQuery)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q", ct)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}
	if rr.Header().Get("X-Cache") != "bypass" {
		t.Fatalf("X-Cache = %q with caching disabled", rr.Header().Get("X-Cache"))
	}

	var resp query.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Stars) != 2 || resp.Stars[0].IDOffset != 1 {
		t.Fatalf("stars = %+v", resp.Stars)
	}
	if resp.Config.Limit != 10 || resp.Config.FOVType != "radecranges" {
		t.Fatalf("config = %+v", resp.Config)
	}
}

func TestQueryEndpointRejectsBadParams(t *testing.T) {
	h := Routes(newApp(&fakeSource{}))

	for _, target := range []string{
		"/v1/query?magtype=ultraviolet",
		"/v1/query?limit=many",
		"/v1/query?fov=10,north",
	} {
		if rr := get(t, h, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
		}
	}
}

func TestQueryEndpointEngineValidation(t *testing.T) {
	h := Routes(newApp(&fakeSource{}))

	rr := get(t, h, "/v1/query?fov=400,0&fov=1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "invalid input") {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestQueryEndpointStoreFailure(t *testing.T) {
	src := &fakeSource{openErr: &catalog.ResourceError{Op: "open cursor", Err: errors.New("disk gone")}}
	h := Routes(newApp(src))

	rr := get(t, h, rangeQuery)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}

func TestQueryEndpointCacheRoundTrip(t *testing.T) {
	src := &fakeSource{rows: starRows()}
	app := newApp(src)
	local, err := lrustore.New(8)
	if err != nil {
		t.Fatalf("lrustore: %v", err)
	}
	app.Cache = local
	app.CacheTTL = time.Minute
	app.Generation = func() uint64 { return 1 }
	h := Routes(app)

	first := get(t, h, rangeQuery)
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "miss" {
		t.Fatalf("first: code %d X-Cache %q", first.Code, first.Header().Get("X-Cache"))
	}
	if src.opens != 1 {
		t.Fatalf("opens after first = %d", src.opens)
	}

	second := get(t, h, rangeQuery)
	if second.Header().Get("X-Cache") != "hit" {
		t.Fatalf("second X-Cache = %q", second.Header().Get("X-Cache"))
	}
	if src.opens != 1 {
		t.Fatalf("cache hit still hit the store, opens = %d", src.opens)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatal("cached body differs from computed body")
	}

	refreshed := get(t, h, rangeQuery+"&refresh=1")
	if refreshed.Header().Get("X-Cache") != "miss" {
		t.Fatalf("refresh X-Cache = %q", refreshed.Header().Get("X-Cache"))
	}
	if src.opens != 2 {
		t.Fatalf("refresh should recompute, opens = %d", src.opens)
	}

	third := get(t, h, rangeQuery)
	if third.Header().Get("X-Cache") != "hit" || src.opens != 2 {
		t.Fatalf("after refresh: X-Cache %q opens %d", third.Header().Get("X-Cache"), src.opens)
	}
}

func TestHealthz(t *testing.T) {
	h := Routes(newApp(&fakeSource{}))

	rr := get(t, h, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "ok" {
		t.Fatalf("body = %q want ok", got)
	}
}

func TestReadyz(t *testing.T) {
	app := newApp(&fakeSource{})
	app.Generation = func() uint64 { return 7 }
	h := Routes(app)

	rr := get(t, h, "/readyz")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"generation":7`) {
		t.Fatalf("ready: code %d body %s", rr.Code, rr.Body.String())
	}

	app.Ready = func(context.Context) error { return errors.New("catalog unreachable") }
	rr = get(t, h, "/readyz")
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "not_ready") {
		t.Fatalf("not ready: code %d body %s", rr.Code, rr.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	h := Routes(newApp(&fakeSource{rows: starRows()}))

	_ = get(t, h, rangeQuery)
	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `http_requests_total{method="GET",route="/v1/query"`) {
		t.Fatal("http_requests_total series missing")
	}
}
