package server

import (
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/query"
)

type paramsResult struct {
	p       query.Params
	warn    string
	refresh bool
}

func parseURL(t *testing.T, rawQuery string) (paramsResult, error) {
	t.Helper()
	r := httptest.NewRequest("GET", "/v1/query?"+rawQuery, nil)
	var res paramsResult
	var err error
	res.p, res.warn, res.refresh, err = ParseQueryRequest(r, 200, 0)
	return res, err
}

func TestParseVerticesAndFlags(t *testing.T) {
	res, err := parseURL(t, "fov=10,-45&fov=0.5&magtype=bp&magmax=15.5&heavy&mags=true&j2000=0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := res.p
	if len(p.Vertices) != 2 || p.Vertices[0][0] != 10 || p.Vertices[0][1] != -45 || p.Vertices[1][0] != 0.5 {
		t.Fatalf("vertices = %v", p.Vertices)
	}
	if p.Band != catalog.BandBP || *p.MagMax != 15.5 || p.MagMin != nil {
		t.Fatalf("band/mags = %+v", p)
	}
	if !p.Heavy || !p.AllMags || p.J2000 || p.PPM {
		t.Fatalf("flags = %+v", p)
	}
	if p.Limit != 200 {
		t.Fatalf("default limit = %d", p.Limit)
	}
}

func TestParseRangesAndObserver(t *testing.T) {
	res, err := parseURL(t, "ralohi=350,10&declohi=-10,10&obspos=1,2,3&obsvel=4,5,6&obsy=2016.5&limit=50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p := res.p
	if len(p.RALoHi) != 2 || p.RALoHi[0] != 350 || p.RALoHi[1] != 10 {
		t.Fatalf("ralohi = %v", p.RALoHi)
	}
	if p.ObsPos == nil || p.ObsPos.X != 1 || p.ObsVel == nil || p.ObsVel.Z != 6 {
		t.Fatalf("observer vectors = %+v %+v", p.ObsPos, p.ObsVel)
	}
	if p.ObsYears == nil || math.Abs(*p.ObsYears-1.0) > 1e-12 {
		t.Fatalf("obs years = %v", p.ObsYears)
	}
	if p.ObsYearArg != "2016.5" {
		t.Fatalf("obs year arg = %q", p.ObsYearArg)
	}
	if p.Limit != 50 {
		t.Fatalf("limit = %d", p.Limit)
	}
}

func TestParseLimitClampWarns(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/query?limit=5000", nil)
	p, warn, _, err := ParseQueryRequest(r, 200, 1000)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Limit != 1000 || !strings.Contains(warn, "clamping") {
		t.Fatalf("limit = %d warn = %q", p.Limit, warn)
	}
}

func TestParseRefreshFlag(t *testing.T) {
	res, err := parseURL(t, "ralohi=0,10&declohi=-5,5&refresh=1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.refresh {
		t.Fatal("refresh flag not picked up")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := []struct{ name, q string }{
		{"bad vertex float", "fov=10,north"},
		{"bad limit", "limit=many"},
		{"bad band", "magtype=ultraviolet"},
		{"bad magmin", "magmin=bright"},
		{"bad buffer", "buffer=wide"},
		{"short obspos", "obspos=1,2"},
		{"bad epoch", "obsy=someday"},
		{"bad ralohi float", "ralohi=0,ten"},
	}
	for _, tc := range cases {
		if _, err := parseURL(t, tc.q); err == nil {
			t.Errorf("%s: error expected for %q", tc.name, tc.q)
		}
	}
}
