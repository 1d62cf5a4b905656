package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/correct"
	"github.com/starcat-io/starfov/internal/fov"
	"github.com/starcat-io/starfov/internal/query"
	"github.com/starcat-io/starfov/internal/sphere"
)

// ParseQueryRequest turns URL parameters into engine parameters. Each
// fov parameter is one vertex ("ra,dec", "x,y,z", or a bare half-angle);
// ralohi/declohi are comma pairs. Number and band errors are rejected
// here; structural FOV validation stays with the engine. refresh reports
// whether the client asked to drop any cached copy first.
func ParseQueryRequest(r *http.Request, defaultLimit, maxLimit int) (p query.Params, warn string, refresh bool, err error) {
	q := r.URL.Query()

	for _, raw := range q["fov"] {
		v, err := parseFloats(raw)
		if err != nil {
			return p, "", false, fmt.Errorf("invalid fov vertex %q: %w", raw, err)
		}
		p.Vertices = append(p.Vertices, fov.Vertex(v))
	}

	p.RALoHi, err = parsePair(q, "ralohi")
	if err != nil {
		return p, "", false, err
	}
	p.DecLoHi, err = parsePair(q, "declohi")
	if err != nil {
		return p, "", false, err
	}

	p.Limit = defaultLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, "", false, fmt.Errorf("invalid limit %q", s)
		}
		p.Limit = n
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		warn = fmt.Sprintf("limit %d exceeds maximum %d; clamping", p.Limit, maxLimit)
		p.Limit = maxLimit
	}

	if s := q.Get("magtype"); s != "" {
		band, err := catalog.ParseBand(s)
		if err != nil {
			return p, warn, false, err
		}
		p.Band = band
	}
	p.MagMin, err = parseOptFloat(q, "magmin")
	if err != nil {
		return p, warn, false, err
	}
	p.MagMax, err = parseOptFloat(q, "magmax")
	if err != nil {
		return p, warn, false, err
	}
	if s := q.Get("buffer"); s != "" {
		b, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return p, warn, false, fmt.Errorf("invalid buffer %q", s)
		}
		p.Buffer = b
	}

	p.J2000 = flagParam(q, "j2000")
	p.PPM = flagParam(q, "ppm")
	p.AllMags = flagParam(q, "mags")
	p.Heavy = flagParam(q, "heavy")
	refresh = flagParam(q, "refresh")

	p.ObsPos, err = parseVec(q, "obspos")
	if err != nil {
		return p, warn, false, err
	}
	p.ObsVel, err = parseVec(q, "obsvel")
	if err != nil {
		return p, warn, false, err
	}
	if s := q.Get("obsy"); s != "" {
		years, err := correct.ParseEpoch(s)
		if err != nil {
			return p, warn, false, err
		}
		p.ObsYears = &years
		p.ObsYearArg = s
	}

	return p, warn, refresh, nil
}

func parseFloats(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, len(parts))
	for i, s := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parse float %q", s)
		}
		out[i] = f
	}
	return out, nil
}

func parsePair(q url.Values, key string) ([]float64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	vs, err := parseFloats(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return vs, nil
}

func parseOptFloat(q url.Values, key string) (*float64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, s)
	}
	return &f, nil
}

func parseVec(q url.Values, key string) (*sphere.Vec, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	vs, err := parseFloats(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if len(vs) != 3 {
		return nil, fmt.Errorf("%s needs exactly three comma-separated values", key)
	}
	return &sphere.Vec{X: vs[0], Y: vs[1], Z: vs[2]}, nil
}

// flagParam treats presence as true unless the value spells false.
func flagParam(q url.Values, key string) bool {
	if !q.Has(key) {
		return false
	}
	switch strings.ToLower(q.Get(key)) {
	case "0", "f", "false", "n", "no":
		return false
	}
	return true
}
