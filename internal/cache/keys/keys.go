// Package keys builds cache keys for serialized query responses. A key
// carries the catalog generation, a sanitized excerpt of the canonical
// request for debuggability, and an xxhash of the full canonical text
// for uniqueness.
package keys

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/fov"
	"github.com/starcat-io/starfov/internal/query"
	"github.com/starcat-io/starfov/internal/sphere"
)

// Key derives the cache key for one canonical request against one
// catalog generation. Generations never repeat, so entries written
// before a catalog swap can only age out, never be served.
func Key(generation uint64, canonical string) string {
	safe := sanitizeForKey(canonical)

	const maxQueryTextLen = 160
	if len(safe) > maxQueryTextLen {
		safe = safe[:maxQueryTextLen]
	}

	sum := xxhash.Sum64String(canonical)

	return fmt.Sprintf("fov:%d:q=%s:f=%016x", generation, safe, sum)
}

// Canonical flattens request parameters into one normalized ASCII line.
// Every field that shapes the response is included in a fixed order, and
// defaults are resolved first, so semantically equal requests
// canonicalize identically however they were spelled on the wire.
func Canonical(p query.Params) string {
	band := p.Band
	if band == "" {
		band = catalog.BandG
	}

	var b strings.Builder
	add := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}

	add("band", string(band))
	add("limit", strconv.Itoa(p.Limit))
	add("magmin", optFloat(p.MagMin))
	add("magmax", optFloat(p.MagMax))
	add("buffer", num(p.Buffer))
	add("j2000", flag(p.J2000))
	add("ppm", flag(p.PPM))
	add("mags", flag(p.AllMags))
	add("heavy", flag(p.Heavy))
	add("fov", vertices(p.Vertices))
	add("ralohi", floats(p.RALoHi))
	add("declohi", floats(p.DecLoHi))
	add("obspos", vec(p.ObsPos))
	add("obsvel", vec(p.ObsVel))
	add("obsyear", optFloat(p.ObsYears))
	add("obsyeararg", p.ObsYearArg)
	return b.String()
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func floats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = num(v)
	}
	return strings.Join(parts, ",")
}

func vertices(vs []fov.Vertex) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = floats(v)
	}
	return strings.Join(parts, "|")
}

func vec(v *sphere.Vec) string {
	if v == nil {
		return ""
	}
	return floats([]float64{v.X, v.Y, v.Z})
}

func sanitizeForKey(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		out := rune(0)
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-' || r == '=':
			out = r
		default:
			// Any other rune (including non-ASCII) becomes '-'
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		unicode.IsDigit(r)
}
