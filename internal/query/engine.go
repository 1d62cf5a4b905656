package query

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/correct"
	"github.com/starcat-io/starfov/internal/fov"
	"github.com/starcat-io/starfov/internal/frames"
	"github.com/starcat-io/starfov/internal/observability"
	"github.com/starcat-io/starfov/internal/sphere"
)

// Engine runs searches against one catalog source.
type Engine struct {
	source catalog.Source
	path   string
	log    zerolog.Logger
}

// New wires an engine to a source. path is what the response echoes as
// the catalog location.
func New(source catalog.Source, path string, log zerolog.Logger) *Engine {
	return &Engine{source: source, path: path, log: log}
}

// Search builds the FOV, streams every overlapping catalog box in
// magnitude order and returns the stars inside the FOV, brightest first.
// A failure on any stream discards the whole result; every cursor is
// released before Search returns.
func (e *Engine) Search(ctx context.Context, p Params) (*Response, error) {
	start := time.Now()

	band := p.Band
	if band == "" {
		band = catalog.BandG
	}
	if p.Limit < 0 {
		return nil, &fov.ValidationError{Reason: fmt.Sprintf("limit %d is negative", p.Limit)}
	}

	f, err := BuildFOV(p)
	if err != nil {
		return nil, err
	}
	if p.Buffer != 0 {
		e.log.Warn().Float64("radec_buffer", p.Buffer).Msg("RA,Dec buffer is not implemented; ignoring")
	}

	obs := observerFrom(p)
	req := catalog.Request{
		Band:       band,
		MagMin:     p.MagMin,
		MagMax:     p.MagMax,
		Astrometry: p.PPM || obs.NeedsStarMotion(),
		AllMags:    p.AllMags,
		Heavy:      p.Heavy,
	}
	boxes := f.Boxes()

	stars, scanned, err := e.merge(ctx, f, obs, req, boxes, p.Limit)
	elapsed := time.Since(start).Seconds()
	observability.ObserveSearch(f.Shape().String(), err, elapsed)
	if err != nil {
		return nil, err
	}
	observability.AddStarsScanned(scanned)
	observability.AddStarsMatched(len(stars))

	e.log.Debug().
		Str("fov_type", f.Shape().String()).
		Int("boxes", len(boxes)).
		Int("scanned", scanned).
		Int("matched", len(stars)).
		Float64("seconds", elapsed).
		Msg("fov search done")

	return &Response{Config: e.echo(p, band, f, boxes), Stars: stars}, nil
}

// BuildFOV maps Params onto one of the FOV constructors. With J2000 set,
// direction vertices are rotated into ICRS first; a cone's half-angle
// term passes through untouched.
func BuildFOV(p Params) (*fov.FOV, error) {
	ranges := len(p.RALoHi) > 0 || len(p.DecLoHi) > 0
	if ranges && len(p.Vertices) > 0 {
		return nil, &fov.ValidationError{Reason: "FOV vertices and RA,Dec ranges are mutually exclusive"}
	}
	if ranges {
		return fov.NewRanges(p.RALoHi, p.DecLoHi)
	}

	verts := p.Vertices
	if p.J2000 {
		rotated := make([]fov.Vertex, len(verts))
		for i, raw := range verts {
			if len(raw) < 2 {
				rotated[i] = raw
				continue
			}
			d, err := fov.ParseVertex(raw)
			if err != nil {
				return nil, err
			}
			uv := frames.ToICRS(d.UV)
			rotated[i] = fov.Vertex{uv.X, uv.Y, uv.Z}
		}
		verts = rotated
	}
	return fov.New(verts)
}

func observerFrom(p Params) correct.Observer {
	obs := correct.Observer{Years: p.ObsYears}
	if p.ObsPos != nil {
		v := *p.ObsPos
		if p.J2000 {
			v = frames.ToICRS(v)
		}
		obs.PosKm = &v
	}
	if p.ObsVel != nil {
		v := *p.ObsVel
		if p.J2000 {
			v = frames.ToICRS(v)
		}
		obs.VelKmPerS = &v
	}
	return obs
}

func (e *Engine) merge(ctx context.Context, f *fov.FOV, obs correct.Observer, req catalog.Request, boxes []fov.Box, limit int) ([]Star, int, error) {
	streams := make([]*stream, 0, len(boxes))
	defer func() {
		for _, s := range streams {
			s.close()
		}
	}()

	h := &starHeap{}
	heap.Init(h)
	for i, box := range boxes {
		opened := time.Now()
		cur, err := e.source.Open(ctx, box, req)
		observability.ObserveCatalogOpen(string(req.Band), err, time.Since(opened).Seconds())
		if err != nil {
			return nil, 0, err
		}
		s := &stream{cur: cur, box: i}
		streams = append(streams, s)

		row, ok, err := s.next()
		if err != nil {
			return nil, 0, err
		}
		if ok {
			heap.Push(h, entry{row: row, src: s, ordinal: s.ordinal})
		}
	}

	stars := make([]Star, 0)
	scanned := 0
	for h.Len() > 0 && len(stars) < limit {
		en := heap.Pop(h).(entry)
		scanned++

		if st, inside := evaluate(f, obs, en.row); inside {
			stars = append(stars, st)
		}

		// Only the popped stream advances, whatever the outcome.
		row, ok, err := en.src.next()
		if err != nil {
			return nil, scanned, err
		}
		if ok {
			heap.Push(h, entry{row: row, src: en.src, ordinal: en.src.ordinal})
		}
	}
	return stars, scanned, nil
}

// evaluate applies the correction pipeline and the FOV test to one row.
// Interval shapes test the nominal angles and take no corrections, so
// their corrected values reduce to a unit-vector round trip.
func evaluate(f *fov.FOV, obs correct.Observer, row catalog.Row) (Star, bool) {
	st := Star{Row: row}
	var uv sphere.Vec
	switch f.Shape() {
	case fov.ShapeBox, fov.ShapeRanges:
		if !f.ContainsRADec(row.RA, row.Dec) {
			return st, false
		}
		uv = sphere.FromRADec(row.RA, row.Dec)
	default:
		uv = obs.Apply(sphere.FromRADec(row.RA, row.Dec), row.Parallax, row.PMRA, row.PMDec)
		if !f.Contains(uv) {
			return st, false
		}
	}
	st.UVCorrected = [3]float64{uv.X, uv.Y, uv.Z}
	st.RACorrected, st.DecCorrected = uv.RADec()
	st.RADelta = st.RACorrected - row.RA
	st.DecDelta = st.DecCorrected - row.Dec
	return st, true
}

func (e *Engine) echo(p Params, band catalog.Band, f *fov.FOV, boxes []fov.Box) Config {
	cfg := Config{
		Limit:       p.Limit,
		MagMin:      p.MagMin,
		MagMax:      p.MagMax,
		MagType:     band,
		RADecBuffer: p.Buffer,
		GaiaSL3:     e.path,
		J2000:       p.J2000,
		PPM:         p.PPM,
		Mags:        p.AllMags,
		Heavy:       p.Heavy,
		ObsYear:     p.ObsYears,
		FOVVertices: p.Vertices,
		FOVType:     f.Shape().String(),
		RADecBoxes:  boxes,
	}
	if p.ObsPos != nil {
		cfg.ObsPos = &[3]float64{p.ObsPos.X, p.ObsPos.Y, p.ObsPos.Z}
	}
	if p.ObsVel != nil {
		cfg.ObsVel = &[3]float64{p.ObsVel.X, p.ObsVel.Y, p.ObsVel.Z}
	}
	if p.ObsYearArg != "" {
		s := p.ObsYearArg
		cfg.ObsYearArg = &s
	}
	if cfg.FOVVertices == nil {
		cfg.FOVVertices = []fov.Vertex{}
	}
	cfg.RALoHi, cfg.DecLoHi = f.Ranges()
	if cfg.RALoHi == nil {
		cfg.RALoHi = []float64{}
	}
	if cfg.DecLoHi == nil {
		cfg.DecLoHi = []float64{}
	}
	return cfg
}
