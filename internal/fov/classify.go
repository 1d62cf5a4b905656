package fov

import (
	"math"
	"sort"

	"github.com/starcat-io/starfov/internal/sphere"
)

// convexEps is the tolerance on unit-normal dot products below which a
// vertex counts as coplanar with an edge's great circle. Coplanarity is
// ambiguous, so the polygon is classified non-convex and handled by the
// general crossing test instead of raising an error.
const convexEps = 1e-12

// zFloor rejects candidate directions at or behind the local horizon of
// the polygon's projection plane.
const zFloor = 1e-15

// Contains reports whether a unit direction lies inside the FOV. The
// direction is expected to carry any corrections already; box and ranges
// shapes test the equivalent RA/Dec intervals instead.
func (f *FOV) Contains(uv sphere.Vec) bool {
	switch f.shape {
	case ShapeBox, ShapeRanges:
		ra, dec := uv.RADec()
		return f.containsInterval(ra, dec)
	case ShapeCone:
		return uv.Dot(f.axis) >= f.minCos
	case ShapePolygon:
		if f.convex {
			return f.containsConvex(uv)
		}
		return f.containsCrossing(uv)
	}
	return false
}

// ContainsRADec classifies an angular direction. For box and ranges
// shapes this is the exact interval test on the given values; other
// shapes convert to a unit vector first.
func (f *FOV) ContainsRADec(raDeg, decDeg float64) bool {
	switch f.shape {
	case ShapeBox, ShapeRanges:
		return f.containsInterval(raDeg, decDeg)
	default:
		return f.Contains(sphere.FromRADec(raDeg, decDeg))
	}
}

func (f *FOV) containsInterval(raDeg, decDeg float64) bool {
	for _, b := range f.boxes {
		if b.ContainsRADec(raDeg, decDeg) {
			return true
		}
	}
	return false
}

// containsConvex rejects on the first negative dot product with an inward
// edge normal.
func (f *FOV) containsConvex(uv sphere.Vec) bool {
	for _, norm := range f.inwardNorms {
		if uv.Dot(norm) < 0 {
			return false
		}
	}
	return true
}

// containsCrossing runs the general crossing-number test in the local
// frame: the direction is inside when an odd number of polygon sides lies
// to its right on the Z=1 plane.
func (f *FOV) containsCrossing(uv sphere.Vec) bool {
	local := f.toLocal.MulVec(uv)
	if local.Z < zFloor {
		return false
	}
	z1 := local.Scale(1 / local.Z)
	count := 0
	for _, s := range f.sides {
		if s.rightOf(z1) {
			count++
		}
	}
	return count%2 == 1
}

// buildLocalFrame sets up the polygon's classification frame: +Z along
// the vertex mean, +X bisecting the widest gap between projected side
// azimuths so no side is parallel to +X and no scan ray passes through a
// vertex. The projected sides are cached for the crossing test.
func (f *FOV) buildLocalFrame() error {
	n := len(f.dirs)

	// temporary frame: +X toward the vertex farthest from the mean
	vother := f.dirs[0].UV
	best := f.uvavg.Dot(vother)
	for _, d := range f.dirs[1:] {
		if dot := f.uvavg.Dot(d.UV); dot < best {
			best, vother = dot, d.UV
		}
	}
	tmp, err := sphere.TwoVec(f.uvavg, vother)
	if err != nil {
		return &GeometryError{"polygon vertices do not span a plane"}
	}

	proj := make([]sphere.Vec, n)
	for i, d := range f.dirs {
		p := tmp.MulVec(d.UV)
		proj[i] = p.Scale(1 / p.Z)
	}

	azimuths := make([]float64, 0, n)
	last := proj[n-1]
	for _, p := range proj {
		azimuths = append(azimuths, math.Atan((p.Y-last.Y)/(p.X-last.X)))
		last = p
	}
	sort.Float64s(azimuths)
	azimuths = append(azimuths, azimuths[0]+math.Pi)
	maxGap, iMax := azimuths[1]-azimuths[0], 0
	for i := 1; i < len(azimuths)-1; i++ {
		if gap := azimuths[i+1] - azimuths[i]; gap > maxGap {
			maxGap, iMax = gap, i
		}
	}
	meanAz := azimuths[iMax] + maxGap/2

	f.toLocal = sphere.RotAxis(meanAz, 3).MulMat(tmp)

	local := make([]sphere.Vec, n)
	for i, d := range f.dirs {
		p := f.toLocal.MulVec(d.UV)
		local[i] = p.Scale(1 / p.Z)
	}
	f.sides = buildSides(local)
	return nil
}

// computeConvexity walks the directed edges testing every other vertex
// against each edge's unit normal. Mixed signs anywhere, or any dot
// within convexEps of zero, classify the polygon non-convex. For a convex
// polygon the returned normals all point inward.
func computeConvexity(dirs []Direction) (bool, []sphere.Vec) {
	n := len(dirs)
	norms := make([]sphere.Vec, 0, n)
	onePos, oneNeg := false, false
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		norm := dirs[i].UV.UnitCross(dirs[next].UV)
		for j := 0; j < n; j++ {
			if j == i || j == next {
				continue
			}
			dot := norm.Dot(dirs[j].UV)
			if math.Abs(dot) < convexEps {
				return false, nil
			}
			if dot > 0 {
				onePos = true
			} else {
				oneNeg = true
			}
		}
		if onePos && oneNeg {
			return false, nil
		}
		norms = append(norms, norm)
	}
	if !onePos && !oneNeg {
		return false, nil
	}
	if oneNeg {
		for i := range norms {
			norms[i] = norms[i].Neg()
		}
	}
	return true, norms
}

// side is one polygon edge projected onto the local Z=1 plane, with the
// linear boundary x = m*y + b. The y-interval is half-open at the top so
// a scan ray meeting a shared vertex counts exactly one of the two sides.
type side struct {
	xhi, ylo, yhi float64
	m, b          float64
}

func newSide(v0, v1 sphere.Vec) side {
	s := side{xhi: math.Max(v0.X, v1.X)}
	if v0.Y > v1.Y {
		s.yhi, s.ylo = v0.Y, v1.Y
	} else {
		s.yhi, s.ylo = v1.Y, v0.Y
	}
	s.m = (v1.X - v0.X) / (v1.Y - v0.Y)
	s.b = v0.X - v0.Y*s.m
	return s
}

// rightOf reports whether the side lies to the right of the point (or
// passes over it): y in [ylo,yhi) and x no greater than the boundary.
func (s side) rightOf(p sphere.Vec) bool {
	if p.Y < s.ylo {
		return false
	}
	if p.Y >= s.yhi {
		return false
	}
	if p.X > s.xhi {
		return false
	}
	if p.X > s.m*p.Y+s.b {
		return false
	}
	return true
}

func buildSides(local []sphere.Vec) []side {
	sides := make([]side, 0, len(local))
	last := local[len(local)-1]
	for _, v := range local {
		sides = append(sides, newSide(v, last))
		last = v
	}
	return sides
}
