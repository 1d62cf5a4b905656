package fov

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/starcat-io/starfov/internal/sphere"
)

// Box is an axis-aligned RA/Dec rectangle in degrees with inclusive
// bounds, used to prune an indexed range query before the exact FOV test.
// It serializes as the 4-array [ralo, rahi, declo, dechi].
type Box struct {
	RALo, RAHi, DecLo, DecHi float64
}

// ContainsRADec reports interval membership, bounds inclusive.
func (b Box) ContainsRADec(raDeg, decDeg float64) bool {
	return raDeg >= b.RALo && raDeg <= b.RAHi && decDeg >= b.DecLo && decDeg <= b.DecHi
}

// MarshalJSON encodes the box as [ralo, rahi, declo, dechi].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.RALo, b.RAHi, b.DecLo, b.DecHi})
}

// UnmarshalJSON decodes the [ralo, rahi, declo, dechi] form.
func (b *Box) UnmarshalJSON(data []byte) error {
	var a [4]float64
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("box: %w", err)
	}
	b.RALo, b.RAHi, b.DecLo, b.DecHi = a[0], a[1], a[2], a[3]
	return nil
}

// boxBoxes bounds a two-corner RA/Dec box. A longitude span of 180 or
// more is assumed to intend the shorter arc through the 0/360 seam and
// splits into two boxes.
func boxBoxes(d0, d1 Direction) []Box {
	ralo, rahi := d0.RA, d1.RA
	if ralo > rahi {
		ralo, rahi = rahi, ralo
	}
	declo, dechi := d0.Dec, d1.Dec
	if declo > dechi {
		declo, dechi = dechi, declo
	}
	if rahi-ralo < 180 {
		return []Box{{ralo, rahi, declo, dechi}}
	}
	return []Box{
		{0, ralo, declo, dechi},
		{rahi, 360, declo, dechi},
	}
}

// coneBoxes bounds a cone: Dec limits are axis +/- half-angle; the RA
// half-width is exact while the cone excludes both poles.
func coneBoxes(raDeg, decDeg, halfAngleDeg float64) []Box {
	declo := decDeg - halfAngleDeg
	dechi := decDeg + halfAngleDeg

	var ralo, rahi float64
	switch {
	case declo < -90 || dechi > 90:
		// a pole is inside the cone
		return []Box{{0, 360, math.Max(declo, -90), math.Min(dechi, 90)}}
	case declo == -90 || dechi == 90:
		// a pole sits exactly on the rim
		ralo, rahi = raDeg-90, raDeg+90
	default:
		h := halfAngleDeg * sphere.RadPerDeg
		d := decDeg * sphere.RadPerDeg
		tt := math.Sin(h) / math.Sqrt(1-(math.Tan(h)*math.Tan(d))*(math.Tan(h)*math.Tan(d)))
		delta := math.Atan(tt/(math.Cos(d)*math.Cos(h))) * sphere.DegPerRad
		ralo, rahi = raDeg-delta, raDeg+delta
	}

	if ralo < 0 {
		ralo += 360
	}
	if rahi > 360 {
		rahi -= 360
	}
	if ralo <= rahi {
		return []Box{{ralo, rahi, declo, dechi}}
	}
	return []Box{
		{0, rahi, declo, dechi},
		{ralo, 360, declo, dechi},
	}
}

// rdPair pairs a vertex's angular and vector forms during box building.
type rdPair struct {
	ra, dec float64
	uv      sphere.Vec
}

func rotateLeft(p []rdPair) {
	head := p[0]
	copy(p, p[1:])
	p[len(p)-1] = head
}

// polygonBoxes bounds a polygon, splitting at the 0/360 seam when the
// vertex cycle crosses it an even number of times and pinning a pole when
// it crosses an odd number of times.
func polygonBoxes(dirs []Direction, uvavg sphere.Vec) ([]Box, error) {
	n := len(dirs)
	pairs := make([]rdPair, n)
	for i, d := range dirs {
		pairs[i] = rdPair{d.RA, d.Dec, d.UV}
	}

	// the seam walk needs the cycle to end off the prime meridian
	for rot := 0; pairs[n-1].ra == 0; rot++ {
		if rot == n {
			return nil, &GeometryError{"all vertices lie on the prime meridian"}
		}
		rotateLeft(pairs)
	}

	crossings, zeroCount := 0, 0
	lastra := pairs[n-1].ra
	for _, p := range pairs {
		ra := p.ra
		if ra == 0 {
			zeroCount++
			if lastra > 180 {
				ra = 360
			}
		}
		if math.Abs(ra-lastra) > 180 {
			crossings++
		}
		lastra = ra
	}

	var subs [][]rdPair
	var inits []Box
	switch {
	case crossings%2 == 1:
		// odd crossing count: one pole is inside the polygon
		pole := Box{0, 360, 90, 90}
		if uvavg.Z <= 0 {
			pole = Box{0, 360, -90, -90}
		}
		subs, inits = [][]rdPair{pairs}, []Box{pole}
	case crossings == 0:
		subs, inits = [][]rdPair{pairs}, []Box{{360, 0, 90, -90}}
	default:
		east, west := splitAtSeam(pairs, zeroCount)
		subs = [][]rdPair{east, west}
		inits = []Box{{360, 0, 90, -90}, {360, 0, 90, -90}}
	}

	boxes := make([]Box, 0, len(subs))
	for i := len(subs) - 1; i >= 0; i-- {
		boxes = append(boxes, boundSubPolygon(subs[i], inits[i]))
	}
	return boxes, nil
}

// splitAtSeam divides the vertex cycle into east ([0,...]) and west
// ([...,360]) sub-polygons, adding the interpolated seam vertex to both
// sides of every crossed edge.
func splitAtSeam(pairs []rdPair, zeroCount int) (east, west []rdPair) {
	n := len(pairs)
	if zeroCount > 0 {
		// start on a seam vertex so it pairs with the preceding side
		for i := 0; i < n && pairs[0].ra != 0; i++ {
			rotateLeft(pairs)
		}
	} else {
		// start right after a crossing
		for i := 0; i < n && math.Abs(pairs[0].ra-pairs[n-1].ra) < 180; i++ {
			rotateLeft(pairs)
		}
	}

	lastra, lastuv := pairs[n-1].ra, pairs[n-1].uv
	isWest := false
	for _, p := range pairs {
		ra := p.ra
		switch {
		case ra == 0:
			if lastra >= 180 {
				ra = 360
				west = append(west, rdPair{360, p.dec, p.uv})
				isWest = true
			} else {
				east = append(east, p)
				isWest = false
			}
		case math.Abs(lastra-ra) >= 180:
			// interpolate the edge to the y=0 plane
			k1 := -p.uv.Y / (lastuv.Y - p.uv.Y)
			mid := sphere.LinComb(1-k1, p.uv, k1, lastuv).Normalized()
			_, midDec := mid.RADec()
			west = append(west, rdPair{360, midDec, mid})
			east = append(east, rdPair{0, midDec, mid})
			isWest = ra >= 180
			if isWest {
				west = append(west, p)
			} else {
				east = append(east, p)
			}
		default:
			if isWest {
				west = append(west, p)
			} else {
				east = append(east, p)
			}
		}
		lastra, lastuv = ra, p.uv
	}
	return east, west
}

// boundSubPolygon expands the starting box over a sub-polygon's vertices
// and over each side's analytic Dec extremum, reached where the side's
// great circle turns over between the endpoints.
func boundSubPolygon(sub []rdPair, b Box) Box {
	lastuv := sub[len(sub)-1].uv
	for _, p := range sub {
		// the starting box is inverted, so one vertex may need to move
		// both bounds
		if p.ra > b.RAHi {
			b.RAHi = p.ra
		}
		if p.ra < b.RALo {
			b.RALo = p.ra
		}

		maxDec, minDec := p.dec, p.dec
		sideNormal := lastuv.Cross(p.uv)
		lastDz := sideNormal.Cross(lastuv).Z
		dz := sideNormal.Cross(p.uv).Z
		if lastDz*dz < 0 {
			// Z-rate changes sign along the side: the extremum direction
			// is perpendicular to the side normal and to the equator line
			equinox := sphere.Vec{Z: 1}.Cross(sideNormal)
			vto := sideNormal.UnitCross(equinox)
			minDot := lastuv.Dot(p.uv)
			for try := 0; try < 2; try++ {
				if lastuv.Dot(vto) > minDot && p.uv.Dot(vto) > minDot {
					ext := math.Asin(clamp(vto.Z, -1, 1)) * sphere.DegPerRad
					if ext > maxDec {
						maxDec = ext
					} else if ext < minDec {
						minDec = ext
					}
					break
				}
				vto = vto.Neg()
			}
		}
		if maxDec > b.DecHi {
			b.DecHi = maxDec
		}
		if minDec < b.DecLo {
			b.DecLo = minDec
		}
		lastuv = p.uv
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
