// Package fov models a field of view on the celestial sphere as a tagged
// variant (cone, RA/Dec box, polygon, or raw RA/Dec ranges), computes the
// RA/Dec bounding boxes that prune an indexed range query, and classifies
// candidate directions as inside or outside the region.
package fov

import (
	"fmt"
	"math"

	"github.com/starcat-io/starfov/internal/sphere"
)

// Shape tags the FOV variant.
type Shape int

const (
	// ShapeCone is an axis direction plus a half-angle in (0,90) degrees.
	ShapeCone Shape = iota + 1
	// ShapeBox is two opposite-corner directions treated as RA/Dec
	// intervals, not a geometric polygon.
	ShapeBox
	// ShapePolygon is an ordered ring of three or more directions, all
	// within one hemisphere.
	ShapePolygon
	// ShapeRanges is explicit RA and Dec intervals with wrap-through-zero
	// allowed on the RA side.
	ShapeRanges
)

// String returns the wire name of the shape as used in result echoes.
func (s Shape) String() string {
	switch s {
	case ShapeCone:
		return "circle"
	case ShapeBox:
		return "radecbox"
	case ShapePolygon:
		return "polygon"
	case ShapeRanges:
		return "radecranges"
	}
	return "unknown"
}

// Vertex is one raw FOV input term: two values are RA,Dec in degrees,
// three are Cartesian X,Y,Z in any consistent units. A single value is
// only meaningful as the second term of a cone (the half-angle).
type Vertex []float64

// Direction is a parsed vertex carrying both angular and unit-vector
// forms. RA is in [0,360] degrees, Dec in [-90,90].
type Direction struct {
	RA, Dec float64
	UV      sphere.Vec
}

// ParseVertex validates and converts one raw vertex.
func ParseVertex(raw Vertex) (Direction, error) {
	switch len(raw) {
	case 2:
		ra, dec := raw[0], raw[1]
		if !(ra >= 0 && ra <= 360) {
			return Direction{}, &ValidationError{fmt.Sprintf("RA %v out of range [0,360]", ra)}
		}
		if !(dec >= -90 && dec <= 90) {
			return Direction{}, &ValidationError{fmt.Sprintf("Dec %v out of range [-90,90]", dec)}
		}
		return Direction{RA: ra, Dec: dec, UV: sphere.FromRADec(ra, dec)}, nil
	case 3:
		v := sphere.Vec{X: raw[0], Y: raw[1], Z: raw[2]}
		if !(v.Norm() > 0) {
			return Direction{}, &ValidationError{"vertex vector has zero length"}
		}
		uv := v.Normalized()
		ra, dec := uv.RADec()
		return Direction{RA: ra, Dec: dec, UV: uv}, nil
	default:
		return Direction{}, &ValidationError{fmt.Sprintf("vertex has %d components, want 2 (RA,Dec) or 3 (X,Y,Z)", len(raw))}
	}
}

// FOV is an immutable field of view. All derived state (bounding boxes,
// convexity, inward edge normals, the local classification frame) is
// computed once at construction.
type FOV struct {
	shape Shape
	raws  []Vertex
	dirs  []Direction

	// cone
	halfAngle float64
	minCos    float64
	axis      sphere.Vec

	// ranges
	ralohi  []float64
	declohi []float64

	boxes []Box

	// polygon
	uvavg       sphere.Vec
	convex      bool
	inwardNorms []sphere.Vec
	toLocal     sphere.Mat3
	sides       []side
}

// New builds an FOV from raw vertices: [dir, half-angle] is a cone,
// [dir, dir] an RA/Dec box, three or more directions a polygon.
func New(raws []Vertex) (*FOV, error) {
	if len(raws) < 2 {
		return nil, &ValidationError{"an FOV needs at least two terms"}
	}
	f := &FOV{raws: raws}
	if len(raws) == 2 && len(raws[1]) == 1 {
		return f.initCone(raws[0], raws[1][0])
	}
	dirs := make([]Direction, 0, len(raws))
	for _, raw := range raws {
		d, err := ParseVertex(raw)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	f.dirs = dirs
	if len(dirs) == 2 {
		return f.initBox()
	}
	return f.initPolygon()
}

// NewCone builds a conical FOV from an axis vertex and a half-angle in
// degrees.
func NewCone(axis Vertex, halfAngleDeg float64) (*FOV, error) {
	return New([]Vertex{axis, {halfAngleDeg}})
}

// NewBox builds an RA/Dec box FOV from two opposite corners.
func NewBox(a, b Vertex) (*FOV, error) {
	return New([]Vertex{a, b})
}

// NewPolygon builds a polygonal FOV from three or more vertices.
func NewPolygon(verts ...Vertex) (*FOV, error) {
	return New(verts)
}

// NewRanges builds an FOV from explicit [RAlo,RAhi] and [DEClo,DEChi]
// intervals in degrees. RAlo >= RAhi wraps through 360/0 and splits into
// two boxes; the Dec interval must be ordered.
func NewRanges(ralohi, declohi []float64) (*FOV, error) {
	if len(ralohi) != 2 || len(declohi) != 2 {
		return nil, &ValidationError{"ralohi and declohi each need exactly two values"}
	}
	for _, ra := range ralohi {
		if !(ra >= 0 && ra <= 360) {
			return nil, &ValidationError{fmt.Sprintf("RA %v out of range [0,360]", ra)}
		}
	}
	for _, dec := range declohi {
		if !(dec >= -90 && dec <= 90) {
			return nil, &ValidationError{fmt.Sprintf("Dec %v out of range [-90,90]", dec)}
		}
	}
	if !(declohi[0] < declohi[1]) {
		return nil, &ValidationError{fmt.Sprintf("Dec range [%v,%v] is not ordered", declohi[0], declohi[1])}
	}
	f := &FOV{
		shape:   ShapeRanges,
		ralohi:  []float64{ralohi[0], ralohi[1]},
		declohi: []float64{declohi[0], declohi[1]},
	}
	if ralohi[0] < ralohi[1] {
		f.boxes = []Box{{ralohi[0], ralohi[1], declohi[0], declohi[1]}}
	} else {
		f.boxes = []Box{
			{ralohi[0], 360, declohi[0], declohi[1]},
			{0, ralohi[1], declohi[0], declohi[1]},
		}
	}
	return f, nil
}

func (f *FOV) initCone(axisRaw Vertex, halfAngleDeg float64) (*FOV, error) {
	d, err := ParseVertex(axisRaw)
	if err != nil {
		return nil, err
	}
	if !(halfAngleDeg > 0) {
		return nil, &GeometryError{fmt.Sprintf("cone half-angle %v is not greater than 0 degrees", halfAngleDeg)}
	}
	if !(halfAngleDeg < 90) {
		return nil, &GeometryError{fmt.Sprintf("cone half-angle %v is not less than 90 degrees", halfAngleDeg)}
	}
	f.shape = ShapeCone
	f.dirs = []Direction{d}
	f.halfAngle = halfAngleDeg
	f.minCos = math.Cos(halfAngleDeg * sphere.RadPerDeg)
	f.axis = d.UV
	f.boxes = coneBoxes(d.RA, d.Dec, halfAngleDeg)
	return f, nil
}

func (f *FOV) initBox() (*FOV, error) {
	f.shape = ShapeBox
	f.boxes = boxBoxes(f.dirs[0], f.dirs[1])
	return f, nil
}

func (f *FOV) initPolygon() (*FOV, error) {
	f.shape = ShapePolygon
	n := len(f.dirs)
	for i := range f.dirs {
		if f.dirs[i].UV == f.dirs[(i+1)%n].UV {
			return nil, &GeometryError{"repeated consecutive vertex"}
		}
	}

	sum := sphere.Vec{}
	for _, d := range f.dirs {
		sum = sum.Add(d.UV)
	}
	f.uvavg = sum.Normalized()
	for _, d := range f.dirs {
		// written to also reject a degenerate (zero) vertex sum
		if !(f.uvavg.Dot(d.UV) > 0) {
			return nil, &GeometryError{"vertices are not all in the same hemisphere"}
		}
	}

	if err := f.buildLocalFrame(); err != nil {
		return nil, err
	}
	f.convex, f.inwardNorms = computeConvexity(f.dirs)

	boxes, err := polygonBoxes(f.dirs, f.uvavg)
	if err != nil {
		return nil, err
	}
	f.boxes = boxes
	return f, nil
}

// Shape returns the variant tag.
func (f *FOV) Shape() Shape { return f.shape }

// HalfAngle returns the cone half-angle in degrees, or 0 for other shapes.
func (f *FOV) HalfAngle() float64 { return f.halfAngle }

// Convex reports whether a polygonal FOV classified as convex. It is
// always false for other shapes.
func (f *FOV) Convex() bool { return f.convex }

// RawVertices returns the raw input terms the FOV was built from, for
// result echoes. Nil for a ranges FOV.
func (f *FOV) RawVertices() []Vertex { return f.raws }

// Ranges returns the explicit RA and Dec intervals of a ranges FOV, or
// nil slices for other shapes.
func (f *FOV) Ranges() (ralohi, declohi []float64) { return f.ralohi, f.declohi }

// Boxes returns the RA/Dec bounding boxes for indexed range queries, one
// or two entries. The union of the boxes contains every direction the
// classifier accepts.
func (f *FOV) Boxes() []Box {
	out := make([]Box, len(f.boxes))
	copy(out, f.boxes)
	return out
}
