package fov

import (
	"math"
	"math/rand"
	"testing"

	"github.com/starcat-io/starfov/internal/sphere"
)

func mustFOV(t *testing.T, raws ...Vertex) *FOV {
	t.Helper()
	f, err := New(raws)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

// TestBoxesContainEveryAcceptedDirection sweeps a dense RA/Dec grid over
// each fixture's band and checks the pruning guarantee: a direction the
// classifier accepts always lies inside the box union.
func TestBoxesContainEveryAcceptedDirection(t *testing.T) {
	fixtures := []struct {
		name         string
		f            *FOV
		decLo, decHi float64
	}{
		{"polar box", mustFOV(t, Vertex{315, 89.2}, Vertex{15, 89.8}), 88, 90},
		{"polar cone", mustFOV(t, Vertex{345, 89.3}, Vertex{0.5}), 88, 90},
		{"notched quad", mustFOV(t, Vertex{30, 89}, Vertex{0, 88.5}, Vertex{5, 88.9}, Vertex{270, 89}), 88, 90},
		{"convex quad", mustFOV(t, Vertex{30, 89}, Vertex{0, 88.5}, Vertex{315, 88.5}, Vertex{270, 89}), 88, 90},
		{"self-intersecting quad", mustFOV(t, Vertex{225, 89}, Vertex{0, 88.5}, Vertex{315, 88.5}, Vertex{90, 89}), 88, 90},
		{"seam quad", mustFOV(t, Vertex{350, 10}, Vertex{10, 10}, Vertex{10, -10}, Vertex{350, -10}), -11, 11},
		{"equatorial cone", mustFOV(t, Vertex{10, 0}, Vertex{30}), -31, 31},
	}
	const raN, decN = 240, 121
	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			boxes := fx.f.Boxes()
			inside := 0
			for i := 0; i < raN; i++ {
				ra := float64(i) * 360 / raN
				for j := 0; j < decN; j++ {
					dec := fx.decLo + float64(j)*(fx.decHi-fx.decLo)/(decN-1)
					if !fx.f.ContainsRADec(ra, dec) {
						continue
					}
					inside++
					if !inBoxes(boxes, ra, dec, 1e-9) {
						t.Fatalf("accepted direction (%v, %v) outside boxes %v", ra, dec, boxes)
					}
				}
			}
			if inside == 0 {
				t.Fatal("grid never entered the FOV")
			}
		})
	}
}

// TestConvexFastPathMatchesCrossingTest compares the half-plane test a
// convex polygon uses against the general crossing-number test on random
// directions, dense near the region and sparse over the whole sphere.
func TestConvexFastPathMatchesCrossingTest(t *testing.T) {
	f := mustFOV(t, Vertex{30, 89}, Vertex{0, 88.5}, Vertex{315, 88.5}, Vertex{270, 89})
	if !f.Convex() {
		t.Fatal("quad did not classify convex")
	}
	rng := rand.New(rand.NewSource(1))
	check := func(uv sphere.Vec) {
		t.Helper()
		if got, want := f.containsConvex(uv), f.containsCrossing(uv); got != want {
			ra, dec := uv.RADec()
			t.Fatalf("half-plane test = %v, crossing test = %v at (%v, %v)", got, want, ra, dec)
		}
	}
	for i := 0; i < 10000; i++ {
		check(sphere.FromRADec(rng.Float64()*360, 88+rng.Float64()*2))
	}
	for i := 0; i < 10000; i++ {
		dec := math.Asin(2*rng.Float64()-1) * sphere.DegPerRad
		check(sphere.FromRADec(rng.Float64()*360, dec))
	}
}

func TestNonConvexQuadClassification(t *testing.T) {
	f := mustFOV(t, Vertex{30, 89}, Vertex{0, 88.5}, Vertex{5, 88.9}, Vertex{270, 89})
	if f.Convex() {
		t.Fatal("quad with a notch classified convex")
	}
	tests := []struct {
		ra, dec float64
		want    bool
	}{
		{341.57, 89.37, true},  // interior
		{326.31, 89.64, false}, // past the long western side
		{350.54, 89.09, false}, // in the notch, inside the convex hull
		{120, 88.6, false},
	}
	for _, tt := range tests {
		if got := f.ContainsRADec(tt.ra, tt.dec); got != tt.want {
			t.Errorf("ContainsRADec(%v, %v) = %v, want %v", tt.ra, tt.dec, got, tt.want)
		}
	}
}

func TestConvexQuadClassification(t *testing.T) {
	f := mustFOV(t, Vertex{30, 89}, Vertex{0, 88.5}, Vertex{315, 88.5}, Vertex{270, 89})
	tests := []struct {
		ra, dec float64
		want    bool
	}{
		{339.44, 89.15, true},
		{345, 88.7, true},
		{200, 88.8, false},
		{10, 89.9, false}, // pole side, outside the quad
	}
	for _, tt := range tests {
		if got := f.ContainsRADec(tt.ra, tt.dec); got != tt.want {
			t.Errorf("ContainsRADec(%v, %v) = %v, want %v", tt.ra, tt.dec, got, tt.want)
		}
	}
	if f.Contains(sphere.Vec{Z: 1}) {
		t.Fatal("celestial pole is inside the quad")
	}
}

// TestSelfIntersectingQuadUsesParity pins down the behavior for a vertex
// order whose sides cross: the polygon is non-convex and membership
// follows crossing parity, so both lobes count as inside.
func TestSelfIntersectingQuadUsesParity(t *testing.T) {
	f := mustFOV(t, Vertex{225, 89}, Vertex{0, 88.5}, Vertex{315, 88.5}, Vertex{90, 89})
	if f.Convex() {
		t.Fatal("self-intersecting quad classified convex")
	}
	tests := []struct {
		ra, dec float64
		want    bool
	}{
		{340.71, 88.94, true}, // eastern lobe
		{345.96, 89.59, true}, // western lobe
		{29.05, 88.97, false},
		{120, 88.6, false},
	}
	for _, tt := range tests {
		if got := f.ContainsRADec(tt.ra, tt.dec); got != tt.want {
			t.Errorf("ContainsRADec(%v, %v) = %v, want %v", tt.ra, tt.dec, got, tt.want)
		}
	}
}

func TestPoleRingClassification(t *testing.T) {
	f := mustFOV(t, Vertex{0, 80}, Vertex{90, 80}, Vertex{180, 80}, Vertex{270, 80})
	if !f.Convex() {
		t.Fatal("ring did not classify convex")
	}
	if !f.Contains(sphere.Vec{Z: 1}) {
		t.Fatal("enclosed pole is outside the ring")
	}
	if f.Contains(sphere.Vec{Z: -1}) {
		t.Fatal("opposite pole is inside the ring")
	}
	tests := []struct {
		ra, dec float64
		want    bool
	}{
		{123, 85, true},
		{1, 81, true},   // near a vertex the boundary drops to the vertex Dec
		{45, 81, false}, // midway along a side it bulges toward the pole
		{200, 79, false},
	}
	for _, tt := range tests {
		if got := f.ContainsRADec(tt.ra, tt.dec); got != tt.want {
			t.Errorf("ContainsRADec(%v, %v) = %v, want %v", tt.ra, tt.dec, got, tt.want)
		}
	}
}

func TestIntervalShapesClassifyThroughAngles(t *testing.T) {
	box, err := NewBox(Vertex{350, -10}, Vertex{10, 10})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	if !box.Contains(sphere.FromRADec(355, 5)) {
		t.Fatal("direction inside the wrap box rejected")
	}
	if box.Contains(sphere.FromRADec(45, 0)) {
		t.Fatal("direction outside the wrap box accepted")
	}

	ranges, err := NewRanges([]float64{350, 10}, []float64{-10, 10})
	if err != nil {
		t.Fatalf("NewRanges: %v", err)
	}
	if !ranges.Contains(sphere.FromRADec(0.5, 0)) {
		t.Fatal("direction inside the ranges rejected")
	}
}
