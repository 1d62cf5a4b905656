package sphere

import (
	"math"
	"testing"
)

func almostEq(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecAlmostEq(a, b Vec, tol float64) bool {
	return almostEq(a.X, b.X, tol) && almostEq(a.Y, b.Y, tol) && almostEq(a.Z, b.Z, tol)
}

func TestFromRADecKnownDirections(t *testing.T) {
	cases := []struct {
		name    string
		ra, dec float64
		want    Vec
	}{
		{"x-axis", 0, 0, Vec{1, 0, 0}},
		{"y-axis", 90, 0, Vec{0, 1, 0}},
		{"north-pole", 0, 90, Vec{0, 0, 1}},
		{"south-pole", 120, -90, Vec{0, 0, -1}},
		{"anti-x", 180, 0, Vec{-1, 0, 0}},
	}
	for _, tc := range cases {
		got := FromRADec(tc.ra, tc.dec)
		if !vecAlmostEq(got, tc.want, 1e-15) {
			t.Errorf("%s: FromRADec(%v,%v) = %+v, want %+v", tc.name, tc.ra, tc.dec, got, tc.want)
		}
	}
}

func TestRADecRoundTrip(t *testing.T) {
	cases := []struct {
		ra, dec float64
	}{
		{0, 0},
		{90, 45},
		{180, -45},
		{270, 89.9},
		{355, -89.9},
		{123.456789, -12.3456789},
		{359.999999, 0.5},
		{0.000001, -0.5},
		{345, 89.3},
		{15, 89.8},
	}
	for _, tc := range cases {
		v := FromRADec(tc.ra, tc.dec)
		if !almostEq(v.Norm(), 1, 1e-14) {
			t.Fatalf("FromRADec(%v,%v) norm = %v, want 1", tc.ra, tc.dec, v.Norm())
		}
		ra, dec := v.RADec()
		if !almostEq(ra, tc.ra, 1e-9) || !almostEq(dec, tc.dec, 1e-9) {
			t.Errorf("round trip (%v,%v) -> (%v,%v)", tc.ra, tc.dec, ra, dec)
		}
	}
}

func TestRADecRange(t *testing.T) {
	ra, dec := Vec{1, -1e-18, 0}.RADec()
	if ra < 0 || ra >= 360 {
		t.Fatalf("RA %v outside [0,360)", ra)
	}
	if dec != 0 {
		t.Fatalf("dec = %v, want 0", dec)
	}
}

func TestCrossProducts(t *testing.T) {
	x, y, z := Vec{1, 0, 0}, Vec{0, 1, 0}, Vec{0, 0, 1}
	if got := x.Cross(y); !vecAlmostEq(got, z, 1e-15) {
		t.Errorf("x cross y = %+v, want %+v", got, z)
	}
	if got := y.Cross(x); !vecAlmostEq(got, z.Neg(), 1e-15) {
		t.Errorf("y cross x = %+v, want %+v", got, z.Neg())
	}
	long := Vec{0, 3, 0}
	if got := x.UnitCross(long); !vecAlmostEq(got, z, 1e-15) {
		t.Errorf("unit cross not normalized: %+v", got)
	}
}

func TestLinComb(t *testing.T) {
	got := LinComb(2, Vec{1, 0, 0}, 3, Vec{0, 1, 0})
	if !vecAlmostEq(got, Vec{2, 3, 0}, 1e-15) {
		t.Fatalf("LinComb = %+v", got)
	}
}

func TestSep(t *testing.T) {
	a, b := FromRADec(0, 0), FromRADec(90, 0)
	if got := a.Sep(b); !almostEq(got, math.Pi/2, 1e-12) {
		t.Errorf("sep(0,90deg) = %v, want pi/2", got)
	}
	c := FromRADec(0, 0.001)
	if got := a.Sep(c); !almostEq(got, 0.001*RadPerDeg, 1e-12) {
		t.Errorf("small sep = %v, want %v", got, 0.001*RadPerDeg)
	}
	if got := a.Sep(a.Neg()); !almostEq(got, math.Pi, 1e-12) {
		t.Errorf("antipodal sep = %v, want pi", got)
	}
}

func TestRotAxisKnown(t *testing.T) {
	cases := []struct {
		name  string
		theta float64
		axis  int
		in    Vec
		want  Vec
	}{
		{"z-quarter", math.Pi / 2, 3, Vec{1, 0, 0}, Vec{0, -1, 0}},
		{"z-quarter-y", math.Pi / 2, 3, Vec{0, 1, 0}, Vec{1, 0, 0}},
		{"x-quarter", math.Pi / 2, 1, Vec{0, 1, 0}, Vec{0, 0, -1}},
		{"y-quarter", math.Pi / 2, 2, Vec{0, 0, 1}, Vec{-1, 0, 0}},
	}
	for _, tc := range cases {
		got := RotAxis(tc.theta, tc.axis).MulVec(tc.in)
		if !vecAlmostEq(got, tc.want, 1e-15) {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestRotAxisInverse(t *testing.T) {
	m := RotAxis(0.7, 2)
	inv := m.Transpose()
	v := FromRADec(33, -21)
	back := inv.MulVec(m.MulVec(v))
	if !vecAlmostEq(back, v, 1e-14) {
		t.Fatalf("transpose did not invert rotation: %+v vs %+v", back, v)
	}
}

func TestTwoVecFrame(t *testing.T) {
	ax := FromRADec(30, 40)
	pl := FromRADec(80, 10)
	m, err := TwoVec(ax, pl)
	if err != nil {
		t.Fatalf("TwoVec: %v", err)
	}

	if got := m.MulVec(ax); !vecAlmostEq(got, Vec{0, 0, 1}, 1e-14) {
		t.Errorf("axis not mapped to +Z: %+v", got)
	}
	got := m.MulVec(pl)
	if !almostEq(got.Y, 0, 1e-14) {
		t.Errorf("plane vector Y = %v, want 0", got.Y)
	}
	if got.X <= 0 {
		t.Errorf("plane vector X = %v, want > 0", got.X)
	}

	// rows are an orthonormal right-handed basis
	rows := [3]Vec{
		{m[0][0], m[0][1], m[0][2]},
		{m[1][0], m[1][1], m[1][2]},
		{m[2][0], m[2][1], m[2][2]},
	}
	for i := 0; i < 3; i++ {
		if !almostEq(rows[i].Norm(), 1, 1e-14) {
			t.Errorf("row %d norm = %v", i, rows[i].Norm())
		}
		if d := rows[i].Dot(rows[(i+1)%3]); !almostEq(d, 0, 1e-14) {
			t.Errorf("rows %d,%d dot = %v", i, (i+1)%3, d)
		}
	}
	if det := rows[0].Dot(rows[1].Cross(rows[2])); !almostEq(det, 1, 1e-14) {
		t.Errorf("det = %v, want 1", det)
	}
}

func TestTwoVecDegenerate(t *testing.T) {
	ax := FromRADec(10, 20)
	if _, err := TwoVec(ax, ax.Scale(2)); err == nil {
		t.Fatal("expected error for parallel frame vectors")
	}
}
