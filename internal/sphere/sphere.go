// Package sphere provides unit-vector and rotation-matrix primitives for
// directions on the celestial sphere. It knows nothing about catalogs or
// astronomy beyond the RA/Dec angle convention.
package sphere

import (
	"errors"
	"math"
)

// DegPerRad converts radians to degrees.
const DegPerRad = 180.0 / math.Pi

// RadPerDeg converts degrees to radians.
const RadPerDeg = math.Pi / 180.0

// Vec is a 3D vector. Directions are unit vectors in a right-handed
// equatorial frame: +X toward RA=0 Dec=0, +Z toward Dec=+90.
type Vec struct {
	X, Y, Z float64
}

// FromRADec builds the unit vector for a right ascension and declination
// given in degrees.
func FromRADec(raDeg, decDeg float64) Vec {
	ra := raDeg * RadPerDeg
	dec := decDeg * RadPerDeg
	cd := math.Cos(dec)
	return Vec{
		X: cd * math.Cos(ra),
		Y: cd * math.Sin(ra),
		Z: math.Sin(dec),
	}
}

// RADec returns the right ascension in [0,360) and declination in [-90,90],
// both in degrees. The vector need not be normalized.
func (v Vec) RADec() (raDeg, decDeg float64) {
	ra := math.Atan2(v.Y, v.X) * DegPerRad
	if ra < 0 {
		ra += 360
	}
	if ra >= 360 {
		ra -= 360
	}
	dec := math.Atan2(v.Z, math.Hypot(v.X, v.Y)) * DegPerRad
	return ra, dec
}

// Norm returns the magnitude of the vector.
func (v Vec) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction, or the zero
// vector if v is zero.
func (v Vec) Normalized() Vec {
	n := v.Norm()
	if n == 0 {
		return Vec{}
	}
	return Vec{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec) Scale(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec) Add(u Vec) Vec {
	return Vec{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec) Sub(u Vec) Vec {
	return Vec{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Neg returns the vector with all components negated.
func (v Vec) Neg() Vec {
	return Vec{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the scalar product of two vectors.
func (v Vec) Dot(u Vec) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns the vector product v x u.
func (v Vec) Cross(u Vec) Vec {
	return Vec{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// UnitCross returns the normalized vector product v x u.
func (v Vec) UnitCross(u Vec) Vec {
	return v.Cross(u).Normalized()
}

// LinComb returns a*v + b*u.
func LinComb(a float64, v Vec, b float64, u Vec) Vec {
	return Vec{
		X: a*v.X + b*u.X,
		Y: a*v.Y + b*u.Y,
		Z: a*v.Z + b*u.Z,
	}
}

// Sep returns the angular separation between two vectors in radians,
// numerically stable for both small and near-antipodal angles.
func (v Vec) Sep(u Vec) float64 {
	return math.Atan2(v.Cross(u).Norm(), v.Dot(u))
}

// Mat3 is a row-major 3x3 rotation matrix. Multiplying a vector by the
// matrix yields the vector's coordinates in the rotated frame.
type Mat3 [3][3]float64

// Identity returns the identity matrix.
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RotAxis returns the frame rotation by theta radians about the given
// axis (1=X, 2=Y, 3=Z): applying the matrix to a vector expresses that
// vector in a frame rotated by +theta about the axis.
func RotAxis(theta float64, axis int) Mat3 {
	c, s := math.Cos(theta), math.Sin(theta)
	i1 := axis - 1
	i2 := axis % 3
	i3 := (axis + 1) % 3
	var m Mat3
	m[i1][i1] = 1
	m[i2][i2] = c
	m[i2][i3] = s
	m[i3][i2] = -s
	m[i3][i3] = c
	return m
}

// ErrDegenerateFrame reports that a frame definition's vectors are
// parallel and cannot span a plane.
var ErrDegenerateFrame = errors.New("sphere: frame vectors are parallel")

// TwoVec builds the rotation into a frame whose +Z axis lies along axdef
// and whose +X axis is the component of plndef orthogonal to axdef. The
// rows of the result are the frame's basis vectors.
func TwoVec(axdef, plndef Vec) (Mat3, error) {
	z := axdef.Normalized()
	x := plndef.Sub(z.Scale(plndef.Dot(z)))
	if x.Norm() < 1e-15 {
		return Mat3{}, ErrDegenerateFrame
	}
	x = x.Normalized()
	y := z.Cross(x)
	return Mat3{
		{x.X, x.Y, x.Z},
		{y.X, y.Y, y.Z},
		{z.X, z.Y, z.Z},
	}, nil
}

// MulVec applies the matrix to a vector.
func (m Mat3) MulVec(v Vec) Vec {
	return Vec{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// MulMat returns the matrix product m*n.
func (m Mat3) MulMat(n Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return out
}

// Transpose returns the transposed matrix, which for a rotation is also
// its inverse.
func (m Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}
