// Package frames converts directions between the J2000 dynamical frame
// and the ICRS frame the catalog is expressed in. The offset between the
// two is a fixed sub-arcsecond rotation, so callers that already work in
// ICRS never touch this package.
package frames

import (
	"github.com/starcat-io/starfov/internal/sphere"
)

const masPerRad = 3.6e6 * sphere.DegPerRad

// J2000ToICRS is the frame-rotation matrix taking J2000 coordinates to
// ICRS: Rz(-78.0 mas) * Ry(+16.6 mas) * Rx(-6.8 mas).
var J2000ToICRS = sphere.RotAxis(-78.0/masPerRad, 3).
	MulMat(sphere.RotAxis(16.6/masPerRad, 2)).
	MulMat(sphere.RotAxis(-6.8/masPerRad, 1))

// ICRSToJ2000 is the inverse rotation.
var ICRSToJ2000 = J2000ToICRS.Transpose()

// ToICRS rotates a J2000 vector into the ICRS frame.
func ToICRS(v sphere.Vec) sphere.Vec { return J2000ToICRS.MulVec(v) }

// ToJ2000 rotates an ICRS vector into the J2000 frame.
func ToJ2000(v sphere.Vec) sphere.Vec { return ICRSToJ2000.MulVec(v) }
