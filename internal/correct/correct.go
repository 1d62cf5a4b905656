// Package correct applies observer-dependent corrections to catalogued
// star directions: proper motion, parallax, and stellar aberration. Every
// correction is a small-angle displacement added to a unit vector and
// renormalized, and each one engages only when its observer context and
// per-star inputs are present.
package correct

import (
	"github.com/starcat-io/starfov/internal/sphere"
)

const (
	// RadPerMas converts milliarcseconds to radians.
	RadPerMas = sphere.RadPerDeg / 3.6e6
	// KmPerAU is the astronomical unit in kilometers.
	KmPerAU = 149597870.7
	// CKmPerS is the speed of light in kilometers per second.
	CKmPerS = 299792.458
)

// Observer is the optional observation context for one query. A nil
// field disables the correction that needs it: position (barycentric,
// km) drives parallax, velocity (km/s) drives aberration, and the epoch
// offset (Julian years past the catalog epoch) drives proper motion.
type Observer struct {
	PosKm     *sphere.Vec
	VelKmPerS *sphere.Vec
	Years     *float64
}

// NeedsStarMotion reports whether per-star parallax and proper-motion
// columns are required: they matter only when an observer position or
// epoch offset is present. Velocity alone needs no per-star data.
func (o Observer) NeedsStarMotion() bool {
	return o.PosKm != nil || o.Years != nil
}

// Apply corrects a star's nominal unit direction. Parallax is in mas,
// proper-motion rates in mas/yr along east (RA, including the cos Dec
// factor) and north (Dec); nil per-star values skip their terms. The
// east/north tangent basis comes from the raw direction, and the steps
// compose in light-path order: proper motion, then parallax, then
// aberration.
func (o Observer) Apply(uv sphere.Vec, parallaxMas, pmRAMasYr, pmDecMasYr *float64) sphere.Vec {
	out := uv

	if o.Years != nil && pmRAMasYr != nil && pmDecMasYr != nil &&
		(*pmRAMasYr != 0 || *pmDecMasYr != 0) {
		east := sphere.Vec{Z: 1}.Cross(uv)
		// a star exactly on a pole has no east tangent; leave it alone
		if n := east.Norm(); n > 0 {
			east = east.Scale(1 / n)
			north := uv.UnitCross(east)
			yr := *o.Years
			dnorth := yr * RadPerMas * *pmDecMasYr
			deast := yr * RadPerMas * *pmRAMasYr
			out = sphere.LinComb(dnorth, north, deast, east).Add(out).Normalized()
		}
	}

	if o.PosKm != nil && parallaxMas != nil && *parallaxMas != 0 {
		out = out.Sub(o.PosKm.Scale(*parallaxMas * RadPerMas / KmPerAU)).Normalized()
	}

	if o.VelKmPerS != nil {
		out = out.Add(o.VelKmPerS.Scale(1 / CKmPerS)).Normalized()
	}

	return out
}
