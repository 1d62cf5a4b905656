// Package query composes FOV geometry, star corrections and catalog
// streams into one magnitude-ordered search.
package query

import (
	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/fov"
	"github.com/starcat-io/starfov/internal/sphere"
)

// Params is one search request. Vertices describe a cone, box or polygon
// FOV; RALoHi/DecLoHi describe an interval FOV instead. Limit is taken as
// given (zero returns no stars); surfaces apply their own defaults.
type Params struct {
	Vertices []fov.Vertex
	RALoHi   []float64
	DecLoHi  []float64

	Limit  int
	Band   catalog.Band
	MagMin *float64
	MagMax *float64

	// Accepted and echoed, never applied.
	Buffer float64

	// J2000 marks the FOV vertices and observer vectors as J2000; they
	// are rotated into the catalog's ICRS frame before use.
	J2000 bool

	PPM     bool
	AllMags bool
	Heavy   bool

	ObsPos     *sphere.Vec
	ObsVel     *sphere.Vec
	ObsYears   *float64
	ObsYearArg string
}

// Star is one accepted catalog row plus its corrected direction.
type Star struct {
	catalog.Row

	UVCorrected  [3]float64 `json:"uvstar_corrected"`
	RACorrected  float64    `json:"rastar_corrected"`
	DecCorrected float64    `json:"decstar_corrected"`
	RADelta      float64    `json:"rastar_delta"`
	DecDelta     float64    `json:"decstar_delta"`
}

// Config echoes the request back in the response, resolved to what the
// search actually used.
type Config struct {
	Limit       int          `json:"limit"`
	MagMin      *float64     `json:"magmin"`
	MagMax      *float64     `json:"magmax"`
	MagType     catalog.Band `json:"mag_type"`
	RADecBuffer float64      `json:"radec_buffer"`
	GaiaSL3     string       `json:"gaia_sl3"`
	J2000       bool         `json:"j2000"`
	PPM         bool         `json:"ppm"`
	Mags        bool         `json:"mags"`
	Heavy       bool         `json:"heavy"`
	ObsPos      *[3]float64  `json:"obs_pos"`
	ObsVel      *[3]float64  `json:"obs_vel"`
	ObsYear     *float64     `json:"obs_year"`
	ObsYearArg  *string      `json:"obs_year_arg"`
	FOVVertices []fov.Vertex `json:"fov_vertices"`
	FOVType     string       `json:"fov_type"`
	RALoHi      []float64    `json:"ralohi"`
	DecLoHi     []float64    `json:"declohi"`
	RADecBoxes  []fov.Box    `json:"radec_boxes"`
}

// Response is the full search result.
type Response struct {
	Config Config `json:"config"`
	Stars  []Star `json:"stars"`
}
