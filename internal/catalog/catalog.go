// Package catalog defines the row and cursor contract between FOV queries
// and the spatially indexed star stores that serve them.
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/starcat-io/starfov/internal/fov"
)

// Band selects which photometric band a query filters and sorts on.
type Band string

const (
	BandG  Band = "g"
	BandBP Band = "bp"
	BandRP Band = "rp"
)

// Column returns the magnitude column backing the band, or "" when the
// band is not one of g, bp, rp.
func (b Band) Column() string {
	switch b {
	case BandG, BandBP, BandRP:
		return "phot_" + string(b) + "_mean_mag"
	}
	return ""
}

// ParseBand maps a user-supplied band name to a Band.
func ParseBand(s string) (Band, error) {
	b := Band(s)
	if b.Column() == "" {
		return "", fmt.Errorf("unknown magnitude band %q (want g, bp or rp)", s)
	}
	return b, nil
}

// Request selects the column set and magnitude window of a cursor. Band is
// required; the zero value of everything else selects the minimal columns
// with no magnitude bounds.
type Request struct {
	Band   Band
	MagMin *float64 // inclusive lower magnitude bound
	MagMax *float64 // inclusive upper magnitude bound

	Astrometry bool // parallax and proper-motion columns
	AllMags    bool // magnitudes in all three bands
	Heavy      bool // source_id, per-solution errors and correlations
}

// Source opens magnitude-ordered row streams over rectangular RA/Dec
// regions of a star catalog.
type Source interface {
	Open(ctx context.Context, box fov.Box, req Request) (Cursor, error)
}

// Cursor iterates rows in ascending order of the requested band's
// magnitude. Next reports false once the stream is exhausted; Close is
// idempotent and must be called on every cursor, consumed or not.
type Cursor interface {
	Next() (Row, bool, error)
	Close() error
}

// SourceID is a Gaia source identifier. It serializes as a JSON string.
type SourceID int64

func (s SourceID) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, strconv.FormatInt(int64(s), 10)), nil
}

func (s *SourceID) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		str = string(b)
	}
	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("source_id %s: %w", b, err)
	}
	*s = SourceID(v)
	return nil
}

// Row is one catalog star. The nominal columns are always populated; the
// optional groups are non-nil only when the corresponding Request flag
// selected them and the stored value was not NULL. The astrometry keys
// stay in the serialized form even when unselected, as nulls.
type Row struct {
	IDOffset int64   `json:"idoffset"`
	RA       float64 `json:"ra"`
	Dec      float64 `json:"dec"`
	Mag      float64 `json:"mean_mag"`

	// Request.Astrometry
	Parallax *float64 `json:"parallax"`
	PMRA     *float64 `json:"pmra"`
	PMDec    *float64 `json:"pmdec"`

	// Request.AllMags
	MagG  *float64 `json:"phot_g_mean_mag,omitempty"`
	MagBP *float64 `json:"phot_bp_mean_mag,omitempty"`
	MagRP *float64 `json:"phot_rp_mean_mag,omitempty"`

	// Request.Heavy
	SourceID          *SourceID `json:"source_id,omitempty"`
	RAError           *float64  `json:"ra_error,omitempty"`
	DecError          *float64  `json:"dec_error,omitempty"`
	ParallaxError     *float64  `json:"parallax_error,omitempty"`
	PMRAError         *float64  `json:"pmra_error,omitempty"`
	PMDecError        *float64  `json:"pmdec_error,omitempty"`
	RADecCorr         *float64  `json:"ra_dec_corr,omitempty"`
	RAParallaxCorr    *float64  `json:"ra_parallax_corr,omitempty"`
	RAPMRACorr        *float64  `json:"ra_pmra_corr,omitempty"`
	RAPMDecCorr       *float64  `json:"ra_pmdec_corr,omitempty"`
	DecParallaxCorr   *float64  `json:"dec_parallax_corr,omitempty"`
	DecPMRACorr       *float64  `json:"dec_pmra_corr,omitempty"`
	DecPMDecCorr      *float64  `json:"dec_pmdec_corr,omitempty"`
	ParallaxPMRACorr  *float64  `json:"parallax_pmra_corr,omitempty"`
	ParallaxPMDecCorr *float64  `json:"parallax_pmdec_corr,omitempty"`
	PMRAPMDecCorr     *float64  `json:"pmra_pmdec_corr,omitempty"`
}
