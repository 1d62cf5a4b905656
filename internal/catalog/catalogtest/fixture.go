// Package catalogtest writes small Gaia extract databases for tests.
package catalogtest

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var lightSchema string

//go:embed schema_heavy.sql
var heavySchema string

// Star is one fixture row. The R*Tree entry is the star's point position
// with its magnitude range spanning whichever band magnitudes are set.
type Star struct {
	ID      int64
	RA, Dec float64

	G, BP, RP *float64

	Parallax, PMRA, PMDec *float64

	Heavy *Heavy
}

// Heavy fills a subset of the heavy columns; the rest stay NULL.
type Heavy struct {
	SourceID      int64
	RAError       *float64
	DecError      *float64
	RADecCorr     *float64
	PMRAPMDecCorr *float64
}

// F is shorthand for building optional column values.
func F(v float64) *float64 { return &v }

// Write creates a light database at path holding the given stars. When any
// star carries heavy columns it also creates the sibling heavy database
// (_heavy inserted before the extension).
func Write(t *testing.T, path string, stars []Star) {
	t.Helper()
	WriteLight(t, path, stars)
	for _, s := range stars {
		if s.Heavy != nil {
			ext := filepath.Ext(path)
			WriteHeavy(t, strings.TrimSuffix(path, ext)+"_heavy"+ext, stars)
			return
		}
	}
}

func WriteLight(t *testing.T, path string, stars []Star) {
	t.Helper()
	db := create(t, path, lightSchema)
	defer db.Close()

	for _, s := range stars {
		_, err := db.Exec(
			`INSERT INTO gaialight
			   (idoffset, ra, dec, parallax, pmra, pmdec,
			    phot_g_mean_mag, phot_bp_mean_mag, phot_rp_mean_mag)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.RA, s.Dec, opt(s.Parallax), opt(s.PMRA), opt(s.PMDec),
			opt(s.G), opt(s.BP), opt(s.RP))
		if err != nil {
			t.Fatalf("insert gaialight %d: %v", s.ID, err)
		}

		lo, hi := magRange(s)
		_, err = db.Exec(
			`INSERT INTO gaiartree (idoffset, ralo, rahi, declo, dechi, lomag, himag)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.RA, s.RA, s.Dec, s.Dec, lo, hi)
		if err != nil {
			t.Fatalf("insert gaiartree %d: %v", s.ID, err)
		}
	}
}

func WriteHeavy(t *testing.T, path string, stars []Star) {
	t.Helper()
	db := create(t, path, heavySchema)
	defer db.Close()

	for _, s := range stars {
		if s.Heavy == nil {
			continue
		}
		_, err := db.Exec(
			`INSERT INTO gaiaheavy
			   (idoffset, source_id, ra_error, dec_error, ra_dec_corr, pmra_pmdec_corr)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, s.Heavy.SourceID, opt(s.Heavy.RAError), opt(s.Heavy.DecError),
			opt(s.Heavy.RADecCorr), opt(s.Heavy.PMRAPMDecCorr))
		if err != nil {
			t.Fatalf("insert gaiaheavy %d: %v", s.ID, err)
		}
	}
}

func create(t *testing.T, path, schema string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("create fixture %s: %v", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("apply fixture schema: %v", err)
	}
	return db
}

func opt(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func magRange(s Star) (lo, hi float64) {
	first := true
	for _, m := range []*float64{s.G, s.BP, s.RP} {
		if m == nil {
			continue
		}
		if first || *m < lo {
			lo = *m
		}
		if first || *m > hi {
			hi = *m
		}
		first = false
	}
	return lo, hi
}
