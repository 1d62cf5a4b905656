package sqlitestore

import (
	"database/sql"

	"github.com/starcat-io/starfov/internal/catalog"
)

// cursor adapts sql.Rows to catalog.Cursor. Rows whose magnitude is NULL
// in the requested band cannot be ranked and are skipped; SQLite sorts
// them ahead of every real value, so they are gone before the first row
// this cursor yields.
type cursor struct {
	rows   *sql.Rows
	req    catalog.Request
	closed bool
}

func (c *cursor) Next() (catalog.Row, bool, error) {
	if c.closed {
		return catalog.Row{}, false, nil
	}
	for c.rows.Next() {
		row, ok, err := c.scan()
		if err != nil {
			return catalog.Row{}, false, &catalog.ResourceError{Op: "scan row", Err: err}
		}
		if !ok {
			continue
		}
		return row, true, nil
	}
	if err := c.rows.Err(); err != nil {
		return catalog.Row{}, false, &catalog.ResourceError{Op: "scan row", Err: err}
	}
	return catalog.Row{}, false, nil
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.rows.Close(); err != nil {
		return &catalog.ResourceError{Op: "close cursor", Err: err}
	}
	return nil
}

// scan reads the current row. ok is false for a NULL-magnitude row.
func (c *cursor) scan() (catalog.Row, bool, error) {
	var (
		row catalog.Row
		mag sql.NullFloat64

		px, pmra, pmdec    sql.NullFloat64
		magG, magBP, magRP sql.NullFloat64

		srcID sql.NullInt64
		hf    [15]sql.NullFloat64
	)

	dest := []any{&mag, &row.RA, &row.Dec, &row.IDOffset}
	if c.req.Astrometry {
		dest = append(dest, &px, &pmra, &pmdec)
	}
	if c.req.AllMags {
		dest = append(dest, &magG, &magBP, &magRP)
	}
	if c.req.Heavy {
		dest = append(dest, &srcID)
		for i := range hf {
			dest = append(dest, &hf[i])
		}
	}

	if err := c.rows.Scan(dest...); err != nil {
		return catalog.Row{}, false, err
	}
	if !mag.Valid {
		return catalog.Row{}, false, nil
	}
	row.Mag = mag.Float64

	if c.req.Astrometry {
		row.Parallax = fptr(px)
		row.PMRA = fptr(pmra)
		row.PMDec = fptr(pmdec)
	}
	if c.req.AllMags {
		row.MagG = fptr(magG)
		row.MagBP = fptr(magBP)
		row.MagRP = fptr(magRP)
	}
	if c.req.Heavy {
		if srcID.Valid {
			id := catalog.SourceID(srcID.Int64)
			row.SourceID = &id
		}
		row.RAError = fptr(hf[0])
		row.DecError = fptr(hf[1])
		row.ParallaxError = fptr(hf[2])
		row.PMRAError = fptr(hf[3])
		row.PMDecError = fptr(hf[4])
		row.RADecCorr = fptr(hf[5])
		row.RAParallaxCorr = fptr(hf[6])
		row.RAPMRACorr = fptr(hf[7])
		row.RAPMDecCorr = fptr(hf[8])
		row.DecParallaxCorr = fptr(hf[9])
		row.DecPMRACorr = fptr(hf[10])
		row.DecPMDecCorr = fptr(hf[11])
		row.ParallaxPMRACorr = fptr(hf[12])
		row.ParallaxPMDecCorr = fptr(hf[13])
		row.PMRAPMDecCorr = fptr(hf[14])
	}
	return row, true, nil
}

func fptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
