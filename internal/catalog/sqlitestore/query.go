package sqlitestore

import (
	"database/sql"
	"strings"

	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/fov"
)

const heavyColumns = `, dbheavy.gaiaheavy.source_id` +
	`, dbheavy.gaiaheavy.ra_error` +
	`, dbheavy.gaiaheavy.dec_error` +
	`, dbheavy.gaiaheavy.parallax_error` +
	`, dbheavy.gaiaheavy.pmra_error` +
	`, dbheavy.gaiaheavy.pmdec_error` +
	`, dbheavy.gaiaheavy.ra_dec_corr` +
	`, dbheavy.gaiaheavy.ra_parallax_corr` +
	`, dbheavy.gaiaheavy.ra_pmra_corr` +
	`, dbheavy.gaiaheavy.ra_pmdec_corr` +
	`, dbheavy.gaiaheavy.dec_parallax_corr` +
	`, dbheavy.gaiaheavy.dec_pmra_corr` +
	`, dbheavy.gaiaheavy.dec_pmdec_corr` +
	`, dbheavy.gaiaheavy.parallax_pmra_corr` +
	`, dbheavy.gaiaheavy.parallax_pmdec_corr` +
	`, dbheavy.gaiaheavy.pmra_pmdec_corr`

// buildQuery assembles the one-box scan. The R*Tree join prunes by
// rectangle overlap and, when magnitude bounds are set, by the per-node
// magnitude range; the exact bounds are then applied on the light table.
// Band.Column is a fixed whitelist, so splicing it into the text is safe.
func buildQuery(req catalog.Request) string {
	col := req.Band.Column()

	var b strings.Builder
	b.WriteString("SELECT gaialight.")
	b.WriteString(col)
	b.WriteString(" AS mean_mag, gaialight.ra AS ra, gaialight.dec AS dec, gaiartree.idoffset")
	if req.Astrometry {
		b.WriteString(", gaialight.parallax, gaialight.pmra, gaialight.pmdec")
	}
	if req.AllMags {
		b.WriteString(", gaialight.phot_g_mean_mag, gaialight.phot_bp_mean_mag, gaialight.phot_rp_mean_mag")
	}
	if req.Heavy {
		b.WriteString(heavyColumns)
	}

	b.WriteString(" FROM gaiartree")
	b.WriteString(" INNER JOIN gaialight ON gaiartree.idoffset = gaialight.idoffset")
	if req.MagMin != nil {
		b.WriteString(" AND gaiartree.himag >= :lomag")
	}
	if req.MagMax != nil {
		b.WriteString(" AND gaiartree.lomag <= :himag")
	}
	if req.Heavy {
		b.WriteString(" INNER JOIN dbheavy.gaiaheavy ON gaiartree.idoffset = dbheavy.gaiaheavy.idoffset")
	}

	b.WriteString(" WHERE gaiartree.ralo <= :rahi")
	b.WriteString(" AND gaiartree.rahi >= :ralo")
	b.WriteString(" AND gaiartree.declo <= :dechi")
	b.WriteString(" AND gaiartree.dechi >= :declo")
	if req.MagMin != nil {
		b.WriteString(" AND gaialight.")
		b.WriteString(col)
		b.WriteString(" >= :lomag")
	}
	if req.MagMax != nil {
		b.WriteString(" AND gaialight.")
		b.WriteString(col)
		b.WriteString(" <= :himag")
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(col)
	return b.String()
}

func bindArgs(box fov.Box, req catalog.Request) []any {
	args := []any{
		sql.Named("ralo", box.RALo),
		sql.Named("rahi", box.RAHi),
		sql.Named("declo", box.DecLo),
		sql.Named("dechi", box.DecHi),
	}
	if req.MagMin != nil {
		args = append(args, sql.Named("lomag", *req.MagMin))
	}
	if req.MagMax != nil {
		args = append(args, sql.Named("himag", *req.MagMax))
	}
	return args
}
