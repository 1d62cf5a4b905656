package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starcat-io/starfov/internal/catalog"
	"github.com/starcat-io/starfov/internal/catalog/sqlitestore"
	"github.com/starcat-io/starfov/internal/correct"
	"github.com/starcat-io/starfov/internal/query"
	"github.com/starcat-io/starfov/internal/sphere"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions

	Limit        int
	MagMin       float64
	MagMax       float64
	MagType      string
	Catalog      string
	HeavyCatalog string
	RALoHi       []float64
	DecLoHi      []float64
	J2000        bool
	PPM          bool
	Mags         bool
	Heavy        bool
	Buffer       float64
	ObsPos       string
	ObsVel       string
	ObsY         string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [flags] VERTEX...",
		Short: "Search the catalog for stars inside a field of view",
		Long: `Search the catalog for the brightest stars inside a field of view.

Positional vertices are RA,Dec pairs or X,Y,Z triples. Two vertices make
an RA/Dec box, a vertex plus a bare half-angle makes a cone, three or
more make a polygon. Alternatively --ralohi/--declohi give raw intervals.
The response JSON goes to stdout.

Example:
  starfov query --limit=10 10,-45 0.5
  starfov query --ralohi=350,10 --declohi=-50,-40 --magmax=12`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&opts.Limit, "limit", 200, "maximum stars returned, brightest first")
	fl.Float64Var(&opts.MagMin, "magmin", 0, "lower magnitude bound, inclusive")
	fl.Float64Var(&opts.MagMax, "magmax", 0, "upper magnitude bound, inclusive")
	fl.StringVar(&opts.MagType, "magtype", "g", "magnitude band: g, bp or rp")
	fl.StringVar(&opts.Catalog, "catalog", "gaia.sqlite3", "path to the catalog SQLite file")
	fl.StringVar(&opts.HeavyCatalog, "heavy-catalog", "", "heavy companion file (default derived from --catalog)")
	addRangeFlags(cmd, &opts.RALoHi, &opts.DecLoHi)
	fl.BoolVar(&opts.J2000, "j2000", false, "FOV and observer vectors are J2000, not ICRS")
	fl.BoolVar(&opts.PPM, "ppm", false, "return parallax and proper motions")
	fl.BoolVar(&opts.Mags, "mags", false, "return all magnitude bands")
	fl.BoolVar(&opts.Heavy, "heavy", false, "return source_id, errors and correlation coefficients")
	fl.Float64Var(&opts.Buffer, "buffer", 0, "pad around the FOV in degrees (not yet implemented)")
	fl.StringVar(&opts.ObsPos, "obspos", "", "observer position X,Y,Z in km, triggers parallax correction")
	fl.StringVar(&opts.ObsVel, "obsvel", "", "observer velocity VX,VY,VZ in km/s, triggers aberration correction")
	fl.StringVar(&opts.ObsY, "obsy", "", "observation time as fractional year or calendar date, triggers proper motion")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, args []string) error {
	p, err := buildQueryParams(cmd, opts, args)
	if err != nil {
		return err
	}
	log := newCLILogger(cmd.ErrOrStderr(), opts.Verbose)

	ctx := cmd.Context()
	var sopts []sqlitestore.Option
	if opts.HeavyCatalog != "" {
		sopts = append(sopts, sqlitestore.WithHeavyPath(opts.HeavyCatalog))
	}
	store, err := sqlitestore.Open(ctx, opts.Catalog, sopts...)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng := query.New(store, opts.Catalog, log)
	resp, err := eng.Search(ctx, p)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

func buildQueryParams(cmd *cobra.Command, opts *QueryOptions, args []string) (query.Params, error) {
	var p query.Params

	verts, err := parseFOVArgs(args)
	if err != nil {
		return p, err
	}
	p.Vertices = verts
	p.RALoHi = opts.RALoHi
	p.DecLoHi = opts.DecLoHi

	p.Limit = opts.Limit

	band, err := catalog.ParseBand(opts.MagType)
	if err != nil {
		return p, err
	}
	p.Band = band

	if cmd.Flags().Changed("magmin") {
		v := opts.MagMin
		p.MagMin = &v
	}
	if cmd.Flags().Changed("magmax") {
		v := opts.MagMax
		p.MagMax = &v
	}
	if cmd.Flags().Changed("buffer") {
		p.Buffer = opts.Buffer
		fmt.Fprint(cmd.ErrOrStderr(), "Warning:  RA,DEC buffer not yet implemented\n")
	}

	p.J2000 = opts.J2000
	p.PPM = opts.PPM
	p.AllMags = opts.Mags
	p.Heavy = opts.Heavy

	if p.ObsPos, err = parseVecFlag("obspos", opts.ObsPos); err != nil {
		return p, err
	}
	if p.ObsVel, err = parseVecFlag("obsvel", opts.ObsVel); err != nil {
		return p, err
	}
	if opts.ObsY != "" {
		years, err := correct.ParseEpoch(opts.ObsY)
		if err != nil {
			return p, err
		}
		p.ObsYears = &years
		p.ObsYearArg = opts.ObsY
	}

	return p, nil
}

func parseVecFlag(name, s string) (*sphere.Vec, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("--%s needs exactly three comma-separated values", name)
	}
	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: %q is not numeric", name, part)
		}
		v[i] = f
	}
	return &sphere.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}
