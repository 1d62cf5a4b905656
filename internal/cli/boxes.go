package cli

import (
	"github.com/spf13/cobra"

	"github.com/starcat-io/starfov/internal/fov"
	"github.com/starcat-io/starfov/internal/query"
)

// BoxesOptions holds flags for the boxes command.
type BoxesOptions struct {
	*RootOptions

	RALoHi  []float64
	DecLoHi []float64
	J2000   bool
}

// boxesResult mirrors the FOV portion of the query response echo.
type boxesResult struct {
	FOVType     string       `json:"fov_type"`
	FOVVertices []fov.Vertex `json:"fov_vertices"`
	RALoHi      []float64    `json:"ralohi"`
	DecLoHi     []float64    `json:"declohi"`
	RADecBoxes  []fov.Box    `json:"radec_boxes"`
}

// NewBoxesCommand creates the boxes command, a debugging aid that
// resolves a field of view and prints its RA/Dec bounding boxes without
// touching the catalog.
func NewBoxesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BoxesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "boxes [flags] VERTEX...",
		Short: "Resolve a field of view and print its bounding boxes",
		Long: `Resolve a field of view and print the RA/Dec bounding boxes the
catalog queries would cover. Vertices follow the query command; a box
crossing RA 0/360 splits into an east and a west part.

Example:
  starfov boxes 350,-50 10,-40
  starfov boxes --ralohi=350,10 --declohi=-50,-40`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoxes(cmd, opts, args)
		},
	}

	addRangeFlags(cmd, &opts.RALoHi, &opts.DecLoHi)
	cmd.Flags().BoolVar(&opts.J2000, "j2000", false, "vertices are J2000, not ICRS")

	return cmd
}

func runBoxes(cmd *cobra.Command, opts *BoxesOptions, args []string) error {
	verts, err := parseFOVArgs(args)
	if err != nil {
		return err
	}

	f, err := query.BuildFOV(query.Params{
		Vertices: verts,
		RALoHi:   opts.RALoHi,
		DecLoHi:  opts.DecLoHi,
		J2000:    opts.J2000,
	})
	if err != nil {
		return err
	}

	out := boxesResult{
		FOVType:     f.Shape().String(),
		FOVVertices: verts,
		RADecBoxes:  f.Boxes(),
	}
	if out.FOVVertices == nil {
		out.FOVVertices = []fov.Vertex{}
	}
	out.RALoHi, out.DecLoHi = f.Ranges()
	if out.RALoHi == nil {
		out.RALoHi = []float64{}
	}
	if out.DecLoHi == nil {
		out.DecLoHi = []float64{}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
