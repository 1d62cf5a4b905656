package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starcat-io/starfov/internal/fov"
)

// addRangeFlags binds the interval-FOV flags shared by query and boxes.
func addRangeFlags(cmd *cobra.Command, ralohi, declohi *[]float64) {
	cmd.Flags().Float64SliceVar(ralohi, "ralohi", nil, "RA interval lo,hi in degrees (used with --declohi instead of vertices)")
	cmd.Flags().Float64SliceVar(declohi, "declohi", nil, "Dec interval lo,hi in degrees (used with --ralohi instead of vertices)")
}

// parseFOVArgs converts positional VERTEX arguments. A comma-separated
// pair is RA,Dec in degrees, a triple is Cartesian X,Y,Z; a bare number
// is a cone half-angle following the axis vertex.
func parseFOVArgs(args []string) ([]fov.Vertex, error) {
	verts := make([]fov.Vertex, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ",")
		v := make(fov.Vertex, len(parts))
		for i, s := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid vertex %q: %q is not numeric", arg, s)
			}
			v[i] = f
		}
		verts = append(verts, v)
	}
	return verts, nil
}
