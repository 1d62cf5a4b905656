// Package cli implements the starfov command tree.
package cli

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/starcat-io/starfov/internal/logger"
)

// RootOptions holds flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand assembles the starfov command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "starfov",
		Short: "Field-of-view star lookups against Gaia SQLite extracts",
		Long: `starfov resolves a spherical field of view (cone, box, polygon or raw
RA/Dec ranges) against a Gaia SQLite extract and returns the brightest
stars inside it, optionally corrected for parallax, stellar aberration
and proper motion.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewBoxesCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// newCLILogger builds the stderr logger for one-shot commands. Warnings
// only unless --verbose.
func newCLILogger(out io.Writer, verbose bool) zerolog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.Build(logger.Config{Level: level, Console: true}, out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
