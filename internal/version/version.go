// Package version carries build identification, set at link time via
// -ldflags "-X github.com/starcat-io/starfov/internal/version.Version=...".
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the one-line form used by the version command.
func String() string {
	return fmt.Sprintf("starfov %s (commit %s, built %s)", Version, Commit, Date)
}
