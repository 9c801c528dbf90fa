// Package version exposes build information stamped in at link time.
package version

import "fmt"

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the human-readable version line.
func String() string {
	return fmt.Sprintf("clifactory %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
