// Package version carries build metadata stamped in with -ldflags, e.g.
//
//	-X github.com/faizmokh/lifelog/internal/version.Version=v0.3.0
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the version with its commit and build date.
func Info() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// IsRelease reports whether the binary was stamped with a release version.
func IsRelease() bool {
	return Version != "dev" && Version != ""
}
