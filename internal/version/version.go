// Package version holds build information injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/MeKo-Tech/tilecrop/internal/version.Version=v1.0.0" ./cmd/tilecrop
package version

import "fmt"

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version, commit and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String returns a one-line summary for logs.
func String() string {
	return fmt.Sprintf("tilecrop %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
