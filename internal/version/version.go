// Package version carries build metadata injected with -ldflags "-X".
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"  // ex: v0.1.0
	Commit    = "none" // ex: abcd123
	BuildDate = ""     // ex: 2025-08-11T18:42:00Z, empty => process start
	GoVersion = runtime.Version()
)

func init() {
	if BuildDate == "" {
		BuildDate = time.Now().UTC().Format(time.RFC3339)
	}
}

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("journal %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
