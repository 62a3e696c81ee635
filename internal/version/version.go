// Package version carries build metadata, set with -ldflags "-X".
package version

import "runtime"

var (
	Version   = "dev"             // ex: v0.3.0
	Commit    = "none"            // ex: abcd123
	BuildDate = "unknown"         // ex: 2026-03-01T06:00:00Z
	GoVersion = runtime.Version() // go version
)
