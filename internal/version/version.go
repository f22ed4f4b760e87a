// Package version carries the build identity stamped into release binaries.
// The values below are defaults for plain `go build`; release builds override
// them with -ldflags, e.g.
//
//	go build -ldflags "-X photomark/internal/version.Version=1.2.0 \
//	    -X photomark/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

var (
	// Version is the release version shown in the About dialog and logs.
	Version = "0.1.0"

	// BuildTime is the UTC build timestamp, "unknown" for local builds.
	BuildTime = "unknown"

	// GitCommit is the abbreviated commit the binary was built from.
	GitCommit = "unknown"
)
