// Package buildinfo carries version metadata injected at build time.
package buildinfo

// Set via -ldflags "-X github.com/koetsu-dev/exemplar/internal/buildinfo.Version=..."
var (
	Version = "dev"
	Commit  = "none"
)
