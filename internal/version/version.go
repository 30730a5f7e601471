// Package version carries the build-time version string for the fatcat
// binaries.
package version

// Version is the released version string. Overridden at build time via
// -ldflags "-X github.com/mm--/fatcat/internal/version.Version=...".
var Version = "dev"
