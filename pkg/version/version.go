// Package version holds build metadata injected at link time.
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit the build was produced from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
