// Package buildinfo carries release metadata set with -ldflags -X.
package buildinfo

// Empty for local builds; the version command then falls back to
// runtime/debug build info.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
