// Package gitmo contains build information for the gitmo application.
package gitmo

var (
	// Version of the application, set by build flags.
	Version = "v0.1.0"

	// Build timestamp, set by build flags.
	Build = "n/a"
)
