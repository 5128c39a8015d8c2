// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Display returns v, or fallback when v is empty or still a build placeholder.
func Display(v, fallback string) string {
	switch v {
	case "", "dev", "none", "unknown":
		return fallback
	}
	return v
}
