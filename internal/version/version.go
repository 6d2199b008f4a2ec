package version

var (
	// Version is the current application version.
	// It should be populated by the build system (ldflags) or fall back to this default.
	Version = "v1.2.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the full version line used in logs and -version output.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
