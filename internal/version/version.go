package version

// Version is the current version of the signal engine.
// Set at build time with:
// -ldflags "-X github.com/rxtech-lab/argo-signal/internal/version.Version=1.2.3"
// "main" marks a development build.
var Version = "v0.3.0"

// GetVersion returns the current version of the signal engine.
func GetVersion() string {
	return Version
}
