//nolint:gochecknoglobals
package pkg

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text and log output.
	Name = "kconf"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Kconfig configuration-language engine"
)

// Version is the semantic version of the module. It is overridden at build
// time via -ldflags for release builds.
var Version = "0.0.0-dev"
