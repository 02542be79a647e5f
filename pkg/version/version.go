// Package version exposes build metadata for the arbor binary.
package version

import "runtime/debug"

// Populated by the linker via -ldflags, with VCS build info as fallback.
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the VCS revision the binary was built from.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// InitBinaryVersion fills unset fields from the embedded build info.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}
