package version

import "runtime/debug"

var (
	// Version is the preflight release version. Set at build time via
	// -ldflags; falls back to the module version embedded by go install.
	Version = "dev"

	// Commit is the VCS revision the binary was built from, taken from
	// build info when available.
	Commit = ""
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && Commit == "" {
			Commit = s.Value
		}
	}
}

// String renders the version with the short commit when one is known.
func String() string {
	if Commit == "" {
		return Version
	}
	short := Commit
	if len(short) > 12 {
		short = short[:12]
	}
	return Version + " (" + short + ")"
}
