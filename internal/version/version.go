// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/doeshing/termind/internal/version.Version=v0.3.0"
package version

import "runtime/debug"

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// Current returns Version, or the module version recorded by `go install`
// when no version was injected.
func Current() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// Revision returns Commit, falling back to the VCS revision stamped by the
// go toolchain.
func Revision() string {
	if Commit != "" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}
