package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are injected at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns a human-readable version string, e.g.
// "cargoplug v0.3.0 (abc1234, 2026-01-02, go1.25.4)".
func String() string {
	v, commit := resolve(debug.ReadBuildInfo)
	return fmt.Sprintf("cargoplug %s (%s, %s, %s)", v, commit, BuildDate, runtime.Version())
}

// resolve fills unset ldflags values from the embedded module build info,
// so `go install` builds still report their module version and VCS revision.
func resolve(read func() (*debug.BuildInfo, bool)) (string, string) {
	v, commit := Version, Commit
	info, ok := read()
	if !ok {
		return v, commit
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	if commit == "unknown" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				commit = s.Value
				if len(commit) > 7 {
					commit = commit[:7]
				}
			}
		}
	}
	return v, commit
}
