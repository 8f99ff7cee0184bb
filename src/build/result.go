package build

import (
	"path/filepath"
	"time"
)

// Compilation captures the outcome of one cargo build.
type Compilation struct {
	RootOutput string // profile output dir, <target dir>[/<triple>]/<profile dir>
	Artifacts  []CompilerArtifact
	Warnings   int
	Fresh      int // artifacts cargo reported as up to date
	Duration   time.Duration
}

// CompilerArtifact is a compiler-artifact message reduced to what we report.
type CompilerArtifact struct {
	PackageID  string
	Target     string
	Kinds      []string
	CrateTypes []string
	Filenames  []string // files written, absolute
	Fresh      bool
}

// artifactRoot finds the profile output directory from files cargo wrote for
// the package's own targets. Cross builds land in <target dir>/<triple>/<profile>,
// which cargo metadata does not report. Build scripts and proc macros are
// compiled for the host, so they are skipped. Returns "" when nothing matches.
func artifactRoot(artifacts []CompilerArtifact, targets []Target) string {
	own := make(map[string]bool, len(targets))
	for _, t := range targets {
		if t.Kind != TargetCustomBuild {
			own[t.Name] = true
		}
	}

	for _, a := range artifacts {
		if !own[a.Target] || contains(a.Kinds, string(TargetCustomBuild)) || contains(a.Kinds, CrateProcMacro) {
			continue
		}
		for _, f := range a.Filenames {
			dir := filepath.Dir(f)
			switch filepath.Base(dir) {
			case "deps", "examples":
				dir = filepath.Dir(dir)
			}
			return dir
		}
	}
	return ""
}
