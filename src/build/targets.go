package build

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sofmeright/cargoplug/src/op"
)

// TargetKind is the role a target plays in the package.
type TargetKind string

const (
	TargetLib         TargetKind = "lib"
	TargetBin         TargetKind = "bin"
	TargetExample     TargetKind = "example"
	TargetTest        TargetKind = "test"
	TargetBench       TargetKind = "bench"
	TargetCustomBuild TargetKind = "custom-build"
)

// Crate types a [lib] may declare.
const (
	CrateLib       = "lib"
	CrateRlib      = "rlib"
	CrateDylib     = "dylib"
	CrateCdylib    = "cdylib"
	CrateStaticlib = "staticlib"
	CrateProcMacro = "proc-macro"
)

// Target is one buildable unit of a package.
type Target struct {
	Name       string
	Kind       TargetKind
	CrateTypes []string
	SrcPath    string // relative to the manifest directory
}

// CrateName is the target name as rustc sees it.
func (t Target) CrateName() string {
	return strings.ReplaceAll(t.Name, "-", "_")
}

// IsLib reports whether the target is a library of any crate type.
func (t Target) IsLib() bool { return t.Kind == TargetLib }

// IsDylib reports whether the target is a Rust dynamic library.
func (t Target) IsDylib() bool { return t.IsLib() && t.hasCrateType(CrateDylib) }

// IsCdylib reports whether the target is a C-ABI dynamic library.
func (t Target) IsCdylib() bool { return t.IsLib() && t.hasCrateType(CrateCdylib) }

func (t Target) hasCrateType(ct string) bool {
	for _, c := range t.CrateTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// Artifact converts the target into its response record.
func (t Target) Artifact() op.Artifact {
	return op.Artifact{
		OutputName: t.CrateName(),
		IsLib:      t.IsLib(),
		IsDylib:    t.IsDylib(),
		IsCdylib:   t.IsCdylib(),
	}
}

// Targets enumerates the package's targets in cargo order: lib, bins,
// examples, tests, benches, then the build script. Explicit declarations come
// first within each group, followed by auto-discovered files.
func (m *Manifest) Targets() []Target {
	if m.IsVirtual() {
		return nil
	}

	var targets []Target
	if lib, ok := m.libTarget(); ok {
		targets = append(targets, lib)
	}

	bins := inferBins(m.Dir, m.Package.Name)
	targets = append(targets, mergeTargets(TargetBin, m.Bins, bins, m.Package.Autobins)...)
	targets = append(targets, mergeTargets(TargetExample, m.Examples, inferDir(m.Dir, "examples"), m.Package.Autoexamples)...)
	targets = append(targets, mergeTargets(TargetTest, m.Tests, inferDir(m.Dir, "tests"), m.Package.Autotests)...)
	targets = append(targets, mergeTargets(TargetBench, m.Benches, inferDir(m.Dir, "benches"), m.Package.Autobenches)...)

	if m.BuildFile != "" {
		stem := strings.TrimSuffix(filepath.Base(m.BuildFile), filepath.Ext(m.BuildFile))
		targets = append(targets, Target{
			Name:       "build-script-" + stem,
			Kind:       TargetCustomBuild,
			CrateTypes: []string{"bin"},
			SrcPath:    m.BuildFile,
		})
	}
	return targets
}

func (m *Manifest) libTarget() (Target, bool) {
	defaultPath := filepath.Join("src", "lib.rs")
	if m.Lib == nil && !fileExists(filepath.Join(m.Dir, defaultPath)) {
		return Target{}, false
	}

	t := Target{
		Name:       m.Package.Name,
		Kind:       TargetLib,
		CrateTypes: []string{CrateLib},
		SrcPath:    defaultPath,
	}
	if m.Lib != nil {
		if m.Lib.Name != "" {
			t.Name = m.Lib.Name
		}
		if m.Lib.Path != "" {
			t.SrcPath = m.Lib.Path
		}
		switch {
		case m.Lib.ProcMacro:
			t.CrateTypes = []string{CrateProcMacro}
		case len(m.Lib.CrateType) > 0:
			t.CrateTypes = append([]string(nil), m.Lib.CrateType...)
		}
	}
	// Library names are always normalized.
	t.Name = strings.ReplaceAll(t.Name, "-", "_")
	return t, true
}

// mergeTargets resolves explicit declarations and appends inferred targets
// whose path is not already claimed.
func mergeTargets(kind TargetKind, explicit []TargetDecl, inferred []Target, auto bool) []Target {
	var out []Target
	claimedPath := map[string]bool{}
	claimedName := map[string]bool{}

	inferredByName := map[string]Target{}
	for _, t := range inferred {
		inferredByName[t.Name] = t
	}

	for _, d := range explicit {
		t := Target{Name: d.Name, Kind: kind, CrateTypes: []string{"bin"}, SrcPath: d.Path}
		if t.SrcPath == "" {
			if inf, ok := inferredByName[d.Name]; ok {
				t.SrcPath = inf.SrcPath
			}
		}
		out = append(out, t)
		claimedName[t.Name] = true
		if t.SrcPath != "" {
			claimedPath[filepath.Clean(t.SrcPath)] = true
		}
	}

	if !auto {
		return out
	}
	for _, t := range inferred {
		if claimedPath[filepath.Clean(t.SrcPath)] || claimedName[t.Name] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// inferBins discovers src/main.rs, src/bin/*.rs and src/bin/<name>/main.rs.
func inferBins(dir, pkgName string) []Target {
	var out []Target
	mainPath := filepath.Join("src", "main.rs")
	if fileExists(filepath.Join(dir, mainPath)) {
		out = append(out, Target{Name: pkgName, Kind: TargetBin, CrateTypes: []string{"bin"}, SrcPath: mainPath})
	}
	for _, t := range inferDir(dir, filepath.Join("src", "bin")) {
		t.Kind = TargetBin
		out = append(out, t)
	}
	return out
}

// inferDir discovers <sub>/*.rs and <sub>/<name>/main.rs, sorted by name.
func inferDir(dir, sub string) []Target {
	entries, err := os.ReadDir(filepath.Join(dir, sub))
	if err != nil {
		return nil
	}

	kind := kindForDir(sub)
	var out []Target
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			rel := filepath.Join(sub, name, "main.rs")
			if fileExists(filepath.Join(dir, rel)) {
				out = append(out, Target{Name: name, Kind: kind, CrateTypes: []string{"bin"}, SrcPath: rel})
			}
		case strings.HasSuffix(name, ".rs"):
			out = append(out, Target{
				Name:       strings.TrimSuffix(name, ".rs"),
				Kind:       kind,
				CrateTypes: []string{"bin"},
				SrcPath:    filepath.Join(sub, name),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func kindForDir(sub string) TargetKind {
	switch filepath.Base(sub) {
	case "examples":
		return TargetExample
	case "tests":
		return TargetTest
	case "benches":
		return TargetBench
	default:
		return TargetBin
	}
}
