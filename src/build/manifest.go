package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	masterminds "github.com/Masterminds/semver/v3"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/sofmeright/cargoplug/src/op"
)

// ManifestKind distinguishes a package manifest from a workspace-only one.
type ManifestKind int

const (
	ManifestReal    ManifestKind = iota // has [package]
	ManifestVirtual                     // [workspace] only
)

func (k ManifestKind) String() string {
	if k == ManifestVirtual {
		return "virtual"
	}
	return "real"
}

// Manifest is the subset of Cargo.toml needed to enumerate targets.
type Manifest struct {
	Path      string // absolute path to Cargo.toml
	Dir       string
	Kind      ManifestKind
	Package   PackageInfo
	Members   []string // [workspace] members, if any
	Lib       *TargetDecl
	Bins      []TargetDecl
	Examples  []TargetDecl
	Tests     []TargetDecl
	Benches   []TargetDecl
	BuildFile string // custom build script, relative to Dir; "" when none
	Profiles  []string
}

// PackageInfo holds [package] fields.
type PackageInfo struct {
	Name         string
	Version      string // "" when inherited from the workspace or omitted
	RustVersion  string
	Edition      string // "" when inherited from the workspace
	Autobins     bool
	Autoexamples bool
	Autotests    bool
	Autobenches  bool
}

// TargetDecl is an explicit [lib] / [[bin]] / ... table.
type TargetDecl struct {
	Name      string
	Path      string
	CrateType []string
	ProcMacro bool
}

type rawManifest struct {
	Package *struct {
		Name         string `toml:"name"`
		Version      any    `toml:"version"`
		Edition      any    `toml:"edition"`
		RustVersion  any    `toml:"rust-version"`
		Build        any    `toml:"build"`
		Autobins     *bool  `toml:"autobins"`
		Autoexamples *bool  `toml:"autoexamples"`
		Autotests    *bool  `toml:"autotests"`
		Autobenches  *bool  `toml:"autobenches"`
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Lib     *rawTarget                `toml:"lib"`
	Bin     []rawTarget               `toml:"bin"`
	Example []rawTarget               `toml:"example"`
	Test    []rawTarget               `toml:"test"`
	Bench   []rawTarget               `toml:"bench"`
	Profile map[string]map[string]any `toml:"profile"`
}

// rawTarget accepts both the dashed and the legacy underscored keys.
type rawTarget struct {
	Name            string   `toml:"name"`
	Path            string   `toml:"path"`
	CrateType       []string `toml:"crate-type"`
	CrateTypeLegacy []string `toml:"crate_type"`
	ProcMacro       bool     `toml:"proc-macro"`
	ProcMacroLegacy bool     `toml:"proc_macro"`
}

func (r rawTarget) decl() TargetDecl {
	d := TargetDecl{
		Name:      r.Name,
		Path:      r.Path,
		CrateType: r.CrateType,
		ProcMacro: r.ProcMacro || r.ProcMacroLegacy,
	}
	if len(d.CrateType) == 0 {
		d.CrateType = r.CrateTypeLegacy
	}
	return d
}

// ReadManifest loads and parses a Cargo.toml. Failures carry op kinds:
// KindManifestNotFound for an unreadable file, KindManifestParse otherwise.
func ReadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, op.Wrap(op.KindManifestNotFound, "read manifest", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, op.Wrap(op.KindManifestNotFound, "read manifest", fmt.Errorf("%s: %w", abs, fs.ErrNotExist))
		}
		return nil, op.Wrap(op.KindManifestNotFound, "read manifest", err)
	}

	m, err := ParseManifest(data, abs)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ParseManifest parses manifest bytes; path is recorded for target discovery.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, op.Wrap(op.KindManifestParse, "parse manifest", fmt.Errorf("%s: %w", path, err))
	}

	m := &Manifest{
		Path: path,
		Dir:  filepath.Dir(path),
	}
	if raw.Workspace != nil {
		m.Members = raw.Workspace.Members
	}
	for name := range raw.Profile {
		m.Profiles = append(m.Profiles, name)
	}
	sort.Strings(m.Profiles)

	if raw.Package == nil {
		if raw.Workspace == nil {
			return nil, op.Errorf(op.KindManifestParse, "parse manifest", "%s: manifest is missing either a [package] or a [workspace]", path)
		}
		m.Kind = ManifestVirtual
		return m, nil
	}

	pkg := raw.Package
	if pkg.Name == "" {
		return nil, op.Errorf(op.KindManifestParse, "parse manifest", "%s: package.name is required", path)
	}

	version, err := stringOrInherited(pkg.Version, "package.version")
	if err != nil {
		return nil, op.Wrap(op.KindManifestParse, "parse manifest", err)
	}
	if version != "" {
		if _, err := masterminds.StrictNewVersion(version); err != nil {
			return nil, op.Errorf(op.KindManifestParse, "parse manifest", "package.version %q is not valid semver: %v", version, err)
		}
	}

	rustVersion, err := stringOrInherited(pkg.RustVersion, "package.rust-version")
	if err != nil {
		return nil, op.Wrap(op.KindManifestParse, "parse manifest", err)
	}
	if rustVersion != "" {
		if _, err := masterminds.NewVersion(rustVersion); err != nil {
			return nil, op.Errorf(op.KindManifestParse, "parse manifest", "package.rust-version %q is invalid: %v", rustVersion, err)
		}
	}

	edition := defaultEdition
	if pkg.Edition != nil {
		if edition, err = stringOrInherited(pkg.Edition, "package.edition"); err != nil {
			return nil, op.Wrap(op.KindManifestParse, "parse manifest", err)
		}
	}

	// Edition 2015 turns auto-discovery off for any kind with explicit
	// targets, unless the auto flag is set.
	legacy := edition == defaultEdition
	m.Kind = ManifestReal
	m.Package = PackageInfo{
		Name:         pkg.Name,
		Version:      version,
		RustVersion:  rustVersion,
		Edition:      edition,
		Autobins:     boolOr(pkg.Autobins, !legacy || len(raw.Bin) == 0),
		Autoexamples: boolOr(pkg.Autoexamples, !legacy || len(raw.Example) == 0),
		Autotests:    boolOr(pkg.Autotests, !legacy || len(raw.Test) == 0),
		Autobenches:  boolOr(pkg.Autobenches, !legacy || len(raw.Bench) == 0),
	}

	buildFile, err := buildScript(pkg.Build, m.Dir)
	if err != nil {
		return nil, op.Wrap(op.KindManifestParse, "parse manifest", err)
	}
	m.BuildFile = buildFile

	if raw.Lib != nil {
		d := raw.Lib.decl()
		m.Lib = &d
	}
	m.Bins = decls(raw.Bin)
	m.Examples = decls(raw.Example)
	m.Tests = decls(raw.Test)
	m.Benches = decls(raw.Bench)

	return m, nil
}

// defaultEdition applies when package.edition is omitted.
const defaultEdition = "2015"

// IsVirtual reports whether the manifest only declares a workspace.
func (m *Manifest) IsVirtual() bool { return m.Kind == ManifestVirtual }

// stringOrInherited accepts "x" or {workspace = true}; inherited values read as "".
func stringOrInherited(v any, field string) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case map[string]any:
		if ws, ok := t["workspace"].(bool); ok && ws {
			return "", nil
		}
	}
	return "", fmt.Errorf("%s: expected a string or {workspace = true}, got %T", field, v)
}

// buildScript resolves package.build: a path, false to disable, or default build.rs.
func buildScript(v any, dir string) (string, error) {
	switch t := v.(type) {
	case nil:
		if fileExists(filepath.Join(dir, "build.rs")) {
			return "build.rs", nil
		}
		return "", nil
	case bool:
		if t && fileExists(filepath.Join(dir, "build.rs")) {
			return "build.rs", nil
		}
		return "", nil
	case string:
		return t, nil
	}
	return "", fmt.Errorf("package.build: expected a path or boolean, got %T", v)
}

func decls(raw []rawTarget) []TargetDecl {
	out := make([]TargetDecl, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.decl())
	}
	return out
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
