package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/cargoplug/src/op"
)

func TestParseManifestReal(t *testing.T) {
	m, err := ParseManifest([]byte(`
[package]
name = "ffi-lib"
version = "2.1.0-beta.1"
rust-version = "1.70"
autobins = false

[lib]
name = "ffi"
crate_type = ["rlib", "dylib"]

[profile.dist]
inherits = "release"
`), "/src/ffi/Cargo.toml")
	require.NoError(t, err)

	assert.Equal(t, ManifestReal, m.Kind)
	assert.False(t, m.IsVirtual())
	assert.Equal(t, "/src/ffi", m.Dir)
	assert.Equal(t, "ffi-lib", m.Package.Name)
	assert.Equal(t, "2.1.0-beta.1", m.Package.Version)
	assert.Equal(t, "1.70", m.Package.RustVersion)
	assert.False(t, m.Package.Autobins)
	assert.True(t, m.Package.Autotests)
	require.NotNil(t, m.Lib)
	assert.Equal(t, []string{"rlib", "dylib"}, m.Lib.CrateType, "legacy crate_type key is honored")
	assert.Equal(t, []string{"dist"}, m.Profiles)
}

func TestParseManifestVirtual(t *testing.T) {
	m, err := ParseManifest([]byte("[workspace]\nmembers = [\"crates/*\"]\n"), "/ws/Cargo.toml")
	require.NoError(t, err)
	assert.True(t, m.IsVirtual())
	assert.Equal(t, "virtual", m.Kind.String())
	assert.Equal(t, []string{"crates/*"}, m.Members)
	assert.Empty(t, m.Targets())
}

func TestParseManifestWorkspaceInheritance(t *testing.T) {
	m, err := ParseManifest([]byte(`
[package]
name = "member"
version.workspace = true
rust-version = { workspace = true }
`), "/ws/member/Cargo.toml")
	require.NoError(t, err)
	assert.Empty(t, m.Package.Version)
	assert.Empty(t, m.Package.RustVersion)
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"syntax", "[package\nname = \"x\""},
		{"empty", "# nothing here\n"},
		{"no name", "[package]\nversion = \"1.0.0\"\n"},
		{"bad version", "[package]\nname = \"x\"\nversion = \"1.0\"\n"},
		{"bad rust-version", "[package]\nname = \"x\"\nrust-version = \"latest\"\n"},
		{"version wrong type", "[package]\nname = \"x\"\nversion = 3\n"},
		{"build wrong type", "[package]\nname = \"x\"\nbuild = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.toml), "/x/Cargo.toml")
			require.Error(t, err)
			assert.Equal(t, op.KindManifestParse, op.KindOf(err))
		})
	}
}

func TestReadManifestNotFound(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "Cargo.toml"))
	assert.ErrorIs(t, err, op.ErrManifestNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTargetsAutoDiscovery(t *testing.T) {
	manifest := writePackage(t, map[string]string{
		"Cargo.toml":             "[package]\nname = \"tool-kit\"\nversion = \"0.1.0\"\n",
		"src/main.rs":            "",
		"src/bin/zeta.rs":        "",
		"src/bin/alpha/main.rs":  "",
		"src/bin/notes.txt":      "",
		"examples/walk.rs":       "",
		"benches/throughput.rs":  "",
		"tests/smoke/main.rs":    "",
		"tests/smoke/helpers.rs": "",
	})
	m, err := ReadManifest(manifest)
	require.NoError(t, err)

	var got []string
	for _, tgt := range m.Targets() {
		got = append(got, string(tgt.Kind)+":"+tgt.Name)
	}
	assert.Equal(t, []string{
		"bin:tool-kit",
		"bin:alpha",
		"bin:zeta",
		"example:walk",
		"test:smoke",
		"bench:throughput",
	}, got)
}

func TestTargetsExplicitOverridesAndAutoSwitches(t *testing.T) {
	manifest := writePackage(t, map[string]string{
		"Cargo.toml": `
[package]
name = "svc"
version = "0.1.0"
edition = "2021"
autoexamples = false
build = false

[[bin]]
name = "server"
path = "src/main.rs"

[[example]]
name = "manual"
path = "demo/manual.rs"
`,
		"src/main.rs":      "",
		"src/bin/admin.rs": "",
		"examples/auto.rs": "",
		"build.rs":         "",
	})
	m, err := ReadManifest(manifest)
	require.NoError(t, err)

	var got []string
	for _, tgt := range m.Targets() {
		got = append(got, string(tgt.Kind)+":"+tgt.Name)
	}
	// src/main.rs is claimed by "server"; autoexamples=false drops examples/auto.rs;
	// build=false disables build.rs.
	assert.Equal(t, []string{"bin:server", "bin:admin", "example:manual"}, got)
}

func TestTargetFlags(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   [3]bool // lib, dylib, cdylib
	}{
		{"rlib", Target{Kind: TargetLib, CrateTypes: []string{CrateLib}}, [3]bool{true, false, false}},
		{"dylib", Target{Kind: TargetLib, CrateTypes: []string{CrateDylib}}, [3]bool{true, true, false}},
		{"cdylib+staticlib", Target{Kind: TargetLib, CrateTypes: []string{CrateCdylib, CrateStaticlib}}, [3]bool{true, false, true}},
		{"proc-macro", Target{Kind: TargetLib, CrateTypes: []string{CrateProcMacro}}, [3]bool{true, false, false}},
		{"bin", Target{Kind: TargetBin, CrateTypes: []string{"bin"}}, [3]bool{false, false, false}},
		{"build script", Target{Kind: TargetCustomBuild, CrateTypes: []string{"bin"}}, [3]bool{false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, [3]bool{tt.target.IsLib(), tt.target.IsDylib(), tt.target.IsCdylib()})
		})
	}
}

func TestLibProcMacroAndName(t *testing.T) {
	manifest := writePackage(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"my-derive\"\nversion = \"0.1.0\"\n\n[lib]\nproc-macro = true\npath = \"derive.rs\"\n",
	})
	m, err := ReadManifest(manifest)
	require.NoError(t, err)

	targets := m.Targets()
	require.Len(t, targets, 1)
	lib := targets[0]
	assert.Equal(t, "my_derive", lib.Name)
	assert.Equal(t, "derive.rs", lib.SrcPath)
	assert.Equal(t, []string{CrateProcMacro}, lib.CrateTypes)
	assert.Equal(t, op.Artifact{OutputName: "my_derive", IsLib: true}, lib.Artifact())
}

func TestTargetsEdition2015ExplicitDisablesDiscovery(t *testing.T) {
	files := map[string]string{
		"src/main.rs":      "",
		"src/bin/admin.rs": "",
		"examples/auto.rs": "",
	}
	explicitBin := "\n[[bin]]\nname = \"server\"\npath = \"src/main.rs\"\n"

	kinds := func(manifest string) []string {
		files["Cargo.toml"] = manifest
		m, err := ReadManifest(writePackage(t, files))
		require.NoError(t, err)
		var got []string
		for _, tgt := range m.Targets() {
			got = append(got, string(tgt.Kind)+":"+tgt.Name)
		}
		return got
	}

	// No edition means 2015: explicit bins stop src/bin discovery, examples are untouched.
	legacy := kinds("[package]\nname = \"svc\"\nversion = \"0.1.0\"\n" + explicitBin)
	assert.Equal(t, []string{"bin:server", "example:auto"}, legacy)

	forced := kinds("[package]\nname = \"svc\"\nversion = \"0.1.0\"\nautobins = true\n" + explicitBin)
	assert.Equal(t, []string{"bin:server", "bin:admin", "example:auto"}, forced)

	modern := kinds("[package]\nname = \"svc\"\nversion = \"0.1.0\"\nedition = \"2018\"\n" + explicitBin)
	assert.Equal(t, []string{"bin:server", "bin:admin", "example:auto"}, modern)
}

func TestParseManifestEdition(t *testing.T) {
	m, err := ParseManifest([]byte("[package]\nname = \"a\"\n"), "/a/Cargo.toml")
	require.NoError(t, err)
	assert.Equal(t, "2015", m.Package.Edition)

	m, err = ParseManifest([]byte("[package]\nname = \"a\"\nedition.workspace = true\n[[bin]]\nname = \"x\"\n"), "/a/Cargo.toml")
	require.NoError(t, err)
	assert.Equal(t, "", m.Package.Edition)
	assert.True(t, m.Package.Autobins, "inherited edition is not treated as 2015")
}
