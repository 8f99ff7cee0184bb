package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/cargoplug/src/op"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestOpsListsCargoBuild(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cargoplug.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o644))

	out, err := execute(t, "ops", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "build\n")
	assert.Contains(t, out, "cargo_build\n")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cargoplug ")
}

func TestBadConfigFails(t *testing.T) {
	_, err := execute(t, "ops", "--config", filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "loading config")
}

func TestBuildRequestFromDir(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	require.NoError(t, os.WriteFile(manifest, []byte("[package]\nname = \"x\"\n"), 0o644))
	sub := filepath.Join(dir, "src")
	require.NoError(t, os.Mkdir(sub, 0o755))

	bLibOnly, bVerbosity = false, 5
	t.Cleanup(func() { bLibOnly, bVerbosity = true, 0 })

	req, err := buildRequest([]string{sub})
	require.NoError(t, err)
	assert.Equal(t, manifest, req.ManifestPath)
	assert.False(t, req.LibOnly)
	assert.EqualValues(t, 2, req.Verbose)

	bVerbosity = -1
	_, err = buildRequest([]string{dir})
	assert.Error(t, err)
}

func TestCargoSectionCollapsesWhenVerbose(t *testing.T) {
	t.Setenv("GITLAB_CI", "true")

	var quiet, loud bytes.Buffer
	openCargoSection(&quiet, op.VerbosityStandard)
	openCargoSection(&loud, op.VerbosityVerbose)

	assert.Contains(t, quiet.String(), "section_start:")
	assert.NotContains(t, quiet.String(), "collapsed=true")
	assert.Contains(t, loud.String(), "cargo_build[collapsed=true]")
}
