package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "release", cfg.Cargo.Profile)
	assert.Equal(t, "cargo", cfg.Cargo.Binary)
	assert.Equal(t, FramingHeader, cfg.Serve.Framing)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
cargo:
  profile: dev
  locked: true
  timeout: 90s
  env:
    RUSTFLAGS: "-C target-cpu=native"
serve:
  max_concurrent: 2
  framing: plain
watch:
  debounce: 1s
`))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Cargo.Profile)
	assert.True(t, cfg.Cargo.Locked)
	assert.Equal(t, 90*time.Second, cfg.Cargo.Timeout)
	assert.Equal(t, "-C target-cpu=native", cfg.Cargo.Env["RUSTFLAGS"])
	assert.Equal(t, "cargo", cfg.Cargo.Binary, "unset fields keep defaults")
	assert.Equal(t, 2, cfg.Serve.MaxConcurrent)
	assert.Equal(t, FramingPlain, cfg.Serve.Framing)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, []string{".rs", ".toml"}, cfg.Watch.Extensions)
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Cargo.Binary = " "
	cfg.Cargo.Profile = "not a profile"
	cfg.Serve.MaxConcurrent = 0
	cfg.Serve.Framing = "varint"
	cfg.Watch.Extensions = []string{"rs"}
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)
	for _, want := range []string{
		"cargo.binary", "cargo.profile", "serve.max_concurrent",
		"serve.framing", "watch.extensions[0]", "log.level",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("cargo:\n  offline: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Cargo.Offline)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("serve:\n  max_concurrent: -3\n"))
	assert.ErrorContains(t, err, "serve.max_concurrent")
}
