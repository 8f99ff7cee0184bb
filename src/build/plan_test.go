package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/op"
)

func TestCompileOptionsArgs(t *testing.T) {
	cfg := config.DefaultCargoConfig()
	cfg.Locked = true
	cfg.ExtraArgs = []string{"--features", "ffi"}

	opts, err := NewCompileOptions(cfg, &op.Request{LibOnly: true, Verbose: op.VerbosityVerbose}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"build", "--manifest-path", "/p/Cargo.toml", "--message-format=json-render-diagnostics",
		"--release", "--lib", "-v", "--locked", "--features", "ffi",
	}, opts.Args("/p/Cargo.toml"))
	assert.Equal(t, "release", opts.ProfileDir())
}

func TestCompileOptionsProfiles(t *testing.T) {
	tests := []struct {
		profile  string
		declared []string
		flag     []string
		dir      string
		wantErr  bool
	}{
		{profile: "", flag: []string{"--release"}, dir: "release"},
		{profile: "dev", dir: "debug"},
		{profile: "bench", flag: []string{"--profile", "bench"}, dir: "release"},
		{profile: "dist", declared: []string{"dist"}, flag: []string{"--profile", "dist"}, dir: "dist"},
		{profile: "dist", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			cfg := config.DefaultCargoConfig()
			cfg.Profile = tt.profile
			opts, err := NewCompileOptions(cfg, &op.Request{}, tt.declared)
			if tt.wantErr {
				assert.ErrorIs(t, err, op.ErrCompileOptions)
				return
			}
			require.NoError(t, err)
			args := opts.Args("Cargo.toml")[4:]
			if len(tt.flag) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.flag, args)
			}
			assert.Equal(t, tt.dir, opts.ProfileDir())
		})
	}
}
