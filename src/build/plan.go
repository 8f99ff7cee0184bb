package build

import (
	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/op"
)

// Built-in cargo profiles and the directory each writes into.
var builtinProfiles = map[string]string{
	"dev":     "debug",
	"test":    "debug",
	"release": "release",
	"bench":   "release",
}

// CompileOptions is the resolved cargo build invocation.
type CompileOptions struct {
	Profile   string
	LibOnly   bool
	Verbosity op.Verbosity
	Locked    bool
	Offline   bool
	ExtraArgs []string
}

// NewCompileOptions builds options for a request. Release is the default
// profile; any other name must be built in or declared in profiles.
func NewCompileOptions(cfg config.CargoConfig, req *op.Request, profiles []string) (*CompileOptions, error) {
	profile := cfg.Profile
	if profile == "" {
		profile = "release"
	}
	if _, ok := builtinProfiles[profile]; !ok && !contains(profiles, profile) {
		return nil, op.Errorf(op.KindCompileOptions, "compile options", "profile %q is not defined", profile)
	}

	return &CompileOptions{
		Profile:   profile,
		LibOnly:   req.LibOnly,
		Verbosity: req.Verbose,
		Locked:    cfg.Locked,
		Offline:   cfg.Offline,
		ExtraArgs: append([]string(nil), cfg.ExtraArgs...),
	}, nil
}

// Args returns the cargo build argument list.
func (o *CompileOptions) Args(manifestPath string) []string {
	args := []string{
		"build",
		"--manifest-path", manifestPath,
		"--message-format=json-render-diagnostics",
	}

	switch o.Profile {
	case "dev":
	case "release":
		args = append(args, "--release")
	default:
		args = append(args, "--profile", o.Profile)
	}

	if o.LibOnly {
		args = append(args, "--lib")
	}

	switch o.Verbosity {
	case op.VerbosityVerbose:
		args = append(args, "-v")
	case op.VerbosityVeryVerbose:
		args = append(args, "-vv")
	}

	if o.Locked {
		args = append(args, "--locked")
	}
	if o.Offline {
		args = append(args, "--offline")
	}

	return append(args, o.ExtraArgs...)
}

// ProfileDir is the directory under the target dir the profile writes to.
func (o *CompileOptions) ProfileDir() string {
	if dir, ok := builtinProfiles[o.Profile]; ok {
		return dir
	}
	return o.Profile
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
