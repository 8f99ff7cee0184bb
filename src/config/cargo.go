package config

import "time"

// CargoConfig controls how the cargo binary is driven.
type CargoConfig struct {
	Binary    string            `yaml:"binary"`     // cargo executable, default "cargo" on PATH
	Rustc     string            `yaml:"rustc"`      // rustc used for toolchain checks
	Profile   string            `yaml:"profile"`    // build profile, default "release"
	TargetDir string            `yaml:"target_dir"` // overrides CARGO_TARGET_DIR when set
	Env       map[string]string `yaml:"env"`        // extra environment for cargo
	ExtraArgs []string          `yaml:"extra_args"` // appended to cargo build
	Locked    bool              `yaml:"locked"`
	Offline   bool              `yaml:"offline"`
	Timeout   time.Duration     `yaml:"timeout"` // zero means no limit
}

// DefaultCargoConfig returns production defaults.
func DefaultCargoConfig() CargoConfig {
	return CargoConfig{
		Binary:  "cargo",
		Rustc:   "rustc",
		Profile: "release",
		Env:     map[string]string{},
	}
}
