package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = ".cargoplug.yml"
	appName           = "cargoplug"
)

// Config is the top-level cargoplug configuration.
type Config struct {
	Cargo CargoConfig `yaml:"cargo"`
	Serve ServeConfig `yaml:"serve"`
	Watch WatchConfig `yaml:"watch"`
	Log   LogConfig   `yaml:"log"`
}

// Load reads configuration from a YAML file.
// If path is empty, it tries .cargoplug.yml in the working directory and then
// the user config file under XDG_CONFIG_HOME.
// Returns defaults if neither exists.
func Load(path string) (*Config, error) {
	explicit := path != ""
	candidates := []string{path}
	if !explicit {
		candidates = []string{defaultConfigFile, UserConfigPath()}
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				continue
			}
			return nil, err
		}
		return Parse(data)
	}
	return Defaults(), nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UserConfigPath is the per-user config location, e.g. ~/.config/cargoplug/config.yml.
func UserConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yml")
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Cargo: DefaultCargoConfig(),
		Serve: DefaultServeConfig(),
		Watch: DefaultWatchConfig(),
		Log:   DefaultLogConfig(),
	}
}
