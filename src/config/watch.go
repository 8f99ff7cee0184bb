package config

import "time"

// WatchConfig controls rebuild-on-change.
type WatchConfig struct {
	Debounce   time.Duration `yaml:"debounce"`
	Extensions []string      `yaml:"extensions"`
	Ignore     []string      `yaml:"ignore"` // directory names skipped while walking
}

// DefaultWatchConfig returns production defaults.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Debounce:   300 * time.Millisecond,
		Extensions: []string{".rs", ".toml"},
		Ignore:     []string{"target", ".git"},
	}
}
