package config

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultLogConfig returns production defaults.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}
