package config

import "runtime"

// Framing selects the JSON-RPC message framing on stdio.
type Framing string

const (
	FramingHeader Framing = "header" // Content-Length headers
	FramingPlain  Framing = "plain"  // bare JSON objects
)

// ServeConfig holds settings for the stdio JSON-RPC host.
type ServeConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent"`
	Framing       Framing `yaml:"framing"`
}

// DefaultServeConfig returns production defaults.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		MaxConcurrent: runtime.NumCPU(),
		Framing:       FramingHeader,
	}
}
