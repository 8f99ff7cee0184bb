package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var profileNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Validate checks structural invariants of a loaded Config.
// All problems are reported together.
func Validate(cfg *Config) error {
	var errs []string

	// ── Cargo ─────────────────────────────────────────────────────────────

	if strings.TrimSpace(cfg.Cargo.Binary) == "" {
		errs = append(errs, "cargo.binary: must not be empty")
	}
	if cfg.Cargo.Profile != "" && !profileNameRe.MatchString(cfg.Cargo.Profile) {
		errs = append(errs, fmt.Sprintf("cargo.profile: %q is not a valid profile name", cfg.Cargo.Profile))
	}
	if cfg.Cargo.Timeout < 0 {
		errs = append(errs, "cargo.timeout: must not be negative")
	}
	for k := range cfg.Cargo.Env {
		if k == "" || strings.Contains(k, "=") {
			errs = append(errs, fmt.Sprintf("cargo.env: invalid variable name %q", k))
		}
	}

	// ── Serve ─────────────────────────────────────────────────────────────

	if cfg.Serve.MaxConcurrent < 1 {
		errs = append(errs, fmt.Sprintf("serve.max_concurrent: must be at least 1, got %d", cfg.Serve.MaxConcurrent))
	}
	switch cfg.Serve.Framing {
	case FramingHeader, FramingPlain:
	default:
		errs = append(errs, fmt.Sprintf("serve.framing: unknown framing %q (supported: header, plain)", cfg.Serve.Framing))
	}

	// ── Watch ─────────────────────────────────────────────────────────────

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, "watch.debounce: must not be negative")
	}
	for i, ext := range cfg.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("watch.extensions[%d]: %q must start with a dot", i, ext))
		}
	}

	// ── Log ───────────────────────────────────────────────────────────────

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level: unknown level %q", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format: unknown format %q (supported: text, json)", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return errors.New("invalid config:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
