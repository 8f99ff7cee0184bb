package build

import (
	"fmt"
	"os"
	"path/filepath"
)

const manifestName = "Cargo.toml"

// FindManifest resolves a CLI argument to a manifest path. A file is used
// as-is; a directory is searched upward for Cargo.toml, the way cargo looks
// for the nearest manifest.
func FindManifest(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return abs, nil
	}

	for dir := abs; ; {
		candidate := filepath.Join(dir, manifestName)
		if fileExists(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find %s in %s or any parent directory", manifestName, abs)
		}
		dir = parent
	}
}
