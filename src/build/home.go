package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ResolveCargoHome finds the cargo home for a build rooted at cwd.
// CARGO_HOME wins, with relative values taken against cwd; otherwise
// ~/.cargo under the user's home directory.
func ResolveCargoHome(cwd string) (string, error) {
	if v := os.Getenv("CARGO_HOME"); v != "" {
		if !filepath.IsAbs(v) {
			v = filepath.Join(cwd, v)
		}
		return filepath.Clean(v), nil
	}

	home := xdg.Home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine a home directory: %w", err)
		}
	}
	return filepath.Join(home, ".cargo"), nil
}
