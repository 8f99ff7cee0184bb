package build

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCargo stands in for the cargo and rustc binaries.
type fakeCargo struct {
	mu sync.Mutex

	targetDir    string
	metadataErr  error
	notMember    bool
	buildStdout  string
	buildStderr  string
	buildErr     error
	rustcVersion string

	calls []Command
}

func (f *fakeCargo) Run(_ context.Context, c Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if c.Name == "rustc" {
		_, _ = io.WriteString(c.Stdout, "rustc "+f.rustcVersion+" (abc 2024-01-01)\nbinary: rustc\nhost: x86_64-unknown-linux-gnu\nrelease: "+f.rustcVersion+"\n")
		return nil
	}

	switch c.Args[0] {
	case "metadata":
		if f.metadataErr != nil {
			_, _ = io.WriteString(c.Stderr, "error: failed to load manifest for workspace member\n")
			return f.metadataErr
		}
		manifest := argAfter(c.Args, "--manifest-path")
		if f.notMember {
			manifest = "/elsewhere/Cargo.toml"
		}
		md := map[string]any{
			"target_directory":  f.targetDir,
			"workspace_root":    filepath.Dir(manifest),
			"workspace_members": []string{"pkg 0.1.0"},
			"packages": []map[string]any{
				{"id": "pkg 0.1.0", "name": "pkg", "version": "0.1.0", "manifest_path": manifest},
			},
		}
		return json.NewEncoder(c.Stdout).Encode(md)
	case "build":
		_, _ = io.WriteString(c.Stdout, f.buildStdout)
		_, _ = io.WriteString(c.Stderr, f.buildStderr)
		return f.buildErr
	}
	return errors.New("fake cargo: unexpected command " + c.String())
}

func (f *fakeCargo) call(sub string) (Command, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if len(c.Args) > 0 && c.Args[0] == sub {
			return c, true
		}
	}
	return Command{}, false
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// writePackage lays out files under a temp dir and returns the manifest path.
func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return filepath.Join(dir, "Cargo.toml")
}
