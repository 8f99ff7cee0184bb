package build

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sofmeright/cargoplug/src/op"
)

// Workspace is the slice of `cargo metadata` the build needs.
type Workspace struct {
	Root         string // workspace root directory
	TargetDir    string
	ManifestPath string // the member being built
	Members      []string
}

type cargoMetadata struct {
	TargetDirectory  string   `json:"target_directory"`
	WorkspaceRoot    string   `json:"workspace_root"`
	WorkspaceMembers []string `json:"workspace_members"`
	Packages         []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Version      string `json:"version"`
		ManifestPath string `json:"manifest_path"`
	} `json:"packages"`
}

// OpenWorkspace asks cargo for the workspace containing the context's
// manifest. Failures are KindWorkspace.
func OpenWorkspace(ctx context.Context, c *Context) (*Workspace, error) {
	out, err := c.output(ctx, c.Cargo,
		"metadata", "--no-deps", "--format-version", "1",
		"--manifest-path", c.ManifestPath,
	)
	if err != nil {
		return nil, op.Wrap(op.KindWorkspace, "open workspace", err)
	}
	return parseMetadata(out, c.ManifestPath)
}

func parseMetadata(data []byte, manifestPath string) (*Workspace, error) {
	var md cargoMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, op.Wrap(op.KindWorkspace, "open workspace", fmt.Errorf("decoding cargo metadata: %w", err))
	}
	if md.TargetDirectory == "" {
		return nil, op.Errorf(op.KindWorkspace, "open workspace", "cargo metadata reported no target directory")
	}

	ws := &Workspace{
		Root:         md.WorkspaceRoot,
		TargetDir:    md.TargetDirectory,
		ManifestPath: manifestPath,
	}

	found := false
	want := filepath.Clean(manifestPath)
	for _, p := range md.Packages {
		ws.Members = append(ws.Members, p.Name)
		if filepath.Clean(p.ManifestPath) == want {
			found = true
		}
	}
	if !found {
		return nil, op.Errorf(op.KindWorkspace, "open workspace", "%s is not a member of workspace %s", manifestPath, md.WorkspaceRoot)
	}
	return ws, nil
}
