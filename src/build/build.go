// Package build drives cargo to compile a package manifest and describes
// the resulting targets.
package build

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/logx"
	"github.com/sofmeright/cargoplug/src/op"
)

// Builder runs the manifest → workspace → compile pipeline.
type Builder struct {
	Config    config.CargoConfig
	Commander Commander
	Stderr    io.Writer // mirrors cargo stderr for verbose requests
}

// NewBuilder returns a Builder that shells out to cargo.
func NewBuilder(cfg config.CargoConfig) *Builder {
	return &Builder{Config: cfg, Commander: ExecCommander{}, Stderr: io.Discard}
}

// Report is the full outcome of a build; Result is what the op returns.
type Report struct {
	Result      *op.Result
	Manifest    *Manifest
	Workspace   *Workspace
	Compilation *Compilation
	Toolchain   *Toolchain
	VCS         *VCSInfo
}

// Build compiles req's manifest and reports its targets.
func (b *Builder) Build(ctx context.Context, req *op.Request) (*op.Result, error) {
	rep, err := b.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return rep.Result, nil
}

// Run is Build with the intermediate state kept for display.
func (b *Builder) Run(ctx context.Context, req *op.Request) (*Report, error) {
	log := logx.FromContext(ctx)
	if b.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Config.Timeout)
		defer cancel()
	}

	c, err := NewContext(b.Config, req.ManifestPath, req.Verbose, b.Commander)
	if err != nil {
		return nil, err
	}
	c.Stderr = b.Stderr
	log = log.With("manifest", c.ManifestPath)

	m, err := ReadManifest(c.ManifestPath)
	if err != nil {
		return nil, err
	}
	if m.IsVirtual() {
		return nil, op.Errorf(op.KindUnsupportedManifest, "read manifest",
			"%s is a virtual manifest; point manifest_path at a member package", c.ManifestPath)
	}
	targets := m.Targets()
	log.Debug("manifest", "package", m.Package.Name, "version", m.Package.Version, "targets", len(targets))

	rep := &Report{Manifest: m, VCS: DetectVCS(c.Cwd)}
	if rep.VCS != nil {
		log.Debug("vcs", "branch", rep.VCS.Branch, "sha", rep.VCS.SHA)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ws, err := OpenWorkspace(gctx, c)
		rep.Workspace = ws
		return err
	})
	if m.Package.RustVersion != "" {
		g.Go(func() error {
			tc, err := DetectToolchain(gctx, c)
			rep.Toolchain = tc
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profiles := m.Profiles
	if root := rep.Workspace.Root; root != "" && filepath.Clean(root) != m.Dir {
		if rm, err := ReadManifest(filepath.Join(root, manifestName)); err == nil {
			profiles = append(profiles, rm.Profiles...)
		}
	}
	opts, err := NewCompileOptions(b.Config, req, profiles)
	if err != nil {
		return nil, err
	}
	if rep.Toolchain != nil {
		if err := rep.Toolchain.Satisfies(m.Package.RustVersion); err != nil {
			return nil, err
		}
	}

	log.Info("compiling", "package", m.Package.Name, "profile", opts.Profile, "lib_only", opts.LibOnly)
	start := time.Now()
	comp, err := Compile(ctx, c, rep.Workspace, opts)
	if err != nil {
		log.Error("compile failed", "elapsed", time.Since(start), "err", err)
		return nil, err
	}
	if root := artifactRoot(comp.Artifacts, targets); root != "" {
		comp.RootOutput = root
	}
	rep.Compilation = comp
	log.Info("compiled", "elapsed", comp.Duration, "artifacts", len(comp.Artifacts), "fresh", comp.Fresh, "warnings", comp.Warnings)

	res := &op.Result{OutputRoot: comp.RootOutput, Artifacts: []op.Artifact{}}
	for _, t := range targets {
		if req.LibOnly && !t.IsLib() {
			continue
		}
		res.Artifacts = append(res.Artifacts, t.Artifact())
	}
	rep.Result = res
	return rep, nil
}
