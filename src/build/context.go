package build

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/op"
)

// Command is one external program invocation.
type Command struct {
	Dir    string
	Env    []string // appended to the process environment
	Name   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Commander runs external programs. Tests substitute a fake.
type Commander interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecCommander runs commands with os/exec.
type ExecCommander struct{}

// Run executes cmd and waits for it to exit.
func (ExecCommander) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}

// Context is the per-invocation configuration handed to every cargo call.
// A new one is built for each request; nothing is shared between builds.
type Context struct {
	ManifestPath string // absolute
	Cwd          string // directory containing the manifest
	CargoHome    string
	Cargo        string
	Rustc        string
	Env          []string
	Verbosity    op.Verbosity
	Commander    Commander
	Stderr       io.Writer // receives cargo's stderr when verbose
}

// NewContext derives the working directory from the manifest path and
// resolves cargo home relative to it.
func NewContext(cfg config.CargoConfig, manifestPath string, verbosity op.Verbosity, cmdr Commander) (*Context, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, op.Wrap(op.KindManifestNotFound, "resolve manifest path", err)
	}
	cwd := filepath.Dir(abs)

	home, err := ResolveCargoHome(cwd)
	if err != nil {
		return nil, op.Wrap(op.KindHome, "resolve cargo home", err)
	}

	if cmdr == nil {
		cmdr = ExecCommander{}
	}

	c := &Context{
		ManifestPath: abs,
		Cwd:          cwd,
		CargoHome:    home,
		Cargo:        orDefault(cfg.Binary, "cargo"),
		Rustc:        orDefault(cfg.Rustc, "rustc"),
		Verbosity:    verbosity,
		Commander:    cmdr,
		Stderr:       io.Discard,
	}

	c.Env = append(c.Env, "CARGO_HOME="+home)
	if cfg.TargetDir != "" {
		td := cfg.TargetDir
		if !filepath.IsAbs(td) {
			td = filepath.Join(cwd, td)
		}
		c.Env = append(c.Env, "CARGO_TARGET_DIR="+td)
	}
	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Env = append(c.Env, k+"="+cfg.Env[k])
	}
	return c, nil
}

// output runs a program in the manifest directory and returns its stdout.
// On failure the error includes the tail of stderr.
func (c *Context) output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	stderr := newTailBuffer(stderrTailLimit)
	cmd := Command{
		Dir:    c.Cwd,
		Env:    c.Env,
		Name:   name,
		Args:   args,
		Stdout: &stdout,
		Stderr: stderr,
	}
	if err := c.Commander.Run(ctx, cmd); err != nil {
		if tail := strings.TrimSpace(stderr.String()); tail != "" {
			return nil, fmt.Errorf("%s: %w\n%s", cmd, err, tail)
		}
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return stdout.Bytes(), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

const stderrTailLimit = 16 * 1024

// tailBuffer keeps only the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }
