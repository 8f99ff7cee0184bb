package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sofmeright/cargoplug/src/logx"
	"github.com/sofmeright/cargoplug/src/op"
)

// Compile runs cargo build for the context's manifest and blocks until it
// exits. A non-zero exit or an unsuccessful build-finished message is
// KindCompile, carrying compiler errors or the tail of cargo's stderr.
func Compile(ctx context.Context, c *Context, ws *Workspace, opts *CompileOptions) (*Compilation, error) {
	log := logx.FromContext(ctx)
	start := time.Now()

	parser := &messageParser{
		onMessage: func(m Message) {
			if m.Reason == reasonCompilerArtifact && m.Target != nil {
				log.Debug("artifact", "target", m.Target.Name, "fresh", m.Fresh)
			}
		},
	}
	stderr := newTailBuffer(stderrTailLimit)
	var stderrW io.Writer = stderr
	if c.Verbosity > op.VerbosityStandard && c.Stderr != nil {
		stderrW = io.MultiWriter(stderr, c.Stderr)
	}

	cmd := Command{
		Dir:    c.Cwd,
		Env:    c.Env,
		Name:   c.Cargo,
		Args:   opts.Args(c.ManifestPath),
		Stdout: parser,
		Stderr: stderrW,
	}
	log.Debug("exec", "cmd", cmd.String())

	runErr := c.Commander.Run(ctx, cmd)
	parser.Flush()

	comp := &Compilation{
		RootOutput: filepath.Join(ws.TargetDir, opts.ProfileDir()),
		Artifacts:  parser.artifacts,
		Warnings:   parser.warnings,
		Duration:   time.Since(start),
	}
	for _, a := range parser.artifacts {
		if a.Fresh {
			comp.Fresh++
		}
	}

	failed := runErr != nil || (parser.finished != nil && !*parser.finished)
	if !failed {
		return comp, nil
	}

	detail := strings.Join(parser.errors, "\n")
	if detail == "" {
		detail = strings.TrimSpace(stderr.String())
	}
	cause := runErr
	if cause == nil {
		cause = errors.New("cargo reported an unsuccessful build")
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		cause = fmt.Errorf("%w (%v)", ctxErr, cause)
	}
	if detail != "" {
		cause = fmt.Errorf("%w\n%s", cause, detail)
	}
	return comp, op.Wrap(op.KindCompile, "compile", cause)
}
