package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sofmeright/cargoplug/src/build"
	"github.com/sofmeright/cargoplug/src/host"
	"github.com/sofmeright/cargoplug/src/op"
	"github.com/sofmeright/cargoplug/src/output"
)

var (
	bLibOnly   bool
	bVerbosity int
	bJSON      bool
)

var buildCmd = &cobra.Command{
	Use:   "build [manifest|dir]",
	Short: "Build a cargo package and list its artifacts",
	Long: `Build a Rust package with cargo and report its output directory and artifacts.

The argument may be a Cargo.toml or a directory; without one, the nearest
Cargo.toml above the working directory is used. With --json the op's raw
response is printed, exactly as a host would receive it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	addBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func addBuildFlags(c *cobra.Command) {
	c.Flags().BoolVar(&bLibOnly, "lib-only", op.DefaultLibOnly, "build and report only the library target")
	c.Flags().IntVar(&bVerbosity, "verbosity", 0, "cargo verbosity: 0, 1 (-v) or 2 (-vv)")
	c.Flags().BoolVar(&bJSON, "json", false, "print the op response JSON")
}

// buildRequest resolves the manifest argument into an op request.
func buildRequest(args []string) (*op.Request, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	manifest, err := build.FindManifest(start)
	if err != nil {
		return nil, err
	}
	if bVerbosity < 0 {
		return nil, fmt.Errorf("--verbosity must be 0, 1 or 2")
	}
	return &op.Request{
		ManifestPath: manifest,
		LibOnly:      bLibOnly,
		Verbose:      op.ClampVerbosity(bVerbosity),
	}, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(args)
	if err != nil {
		return err
	}
	return buildOnce(cmd.Context(), cmd.OutOrStdout(), req)
}

// buildOnce runs one build and prints it in the selected format.
func buildOnce(ctx context.Context, w io.Writer, req *op.Request) error {
	if bJSON {
		return buildJSON(ctx, w, req)
	}

	color := output.UseColor()
	b := build.NewBuilder(cfg.Cargo)
	if req.Verbose > op.VerbosityStandard {
		b.Stderr = os.Stderr
	}

	openCargoSection(w, req.Verbose)
	start := time.Now()
	rep, err := b.Run(ctx, req)
	output.SectionEnd(w, "cargo_build")

	if err != nil {
		output.Failure(w, req.ManifestPath, err, time.Since(start), color)
	} else {
		output.Report(w, rep, color)
	}
	output.Summary(w, rep, err, time.Since(start), color)
	return err
}

// openCargoSection starts the CI log section wrapping the cargo run. Verbose
// runs mirror cargo's stderr, so their section starts collapsed.
func openCargoSection(w io.Writer, verbosity op.Verbosity) {
	if verbosity > op.VerbosityStandard {
		output.SectionStartCollapsed(w, "cargo_build", "cargo build output")
		return
	}
	output.SectionStart(w, "cargo_build", "cargo build")
}

// buildJSON goes through the registered op, bytes in and bytes out.
func buildJSON(ctx context.Context, w io.Writer, req *op.Request) error {
	data, err := op.EncodeRequest(req)
	if err != nil {
		return err
	}
	resp, err := host.Dispatch(ctx, cfg, host.OpCargoBuild, true, data, nil)
	if err != nil {
		return err
	}
	if resp.Err != nil {
		return resp.Err
	}
	_, err = fmt.Fprintln(w, string(resp.Data))
	return err
}
