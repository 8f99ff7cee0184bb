package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sofmeright/cargoplug/src/build"
	"github.com/sofmeright/cargoplug/src/op"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdout) || IsCI()
}

// ReportContext builds the header pairs shown above a build report.
func ReportContext(rep *build.Report) []KV {
	var kv []KV
	if m := rep.Manifest; m != nil {
		kv = append(kv, KV{"Package", m.Package.Name}, KV{"Version", orDash(m.Package.Version)})
	}
	if v := rep.VCS; v != nil {
		kv = append(kv, KV{"Branch", orDash(v.Branch)}, KV{"Commit", v.SHA})
	}
	if tc := rep.Toolchain; tc != nil {
		kv = append(kv, KV{"Rustc", tc.Release}, KV{"Host", tc.Host})
	}
	return append(kv, CIContext()...)
}

// Report renders a finished build: where outputs went and what was built.
func Report(w io.Writer, rep *build.Report, color bool) {
	ContextBlock(w, ReportContext(rep))

	var elapsed time.Duration
	if rep.Compilation != nil {
		elapsed = rep.Compilation.Duration
	}

	sec := NewSection(w, "Build", elapsed, color)
	sec.KV("output root", rep.Result.OutputRoot)
	if ws := rep.Workspace; ws != nil && ws.Root != "" {
		sec.KV("workspace", ws.Root)
	}
	if c := rep.Compilation; c != nil {
		sec.KV("compiled", fmt.Sprintf("%d units, %d fresh", len(c.Artifacts), c.Fresh))
		if c.Warnings > 0 {
			warn := fmt.Sprintf("%d", c.Warnings)
			if color {
				warn = colorYellow + warn + colorReset
			}
			sec.KV("warnings", warn)
		}
	}
	sec.Separator()
	Artifacts(sec, rep.Result.Artifacts, color)
	sec.Close()
}

// Artifacts writes one row per artifact with its library flavours.
func Artifacts(sec *Section, artifacts []op.Artifact, color bool) {
	if len(artifacts) == 0 {
		sec.Row("%s", Dimmed("no artifacts", color))
		return
	}
	sec.Row("%-28s%-6s%-7s%s", "artifact", "lib", "dylib", "cdylib")
	for _, a := range artifacts {
		sec.Row("%-28s%-6s%-7s%s", a.OutputName, flag(a.IsLib), flag(a.IsDylib), flag(a.IsCdylib))
	}
}

// Failure renders a failed build with the error kind and message.
func Failure(w io.Writer, manifestPath string, err error, elapsed time.Duration, color bool) {
	sec := NewSection(w, "Build", elapsed, color)
	sec.KV("manifest", filepath.Clean(manifestPath))
	if kind := op.KindOf(err); kind != "" {
		sec.KV("kind", string(kind))
	}
	sec.Separator()
	msg := err.Error()
	if color {
		msg = colorRed + msg + colorReset
	}
	sec.Row("%s", msg)
	sec.Close()
}

// Summary writes the trailing status line for a build.
func Summary(w io.Writer, rep *build.Report, err error, elapsed time.Duration, color bool) {
	sec := NewSection(w, "Summary", 0, color)
	status, detail := StatusSuccess, ""
	if err != nil {
		status, detail = StatusFailed, string(op.KindOf(err))
	} else if rep != nil && rep.Result != nil {
		detail = fmt.Sprintf("%d artifact(s)", len(rep.Result.Artifacts))
	}
	SummaryRow(w, "build", status, detail, color)
	SummaryTotal(w, elapsed, status, color)
	sec.Close()
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
