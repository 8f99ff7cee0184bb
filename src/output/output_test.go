package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sofmeright/cargoplug/src/build"
	"github.com/sofmeright/cargoplug/src/op"
)

func sampleReport() *build.Report {
	return &build.Report{
		Result: &op.Result{
			OutputRoot: "/work/target/release",
			Artifacts: []op.Artifact{
				{OutputName: "my_lib", IsLib: true, IsCdylib: true},
				{OutputName: "my_tool"},
			},
		},
		Manifest:    &build.Manifest{Package: build.PackageInfo{Name: "my-lib", Version: "0.1.0"}},
		Workspace:   &build.Workspace{Root: "/work"},
		Compilation: &build.Compilation{Duration: 1500 * time.Millisecond, Warnings: 2, Fresh: 1, Artifacts: make([]build.CompilerArtifact, 3)},
		VCS:         &build.VCSInfo{Branch: "main", SHA: "abc1234"},
	}
}

func TestReportPlain(t *testing.T) {
	t.Setenv("CI", "")
	var buf bytes.Buffer
	Report(&buf, sampleReport(), false)
	out := buf.String()

	assert.Contains(t, out, "── Build ")
	assert.Contains(t, out, "1.5s ──")
	assert.Contains(t, out, "/work/target/release")
	assert.Contains(t, out, "3 units, 1 fresh")
	assert.Contains(t, out, "warnings      2")
	assert.Contains(t, out, "my-lib")
	assert.Contains(t, out, "abc1234")
	assert.NotContains(t, out, "\033[")

	var lib string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "my_lib") {
			lib = line
		}
	}
	assert.Regexp(t, `my_lib\s+yes\s+-\s+yes`, lib)
}

func TestArtifactsEmpty(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Build", 0, false)
	Artifacts(sec, nil, false)
	assert.Contains(t, buf.String(), "no artifacts")
}

func TestFailureShowsKind(t *testing.T) {
	var buf bytes.Buffer
	err := op.Errorf(op.KindCompile, "cargo build", "exit status 101")
	Failure(&buf, "/work/./Cargo.toml", err, time.Second, false)
	out := buf.String()
	assert.Contains(t, out, "/work/Cargo.toml")
	assert.Contains(t, out, "compile")
	assert.Contains(t, out, "exit status 101")
}

func TestSummaryStatus(t *testing.T) {
	var ok, bad bytes.Buffer
	Summary(&ok, sampleReport(), nil, time.Second, false)
	Summary(&bad, nil, errors.New("boom"), time.Second, false)
	assert.Contains(t, ok.String(), "✓  2 artifact(s)")
	assert.Contains(t, bad.String(), "✗")
}

func TestStatusIcon(t *testing.T) {
	assert.Equal(t, "✓", StatusIcon(StatusSuccess, false))
	assert.Equal(t, "✗", StatusIcon(StatusFailed, false))
	assert.Equal(t, "⊘", StatusIcon(StatusSkipped, false))
	assert.Equal(t, colorGreen+"✓"+colorReset, StatusIcon(StatusSuccess, true))
}

func TestFormatElapsed(t *testing.T) {
	cases := map[time.Duration]string{
		500 * time.Microsecond:  "<1ms",
		250 * time.Millisecond:  "250ms",
		2500 * time.Millisecond: "2.5s",
		90 * time.Second:        "1m30.0s",
	}
	for d, want := range cases {
		assert.Equal(t, want, formatElapsed(d), d.String())
	}
}

func TestCIContext(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("CI_PIPELINE_ID", "42")
	t.Setenv("CI_RUNNER_DESCRIPTION", "")
	assert.Equal(t, []KV{{"Pipeline", "42"}}, CIContext())

	t.Setenv("CI", "")
	assert.Nil(t, CIContext())
}

func TestSectionMarkersOnlyInGitLab(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("GITLAB_CI", "")
	SectionStart(&buf, "build", "Build")
	assert.Empty(t, buf.String())

	t.Setenv("GITLAB_CI", "true")
	SectionStartCollapsed(&buf, "build", "Build")
	SectionEnd(&buf, "build")
	assert.Contains(t, buf.String(), "section_start:")
	assert.Contains(t, buf.String(), "build[collapsed=true]")
	assert.Contains(t, buf.String(), "section_end:")
}
