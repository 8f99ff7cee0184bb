package build

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/sofmeright/cargoplug/src/op"
)

// Toolchain describes the rustc that cargo will invoke.
type Toolchain struct {
	Release string // "1.78.0", "1.80.0-nightly"
	Host    string // host triple
	Version *masterminds.Version
}

// DetectToolchain runs `rustc -vV`.
func DetectToolchain(ctx context.Context, c *Context) (*Toolchain, error) {
	out, err := c.output(ctx, c.Rustc, "-vV")
	if err != nil {
		return nil, op.Wrap(op.KindCompileOptions, "detect toolchain", err)
	}
	tc, err := parseRustcVersion(out)
	if err != nil {
		return nil, op.Wrap(op.KindCompileOptions, "detect toolchain", err)
	}
	return tc, nil
}

func parseRustcVersion(out []byte) (*Toolchain, error) {
	tc := &Toolchain{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "release":
			tc.Release = strings.TrimSpace(value)
		case "host":
			tc.Host = strings.TrimSpace(value)
		}
	}
	if tc.Release == "" {
		return nil, fmt.Errorf("rustc -vV output has no release line")
	}
	v, err := masterminds.NewVersion(tc.Release)
	if err != nil {
		return nil, fmt.Errorf("parsing rustc release %q: %w", tc.Release, err)
	}
	tc.Version = v
	return tc, nil
}

// Satisfies checks a package's rust-version against the toolchain.
// Pre-release toolchains (nightly, beta) compare by their core version.
func (tc *Toolchain) Satisfies(rustVersion string) error {
	if rustVersion == "" {
		return nil
	}
	want, err := masterminds.NewVersion(rustVersion)
	if err != nil {
		return op.Errorf(op.KindCompileOptions, "check rust-version", "invalid rust-version %q: %v", rustVersion, err)
	}
	have := masterminds.New(tc.Version.Major(), tc.Version.Minor(), tc.Version.Patch(), "", "")
	if have.LessThan(want) {
		return op.Errorf(op.KindCompileOptions, "check rust-version",
			"package requires rustc %s or newer, toolchain is %s", want, tc.Release)
	}
	return nil
}
