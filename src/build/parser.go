package build

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Message is one line of cargo's --message-format=json stream.
type Message struct {
	Reason    string          `json:"reason"`
	PackageID string          `json:"package_id"`
	Target    *MessageTarget  `json:"target"`
	Filenames []string        `json:"filenames"`
	Fresh     bool            `json:"fresh"`
	Message   *CompilerDiag   `json:"message"`
	Success   *bool           `json:"success"`
	Profile   *MessageProfile `json:"profile"`
}

// MessageTarget identifies the target a message is about.
type MessageTarget struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
	SrcPath    string   `json:"src_path"`
}

// MessageProfile is the profile summary attached to compiler-artifact.
type MessageProfile struct {
	OptLevel string `json:"opt_level"`
	Test     bool   `json:"test"`
}

// CompilerDiag is a rustc diagnostic forwarded by cargo.
type CompilerDiag struct {
	Level    string `json:"level"` // "error", "warning", "note", ...
	Message  string `json:"message"`
	Rendered string `json:"rendered"`
}

const (
	reasonCompilerArtifact = "compiler-artifact"
	reasonCompilerMessage  = "compiler-message"
	reasonBuildFinished    = "build-finished"
)

// messageParser consumes cargo's stdout line by line.
type messageParser struct {
	partial   []byte
	artifacts []CompilerArtifact
	warnings  int
	errors    []string
	finished  *bool
	onMessage func(Message)
}

// Write implements io.Writer so the parser can sit directly on cargo's stdout.
func (p *messageParser) Write(b []byte) (int, error) {
	p.partial = append(p.partial, b...)
	for {
		i := bytes.IndexByte(p.partial, '\n')
		if i < 0 {
			break
		}
		p.parseLine(p.partial[:i])
		p.partial = p.partial[i+1:]
	}
	return len(b), nil
}

// Flush parses any trailing line without a newline.
func (p *messageParser) Flush() {
	if len(p.partial) > 0 {
		p.parseLine(p.partial)
		p.partial = nil
	}
}

// parseLine ignores anything that is not a JSON object; build scripts and
// wrappers may write plain text to stdout.
func (p *messageParser) parseLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return
	}
	var m Message
	if err := json.Unmarshal(line, &m); err != nil {
		return
	}

	switch m.Reason {
	case reasonCompilerArtifact:
		if m.Target != nil {
			p.artifacts = append(p.artifacts, CompilerArtifact{
				PackageID:  m.PackageID,
				Target:     m.Target.Name,
				Kinds:      m.Target.Kind,
				CrateTypes: m.Target.CrateTypes,
				Filenames:  m.Filenames,
				Fresh:      m.Fresh,
			})
		}
	case reasonCompilerMessage:
		if m.Message != nil {
			switch m.Message.Level {
			case "warning":
				p.warnings++
			case "error", "error: internal compiler error":
				p.errors = append(p.errors, strings.TrimSpace(firstNonEmpty(m.Message.Rendered, m.Message.Message)))
			}
		}
	case reasonBuildFinished:
		p.finished = m.Success
	}

	if p.onMessage != nil {
		p.onMessage(m)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
