package op

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so callers can tell a missing
// manifest from a compile failure without parsing messages.
type Kind string

const (
	KindRequestDecode       Kind = "request_decode"
	KindManifestNotFound    Kind = "manifest_not_found"
	KindUnsupportedManifest Kind = "unsupported_manifest"
	KindManifestParse       Kind = "manifest_parse"
	KindHome                Kind = "home"
	KindWorkspace           Kind = "workspace"
	KindCompileOptions      Kind = "compile_options"
	KindCompile             Kind = "compile"
	KindResponseEncode      Kind = "response_encode"
	KindAsyncUnsupported    Kind = "async_unsupported"
)

// Sentinels for errors.Is matching against a kind.
var (
	ErrRequestDecode       = errors.New("invalid build request")
	ErrManifestNotFound    = errors.New("manifest not found")
	ErrUnsupportedManifest = errors.New("unsupported manifest")
	ErrManifestParse       = errors.New("invalid manifest")
	ErrHome                = errors.New("cargo home unavailable")
	ErrWorkspace           = errors.New("workspace unavailable")
	ErrCompileOptions      = errors.New("invalid compile options")
	ErrCompile             = errors.New("compilation failed")
	ErrResponseEncode      = errors.New("response encoding failed")
	ErrAsyncUnsupported    = errors.New("async not supported")
)

var sentinels = map[Kind]error{
	KindRequestDecode:       ErrRequestDecode,
	KindManifestNotFound:    ErrManifestNotFound,
	KindUnsupportedManifest: ErrUnsupportedManifest,
	KindManifestParse:       ErrManifestParse,
	KindHome:                ErrHome,
	KindWorkspace:           ErrWorkspace,
	KindCompileOptions:      ErrCompileOptions,
	KindCompile:             ErrCompile,
	KindResponseEncode:      ErrResponseEncode,
	KindAsyncUnsupported:    ErrAsyncUnsupported,
}

// Error is the structured failure returned by every step of an operation.
type Error struct {
	Kind Kind
	Op   string // step that failed, e.g. "read manifest"
	Err  error
}

// Errorf builds an *Error of the given kind with a formatted cause.
func Errorf(kind Kind, step, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: step, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to an existing error. A nil err yields nil.
func Wrap(kind Kind, step string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: step, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	}
	return e.sentinel().Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func (e *Error) sentinel() error {
	if s, ok := sentinels[e.Kind]; ok {
		return s
	}
	return errors.New(string(e.Kind))
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}
