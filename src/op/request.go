package op

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"unicode/utf8"
)

// Verbosity mirrors cargo's -v/-vv levels.
type Verbosity int

const (
	VerbosityStandard Verbosity = iota
	VerbosityVerbose
	VerbosityVeryVerbose
)

// Request is one decoded cargo_build invocation.
type Request struct {
	ManifestPath string
	LibOnly      bool
	Verbose      Verbosity
}

// rawRequest keeps pointer fields so absent keys can take host-side defaults.
type rawRequest struct {
	ManifestPath *string `json:"manifest_path"`
	LibOnly      *bool   `json:"lib_only"`
	Verbose      *int    `json:"verbose"`
}

// DefaultLibOnly matches the host wrapper's default when lib_only is omitted.
const DefaultLibOnly = true

// DecodeRequest parses a UTF-8 JSON build request.
func DecodeRequest(data []byte) (*Request, error) {
	if !utf8.Valid(data) {
		return nil, Errorf(KindRequestDecode, "decode request", "payload is not valid UTF-8")
	}

	var raw rawRequest
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, Wrap(KindRequestDecode, "decode request", err)
	}
	if dec.More() {
		return nil, Errorf(KindRequestDecode, "decode request", "trailing data after request object")
	}

	if raw.ManifestPath == nil || *raw.ManifestPath == "" {
		return nil, Errorf(KindRequestDecode, "decode request", "manifest_path is required")
	}

	req := &Request{
		ManifestPath: filepath.Clean(*raw.ManifestPath),
		LibOnly:      DefaultLibOnly,
	}
	if raw.LibOnly != nil {
		req.LibOnly = *raw.LibOnly
	}
	if raw.Verbose != nil {
		if *raw.Verbose < 0 {
			return nil, Errorf(KindRequestDecode, "decode request", "verbose must be non-negative, got %d", *raw.Verbose)
		}
		req.Verbose = ClampVerbosity(*raw.Verbose)
	}
	return req, nil
}

// ClampVerbosity maps an arbitrary level onto the supported range.
func ClampVerbosity(level int) Verbosity {
	switch {
	case level <= 0:
		return VerbosityStandard
	case level == 1:
		return VerbosityVerbose
	default:
		return VerbosityVeryVerbose
	}
}

// EncodeRequest is the inverse of DecodeRequest, used by the CLI and tests
// to drive the op through its byte interface.
func EncodeRequest(r *Request) ([]byte, error) {
	v := int(r.Verbose)
	return json.Marshal(rawRequest{
		ManifestPath: &r.ManifestPath,
		LibOnly:      &r.LibOnly,
		Verbose:      &v,
	})
}
