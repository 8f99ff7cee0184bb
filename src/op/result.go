package op

import "encoding/json"

// Artifact describes one manifest target in the build result.
type Artifact struct {
	OutputName string `json:"output_name"`
	IsLib      bool   `json:"is_lib"`
	IsDylib    bool   `json:"is_dylib"`
	IsCdylib   bool   `json:"is_cdylib"`
}

// Result is the cargo_build response payload.
type Result struct {
	OutputRoot string     `json:"output_root"`
	Artifacts  []Artifact `json:"artifacts"`
}

// EncodeResult serializes a result to JSON bytes.
func EncodeResult(r *Result) ([]byte, error) {
	if r == nil {
		return nil, Errorf(KindResponseEncode, "encode response", "nil result")
	}
	out := *r
	if out.Artifacts == nil {
		out.Artifacts = []Artifact{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, Wrap(KindResponseEncode, "encode response", err)
	}
	return data, nil
}

// DecodeResult parses a response payload. Host-side callers use it; the op
// itself only encodes.
func DecodeResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, Wrap(KindResponseEncode, "decode response", err)
	}
	return &r, nil
}
