package host

import (
	"context"
	"errors"

	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/op"
)

// ErrUnknownOp is returned by Get and Dispatch for unregistered names.
var ErrUnknownOp = errors.New("unknown op")

// AsyncUnsupported is the immediate rejection every op gives to async calls.
func AsyncUnsupported() Response {
	return Response{Async: true, Err: &op.Error{Kind: op.KindAsyncUnsupported, Err: op.ErrAsyncUnsupported}}
}

// Dispatch looks up name and invokes it.
func Dispatch(ctx context.Context, cfg *config.Config, name string, isSync bool, data, zeroCopy []byte) (Response, error) {
	fn, err := Get(name, cfg)
	if err != nil {
		return Response{}, err
	}
	return fn(ctx, isSync, data, zeroCopy), nil
}
