package host

import (
	"context"

	"github.com/sofmeright/cargoplug/src/build"
	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/logx"
	"github.com/sofmeright/cargoplug/src/op"
)

// Names under which the cargo build op is registered. "build" is the name
// older host bindings load.
const (
	OpCargoBuild      = "cargo_build"
	OpCargoBuildAlias = "build"
)

func init() {
	factory := func(cfg *config.Config) Op { return CargoBuild(build.NewBuilder(cfg.Cargo)) }
	Register(OpCargoBuild, factory)
	Register(OpCargoBuildAlias, factory)
}

// Builder is the slice of *build.Builder the op needs.
type Builder interface {
	Build(ctx context.Context, req *op.Request) (*op.Result, error)
}

// CargoBuild returns the op: decode the request, build, encode the result.
// Async calls are rejected before anything else is looked at.
func CargoBuild(b Builder) Op {
	return func(ctx context.Context, isSync bool, data []byte, _ []byte) Response {
		if !isSync {
			return AsyncUnsupported()
		}
		log := logx.FromContext(ctx).With("op", OpCargoBuild)

		req, err := op.DecodeRequest(data)
		if err != nil {
			log.Warn("rejecting request", "err", err)
			return Response{Err: err}
		}

		res, err := b.Build(ctx, req)
		if err != nil {
			return Response{Err: err}
		}

		out, err := op.EncodeResult(res)
		if err != nil {
			return Response{Err: err}
		}
		return Response{Data: out}
	}
}
