// Package rpc serves the host op registry over JSON-RPC 2.0 so a host
// runtime in another process can dispatch ops through stdio.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/host"
	"github.com/sofmeright/cargoplug/src/logx"
	"github.com/sofmeright/cargoplug/src/op"
)

// Method names.
const (
	MethodDispatch = "dispatch"
	MethodOps      = "ops"
)

// Application error codes, in the JSON-RPC server-defined range.
const (
	CodeAsyncUnsupported int64 = -32001
	CodeOpFailed         int64 = -32002
)

// DispatchParams invokes one op. Byte fields travel base64-encoded.
type DispatchParams struct {
	Op       string `json:"op"`
	IsSync   bool   `json:"is_sync"`
	Data     []byte `json:"data"`
	ZeroCopy []byte `json:"zero_copy,omitempty"`
}

// DispatchResult carries a sync op's response bytes.
type DispatchResult struct {
	Data []byte `json:"data"`
}

// ErrorData is attached to op failures so clients can branch on kind.
type ErrorData struct {
	Kind op.Kind `json:"kind"`
}

// Server answers dispatch requests from the op registry.
type Server struct {
	cfg *config.Config
	sem *semaphore.Weighted
	log *slog.Logger
}

// NewServer creates a server; concurrent sync dispatches are limited to
// cfg.Serve.MaxConcurrent.
func NewServer(cfg *config.Config, log *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if log == nil {
		log = slog.Default()
	}
	n := cfg.Serve.MaxConcurrent
	if n < 1 {
		n = 1
	}
	return &Server{cfg: cfg, sem: semaphore.NewWeighted(int64(n)), log: log}
}

// Serve runs the JSON-RPC connection on rwc until the peer disconnects or
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	// Handlers inherit this context; cancelling it on return stops
	// in-flight builds once the peer is gone.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := jsonrpc2.NewBufferedStream(rwc, codecFor(s.cfg.Serve.Framing))
	handler := jsonrpc2.AsyncHandler(jsonrpc2.HandlerWithError(s.handle))
	conn := jsonrpc2.NewConn(ctx, stream, handler)

	s.log.Info("serving", "ops", host.All(), "framing", s.cfg.Serve.Framing, "max_concurrent", s.cfg.Serve.MaxConcurrent)
	select {
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

func codecFor(f config.Framing) jsonrpc2.ObjectCodec {
	if f == config.FramingPlain {
		return jsonrpc2.PlainObjectCodec{}
	}
	return jsonrpc2.VSCodeObjectCodec{}
}

func (s *Server) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case MethodOps:
		return host.All(), nil
	case MethodDispatch:
		if req.Params == nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
		}
		var p DispatchParams
		if err := json.Unmarshal(*req.Params, &p); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
		return s.dispatch(ctx, p)
	default:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func (s *Server) dispatch(ctx context.Context, p DispatchParams) (*DispatchResult, error) {
	log := s.log.With("op", p.Op, "sync", p.IsSync)
	fn, err := host.Get(p.Op, s.cfg)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: err.Error()}
	}

	// Async calls are rejected without work, so they skip the limiter.
	if p.IsSync {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer s.sem.Release(1)
	}

	resp := fn(logx.WithLogger(ctx, log), p.IsSync, p.Data, p.ZeroCopy)
	if resp.Err != nil {
		log.Debug("op failed", "err", resp.Err)
		return nil, toRPCError(resp.Err)
	}
	return &DispatchResult{Data: resp.Data}, nil
}

func toRPCError(err error) *jsonrpc2.Error {
	code := CodeOpFailed
	if errors.Is(err, op.ErrAsyncUnsupported) {
		code = CodeAsyncUnsupported
	}
	e := &jsonrpc2.Error{Code: code, Message: err.Error()}
	if kind := op.KindOf(err); kind != "" {
		e.SetError(ErrorData{Kind: kind})
	}
	return e
}
