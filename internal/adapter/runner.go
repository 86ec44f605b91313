// Package adapter runs one request from the environment to one envelope on
// the output writer.
package adapter

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/yourusername/openclaw-adapter/internal/logging"
	"github.com/yourusername/openclaw-adapter/internal/models"
)

// EnvRequest holds the serialized request.
const EnvRequest = "MIYA_ADAPTER_RPC_REQ"

// MaxTraceFrames bounds the traceback attached to unhandled_exception.
const MaxTraceFrames = 8

// Dispatcher evaluates one parsed request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *models.Request) *models.Response
}

// Runner reads the request through Lookup, dispatches it and writes a single
// newline-terminated JSON envelope to Out.
type Runner struct {
	Lookup     func(string) (string, bool)
	Out        io.Writer
	Dispatcher Dispatcher
}

// Run executes the runner once and returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	resp := r.evaluate(ctx)
	if err := r.emit(resp); err != nil {
		logging.Error().Err(err).Str("id", resp.ID).Msg("failed to write response")
		return 1
	}
	if !resp.OK {
		return 1
	}
	return 0
}

// RunRequest dispatches an already-built request, used by the call subcommand.
func (r *Runner) RunRequest(ctx context.Context, req *models.Request) int {
	resp := r.Handle(ctx, req)
	if err := r.emit(resp); err != nil {
		logging.Error().Err(err).Str("id", resp.ID).Msg("failed to write response")
		return 1
	}
	if !resp.OK {
		return 1
	}
	return 0
}

func (r *Runner) evaluate(ctx context.Context) *models.Response {
	raw := ""
	if r.Lookup != nil {
		raw, _ = r.Lookup(EnvRequest)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.NewError(models.UnknownID, models.CodeMissingRequest, EnvRequest+"_missing", nil)
	}

	req, err := models.ParseRequest([]byte(raw))
	if err != nil {
		logging.Warn().Err(err).Int("bytes", len(raw)).Msg("rejecting malformed request")
		return models.NewError(models.UnknownID, models.CodeBadRequestJSON, err.Error(), nil)
	}
	return r.Handle(ctx, req)
}

// Handle dispatches req and converts a panic in the dispatcher into an
// unhandled_exception envelope, so every request yields exactly one envelope.
func (r *Runner) Handle(ctx context.Context, req *models.Request) (resp *models.Response) {
	if req.Method == "" {
		return models.NewError(req.ID, models.CodeInvalidMethod, "method_required", nil)
	}

	defer func() {
		if rec := recover(); rec != nil {
			trace := traceback(MaxTraceFrames)
			logging.Error().
				Str("id", req.ID).
				Str("method", req.Method).
				Interface("panic", rec).
				Strs("traceback", trace).
				Msg("dispatch panicked")
			resp = models.NewError(req.ID, models.CodeUnhandledException, fmt.Sprint(rec),
				map[string]any{"traceback": trace})
		}
	}()

	if r.Dispatcher == nil {
		panic("adapter: no dispatcher configured")
	}
	return r.Dispatcher.Dispatch(ctx, req)
}

func (r *Runner) emit(resp *models.Response) error {
	line, err := resp.Encode()
	if err != nil {
		return err
	}
	_, err = r.Out.Write(line)
	return err
}

// traceback returns up to max frames of the panicking goroutine, innermost
// first, skipping the runtime and this package's recovery frames.
func traceback(max int) []string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	out := make([]string, 0, max)
	for len(out) < max {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") && !strings.HasSuffix(f.Function, "adapter.traceback") &&
			!strings.Contains(f.Function, "adapter.(*Runner).Handle.func") {
			out = append(out, fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line))
		}
		if !more {
			break
		}
	}
	return out
}

