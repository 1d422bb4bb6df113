package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/wagiedev/sass-embedded-go/internal/errors"
	"github.com/wagiedev/sass-embedded-go/internal/importer"
	"github.com/wagiedev/sass-embedded-go/internal/message"
	"github.com/wagiedev/sass-embedded-go/internal/metrics"
)

// Dispatcher answers the compiler's callback requests from a set of
// Registries. Every request yields exactly one response carrying the
// request's id; handler errors and panics become error responses.
type Dispatcher struct {
	log        *slog.Logger
	registries *Registries
	metrics    *metrics.Collector

	// entry is the current compilation's entry importer. The session sets
	// it under its exchange lock, which also covers every Dispatch call.
	entry importer.CustomImporter
}

// NewDispatcher creates a Dispatcher. collector may be nil.
func NewDispatcher(log *slog.Logger, registries *Registries, collector *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		log:        log.With("component", "dispatcher"),
		registries: registries,
		metrics:    collector,
	}
}

// Dispatch answers msg if it is a callback request. It reports false for
// any other message kind.
func (d *Dispatcher) Dispatch(ctx context.Context, msg message.OutboundMessage) (message.InboundMessage, bool) {
	switch m := msg.(type) {
	case *message.CanonicalizeRequest:
		return d.Canonicalize(ctx, m), true
	case *message.ImportRequest:
		return d.Import(ctx, m), true
	case *message.FileImportRequest:
		return d.FileImport(ctx, m), true
	case *message.FunctionCallRequest:
		return d.FunctionCall(ctx, m), true
	default:
		return nil, false
	}
}

// Canonicalize asks a custom importer to canonicalize a URL. An empty
// result leaves the response empty so the compiler tries the next importer.
func (d *Dispatcher) Canonicalize(ctx context.Context, req *message.CanonicalizeRequest) *message.CanonicalizeResponse {
	resp := &message.CanonicalizeResponse{ID: req.ID, CompilationID: req.CompilationID}

	canonical, err := guard(func() (string, error) {
		imp, ok := d.customImporter(req.ImporterID)
		if !ok {
			return "", fmt.Errorf("%w: custom importer %d", errors.ErrUnknownImporter, req.ImporterID)
		}

		return imp.Canonicalize(ctx, req.URL, req.FromImport)
	})

	switch {
	case err != nil:
		resp.Error = d.fail(metrics.KindCanonicalize, req.ID, err)
	case canonical == "":
		d.metrics.Callback(metrics.KindCanonicalize, metrics.OutcomeNotFound)
	default:
		resp.URL = &canonical
		d.metrics.Callback(metrics.KindCanonicalize, metrics.OutcomeSuccess)
	}

	d.log.Debug("Answered canonicalize request", "id", req.ID, "importer_id", req.ImporterID, "url", req.URL)

	return resp
}

// Import asks a custom importer to load a canonical URL.
func (d *Dispatcher) Import(ctx context.Context, req *message.ImportRequest) *message.ImportResponse {
	resp := &message.ImportResponse{ID: req.ID, CompilationID: req.CompilationID}

	result, err := guard(func() (*message.ImportSuccess, error) {
		imp, ok := d.customImporter(req.ImporterID)
		if !ok {
			return nil, fmt.Errorf("%w: custom importer %d", errors.ErrUnknownImporter, req.ImporterID)
		}

		return imp.Load(ctx, req.URL)
	})

	switch {
	case err != nil:
		resp.Error = d.fail(metrics.KindImport, req.ID, err)
	case result == nil:
		d.metrics.Callback(metrics.KindImport, metrics.OutcomeNotFound)
	default:
		resp.Success = result
		d.metrics.Callback(metrics.KindImport, metrics.OutcomeSuccess)
	}

	d.log.Debug("Answered import request", "id", req.ID, "importer_id", req.ImporterID, "url", req.URL)

	return resp
}

// FileImport asks a file importer to resolve a URL to a file on disk. The
// path is reported to the compiler as an absolute file: URL.
func (d *Dispatcher) FileImport(ctx context.Context, req *message.FileImportRequest) *message.FileImportResponse {
	resp := &message.FileImportResponse{ID: req.ID, CompilationID: req.CompilationID}

	fileURL, err := guard(func() (string, error) {
		imp, ok := d.registries.FileImporter(req.ImporterID)
		if !ok {
			return "", fmt.Errorf("%w: file importer %d", errors.ErrUnknownImporter, req.ImporterID)
		}

		path, err := imp.FindFile(ctx, req.URL, req.FromImport)
		if err != nil || path == "" {
			return "", err
		}

		if strings.HasPrefix(path, "file:") {
			return path, nil
		}

		return importer.FileURL(path)
	})

	switch {
	case err != nil:
		resp.Error = d.fail(metrics.KindFileImport, req.ID, err)
	case fileURL == "":
		d.metrics.Callback(metrics.KindFileImport, metrics.OutcomeNotFound)
	default:
		resp.FileURL = &fileURL
		d.metrics.Callback(metrics.KindFileImport, metrics.OutcomeSuccess)
	}

	d.log.Debug("Answered file import request", "id", req.ID, "importer_id", req.ImporterID, "url", req.URL)

	return resp
}

// FunctionCall invokes a host function by name. Calls by function id are
// not supported and are answered with an error.
func (d *Dispatcher) FunctionCall(ctx context.Context, req *message.FunctionCallRequest) *message.FunctionCallResponse {
	resp := &message.FunctionCallResponse{ID: req.ID, CompilationID: req.CompilationID}

	result, err := guard(func() (message.Value, error) {
		switch {
		case req.Name != nil:
		case req.FunctionID != nil:
			return nil, fmt.Errorf("%w (function id %d)", errors.ErrUnsupportedFunctionID, *req.FunctionID)
		default:
			return nil, fmt.Errorf("function call request %d has no identifier", req.ID)
		}

		fn, ok := d.registries.Function(*req.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errors.ErrUnknownFunction, *req.Name)
		}

		value, err := fn.Call(ctx, req.Arguments)
		if err != nil {
			return nil, err
		}

		if value == nil {
			return nil, fmt.Errorf("function %s returned no value", fn.Name())
		}

		return value, nil
	})

	if err != nil {
		resp.Error = d.fail(metrics.KindFunctionCall, req.ID, err)
	} else {
		resp.Success = result
		d.metrics.Callback(metrics.KindFunctionCall, metrics.OutcomeSuccess)
	}

	d.log.Debug("Answered function call request", "id", req.ID, "function", functionLabel(req))

	return resp
}

// customImporter looks id up in the entry importer, then the registries.
func (d *Dispatcher) customImporter(id uint32) (importer.CustomImporter, bool) {
	if d.entry != nil && d.entry.ID() == id {
		return d.entry, true
	}

	return d.registries.CustomImporter(id)
}

func (d *Dispatcher) fail(kind string, id uint32, err error) *string {
	d.log.Debug("Callback handler failed", "kind", kind, "id", id, "error", err)
	d.metrics.Callback(kind, metrics.OutcomeError)

	text := diagnostic(err)

	return &text
}

// diagnostic renders a handler error for the compiler: the message followed
// by a stack trace. Errors that format themselves with %+v are rendered that
// way, so a stack they carry is kept. A recovered panic already holds the
// stack of the panicking goroutine.
func diagnostic(err error) string {
	var b strings.Builder

	if _, ok := err.(fmt.Formatter); ok {
		fmt.Fprintf(&b, "%+v", err)
	} else {
		b.WriteString(err.Error())
	}

	if _, ok := err.(*handlerPanic); ok {
		return b.String()
	}

	// Skip runtime.Callers, diagnostic and fail.
	pcs := make([]uintptr, 32)
	frames := runtime.CallersFrames(pcs[:runtime.Callers(3, pcs)])

	b.WriteString("\n\nstack trace:")

	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&b, "\n%s\n\t%s:%d", frame.Function, frame.File, frame.Line)
		}

		if !more {
			break
		}
	}

	return b.String()
}

func functionLabel(req *message.FunctionCallRequest) string {
	switch {
	case req.Name != nil:
		return *req.Name
	case req.FunctionID != nil:
		return fmt.Sprintf("#%d", *req.FunctionID)
	default:
		return ""
	}
}

// handlerPanic is a recovered panic from a callback handler.
type handlerPanic struct {
	value any
	stack []byte
}

func (p *handlerPanic) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.value, p.stack)
}

// guard runs fn, converting a panic into a handlerPanic error.
func guard[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T

			result, err = zero, &handlerPanic{value: r, stack: debug.Stack()}
		}
	}()

	return fn()
}
