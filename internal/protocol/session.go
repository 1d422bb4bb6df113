package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/errors"
	"github.com/wagiedev/sass-embedded-go/internal/importer"
	"github.com/wagiedev/sass-embedded-go/internal/logging"
	"github.com/wagiedev/sass-embedded-go/internal/message"
	"github.com/wagiedev/sass-embedded-go/internal/metrics"
)

// State is the exchange state of a Session.
type State int32

const (
	// StateIdle means no exchange is running.
	StateIdle State = iota
	// StateAwaitingResponse means a request was sent and the session is
	// consuming messages until its terminal response.
	StateAwaitingResponse
	// StateFaulted means the session hit a fatal error and cannot be used.
	StateFaulted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Session runs request/response exchanges with one compiler over a
// Transport. It is safe for concurrent use; exchanges are serialized.
type Session struct {
	log        *slog.Logger
	id         string
	transport  config.Transport
	options    *config.Options
	registries *Registries
	dispatcher *Dispatcher
	logHandler logging.Handler
	metrics    *metrics.Collector

	// exchangeMu is held from sending a request until its terminal
	// response, including every nested callback round trip.
	exchangeMu sync.Mutex
	state      atomic.Int32
	lastID     atomic.Uint32

	faultMu sync.RWMutex
	fault   error
}

// NewSession creates a Session over a started transport. collector may be nil.
func NewSession(
	log *slog.Logger,
	transport config.Transport,
	options *config.Options,
	registries *Registries,
	collector *metrics.Collector,
) *Session {
	if options == nil {
		options = &config.Options{}
	}

	id := ulid.Make().String()
	log = log.With("component", "session", "session_id", id)

	logHandler := options.LogHandler
	if logHandler == nil {
		logHandler = logging.NewSlogHandler(log)
	}

	return &Session{
		log:        log,
		id:         id,
		transport:  transport,
		options:    options,
		registries: registries,
		dispatcher: NewDispatcher(log, registries, collector),
		logHandler: logHandler,
		metrics:    collector,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current exchange state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Err returns the error that faulted the session, or nil.
func (s *Session) Err() error {
	s.faultMu.RLock()
	defer s.faultMu.RUnlock()

	return s.fault
}

// Registries returns the handlers the session answers callbacks from.
func (s *Session) Registries() *Registries {
	return s.registries
}

// Version asks the compiler for its version information.
func (s *Session) Version(ctx context.Context) (*message.VersionResponse, error) {
	return exchange[*message.VersionResponse](ctx, s, nil, func() message.InboundMessage {
		return &message.VersionRequest{ID: s.nextID()}
	})
}

// Compile compiles input with the session's configuration. style overrides
// the configured output style when non-nil.
//
// A stylesheet error is returned as *errors.CompilationError and leaves the
// session usable. Any other error faults the session.
func (s *Session) Compile(
	ctx context.Context,
	input message.CompileInput,
	style *message.OutputStyle,
) (*message.CompileSuccess, error) {
	return s.CompileWithImporter(ctx, input, style, nil)
}

// CompileWithImporter is Compile with an entry importer that resolves the
// relative loads of a string input. The entry importer belongs to this call
// only: it is referenced from the input, never listed among the session's
// importers, and is unreachable once the call returns.
func (s *Session) CompileWithImporter(
	ctx context.Context,
	input message.CompileInput,
	style *message.OutputStyle,
	entry importer.CustomImporter,
) (*message.CompileSuccess, error) {
	if input == nil {
		return nil, fmt.Errorf("compile: no input")
	}

	if entry != nil {
		in, ok := input.(*message.StringInput)
		if !ok {
			return nil, fmt.Errorf("compile: entry importer %d needs a string input, got %T", entry.ID(), input)
		}

		scoped := *in
		scoped.Importer = message.CustomImporterRef(entry.ID())
		input = &scoped
	}

	start := time.Now()

	var id uint32

	// The request is built under the exchange lock so it lists exactly the
	// handlers registered when it is sent.
	resp, err := exchange[*message.CompileResponse](ctx, s, entry, func() message.InboundMessage {
		req := s.buildCompileRequest(s.nextID(), input, style)
		id = req.ID

		s.log.Debug("Sending compile request",
			"id", req.ID, "importers", len(req.Importers), "functions", len(req.GlobalFunctions))

		return req
	})
	if err != nil {
		s.metrics.Compilation(metrics.OutcomeError, time.Since(start))

		return nil, err
	}

	switch {
	case resp.Success != nil:
		s.metrics.Compilation(metrics.OutcomeSuccess, time.Since(start))

		return resp.Success, nil

	case resp.Failure != nil:
		s.metrics.Compilation(metrics.OutcomeFailure, time.Since(start))

		return nil, &errors.CompilationError{
			Message:    resp.Failure.Message,
			Span:       resp.Failure.Span,
			StackTrace: resp.Failure.StackTrace,
			Formatted:  resp.Failure.Formatted,
		}

	default:
		s.metrics.Compilation(metrics.OutcomeError, time.Since(start))

		return nil, s.setFault(&errors.IntegrityError{
			Reason:     "compile response has neither success nor failure",
			ExpectedID: id,
			ActualID:   resp.ID,
		})
	}
}

// buildCompileRequest merges the session configuration into a request.
// Importers are listed load paths first, then custom importers, then file
// importers, each in registration order.
func (s *Session) buildCompileRequest(
	id uint32,
	input message.CompileInput,
	style *message.OutputStyle,
) *message.CompileRequest {
	custom := s.registries.CustomImporters()
	files := s.registries.FileImporters()

	importers := make([]*message.Importer, 0, len(s.options.LoadPaths)+len(custom)+len(files))

	for _, p := range s.options.LoadPaths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}

		importers = append(importers, message.LoadPathImporter(p))
	}

	for _, imp := range custom {
		importers = append(importers, message.CustomImporterRef(imp.ID()))
	}

	for _, imp := range files {
		importers = append(importers, message.FileImporterRef(imp.ID()))
	}

	outputStyle := s.options.Style
	if style != nil {
		outputStyle = *style
	}

	return &message.CompileRequest{
		ID:                      id,
		Input:                   input,
		Style:                   outputStyle,
		SourceMap:               s.options.SourceMap,
		Importers:               importers,
		GlobalFunctions:         s.registries.FunctionSignatures(),
		AlertColor:              s.options.AlertColor,
		AlertASCII:              s.options.AlertASCII,
		Verbose:                 s.options.Verbose,
		QuietDeps:               s.options.QuietDeps,
		SourceMapIncludeSources: s.options.SourceMapIncludeSources,
	}
}

// nextID returns a fresh request id. Zero and the maximum uint32 are
// skipped; the protocol reserves the latter for errors without a request.
func (s *Session) nextID() uint32 {
	for {
		id := s.lastID.Add(1)
		if id != 0 && id != math.MaxUint32 {
			return id
		}
	}
}

// exchange sends the request produced by build and consumes messages until
// the terminal response of type T with the request's id arrives. build runs
// with the session locked. entry, when set, answers callbacks for its id
// until exchange returns.
func exchange[T message.OutboundMessage](
	ctx context.Context,
	s *Session,
	entry importer.CustomImporter,
	build func() message.InboundMessage,
) (T, error) {
	var zero T

	s.exchangeMu.Lock()
	defer s.exchangeMu.Unlock()

	if err := s.Err(); err != nil {
		return zero, fmt.Errorf("%w: %w", errors.ErrSessionFaulted, err)
	}

	req := build()
	id := exchangeID(req)

	s.dispatcher.entry = entry
	defer func() { s.dispatcher.entry = nil }()

	s.state.Store(int32(StateAwaitingResponse))

	if err := s.transport.Send(ctx, req); err != nil {
		return zero, s.setFault(err)
	}

	for {
		msg, err := s.transport.Receive(ctx)
		if err != nil {
			return zero, s.setFault(err)
		}

		switch m := msg.(type) {
		case *message.CompileResponse, *message.VersionResponse:
			resp, ok := msg.(T)
			if !ok {
				return zero, s.setFault(&errors.IntegrityError{
					Reason: fmt.Sprintf("expected %T, received %T", zero, msg),
				})
			}

			if actual := responseID(msg); actual != id {
				return zero, s.setFault(&errors.IntegrityError{
					Reason:     "response id does not match request id",
					ExpectedID: id,
					ActualID:   actual,
				})
			}

			s.state.Store(int32(StateIdle))

			return resp, nil

		case *message.ProtocolError:
			s.log.Error("Compiler reported a protocol error", "type", m.Type, "id", m.ID, "message", m.Message)

			return zero, s.setFault(&errors.ProtocolError{Type: m.Type, ID: m.ID, Message: m.Message})

		case *message.LogEvent:
			s.metrics.LogEvent(m.Type.String())
			s.logHandler.HandleLogEvent(ctx, m)

		case nil:
			return zero, s.setFault(&errors.IntegrityError{Reason: "received a message with no recognised variant"})

		default:
			resp, ok := s.dispatcher.Dispatch(ctx, msg)
			if !ok {
				return zero, s.setFault(&errors.IntegrityError{Reason: fmt.Sprintf("unexpected message %T", msg)})
			}

			if err := s.transport.Send(ctx, resp); err != nil {
				return zero, s.setFault(err)
			}
		}
	}
}

func exchangeID(msg message.InboundMessage) uint32 {
	switch m := msg.(type) {
	case *message.CompileRequest:
		return m.ID
	case *message.VersionRequest:
		return m.ID
	default:
		return 0
	}
}

func responseID(msg message.OutboundMessage) uint32 {
	switch m := msg.(type) {
	case *message.CompileResponse:
		return m.ID
	case *message.VersionResponse:
		return m.ID
	default:
		return 0
	}
}

// setFault records err as the session's fatal error and returns it.
func (s *Session) setFault(err error) error {
	s.faultMu.Lock()

	if s.fault == nil {
		s.fault = err
		s.state.Store(int32(StateFaulted))
		s.metrics.SessionFault()
		s.log.Error("Session faulted", "error", err)
	}

	s.faultMu.Unlock()

	return err
}
