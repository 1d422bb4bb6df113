package errors

import (
	"errors"
	"fmt"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// SassError is the base interface for all host errors.
type SassError interface {
	error
	IsSassError() bool
}

// Compile-time verification that all error types implement SassError.
var (
	_ SassError = (*CompilerNotFoundError)(nil)
	_ SassError = (*ConnectionError)(nil)
	_ SassError = (*ProcessError)(nil)
	_ SassError = (*TransportError)(nil)
	_ SassError = (*ProtocolError)(nil)
	_ SassError = (*IntegrityError)(nil)
	_ SassError = (*CompilationError)(nil)
	_ SassError = (*MessageParseError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrSessionFaulted indicates an earlier transport or protocol fault left
	// the session unusable. Create a new compiler to continue.
	ErrSessionFaulted = errors.New("sass session faulted")

	// ErrCompilerClosed indicates the compiler has been closed and cannot be reused.
	ErrCompilerClosed = errors.New("compiler closed: compilers are single-use, create a new one with NewCompiler()")

	// ErrCompilerNotStarted indicates Start has not been called.
	ErrCompilerNotStarted = errors.New("compiler not started")

	// ErrCompilerAlreadyStarted indicates Start was called twice.
	ErrCompilerAlreadyStarted = errors.New("compiler already started")

	// ErrTransportClosed indicates the transport was closed.
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnsupportedFunctionID indicates the compiler asked for a host function
	// by id. Only calls by name are supported.
	ErrUnsupportedFunctionID = errors.New("calling host functions by id is not supported")

	// ErrUnknownImporter indicates a callback named an importer id that is not registered.
	ErrUnknownImporter = errors.New("unknown importer")

	// ErrUnknownFunction indicates a callback named a function that is not registered.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrUnsupportedURLScheme indicates a URL whose scheme cannot be loaded.
	ErrUnsupportedURLScheme = errors.New("unsupported URL scheme")
)

// CompilerNotFoundError indicates the embedded Sass compiler binary was not found.
type CompilerNotFoundError struct {
	SearchedPaths []string
}

func (e *CompilerNotFoundError) Error() string {
	return fmt.Sprintf("sass embedded compiler not found in: %v", e.SearchedPaths)
}

// IsSassError implements SassError.
func (e *CompilerNotFoundError) IsSassError() bool { return true }

// ConnectionError indicates failure to start or connect to the compiler.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to compiler: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsSassError implements SassError.
func (e *ConnectionError) IsSassError() bool { return true }

// ProcessError indicates the compiler process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compiler process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("compiler process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsSassError implements SassError.
func (e *ProcessError) IsSassError() bool { return true }

// TransportError indicates the channel to the compiler broke while sending
// or receiving. It is fatal to the session.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsSassError implements SassError.
func (e *TransportError) IsSassError() bool { return true }

// ProtocolError is a protocol error reported by the compiler. The compiler
// cannot continue after sending one, so it is fatal to the session.
type ProtocolError struct {
	Type    message.ProtocolErrorType
	ID      uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("compiler reported %s protocol error (request %d): %s", e.Type, e.ID, e.Message)
}

// IsSassError implements SassError.
func (e *ProtocolError) IsSassError() bool { return true }

// IntegrityError indicates the host and compiler are out of sync: a response
// id mismatch, an unset or unexpected message, or a response with no result.
type IntegrityError struct {
	Reason     string
	ExpectedID uint32
	ActualID   uint32
}

func (e *IntegrityError) Error() string {
	if e.ExpectedID != e.ActualID {
		return fmt.Sprintf("protocol integrity fault: %s (expected id %d, got %d)", e.Reason, e.ExpectedID, e.ActualID)
	}

	return "protocol integrity fault: " + e.Reason
}

// IsSassError implements SassError.
func (e *IntegrityError) IsSassError() bool { return true }

// CompilationError is a stylesheet compilation failure reported by the
// compiler. The session stays usable.
type CompilationError struct {
	Message    string
	Span       *message.SourceSpan
	StackTrace string
	// Formatted is the compiler's human-readable rendering, including the
	// highlighted source span when available.
	Formatted string
}

func (e *CompilationError) Error() string {
	if e.Formatted != "" {
		return e.Formatted
	}

	return "sass compilation failed: " + e.Message
}

// IsSassError implements SassError.
func (e *CompilationError) IsSassError() bool { return true }

// MessageParseError indicates a frame from the compiler could not be decoded.
type MessageParseError struct {
	Message string
	Err     error
}

func (e *MessageParseError) Error() string {
	return fmt.Sprintf("failed to parse message: %v", e.Err)
}

func (e *MessageParseError) Unwrap() error {
	return e.Err
}

// IsSassError implements SassError.
func (e *MessageParseError) IsSassError() bool { return true }
