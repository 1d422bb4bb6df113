package sass

import "github.com/wagiedev/sass-embedded-go/internal/errors"

// Re-export error types from internal package

// CompilerNotFoundError indicates the embedded compiler binary was not found.
type CompilerNotFoundError = errors.CompilerNotFoundError

// ConnectionError indicates failure to start or connect to the compiler.
type ConnectionError = errors.ConnectionError

// ProcessError indicates the compiler process exited unexpectedly.
type ProcessError = errors.ProcessError

// TransportError indicates a failure reading from or writing to the compiler.
type TransportError = errors.TransportError

// ProtocolError is a protocol violation reported by the compiler.
type ProtocolError = errors.ProtocolError

// IntegrityError is a protocol violation detected by the host, such as a
// response with the wrong id.
type IntegrityError = errors.IntegrityError

// CompilationError is a stylesheet error. It does not fault the compiler.
type CompilationError = errors.CompilationError

// MessageParseError indicates a message from the compiler could not be decoded.
type MessageParseError = errors.MessageParseError

// SassError is the base interface for all host errors.
type SassError = errors.SassError

// Re-export sentinel errors from internal package.
var (
	// ErrSessionFaulted indicates an earlier fault left the compiler unusable.
	ErrSessionFaulted = errors.ErrSessionFaulted

	// ErrCompilerClosed indicates the compiler has been closed and cannot be reused.
	ErrCompilerClosed = errors.ErrCompilerClosed

	// ErrCompilerNotStarted indicates Start has not been called.
	ErrCompilerNotStarted = errors.ErrCompilerNotStarted

	// ErrCompilerAlreadyStarted indicates Start was called twice.
	ErrCompilerAlreadyStarted = errors.ErrCompilerAlreadyStarted

	// ErrTransportClosed indicates the transport was closed.
	ErrTransportClosed = errors.ErrTransportClosed

	// ErrUnsupportedFunctionID indicates the compiler called a host function by id.
	ErrUnsupportedFunctionID = errors.ErrUnsupportedFunctionID

	// ErrUnknownImporter indicates a callback for an unregistered importer.
	ErrUnknownImporter = errors.ErrUnknownImporter

	// ErrUnknownFunction indicates a call to an unregistered function.
	ErrUnknownFunction = errors.ErrUnknownFunction

	// ErrUnsupportedURLScheme indicates a URL whose scheme cannot be loaded.
	ErrUnsupportedURLScheme = errors.ErrUnsupportedURLScheme
)
