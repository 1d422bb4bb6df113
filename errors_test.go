package sass

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCompilerNotFoundError_Creation tests CompilerNotFoundError formatting.
func TestCompilerNotFoundError_Creation(t *testing.T) {
	err := &CompilerNotFoundError{
		SearchedPaths: []string{"$PATH", "/usr/local/bin/sass"},
	}

	require.Contains(t, err.Error(), "compiler not found")
	require.Contains(t, err.Error(), "/usr/local/bin/sass")
}

// TestConnectionError_Unwrap tests that the underlying error can be unwrapped.
func TestConnectionError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	err := &ConnectionError{Err: inner}

	require.Contains(t, err.Error(), "permission denied")
	require.ErrorIs(t, err, inner)
}

// TestProcessError_WithExitCodeAndStderr tests ProcessError without a cause.
func TestProcessError_WithExitCodeAndStderr(t *testing.T) {
	err := &ProcessError{ExitCode: 64, Stderr: "Unknown option --bogus"}

	require.Contains(t, err.Error(), "exit 64")
	require.Contains(t, err.Error(), "Unknown option --bogus")
}

// TestTransportError_WrapsProcessError tests the chain produced when the
// compiler dies mid-exchange.
func TestTransportError_WrapsProcessError(t *testing.T) {
	err := fmt.Errorf("compile: %w", &TransportError{
		Op:  "receive",
		Err: &ProcessError{ExitCode: 1, Stderr: "boom", Err: fmt.Errorf("exit status 1")},
	})

	procErr, ok := stderrors.AsType[*ProcessError](err)
	require.True(t, ok)
	require.Equal(t, "boom", procErr.Stderr)

	sassErr, ok := stderrors.AsType[SassError](err)
	require.True(t, ok)
	require.True(t, sassErr.IsSassError())
}

// TestCompilationError_PrefersFormatted tests the human-readable rendering.
func TestCompilationError_PrefersFormatted(t *testing.T) {
	err := &CompilationError{Message: "Undefined variable.", Formatted: "Error: Undefined variable.\n  ╷\n1 │ a { b: $x }"}
	require.Equal(t, err.Formatted, err.Error())

	err.Formatted = ""
	require.Contains(t, err.Error(), "Undefined variable.")
}

// TestSentinels_AreDistinct tests that the re-exported sentinels are usable
// with errors.Is.
func TestSentinels_AreDistinct(t *testing.T) {
	wrapped := fmt.Errorf("%w: %w", ErrSessionFaulted, &IntegrityError{Reason: "unexpected message"})

	require.ErrorIs(t, wrapped, ErrSessionFaulted)
	require.NotErrorIs(t, wrapped, ErrCompilerClosed)
	require.NotErrorIs(t, ErrCompilerNotStarted, ErrCompilerAlreadyStarted)
}
