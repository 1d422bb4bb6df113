package sass

import (
	"log/slog"

	"github.com/wagiedev/sass-embedded-go/internal/logging"
)

// NopLogger returns a logger that discards all output.
// Use this when you want silent operation with no logging overhead.
func NopLogger() *slog.Logger {
	return logging.NopLogger()
}

// LogHandler receives the compiler's warnings and debug messages.
type LogHandler = logging.Handler

// LogHandlerFunc adapts a function to a LogHandler.
type LogHandlerFunc = logging.HandlerFunc

// NewSlogLogHandler returns the default LogHandler, which writes events to
// log at Warn (warnings) or Debug (debug messages).
func NewSlogLogHandler(log *slog.Logger) LogHandler {
	return logging.NewSlogHandler(log)
}
