// Package logging routes the compiler's log events and builds the host's
// own slog loggers.
package logging

import (
	"context"
	"log/slog"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// Handler receives warnings and debug messages emitted by the compiler
// during a compilation. Implementations must not block for long; the
// compiler waits while the event is handled.
type Handler interface {
	HandleLogEvent(ctx context.Context, event *message.LogEvent)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, event *message.LogEvent)

// HandleLogEvent implements Handler.
func (f HandlerFunc) HandleLogEvent(ctx context.Context, event *message.LogEvent) {
	f(ctx, event)
}

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SlogHandler writes compiler log events to a slog.Logger. Warnings and
// deprecation warnings are logged at Warn, debug messages at Debug.
type SlogHandler struct {
	log *slog.Logger
}

// Compile-time verification that SlogHandler implements Handler.
var _ Handler = (*SlogHandler)(nil)

// NewSlogHandler creates a SlogHandler. A nil logger discards events.
func NewSlogHandler(log *slog.Logger) *SlogHandler {
	if log == nil {
		log = NopLogger()
	}

	return &SlogHandler{log: log.With("component", "compiler_log")}
}

// HandleLogEvent implements Handler.
func (h *SlogHandler) HandleLogEvent(ctx context.Context, event *message.LogEvent) {
	level := slog.LevelWarn
	if event.Type == message.LogEventDebug {
		level = slog.LevelDebug
	}

	text := event.Formatted
	if text == "" {
		text = event.Message
	}

	attrs := []slog.Attr{
		slog.Uint64("compilation_id", uint64(event.CompilationID)),
		slog.String("type", event.Type.String()),
	}

	if event.Type == message.LogEventDeprecationWarning {
		attrs = append(attrs, slog.Bool("deprecation", true))
	}

	if event.Span != nil {
		attrs = append(attrs, slog.String("url", event.Span.URL))

		if event.Span.Start != nil {
			attrs = append(attrs,
				slog.Uint64("line", uint64(event.Span.Start.Line)+1),
				slog.Uint64("column", uint64(event.Span.Start.Column)+1),
			)
		}
	}

	if event.StackTrace != "" {
		attrs = append(attrs, slog.String("stack_trace", event.StackTrace))
	}

	h.log.LogAttrs(ctx, level, text, attrs...)
}
