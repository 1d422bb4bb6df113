package config

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wagiedev/sass-embedded-go/internal/function"
	"github.com/wagiedev/sass-embedded-go/internal/importer"
	"github.com/wagiedev/sass-embedded-go/internal/logging"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// Options configures a compiler session.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// CompilerPath is the explicit path to the embedded compiler binary.
	// If empty, the compiler is discovered (see the cli package).
	CompilerPath string

	// CompilerArgs are extra arguments passed to the compiler binary.
	CompilerArgs []string

	// Cwd sets the working directory for the compiler process.
	Cwd string

	// Env provides additional environment variables for the compiler process.
	Env map[string]string

	// Style is the default output style for every compilation.
	Style message.OutputStyle

	// SourceMap requests a source map with every compilation.
	SourceMap bool

	// SourceMapIncludeSources embeds the sources in generated source maps.
	SourceMapIncludeSources bool

	// Verbose reports every deprecation warning instead of only the first few.
	Verbose bool

	// QuietDeps silences warnings from stylesheets loaded through load paths
	// or importers.
	QuietDeps bool

	// AlertColor lets the compiler use terminal colors in formatted messages.
	AlertColor bool

	// AlertASCII restricts formatted messages to ASCII characters.
	AlertASCII bool

	// LoadPaths are directories searched for imports, in order.
	LoadPaths []string

	// FileImporters are registered for the lifetime of the session.
	FileImporters []importer.FileImporter

	// CustomImporters are registered for the lifetime of the session.
	CustomImporters []importer.CustomImporter

	// Functions are host functions registered for the lifetime of the session.
	Functions []function.HostFunction

	// LogHandler receives the compiler's warnings and debug messages.
	// If nil, events are written to Logger.
	LogHandler logging.Handler

	// HTTPClient loads remote stylesheets for URL compilations.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client

	// Err records an option that could not be applied. Starting a compiler
	// with these options fails with it.
	Err error

	// Protocol selects the wire dialect. ProtocolAuto picks it from the
	// compiler binary name.
	Protocol message.Protocol

	// MaxMessageSize bounds a single protocol frame.
	// If zero, framing.DefaultMaxMessageSize is used.
	MaxMessageSize int

	// Stderr is a callback function for handling compiler stderr output.
	Stderr func(string)

	// MetricsRegisterer registers the session's Prometheus collectors.
	// If nil, no metrics are recorded.
	MetricsRegisterer prometheus.Registerer

	// Transport allows injecting a custom transport implementation.
	// If nil, the default ProcessTransport is created automatically.
	Transport Transport `yaml:"-"`
}
