package sass

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wagiedev/sass-embedded-go/internal/config"
)

// CompilerOptions configures a Compiler.
type CompilerOptions = config.Options

// Option configures CompilerOptions using the functional options pattern.
// This is the primary option type for configuring compilers.
type Option func(*CompilerOptions)

// applyCompilerOptions applies functional options to a CompilerOptions struct.
func applyCompilerOptions(opts []Option) *CompilerOptions {
	options := &CompilerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *CompilerOptions) {
		o.Logger = logger
	}
}

// WithCompilerPath sets the path to the embedded compiler binary,
// bypassing discovery.
func WithCompilerPath(path string) Option {
	return func(o *CompilerOptions) {
		o.CompilerPath = path
	}
}

// WithCompilerArgs appends extra arguments to the compiler command line.
func WithCompilerArgs(args ...string) Option {
	return func(o *CompilerOptions) {
		o.CompilerArgs = append(o.CompilerArgs, args...)
	}
}

// WithCwd sets the working directory of the compiler process.
func WithCwd(cwd string) Option {
	return func(o *CompilerOptions) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the compiler process.
func WithEnv(env map[string]string) Option {
	return func(o *CompilerOptions) {
		o.Env = env
	}
}

// ===== Compilation Defaults =====

// WithOutputStyle sets the default output style.
func WithOutputStyle(style OutputStyle) Option {
	return func(o *CompilerOptions) {
		o.Style = style
	}
}

// WithSourceMap requests a source map with every compilation.
func WithSourceMap(enable bool) Option {
	return func(o *CompilerOptions) {
		o.SourceMap = enable
	}
}

// WithSourceMapIncludeSources embeds the stylesheet sources in source maps.
func WithSourceMapIncludeSources(include bool) Option {
	return func(o *CompilerOptions) {
		o.SourceMapIncludeSources = include
	}
}

// WithVerbose reports every deprecation warning rather than only the first
// few of each kind.
func WithVerbose(verbose bool) Option {
	return func(o *CompilerOptions) {
		o.Verbose = verbose
	}
}

// WithQuietDeps silences warnings from dependencies.
func WithQuietDeps(quiet bool) Option {
	return func(o *CompilerOptions) {
		o.QuietDeps = quiet
	}
}

// WithAlertColor lets formatted messages use terminal colors.
func WithAlertColor(color bool) Option {
	return func(o *CompilerOptions) {
		o.AlertColor = color
	}
}

// WithAlertASCII restricts formatted messages to ASCII.
func WithAlertASCII(ascii bool) Option {
	return func(o *CompilerOptions) {
		o.AlertASCII = ascii
	}
}

// ===== Importers and Functions =====

// WithLoadPaths adds directories searched for imports, in order.
// They are resolved by the compiler, ahead of any importer.
func WithLoadPaths(paths ...string) Option {
	return func(o *CompilerOptions) {
		o.LoadPaths = append(o.LoadPaths, paths...)
	}
}

// WithFileImporter registers file importers when the compiler starts.
func WithFileImporter(importers ...FileImporter) Option {
	return func(o *CompilerOptions) {
		o.FileImporters = append(o.FileImporters, importers...)
	}
}

// WithCustomImporter registers custom importers when the compiler starts.
func WithCustomImporter(importers ...CustomImporter) Option {
	return func(o *CompilerOptions) {
		o.CustomImporters = append(o.CustomImporters, importers...)
	}
}

// WithFunction registers host functions when the compiler starts.
func WithFunction(functions ...HostFunction) Option {
	return func(o *CompilerOptions) {
		o.Functions = append(o.Functions, functions...)
	}
}

// ===== Plumbing =====

// WithLogHandler receives the compiler's warnings and debug messages.
// If not set, they are written to the logger.
func WithLogHandler(handler LogHandler) Option {
	return func(o *CompilerOptions) {
		o.LogHandler = handler
	}
}

// WithHTTPClient sets the client used to fetch stylesheets for CompileURL.
func WithHTTPClient(client *http.Client) Option {
	return func(o *CompilerOptions) {
		o.HTTPClient = client
	}
}

// WithMaxMessageSize bounds a single protocol message in bytes.
func WithMaxMessageSize(size int) Option {
	return func(o *CompilerOptions) {
		o.MaxMessageSize = size
	}
}

// WithStderr sets a callback for each line the compiler writes to stderr.
func WithStderr(handler func(string)) Option {
	return func(o *CompilerOptions) {
		o.Stderr = handler
	}
}

// WithMetricsRegisterer records compilation metrics with reg.
// Several compilers may share one registerer.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *CompilerOptions) {
		o.MetricsRegisterer = reg
	}
}

// WithTransport injects a custom transport implementation.
// The transport must implement the Transport interface.
func WithTransport(transport Transport) Option {
	return func(o *CompilerOptions) {
		o.Transport = transport
	}
}

// WithConfigFile applies the settings of a sass.yaml configuration file.
// Options given after it override the file. A file with an invalid setting
// makes Start fail.
func WithConfigFile(file *ConfigFile) Option {
	return func(o *CompilerOptions) {
		if file == nil {
			return
		}

		if err := file.Apply(o); err != nil {
			o.Err = errors.Join(o.Err, err)
		}
	}
}

// WithProtocol selects the wire dialect spoken with the compiler.
// ProtocolAuto, the default, picks it from the compiler binary name.
func WithProtocol(protocol Protocol) Option {
	return func(o *CompilerOptions) {
		o.Protocol = protocol
	}
}

// ===== Per-Compilation Options =====

// CompileOption configures a single compilation.
type CompileOption func(*config.CompileOptions)

// WithStyle overrides the compiler's output style for one compilation.
func WithStyle(style OutputStyle) CompileOption {
	return func(o *config.CompileOptions) {
		o.Style = &style
	}
}

// WithURL sets the canonical URL of string input. Relative loads and source
// map entries for the entry stylesheet refer to it.
func WithURL(url string) CompileOption {
	return func(o *config.CompileOptions) {
		o.URL = url
	}
}

// WithImporter resolves relative loads from string input with imp, for this
// call only.
func WithImporter(imp CustomImporter) CompileOption {
	return func(o *config.CompileOptions) {
		o.Importer = imp
	}
}
