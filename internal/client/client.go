package client

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/errors"
	"github.com/wagiedev/sass-embedded-go/internal/function"
	"github.com/wagiedev/sass-embedded-go/internal/importer"
	"github.com/wagiedev/sass-embedded-go/internal/logging"
	"github.com/wagiedev/sass-embedded-go/internal/message"
	"github.com/wagiedev/sass-embedded-go/internal/metrics"
	"github.com/wagiedev/sass-embedded-go/internal/protocol"
	"github.com/wagiedev/sass-embedded-go/internal/subprocess"
)

// Compiler owns one compiler connection and the session running over it.
type Compiler struct {
	log        *slog.Logger
	transport  config.Transport
	session    *protocol.Session
	registries *protocol.Registries
	options    *config.Options
	fetcher    *importer.Fetcher

	// Lifecycle management
	mu        sync.Mutex
	started   bool
	closed    bool      // Tracks if Close() has been called
	closeOnce sync.Once // Ensures Close() only runs once
}

// New creates a new compiler.
//
// The compiler is not connected after creation. Call Start() with options to
// connect. Importers and functions may be registered before Start.
func New() *Compiler {
	return &Compiler{
		log:        logging.NopLogger(),
		registries: protocol.NewRegistries(),
	}
}

// Start launches (or attaches to) the compiler and opens a session.
//
// Returns CompilerNotFoundError if the compiler binary cannot be located,
// or ConnectionError if the process fails to start.
func (c *Compiler) Start(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrCompilerClosed
	}

	if c.started {
		return errors.ErrCompilerAlreadyStarted
	}

	if options == nil {
		options = &config.Options{}
	}

	if options.Err != nil {
		return fmt.Errorf("invalid options: %w", options.Err)
	}

	log := options.Logger
	if log == nil {
		log = logging.NopLogger()
	}

	c.log = log.With("component", "compiler")
	c.options = options

	collector, err := metrics.New(options.MetricsRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	transport := options.Transport
	if transport == nil {
		transport = subprocess.NewProcessTransport(log, options)
	}

	c.log.Info("Starting transport")

	if err := transport.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}

	for _, imp := range options.FileImporters {
		c.registries.RegisterFileImporter(imp)
	}

	for _, imp := range options.CustomImporters {
		c.registries.RegisterCustomImporter(imp)
	}

	for _, fn := range options.Functions {
		c.registries.RegisterFunction(fn)
	}

	c.transport = transport
	c.fetcher = &importer.Fetcher{Client: options.HTTPClient}
	c.session = protocol.NewSession(log, transport, options, c.registries, collector)
	c.started = true

	c.log.Info("Compiler started", "session_id", c.session.ID())

	return nil
}

// activeSession returns the session if the compiler is usable.
func (c *Compiler) activeSession() (*protocol.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.ErrCompilerClosed
	}

	if !c.started {
		return nil, errors.ErrCompilerNotStarted
	}

	return c.session, nil
}

// Version asks the compiler for its version information.
func (c *Compiler) Version(ctx context.Context) (*message.VersionResponse, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	return session.Version(ctx)
}

// Compile compiles input as-is. style overrides the configured output style
// when non-nil.
func (c *Compiler) Compile(
	ctx context.Context,
	input message.CompileInput,
	style *message.OutputStyle,
) (*message.CompileSuccess, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	return session.Compile(ctx, input, style)
}

// CompileString compiles source text. opts may be nil.
func (c *Compiler) CompileString(
	ctx context.Context,
	source string,
	syntax message.Syntax,
	opts *config.CompileOptions,
) (*message.CompileSuccess, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = &config.CompileOptions{}
	}

	input := &message.StringInput{Source: source, Syntax: syntax, URL: opts.URL}

	// opts.Importer serves this call only and never joins the registries.
	return session.CompileWithImporter(ctx, input, opts.Style, opts.Importer)
}

// CompileFile compiles the stylesheet at path. Relative paths are resolved
// against the host's working directory. opts may be nil; only its Style is
// used.
func (c *Compiler) CompileFile(
	ctx context.Context,
	path string,
	opts *config.CompileOptions,
) (*message.CompileSuccess, error) {
	session, err := c.activeSession()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path of %s: %w", path, err)
	}

	var style *message.OutputStyle
	if opts != nil {
		style = opts.Style
	}

	return session.Compile(ctx, message.PathInput(abs), style)
}

// CompileURL compiles the stylesheet at u. file: URLs are compiled as paths.
// http and https stylesheets are fetched by the host and their relative
// loads are served by a RelativeURLImporter scoped to this call.
func (c *Compiler) CompileURL(
	ctx context.Context,
	u *url.URL,
	opts *config.CompileOptions,
) (*message.CompileSuccess, error) {
	if _, err := c.activeSession(); err != nil {
		return nil, err
	}

	if u.Scheme == "file" {
		p, err := importer.FilePath(u.String())
		if err != nil {
			return nil, err
		}

		return c.CompileFile(ctx, p, opts)
	}

	data, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}

	if data == nil {
		return nil, fmt.Errorf("fetch %s: %w", u, fs.ErrNotExist)
	}

	call := config.CompileOptions{}
	if opts != nil {
		call = *opts
	}

	call.URL = u.String()
	call.Importer = importer.NewRelativeURLImporter(u, c.fetcher).AutoCanonicalize()

	c.log.Debug("Compiling remote stylesheet", "url", call.URL, "bytes", len(data))

	return c.CompileString(ctx, string(data), message.SyntaxFromPath(u.Path), &call)
}

// RegisterFileImporter adds imp to every subsequent compilation.
func (c *Compiler) RegisterFileImporter(imp importer.FileImporter) {
	c.registries.RegisterFileImporter(imp)
}

// UnregisterFileImporter removes the file importer with the given id.
func (c *Compiler) UnregisterFileImporter(id uint32) bool {
	return c.registries.UnregisterFileImporter(id)
}

// RegisterCustomImporter adds imp to every subsequent compilation.
func (c *Compiler) RegisterCustomImporter(imp importer.CustomImporter) {
	c.registries.RegisterCustomImporter(imp)
}

// UnregisterCustomImporter removes the custom importer with the given id.
func (c *Compiler) UnregisterCustomImporter(id uint32) bool {
	return c.registries.UnregisterCustomImporter(id)
}

// RegisterFunction makes fn callable from every subsequent compilation.
func (c *Compiler) RegisterFunction(fn function.HostFunction) {
	c.registries.RegisterFunction(fn)
}

// UnregisterFunction removes the function with the given name.
func (c *Compiler) UnregisterFunction(name string) bool {
	return c.registries.UnregisterFunction(name)
}

// ID returns the session identifier, or "" before Start.
func (c *Compiler) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ""
	}

	return c.session.ID()
}

// Err returns the error that faulted the session, or nil.
func (c *Compiler) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}

	return c.session.Err()
}

// Close terminates the compiler and releases resources.
//
// After Close(), the compiler cannot be reused - create a new one with New().
// This method is safe to call multiple times.
func (c *Compiler) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasStarted := c.started
		c.started = false
		c.mu.Unlock()

		if !wasStarted {
			return
		}

		c.log.Info("Closing compiler")

		if c.transport != nil {
			closeErr = c.transport.Close()
		}

		c.log.Info("Compiler closed")
	})

	return closeErr
}
