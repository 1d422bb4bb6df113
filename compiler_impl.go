package sass

import (
	"context"
	"net/url"

	"github.com/wagiedev/sass-embedded-go/internal/client"
	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// compilerWrapper wraps the internal compiler to adapt it to the public interface.
type compilerWrapper struct {
	impl *client.Compiler
}

// Compile-time check that *compilerWrapper implements the Compiler interface.
var _ Compiler = (*compilerWrapper)(nil)

// newCompilerImpl creates the internal compiler implementation.
func newCompilerImpl() Compiler {
	return &compilerWrapper{impl: client.New()}
}

// Start launches the compiler.
func (c *compilerWrapper) Start(ctx context.Context, opts ...Option) error {
	return c.impl.Start(ctx, applyCompilerOptions(opts))
}

// Version reports the compiler's versions.
func (c *compilerWrapper) Version(ctx context.Context) (*VersionResponse, error) {
	return c.impl.Version(ctx)
}

// CompileString compiles source written in syntax.
func (c *compilerWrapper) CompileString(
	ctx context.Context,
	source string,
	syntax Syntax,
	opts ...CompileOption,
) (*CompileSuccess, error) {
	return c.impl.CompileString(ctx, source, syntax, applyCompileOptions(opts))
}

// CompileSCSS compiles SCSS source.
func (c *compilerWrapper) CompileSCSS(ctx context.Context, source string, opts ...CompileOption) (*CompileSuccess, error) {
	return c.CompileString(ctx, source, message.SyntaxSCSS, opts...)
}

// CompileSass compiles indented-syntax source.
func (c *compilerWrapper) CompileSass(ctx context.Context, source string, opts ...CompileOption) (*CompileSuccess, error) {
	return c.CompileString(ctx, source, message.SyntaxIndented, opts...)
}

// CompileCSS compiles plain CSS source.
func (c *compilerWrapper) CompileCSS(ctx context.Context, source string, opts ...CompileOption) (*CompileSuccess, error) {
	return c.CompileString(ctx, source, message.SyntaxCSS, opts...)
}

// CompileFile compiles the stylesheet at path.
func (c *compilerWrapper) CompileFile(ctx context.Context, path string, opts ...CompileOption) (*CompileSuccess, error) {
	return c.impl.CompileFile(ctx, path, applyCompileOptions(opts))
}

// CompileURL compiles the stylesheet at u.
func (c *compilerWrapper) CompileURL(ctx context.Context, u *url.URL, opts ...CompileOption) (*CompileSuccess, error) {
	return c.impl.CompileURL(ctx, u, applyCompileOptions(opts))
}

func (c *compilerWrapper) RegisterFileImporter(imp FileImporter) {
	c.impl.RegisterFileImporter(imp)
}

func (c *compilerWrapper) UnregisterFileImporter(id uint32) bool {
	return c.impl.UnregisterFileImporter(id)
}

func (c *compilerWrapper) RegisterCustomImporter(imp CustomImporter) {
	c.impl.RegisterCustomImporter(imp)
}

func (c *compilerWrapper) UnregisterCustomImporter(id uint32) bool {
	return c.impl.UnregisterCustomImporter(id)
}

func (c *compilerWrapper) RegisterFunction(fn HostFunction) {
	c.impl.RegisterFunction(fn)
}

func (c *compilerWrapper) UnregisterFunction(name string) bool {
	return c.impl.UnregisterFunction(name)
}

// ID returns the session identifier.
func (c *compilerWrapper) ID() string {
	return c.impl.ID()
}

// Err returns the fault, if any.
func (c *compilerWrapper) Err() error {
	return c.impl.Err()
}

// Close stops the compiler and releases resources.
func (c *compilerWrapper) Close() error {
	return c.impl.Close()
}

// applyCompileOptions converts public compile options to internal
// config.CompileOptions.
func applyCompileOptions(opts []CompileOption) *config.CompileOptions {
	options := &config.CompileOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}
