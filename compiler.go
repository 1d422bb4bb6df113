package sass

import (
	"context"
	"net/url"
)

// Compiler compiles stylesheets with an embedded Sass compiler.
//
// A Compiler owns one compiler process (or injected Transport) and runs one
// compilation at a time over it; concurrent calls are serialized. Importers
// and functions registered on the Compiler apply to every compilation that
// starts after the call.
//
// Lifecycle: Compilers are single-use. After Close(), create a new compiler
// with NewCompiler().
//
// Example usage:
//
//	compiler := sass.NewCompiler()
//	defer compiler.Close()
//
//	err := compiler.Start(ctx,
//	    sass.WithLogger(slog.Default()),
//	    sass.WithOutputStyle(sass.OutputStyleCompressed),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := compiler.CompileSCSS(ctx, "$c: red; a { color: $c; }")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(result.CSS)
type Compiler interface {
	// Start launches the compiler process, or starts the injected Transport.
	// Must be called before any compile method.
	// Returns CompilerNotFoundError if no compiler binary is found,
	// ConnectionError if the process cannot be started.
	Start(ctx context.Context, opts ...Option) error

	// Version reports the compiler's protocol and implementation versions.
	Version(ctx context.Context) (*VersionResponse, error)

	// CompileString compiles source written in syntax.
	// A stylesheet error is returned as *CompilationError and leaves the
	// compiler usable; any other error faults it (see ErrSessionFaulted).
	CompileString(ctx context.Context, source string, syntax Syntax, opts ...CompileOption) (*CompileSuccess, error)

	// CompileSCSS compiles SCSS source.
	CompileSCSS(ctx context.Context, source string, opts ...CompileOption) (*CompileSuccess, error)

	// CompileSass compiles source in the indented syntax.
	CompileSass(ctx context.Context, source string, opts ...CompileOption) (*CompileSuccess, error)

	// CompileCSS compiles plain CSS source.
	CompileCSS(ctx context.Context, source string, opts ...CompileOption) (*CompileSuccess, error)

	// CompileFile compiles the stylesheet at path. The compiler reads the
	// file itself; the syntax follows the file extension.
	CompileFile(ctx context.Context, path string, opts ...CompileOption) (*CompileSuccess, error)

	// CompileURL compiles the stylesheet at u. file: URLs are compiled like
	// CompileFile; http and https stylesheets are fetched by the host, and
	// their relative loads are served over the same scheme.
	CompileURL(ctx context.Context, u *url.URL, opts ...CompileOption) (*CompileSuccess, error)

	// RegisterFileImporter adds imp to every subsequent compilation.
	RegisterFileImporter(imp FileImporter)

	// UnregisterFileImporter removes the file importer with the given id.
	// It reports whether one was registered.
	UnregisterFileImporter(id uint32) bool

	// RegisterCustomImporter adds imp to every subsequent compilation.
	RegisterCustomImporter(imp CustomImporter)

	// UnregisterCustomImporter removes the custom importer with the given id.
	// It reports whether one was registered.
	UnregisterCustomImporter(id uint32) bool

	// RegisterFunction makes fn callable from every subsequent compilation.
	// A function with the same name replaces the earlier one.
	RegisterFunction(fn HostFunction)

	// UnregisterFunction removes the function with the given name.
	// It reports whether one was registered.
	UnregisterFunction(name string) bool

	// ID returns the identifier attached to this compiler's log records,
	// or "" before Start.
	ID() string

	// Err returns the error that faulted the compiler, or nil.
	Err() error

	// Close stops the compiler and releases its resources.
	// Safe to call multiple times.
	Close() error
}

// NewCompiler creates a new compiler.
//
// The compiler is not started after creation. Call Start() with options to
// launch it.
func NewCompiler() Compiler {
	return newCompilerImpl()
}
