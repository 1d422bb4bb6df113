// Package sass compiles Sass and SCSS stylesheets by driving an embedded
// Sass compiler (Dart Sass) over the embedded Sass protocol.
//
// The compiler runs as a child process. The host sends compile requests over
// its stdin and answers the compiler's callbacks (importers, custom
// functions) while a compilation is in flight. Stylesheet parsing and CSS
// generation happen entirely in the compiler.
//
// # Basic Usage
//
// For a one-off compilation, use the WithCompiler helper:
//
//	ctx := context.Background()
//	err := sass.WithCompiler(ctx, func(c sass.Compiler) error {
//	    result, err := c.CompileSCSS(ctx, "$c: red; a { color: $c; }")
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(result.CSS)
//	    return nil
//	},
//	    sass.WithOutputStyle(sass.OutputStyleCompressed),
//	)
//
// # Long-Lived Compilers
//
// Starting the compiler process is the expensive part. Keep one Compiler
// for many compilations:
//
//	compiler := sass.NewCompiler()
//	defer compiler.Close()
//
//	err := compiler.Start(ctx,
//	    sass.WithLogger(slog.Default()),
//	    sass.WithLoadPaths("node_modules"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := compiler.CompileFile(ctx, "styles/main.scss")
//
// Compilations on one Compiler run one at a time.
//
// The wire dialect follows the binary: dart-sass-embedded speaks protocol
// 1 and `sass --embedded` speaks protocol 2. WithProtocol overrides the
// choice.
//
// # Importers and Functions
//
// Loads the compiler cannot resolve through load paths are offered to
// registered importers. A FileImporter maps a URL to a file the compiler
// reads itself; a CustomImporter canonicalizes and loads the stylesheet
// in the host:
//
//	//go:embed styles
//	var styles embed.FS
//
//	compiler.RegisterCustomImporter(sass.NewFSImporter(styles, "app"))
//
// Host functions are called from stylesheets by name:
//
//	compiler.RegisterFunction(sass.MustNewFunction("double($n)",
//	    func(ctx context.Context, args []sass.Value) (sass.Value, error) {
//	        n, err := sass.Arg[*sass.Number](args, 0)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return sass.Num(n.Value*2, n.Numerators...), nil
//	    }))
//
// # Logging
//
// For detailed operation tracking, use WithLogger. The compiler's own
// warnings and debug messages go to the same logger unless WithLogHandler
// is given:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	err := compiler.Start(ctx, sass.WithLogger(logger))
//
// # Error Handling
//
// A stylesheet error is a *CompilationError and the compiler stays usable.
// Transport and protocol failures fault the compiler; later calls return
// ErrSessionFaulted and the compiler should be closed and replaced:
//
//	result, err := compiler.CompileFile(ctx, path)
//	if err != nil {
//	    if compileErr, ok := errors.AsType[*sass.CompilationError](err); ok {
//	        log.Printf("stylesheet error: %s", compileErr.Formatted)
//	    }
//	    if notFound, ok := errors.AsType[*sass.CompilerNotFoundError](err); ok {
//	        log.Fatalf("sass compiler not installed, searched: %v", notFound.SearchedPaths)
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// This package requires Dart Sass 1.63 or newer (the sass binary with
// --embedded) or the standalone dart-sass-embedded binary, found on PATH or
// named by SASS_EMBEDDED_COMPILER. Use WithCompilerPath to point at a
// specific binary.
package sass
