package sass

import (
	"context"
	"fmt"
)

// WithCompiler manages compiler lifecycle with automatic cleanup.
//
// This helper creates a compiler, starts it with the provided options,
// executes the callback function, and ensures proper cleanup via Close()
// when done.
//
// If the callback returns an error, it is returned to the caller.
// If Close() fails, a warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := sass.WithCompiler(ctx, func(c sass.Compiler) error {
//	    result, err := c.CompileFile(ctx, "styles/main.scss")
//	    if err != nil {
//	        return err
//	    }
//	    return os.WriteFile("main.css", []byte(result.CSS), 0o644)
//	},
//	    sass.WithLogger(log),
//	    sass.WithOutputStyle(sass.OutputStyleCompressed),
//	)
func WithCompiler(ctx context.Context, fn func(Compiler) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyCompilerOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	compiler := NewCompiler()
	if err := compiler.Start(ctx, opts...); err != nil {
		return fmt.Errorf("failed to start compiler: %w", err)
	}

	defer func() {
		if closeErr := compiler.Close(); closeErr != nil {
			log.Warn("failed to close compiler", "error", closeErr)
		}
	}()

	return fn(compiler)
}
