//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	sass "github.com/wagiedev/sass-embedded-go"
)

// skipIfCompilerNotInstalled skips the test if the error indicates the
// compiler binary is not found.
func skipIfCompilerNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*sass.CompilerNotFoundError](err); ok {
		t.Skip("embedded Sass compiler not installed")
	}
}

// startCompiler starts a real compiler and closes it when the test ends.
func startCompiler(t *testing.T, opts ...sass.Option) (context.Context, sass.Compiler) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	compiler := sass.NewCompiler()

	if err := compiler.Start(ctx, opts...); err != nil {
		skipIfCompilerNotInstalled(t, err)
		t.Fatalf("Start failed: %v", err)
	}

	t.Cleanup(func() {
		if err := compiler.Close(); err != nil {
			t.Logf("Close: %v", err)
		}
	})

	return ctx, compiler
}
