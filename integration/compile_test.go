//go:build integration

package integration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sass "github.com/wagiedev/sass-embedded-go"
)

// TestVersion checks the handshake with a real compiler.
func TestVersion(t *testing.T) {
	ctx, compiler := startCompiler(t)

	v, err := compiler.Version(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, v.ProtocolVersion)
	assert.NotEmpty(t, v.CompilerVersion)
	assert.NotEmpty(t, v.ImplementationName)
	t.Logf("%s %s (protocol %s)", v.ImplementationName, v.ImplementationVersion, v.ProtocolVersion)
}

// TestCompileSCSS_Expanded compiles the inline fixture in both styles.
func TestCompileSCSS_Expanded(t *testing.T) {
	ctx, compiler := startCompiler(t)

	result, err := compiler.CompileSCSS(ctx, "$c: red; a { color: $c; }")
	require.NoError(t, err)
	assert.Equal(t, "a {\n  color: red;\n}", result.CSS)

	result, err = compiler.CompileSCSS(ctx, "$c: red; a { color: $c; }", sass.WithStyle(sass.OutputStyleCompressed))
	require.NoError(t, err)
	assert.Equal(t, "a{color:red}", result.CSS)
}

// TestCompileSass_Indented compiles indented syntax.
func TestCompileSass_Indented(t *testing.T) {
	ctx, compiler := startCompiler(t)

	result, err := compiler.CompileSass(ctx, "a\n  color: blue\n")
	require.NoError(t, err)
	assert.Equal(t, "a {\n  color: blue;\n}", result.CSS)
}

// TestCompile_FailureKeepsSessionUsable checks that a stylesheet error is
// reported and the compiler answers the next request.
func TestCompile_FailureKeepsSessionUsable(t *testing.T) {
	ctx, compiler := startCompiler(t)

	_, err := compiler.CompileSCSS(ctx, "a { color: $undefined; }")

	compileErr, ok := errors.AsType[*sass.CompilationError](err)
	require.True(t, ok, "expected CompilationError, got %v", err)
	assert.Contains(t, compileErr.Message, "Undefined variable")
	require.NotNil(t, compileErr.Span)

	_, err = compiler.Version(ctx)
	require.NoError(t, err)
}

// TestCompileFile_LoadPaths compiles a file that uses a partial from a load
// path.
func TestCompileFile_LoadPaths(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(lib, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "_colors.scss"), []byte("$primary: teal;\n"), 0o644))

	entry := filepath.Join(dir, "main.scss")
	require.NoError(t, os.WriteFile(entry, []byte("@use 'colors';\na { color: colors.$primary; }\n"), 0o644))

	ctx, compiler := startCompiler(t, sass.WithLoadPaths(lib), sass.WithSourceMap(true))

	result, err := compiler.CompileFile(ctx, entry)
	require.NoError(t, err)

	assert.Equal(t, "a {\n  color: teal;\n}", result.CSS)
	assert.NotEmpty(t, result.SourceMap)
	assert.Len(t, result.LoadedURLs, 2)
}
