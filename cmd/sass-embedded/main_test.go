package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sass "github.com/wagiedev/sass-embedded-go"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// echoTransport answers like a compiler that returns its input, prefixed
// with the requested output style.
type echoTransport struct {
	mu       sync.Mutex
	pending  []message.OutboundMessage
	requests []*message.CompileRequest
}

var _ sass.Transport = (*echoTransport)(nil)

func (e *echoTransport) Start(context.Context) error { return nil }

func (e *echoTransport) Close() error { return nil }

func (e *echoTransport) Send(_ context.Context, msg message.InboundMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch m := msg.(type) {
	case *message.VersionRequest:
		e.pending = append(e.pending, &message.VersionResponse{
			ID: m.ID, ProtocolVersion: "2.7.1", CompilerVersion: "1.77.0",
			ImplementationVersion: "1.77.0", ImplementationName: "dart-sass",
		})
	case *message.CompileRequest:
		e.requests = append(e.requests, m)

		var body string

		switch in := m.Input.(type) {
		case *message.StringInput:
			body = in.Source
		case message.PathInput:
			body = "path " + filepath.Base(string(in))
		}

		if strings.Contains(body, "$undefined") {
			e.pending = append(e.pending, &message.CompileResponse{ID: m.ID, Failure: &message.CompileFailure{
				Message: "Undefined variable.", Formatted: "Error: Undefined variable.",
			}})

			return nil
		}

		success := &message.CompileSuccess{CSS: "/* " + m.Style.String() + " */ " + body}
		if m.SourceMap {
			success.SourceMap = `{"version":3}`
		}

		e.pending = append(e.pending, &message.CompileResponse{ID: m.ID, Success: success})
	}

	return nil
}

func (e *echoTransport) Receive(context.Context) (message.OutboundMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 {
		return nil, &sass.TransportError{Op: "receive", Err: io.EOF}
	}

	msg := e.pending[0]
	e.pending = e.pending[1:]

	return msg, nil
}

func (e *echoTransport) lastRequest(t *testing.T) *message.CompileRequest {
	t.Helper()

	e.mu.Lock()
	defer e.mu.Unlock()

	require.NotEmpty(t, e.requests)

	return e.requests[len(e.requests)-1]
}

func execute(t *testing.T, transport *echoTransport, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(sass.WithTransport(transport))

	var stdout, stderr bytes.Buffer

	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, &echoTransport{}, "", "version")
	require.NoError(t, err)

	assert.Contains(t, out, "sass-embedded-go "+sass.Version)
	assert.Contains(t, out, "dart-sass 1.77.0 (protocol 2.7.1, compiler 1.77.0)")
}

func TestVersionCommand_ExplicitProtocol(t *testing.T) {
	out, err := execute(t, &echoTransport{}, "", "--protocol", "1", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dart-sass 1.77.0")
}

func TestCompileCommand_Stdin(t *testing.T) {
	transport := &echoTransport{}

	out, err := execute(t, transport, "a\n  b: c", "compile", "-", "--syntax", "sass", "--style", "compressed")
	require.NoError(t, err)
	assert.Equal(t, "/* compressed */ a\n  b: c\n", out)

	input, ok := transport.lastRequest(t).Input.(*message.StringInput)
	require.True(t, ok)
	assert.Equal(t, message.SyntaxIndented, input.Syntax)
}

func TestCompileCommand_FileToOutput(t *testing.T) {
	transport := &echoTransport{}
	dir := t.TempDir()
	output := filepath.Join(dir, "main.css")

	out, err := execute(t, transport, "", "compile", "main.scss", "-o", output, "--source-map", "-I", "node_modules")
	require.NoError(t, err)
	assert.Empty(t, out)

	css, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "/* expanded */ path main.scss\n\n/*# sourceMappingURL=main.css.map */\n", string(css))

	sourceMap, err := os.ReadFile(output + ".map")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3}`, string(sourceMap))

	req := transport.lastRequest(t)
	require.Len(t, req.Importers, 1)
	assert.Equal(t, message.ImporterPath, req.Importers[0].Kind)
	assert.True(t, filepath.IsAbs(req.Importers[0].Path))
}

func TestCompileCommand_ConfigFile(t *testing.T) {
	transport := &echoTransport{}
	configPath := filepath.Join(t.TempDir(), "sass.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("style: compressed\nsource_map: true\n"), 0o644))

	out, err := execute(t, transport, "a {}", "--config", configPath, "compile", "-")
	require.NoError(t, err)
	assert.Equal(t, "/* compressed */ a {}\n", out)
	assert.True(t, transport.lastRequest(t).SourceMap)

	// Flags override the file.
	out, err = execute(t, transport, "a {}", "--config", configPath, "compile", "-", "--style", "expanded", "--source-map=false")
	require.NoError(t, err)
	assert.Equal(t, "/* expanded */ a {}\n", out)
	assert.False(t, transport.lastRequest(t).SourceMap)
}

func TestCompileCommand_CompilationError(t *testing.T) {
	_, err := execute(t, &echoTransport{}, "a { b: $undefined }", "compile", "-")

	compileErr, ok := stderrors.AsType[*sass.CompilationError](err)
	require.True(t, ok, "expected CompilationError, got %v", err)
	assert.Equal(t, "Error: Undefined variable.", compileErr.Error())
}

func TestCompileCommand_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown style", args: []string{"compile", "-", "--style", "pretty"}},
		{name: "unknown syntax", args: []string{"compile", "-", "--syntax", "less"}},
		{name: "missing input", args: []string{"compile"}},
		{name: "missing config", args: []string{"--config", "/nonexistent/sass.yaml", "compile", "-"}},
		{name: "unknown protocol", args: []string{"--protocol", "7", "compile", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, &echoTransport{}, "", tt.args...)
			require.Error(t, err)
		})
	}
}
