package client

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/errors"
	"github.com/wagiedev/sass-embedded-go/internal/function"
	"github.com/wagiedev/sass-embedded-go/internal/importer"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// mockTransport implements config.Transport for testing. It plays the
// compiler with a script and round-trips every message through the codec.
type mockTransport struct {
	mu       sync.Mutex
	script   func(in message.InboundMessage) []message.OutboundMessage
	sent     []message.InboundMessage
	pending  []message.OutboundMessage
	started  bool
	closed   bool
	startErr error
}

var _ config.Transport = (*mockTransport)(nil)

func newMockTransport(script func(in message.InboundMessage) []message.OutboundMessage) *mockTransport {
	return &mockTransport{script: script}
}

func (m *mockTransport) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}

	m.started = true

	return nil
}

func (m *mockTransport) Send(_ context.Context, msg message.InboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &errors.TransportError{Op: "send", Err: errors.ErrTransportClosed}
	}

	b, err := message.MarshalInbound(msg)
	if err != nil {
		return err
	}

	decoded, err := message.UnmarshalInbound(b)
	if err != nil {
		return err
	}

	m.sent = append(m.sent, decoded)
	m.pending = append(m.pending, m.script(decoded)...)

	return nil
}

func (m *mockTransport) Receive(context.Context) (message.OutboundMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		return nil, &errors.TransportError{Op: "receive", Err: io.EOF}
	}

	msg := m.pending[0]
	m.pending = m.pending[1:]

	b, err := message.MarshalOutbound(msg)
	if err != nil {
		return nil, err
	}

	return message.UnmarshalOutbound(b)
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *mockTransport) lastCompileRequest(t *testing.T) *message.CompileRequest {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if req, ok := m.sent[i].(*message.CompileRequest); ok {
			return req
		}
	}

	t.Fatal("no compile request was sent")

	return nil
}

// echoCompiler answers version requests and echoes string input back as CSS.
func echoCompiler(in message.InboundMessage) []message.OutboundMessage {
	switch req := in.(type) {
	case *message.VersionRequest:
		return []message.OutboundMessage{&message.VersionResponse{
			ID: req.ID, ProtocolVersion: "2.7.1", CompilerVersion: "1.77.0",
			ImplementationVersion: "1.77.0", ImplementationName: "dart-sass",
		}}
	case *message.CompileRequest:
		css := ""
		if s, ok := req.Input.(*message.StringInput); ok {
			css = s.Source
		}

		if p, ok := req.Input.(message.PathInput); ok {
			css = "/* " + filepath.Base(string(p)) + " */"
		}

		return []message.OutboundMessage{&message.CompileResponse{
			ID: req.ID, Success: &message.CompileSuccess{CSS: css},
		}}
	}

	return nil
}

func startCompiler(t *testing.T, transport *mockTransport, options *config.Options) *Compiler {
	t.Helper()

	if options == nil {
		options = &config.Options{}
	}

	options.Transport = transport

	c := New()
	require.NoError(t, c.Start(context.Background(), options))

	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestCompiler_NotStarted(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, err := c.Version(ctx)
	require.ErrorIs(t, err, errors.ErrCompilerNotStarted)

	_, err = c.CompileString(ctx, "a {}", message.SyntaxSCSS, nil)
	require.ErrorIs(t, err, errors.ErrCompilerNotStarted)

	_, err = c.CompileFile(ctx, "a.scss", nil)
	require.ErrorIs(t, err, errors.ErrCompilerNotStarted)

	_, err = c.CompileURL(ctx, &url.URL{Scheme: "https", Host: "example.com", Path: "/a.scss"}, nil)
	require.ErrorIs(t, err, errors.ErrCompilerNotStarted)

	assert.Empty(t, c.ID())
	assert.NoError(t, c.Err())
}

func TestCompiler_Lifecycle(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	c := New()

	require.NoError(t, c.Start(context.Background(), &config.Options{Transport: transport}))
	assert.True(t, transport.started)
	assert.NotEmpty(t, c.ID())

	err := c.Start(context.Background(), &config.Options{Transport: transport})
	require.ErrorIs(t, err, errors.ErrCompilerAlreadyStarted)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, transport.closed)

	_, err = c.Version(context.Background())
	require.ErrorIs(t, err, errors.ErrCompilerClosed)

	err = c.Start(context.Background(), &config.Options{Transport: transport})
	require.ErrorIs(t, err, errors.ErrCompilerClosed)
}

func TestCompiler_CloseWithoutStart(t *testing.T) {
	c := New()

	require.NoError(t, c.Close())

	err := c.Start(context.Background(), &config.Options{Transport: newMockTransport(echoCompiler)})
	require.ErrorIs(t, err, errors.ErrCompilerClosed)
}

func TestCompiler_StartError(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	transport.startErr = &errors.ConnectionError{Err: stderrors.New("pipe broke")}

	c := New()
	err := c.Start(context.Background(), &config.Options{Transport: transport})
	require.Error(t, err)

	_, ok := stderrors.AsType[*errors.ConnectionError](err)
	require.True(t, ok)

	// A failed start leaves the compiler startable.
	transport.startErr = nil
	require.NoError(t, c.Start(context.Background(), &config.Options{Transport: transport}))
	require.NoError(t, c.Close())
}

func TestCompiler_Version(t *testing.T) {
	c := startCompiler(t, newMockTransport(echoCompiler), nil)

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dart-sass", v.ImplementationName)
	assert.Equal(t, "2.7.1", v.ProtocolVersion)
}

func TestCompiler_CompileString(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	c := startCompiler(t, transport, &config.Options{Style: message.OutputStyleExpanded})

	compressed := message.OutputStyleCompressed

	result, err := c.CompileString(context.Background(), "a { b: c }", message.SyntaxSCSS, &config.CompileOptions{
		Style: &compressed,
		URL:   "memory:entry.scss",
	})
	require.NoError(t, err)
	assert.Equal(t, "a { b: c }", result.CSS)

	req := transport.lastCompileRequest(t)
	assert.Equal(t, message.OutputStyleCompressed, req.Style)

	input, ok := req.Input.(*message.StringInput)
	require.True(t, ok)
	assert.Equal(t, "memory:entry.scss", input.URL)
	assert.Nil(t, input.Importer)
}

func TestCompiler_CompileStringWithImporter(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	c := startCompiler(t, transport, nil)

	imp := importer.NewFSImporter(os.DirFS(t.TempDir()), "")

	_, err := c.CompileString(context.Background(), "a {}", message.SyntaxSCSS, &config.CompileOptions{Importer: imp})
	require.NoError(t, err)

	req := transport.lastCompileRequest(t)
	input, ok := req.Input.(*message.StringInput)
	require.True(t, ok)
	require.NotNil(t, input.Importer)
	assert.Equal(t, imp.ID(), input.Importer.ID)
	assert.NotContains(t, req.Importers, message.CustomImporterRef(imp.ID()))

	// The per-call importer never joins the registries.
	_, ok = c.registries.CustomImporter(imp.ID())
	assert.False(t, ok)
}

func TestCompiler_CompileStringKeepsRegisteredImporter(t *testing.T) {
	c := startCompiler(t, newMockTransport(echoCompiler), nil)

	imp := importer.NewFSImporter(os.DirFS(t.TempDir()), "")
	c.RegisterCustomImporter(imp)

	_, err := c.CompileString(context.Background(), "a {}", message.SyntaxSCSS, &config.CompileOptions{Importer: imp})
	require.NoError(t, err)

	_, ok := c.registries.CustomImporter(imp.ID())
	assert.True(t, ok)
}

func TestCompiler_CompileFile(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	c := startCompiler(t, transport, nil)

	result, err := c.CompileFile(context.Background(), filepath.Join("styles", "main.scss"), nil)
	require.NoError(t, err)
	assert.Equal(t, "/* main.scss */", result.CSS)

	req := transport.lastCompileRequest(t)
	p, ok := req.Input.(message.PathInput)
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(string(p)))
}

func TestCompiler_CompileFileURL(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	c := startCompiler(t, transport, nil)

	p := filepath.Join(t.TempDir(), "site.sass")
	fileURL, err := importer.FileURL(p)
	require.NoError(t, err)

	u, err := url.Parse(fileURL)
	require.NoError(t, err)

	result, err := c.CompileURL(context.Background(), u, nil)
	require.NoError(t, err)
	assert.Equal(t, "/* site.sass */", result.CSS)

	_, ok := transport.lastCompileRequest(t).Input.(message.PathInput)
	assert.True(t, ok)
}

// remoteCompiler drives the canonicalize and import callbacks for the
// entry importer, then returns the imported contents as CSS.
func remoteCompiler(load string) func(in message.InboundMessage) []message.OutboundMessage {
	var (
		compileID  uint32
		importerID uint32
	)

	return func(in message.InboundMessage) []message.OutboundMessage {
		switch m := in.(type) {
		case *message.CompileRequest:
			compileID = m.ID

			input, ok := m.Input.(*message.StringInput)
			if !ok || input.Importer == nil {
				return []message.OutboundMessage{&message.CompileResponse{
					ID: m.ID, Failure: &message.CompileFailure{Message: "no entry importer"},
				}}
			}

			importerID = input.Importer.ID

			return []message.OutboundMessage{&message.CanonicalizeRequest{
				ID: 100, CompilationID: compileID, ImporterID: importerID, URL: load,
			}}
		case *message.CanonicalizeResponse:
			if m.URL == nil {
				return []message.OutboundMessage{&message.CompileResponse{
					ID: compileID, Failure: &message.CompileFailure{Message: "Can't find stylesheet to import."},
				}}
			}

			return []message.OutboundMessage{&message.ImportRequest{
				ID: 101, CompilationID: compileID, ImporterID: importerID, URL: *m.URL,
			}}
		case *message.ImportResponse:
			if m.Success == nil {
				return []message.OutboundMessage{&message.CompileResponse{
					ID: compileID, Failure: &message.CompileFailure{Message: "import failed"},
				}}
			}

			return []message.OutboundMessage{&message.CompileResponse{
				ID: compileID, Success: &message.CompileSuccess{CSS: m.Success.Contents},
			}}
		}

		return nil
	}
}

func newStyleServer(t *testing.T) *httptest.Server {
	t.Helper()

	files := map[string]string{
		"/styles/main.scss":  "@use 'vars';",
		"/styles/_vars.scss": "$c: red;",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)

			return
		}

		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, body)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestCompiler_CompileURL(t *testing.T) {
	srv := newStyleServer(t)
	transport := newMockTransport(remoteCompiler("vars"))
	c := startCompiler(t, transport, &config.Options{HTTPClient: srv.Client()})

	u, err := url.Parse(srv.URL + "/styles/main.scss")
	require.NoError(t, err)

	result, err := c.CompileURL(context.Background(), u, nil)
	require.NoError(t, err)
	assert.Equal(t, "$c: red;", result.CSS)

	req := transport.lastCompileRequest(t)
	input, ok := req.Input.(*message.StringInput)
	require.True(t, ok)
	assert.Equal(t, u.String(), input.URL)
	assert.Equal(t, "@use 'vars';", input.Source)
	assert.Equal(t, message.SyntaxSCSS, input.Syntax)

	assert.Empty(t, c.registries.CustomImporters())
}

// failingCompiler answers every compile request with a stylesheet error.
func failingCompiler(in message.InboundMessage) []message.OutboundMessage {
	if req, ok := in.(*message.CompileRequest); ok {
		return []message.OutboundMessage{&message.CompileResponse{
			ID: req.ID, Failure: &message.CompileFailure{Message: "Undefined variable."},
		}}
	}

	return nil
}

// brokenCompiler answers compile requests with a protocol error, which
// faults the session.
func brokenCompiler(in message.InboundMessage) []message.OutboundMessage {
	if req, ok := in.(*message.CompileRequest); ok {
		return []message.OutboundMessage{&message.ProtocolError{
			Type: message.ProtocolErrorParams, ID: req.ID, Message: "bad request",
		}}
	}

	return nil
}

// silentCompiler never answers, so the transport reports end of stream.
func silentCompiler(message.InboundMessage) []message.OutboundMessage {
	return nil
}

func TestCompiler_PerCallImporterIsForgottenOnEveryExit(t *testing.T) {
	srv := newStyleServer(t)

	u, err := url.Parse(srv.URL + "/styles/main.scss")
	require.NoError(t, err)

	calls := []struct {
		name string
		call func(c *Compiler) error
	}{
		{
			name: "url",
			call: func(c *Compiler) error {
				_, err := c.CompileURL(context.Background(), u, nil)

				return err
			},
		},
		{
			name: "string with importer",
			call: func(c *Compiler) error {
				imp := importer.NewFSImporter(os.DirFS(t.TempDir()), "")

				_, err := c.CompileString(context.Background(), "@use 'a';", message.SyntaxSCSS,
					&config.CompileOptions{Importer: imp})

				return err
			},
		},
	}

	outcomes := []struct {
		name    string
		script  func(in message.InboundMessage) []message.OutboundMessage
		faulted bool
	}{
		{name: "success", script: echoCompiler},
		{name: "stylesheet error", script: failingCompiler},
		{name: "protocol error", script: brokenCompiler, faulted: true},
		{name: "transport end", script: silentCompiler, faulted: true},
	}

	for _, call := range calls {
		for _, outcome := range outcomes {
			t.Run(call.name+"/"+outcome.name, func(t *testing.T) {
				transport := newMockTransport(outcome.script)
				c := startCompiler(t, transport, &config.Options{HTTPClient: srv.Client()})

				err := call.call(c)

				if outcome.faulted {
					require.Error(t, err)
					require.Error(t, c.Err())
				} else {
					if err != nil {
						_, ok := stderrors.AsType[*errors.CompilationError](err)
						require.True(t, ok, "unexpected error: %v", err)
					}

					require.NoError(t, c.Err())
				}

				assert.Empty(t, c.registries.CustomImporters())

				req := transport.lastCompileRequest(t)
				assert.Empty(t, req.Importers)

				input, ok := req.Input.(*message.StringInput)
				require.True(t, ok)
				require.NotNil(t, input.Importer, "the entry importer is referenced from the input")
			})
		}
	}
}

func TestCompiler_CompileURLMissing(t *testing.T) {
	srv := newStyleServer(t)
	c := startCompiler(t, newMockTransport(echoCompiler), &config.Options{HTTPClient: srv.Client()})

	u, err := url.Parse(srv.URL + "/styles/missing.scss")
	require.NoError(t, err)

	_, err = c.CompileURL(context.Background(), u, nil)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCompiler_CompileURLUnsupportedScheme(t *testing.T) {
	c := startCompiler(t, newMockTransport(echoCompiler), nil)

	_, err := c.CompileURL(context.Background(), &url.URL{Scheme: "ftp", Host: "example.com", Path: "/a.scss"}, nil)
	require.ErrorIs(t, err, errors.ErrUnsupportedURLScheme)
}

func TestCompiler_RegistersOptionHandlers(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	fileImp := importer.NewLoadPathImporter(t.TempDir())
	customImp := importer.NewFSImporter(os.DirFS(t.TempDir()), "")
	fn := function.MustNew("double($n)", func(context.Context, []message.Value) (message.Value, error) {
		return function.Num(2), nil
	})

	c := startCompiler(t, transport, &config.Options{
		FileImporters:   []importer.FileImporter{fileImp},
		CustomImporters: []importer.CustomImporter{customImp},
		Functions:       []function.HostFunction{fn},
	})

	_, err := c.CompileString(context.Background(), "a {}", message.SyntaxSCSS, nil)
	require.NoError(t, err)

	req := transport.lastCompileRequest(t)
	assert.Equal(t, []*message.Importer{
		message.CustomImporterRef(customImp.ID()),
		message.FileImporterRef(fileImp.ID()),
	}, req.Importers)
	assert.Equal(t, []string{"double($n)"}, req.GlobalFunctions)

	assert.True(t, c.UnregisterFunction("double"))
	assert.True(t, c.UnregisterFileImporter(fileImp.ID()))
	assert.True(t, c.UnregisterCustomImporter(customImp.ID()))
	assert.False(t, c.UnregisterFunction("double"))

	_, err = c.CompileString(context.Background(), "a {}", message.SyntaxSCSS, nil)
	require.NoError(t, err)

	req = transport.lastCompileRequest(t)
	assert.Empty(t, req.Importers)
	assert.Empty(t, req.GlobalFunctions)
}

func TestCompiler_RegisterBeforeStart(t *testing.T) {
	transport := newMockTransport(echoCompiler)
	fileImp := importer.NewLoadPathImporter(t.TempDir())

	c := New()
	c.RegisterFileImporter(fileImp)

	require.NoError(t, c.Start(context.Background(), &config.Options{Transport: transport}))
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.CompileString(context.Background(), "a {}", message.SyntaxSCSS, nil)
	require.NoError(t, err)

	assert.Equal(t, []*message.Importer{message.FileImporterRef(fileImp.ID())}, transport.lastCompileRequest(t).Importers)
}

func TestCompiler_FaultIsReported(t *testing.T) {
	transport := newMockTransport(func(in message.InboundMessage) []message.OutboundMessage {
		if req, ok := in.(*message.VersionRequest); ok {
			return []message.OutboundMessage{&message.ProtocolError{
				Type: message.ProtocolErrorParams, ID: req.ID, Message: "bad request",
			}}
		}

		return nil
	})
	c := startCompiler(t, transport, nil)

	_, err := c.Version(context.Background())
	require.Error(t, err)

	protoErr, ok := stderrors.AsType[*errors.ProtocolError](c.Err())
	require.True(t, ok)
	assert.Equal(t, "bad request", protoErr.Message)

	_, err = c.Version(context.Background())
	require.ErrorIs(t, err, errors.ErrSessionFaulted)
}

func TestCompiler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := startCompiler(t, newMockTransport(echoCompiler), &config.Options{MetricsRegisterer: reg})

	_, err := c.CompileString(context.Background(), "a {}", message.SyntaxSCSS, nil)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "sass_compilations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A second compiler on the same registry reuses the collectors.
	other := New()
	require.NoError(t, other.Start(context.Background(), &config.Options{
		Transport:         newMockTransport(echoCompiler),
		MetricsRegisterer: reg,
	}))
	require.NoError(t, other.Close())
}
