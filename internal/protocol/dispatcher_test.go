package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/sass-embedded-go/internal/function"
	"github.com/wagiedev/sass-embedded-go/internal/importer"
	"github.com/wagiedev/sass-embedded-go/internal/logging"
	"github.com/wagiedev/sass-embedded-go/internal/message"
	"github.com/wagiedev/sass-embedded-go/internal/metrics"
)

// stubImporter is a custom importer whose behavior is set per test.
type stubImporter struct {
	importer.Identity

	canonicalize func(url string) (string, error)
	load         func(url string) (*message.ImportSuccess, error)
}

func (s *stubImporter) Canonicalize(_ context.Context, url string, _ bool) (string, error) {
	return s.canonicalize(url)
}

func (s *stubImporter) Load(_ context.Context, url string) (*message.ImportSuccess, error) {
	return s.load(url)
}

type behavior int

const (
	behaveNull behavior = iota
	behaveError
	behavePanic
)

func stubFor(b behavior) *stubImporter {
	return &stubImporter{
		canonicalize: func(string) (string, error) {
			switch b {
			case behaveError:
				return "", errors.New("handler failed")
			case behavePanic:
				panic("handler exploded")
			default:
				return "", nil
			}
		},
		load: func(string) (*message.ImportSuccess, error) {
			switch b {
			case behaveError:
				return nil, errors.New("handler failed")
			case behavePanic:
				panic("handler exploded")
			default:
				return nil, nil
			}
		},
	}
}

func fileImporterFor(b behavior) *importer.FileImporterFunc {
	return importer.NewFileImporterFunc(func(context.Context, string, bool) (string, error) {
		switch b {
		case behaveError:
			return "", errors.New("handler failed")
		case behavePanic:
			panic("handler exploded")
		default:
			return "", nil
		}
	})
}

func newTestDispatcher(registries *Registries) *Dispatcher {
	return NewDispatcher(logging.NopLogger(), registries, nil)
}

// responseFields extracts the id and whether the success and error arms are set.
func responseFields(t *testing.T, msg message.InboundMessage) (id uint32, success, failure *string) {
	t.Helper()

	set := func(ok bool) *string {
		if ok {
			return message.Ptr("set")
		}

		return nil
	}

	switch m := msg.(type) {
	case *message.CanonicalizeResponse:
		return m.ID, m.URL, m.Error
	case *message.ImportResponse:
		return m.ID, set(m.Success != nil), m.Error
	case *message.FileImportResponse:
		return m.ID, m.FileURL, m.Error
	case *message.FunctionCallResponse:
		return m.ID, set(m.Success != nil), m.Error
	default:
		t.Fatalf("unexpected response %T", msg)

		return 0, nil, nil
	}
}

func TestDispatcher_NullAndErrorResults(t *testing.T) {
	kinds := []struct {
		name    string
		request func(r *Registries, b behavior) message.OutboundMessage
	}{
		{
			name: "canonicalize",
			request: func(r *Registries, b behavior) message.OutboundMessage {
				imp := stubFor(b)
				r.RegisterCustomImporter(imp)

				return &message.CanonicalizeRequest{ID: 11, ImporterID: imp.ID(), URL: "a"}
			},
		},
		{
			name: "import",
			request: func(r *Registries, b behavior) message.OutboundMessage {
				imp := stubFor(b)
				r.RegisterCustomImporter(imp)

				return &message.ImportRequest{ID: 12, ImporterID: imp.ID(), URL: "custom:a"}
			},
		},
		{
			name: "file import",
			request: func(r *Registries, b behavior) message.OutboundMessage {
				imp := fileImporterFor(b)
				r.RegisterFileImporter(imp)

				return &message.FileImportRequest{ID: 13, ImporterID: imp.ID(), URL: "a"}
			},
		},
	}

	behaviors := []struct {
		name     string
		behavior behavior
		wantErr  string
	}{
		{name: "null", behavior: behaveNull},
		{name: "error", behavior: behaveError, wantErr: "handler failed"},
		{name: "panic", behavior: behavePanic, wantErr: "panic: handler exploded"},
	}

	for _, kind := range kinds {
		for _, bb := range behaviors {
			t.Run(kind.name+"/"+bb.name, func(t *testing.T) {
				registries := NewRegistries()
				req := kind.request(registries, bb.behavior)

				resp, ok := newTestDispatcher(registries).Dispatch(context.Background(), req)
				require.True(t, ok)

				id, success, failure := responseFields(t, resp)
				require.Equal(t, requestID(req), id)
				require.Nil(t, success)

				if bb.wantErr == "" {
					require.Nil(t, failure)

					return
				}

				require.NotNil(t, failure)
				require.Contains(t, *failure, bb.wantErr)
			})
		}
	}
}

func requestID(msg message.OutboundMessage) uint32 {
	switch m := msg.(type) {
	case *message.CanonicalizeRequest:
		return m.ID
	case *message.ImportRequest:
		return m.ID
	case *message.FileImportRequest:
		return m.ID
	case *message.FunctionCallRequest:
		return m.ID
	default:
		return 0
	}
}

func TestDispatcher_PanicIncludesStack(t *testing.T) {
	registries := NewRegistries()
	imp := stubFor(behavePanic)
	registries.RegisterCustomImporter(imp)

	resp := newTestDispatcher(registries).Canonicalize(context.Background(), &message.CanonicalizeRequest{
		ID: 1, ImporterID: imp.ID(), URL: "a",
	})

	require.NotNil(t, resp.Error)
	require.Contains(t, *resp.Error, "goroutine")
}

func TestDispatcher_Success(t *testing.T) {
	registries := NewRegistries()

	custom := &stubImporter{
		canonicalize: func(url string) (string, error) { return "custom:" + url, nil },
		load: func(url string) (*message.ImportSuccess, error) {
			return &message.ImportSuccess{Contents: "a { b: c }", Syntax: message.SyntaxCSS}, nil
		},
	}
	registries.RegisterCustomImporter(custom)

	file := importer.NewFileImporterFunc(func(_ context.Context, url string, _ bool) (string, error) {
		return "/styles/_" + url + ".scss", nil
	})
	registries.RegisterFileImporter(file)

	passthrough := importer.NewFileImporterFunc(func(context.Context, string, bool) (string, error) {
		return "file:///already/a.scss", nil
	})
	registries.RegisterFileImporter(passthrough)

	dispatcher := newTestDispatcher(registries)
	ctx := context.Background()

	canonical := dispatcher.Canonicalize(ctx, &message.CanonicalizeRequest{ID: 1, ImporterID: custom.ID(), URL: "a"})
	require.Equal(t, &message.CanonicalizeResponse{ID: 1, URL: message.Ptr("custom:a")}, canonical)

	imported := dispatcher.Import(ctx, &message.ImportRequest{ID: 2, ImporterID: custom.ID(), URL: "custom:a"})
	require.Equal(t, uint32(2), imported.ID)
	require.Nil(t, imported.Error)
	require.Equal(t, "a { b: c }", imported.Success.Contents)

	found := dispatcher.FileImport(ctx, &message.FileImportRequest{ID: 3, ImporterID: file.ID(), URL: "vars"})
	require.Equal(t, &message.FileImportResponse{ID: 3, FileURL: message.Ptr("file:///styles/_vars.scss")}, found)

	kept := dispatcher.FileImport(ctx, &message.FileImportRequest{ID: 4, ImporterID: passthrough.ID(), URL: "a"})
	require.Equal(t, "file:///already/a.scss", *kept.FileURL)
}

func TestDispatcher_FunctionCall(t *testing.T) {
	registries := NewRegistries()
	registries.RegisterFunction(function.MustNew("double($n)", func(_ context.Context, args []message.Value) (message.Value, error) {
		n, err := function.Arg[*message.Number](args, 0)
		if err != nil {
			return nil, err
		}

		return function.Num(n.Value*2, n.Numerators...), nil
	}))
	registries.RegisterFunction(function.MustNew("nothing()", func(context.Context, []message.Value) (message.Value, error) {
		return nil, nil
	}))
	registries.RegisterFunction(function.MustNew("explode()", func(context.Context, []message.Value) (message.Value, error) {
		panic("kaboom")
	}))

	tests := []struct {
		name    string
		req     *message.FunctionCallRequest
		want    message.Value
		wantErr string
	}{
		{
			name: "by name",
			req:  &message.FunctionCallRequest{ID: 1, Name: message.Ptr("double"), Arguments: []message.Value{function.Num(21, "px")}},
			want: function.Num(42, "px"),
		},
		{
			name:    "handler error",
			req:     &message.FunctionCallRequest{ID: 2, Name: message.Ptr("double"), Arguments: []message.Value{function.Quoted("x")}},
			wantErr: "argument",
		},
		{
			name:    "unknown name",
			req:     &message.FunctionCallRequest{ID: 3, Name: message.Ptr("missing")},
			wantErr: "unknown function: missing",
		},
		{
			name:    "by id",
			req:     &message.FunctionCallRequest{ID: 4, FunctionID: message.Ptr(uint32(9))},
			wantErr: "not supported",
		},
		{
			name:    "no identifier",
			req:     &message.FunctionCallRequest{ID: 5},
			wantErr: "no identifier",
		},
		{
			name:    "nil result",
			req:     &message.FunctionCallRequest{ID: 6, Name: message.Ptr("nothing")},
			wantErr: "returned no value",
		},
		{
			name:    "panic",
			req:     &message.FunctionCallRequest{ID: 7, Name: message.Ptr("explode")},
			wantErr: "panic: kaboom",
		},
	}

	dispatcher := newTestDispatcher(registries)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := dispatcher.FunctionCall(context.Background(), tt.req)
			require.Equal(t, tt.req.ID, resp.ID)

			if tt.wantErr != "" {
				require.Nil(t, resp.Success)
				require.NotNil(t, resp.Error)
				require.Contains(t, *resp.Error, tt.wantErr)

				return
			}

			require.Nil(t, resp.Error)
			require.Equal(t, tt.want, resp.Success)
		})
	}
}

func TestDispatcher_UnknownImporter(t *testing.T) {
	dispatcher := newTestDispatcher(NewRegistries())
	ctx := context.Background()

	canonical := dispatcher.Canonicalize(ctx, &message.CanonicalizeRequest{ID: 1, ImporterID: 99})
	require.Nil(t, canonical.URL)
	require.Contains(t, *canonical.Error, "unknown importer")

	imported := dispatcher.Import(ctx, &message.ImportRequest{ID: 2, ImporterID: 99})
	require.Nil(t, imported.Success)
	require.Contains(t, *imported.Error, "unknown importer")

	file := dispatcher.FileImport(ctx, &message.FileImportRequest{ID: 3, ImporterID: 99})
	require.Nil(t, file.FileURL)
	require.Contains(t, *file.Error, "unknown importer")
}

func TestDispatcher_IgnoresNonCallbacks(t *testing.T) {
	resp, ok := newTestDispatcher(NewRegistries()).Dispatch(context.Background(), &message.LogEvent{})
	require.False(t, ok)
	require.Nil(t, resp)
}

func TestDispatcher_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	collector, err := metrics.New(reg)
	require.NoError(t, err)

	registries := NewRegistries()
	imp := stubFor(behaveNull)
	registries.RegisterCustomImporter(imp)

	dispatcher := NewDispatcher(logging.NopLogger(), registries, collector)
	dispatcher.Canonicalize(context.Background(), &message.CanonicalizeRequest{ID: 1, ImporterID: imp.ID()})
	dispatcher.Canonicalize(context.Background(), &message.CanonicalizeRequest{ID: 2, ImporterID: imp.ID() + 1000})

	require.Equal(t, 2, testutil.CollectAndCount(reg, "sass_callbacks_total"))
}

// tracedError renders extra detail under %+v, like errors that carry a stack.
type tracedError struct{}

func (tracedError) Error() string { return "traced failure" }

func (e tracedError) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		fmt.Fprint(f, "traced failure\nmain.load\n\t/src/load.go:12")

		return
	}

	fmt.Fprint(f, e.Error())
}

func TestDispatcher_ErrorDiagnostic(t *testing.T) {
	t.Run("plain error gets a stack trace", func(t *testing.T) {
		registries := NewRegistries()
		imp := stubFor(behaveError)
		registries.RegisterCustomImporter(imp)

		resp := newTestDispatcher(registries).Canonicalize(context.Background(), &message.CanonicalizeRequest{
			ID: 1, ImporterID: imp.ID(), URL: "a",
		})

		require.NotNil(t, resp.Error)
		require.True(t, strings.HasPrefix(*resp.Error, "handler failed\n\nstack trace:"), *resp.Error)
		require.Contains(t, *resp.Error, "(*Dispatcher).Canonicalize")
		require.Contains(t, *resp.Error, "dispatcher.go:")
	})

	t.Run("formatter error keeps its own detail", func(t *testing.T) {
		registries := NewRegistries()
		registries.RegisterFunction(function.MustNew("wrapped()", func(context.Context, []message.Value) (message.Value, error) {
			return nil, fmt.Errorf("wrapped: %w", tracedError{})
		}))
		registries.RegisterFunction(function.MustNew("traced()", func(context.Context, []message.Value) (message.Value, error) {
			return nil, tracedError{}
		}))

		dispatcher := newTestDispatcher(registries)

		resp := dispatcher.FunctionCall(context.Background(), &message.FunctionCallRequest{ID: 1, Name: message.Ptr("traced")})
		require.NotNil(t, resp.Error)
		require.Contains(t, *resp.Error, "main.load\n\t/src/load.go:12")
		require.Contains(t, *resp.Error, "(*Dispatcher).FunctionCall")

		resp = dispatcher.FunctionCall(context.Background(), &message.FunctionCallRequest{ID: 2, Name: message.Ptr("wrapped")})
		require.NotNil(t, resp.Error)
		require.True(t, strings.HasPrefix(*resp.Error, "wrapped: traced failure\n\nstack trace:"), *resp.Error)
	})

	t.Run("panic keeps a single stack", func(t *testing.T) {
		registries := NewRegistries()
		imp := stubFor(behavePanic)
		registries.RegisterCustomImporter(imp)

		resp := newTestDispatcher(registries).Import(context.Background(), &message.ImportRequest{
			ID: 1, ImporterID: imp.ID(), URL: "a",
		})

		require.NotNil(t, resp.Error)
		require.Contains(t, *resp.Error, "panic: handler exploded")
		require.NotContains(t, *resp.Error, "stack trace:")
	})
}

func TestDispatcher_EchoesCompilationID(t *testing.T) {
	registries := NewRegistries()
	custom := stubFor(behaveNull)
	file := fileImporterFor(behaveNull)

	registries.RegisterCustomImporter(custom)
	registries.RegisterFileImporter(file)

	requests := []message.OutboundMessage{
		&message.CanonicalizeRequest{ID: 1, CompilationID: 9, ImporterID: custom.ID(), URL: "a"},
		&message.ImportRequest{ID: 2, CompilationID: 9, ImporterID: custom.ID(), URL: "a"},
		&message.FileImportRequest{ID: 3, CompilationID: 9, ImporterID: file.ID(), URL: "a"},
		&message.FunctionCallRequest{ID: 4, CompilationID: 9, Name: message.Ptr("missing")},
	}

	dispatcher := newTestDispatcher(registries)

	for _, req := range requests {
		resp, ok := dispatcher.Dispatch(context.Background(), req)
		require.True(t, ok)
		require.Equal(t, uint32(9), message.InboundCompilationID(resp), "%T", resp)
	}
}

func TestDispatcher_EntryImporter(t *testing.T) {
	entry := &stubImporter{
		canonicalize: func(url string) (string, error) { return "entry:" + url, nil },
		load:         func(string) (*message.ImportSuccess, error) { return nil, nil },
	}

	registries := NewRegistries()
	dispatcher := newTestDispatcher(registries)
	req := &message.CanonicalizeRequest{ID: 1, ImporterID: entry.ID(), URL: "a"}

	dispatcher.entry = entry

	resp := dispatcher.Canonicalize(context.Background(), req)
	require.Equal(t, "entry:a", *resp.URL)
	require.Empty(t, registries.CustomImporters())

	dispatcher.entry = nil

	resp = dispatcher.Canonicalize(context.Background(), req)
	require.Nil(t, resp.URL)
	require.Contains(t, *resp.Error, "unknown importer")
}
