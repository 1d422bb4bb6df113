package sass

import (
	"context"
	"fmt"
	"log/slog"

	internalmcp "github.com/wagiedev/sass-embedded-go/internal/mcp"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// MCPServer exposes a Compiler to MCP clients as the compile_string and
// compiler_version tools.
//
// Example:
//
//	server := sass.NewMCPServer(compiler, "sass", "1.0.0", log)
//	err := server.Run(ctx, &mcp.StdioTransport{})
type MCPServer = internalmcp.ToolServer

// NewMCPServer creates an MCPServer backed by a started compiler.
// A nil log disables logging.
func NewMCPServer(compiler Compiler, name, version string, log *slog.Logger) *MCPServer {
	if log == nil {
		log = NopLogger()
	}

	server := internalmcp.NewToolServer(log, name, version)
	internalmcp.RegisterCompilerTools(server, compilerBackend{compiler: compiler})

	return server
}

// compilerBackend adapts a Compiler to the tool backend.
type compilerBackend struct {
	compiler Compiler
}

var _ internalmcp.Backend = compilerBackend{}

func (b compilerBackend) Compile(
	ctx context.Context,
	input message.CompileInput,
	style *message.OutputStyle,
) (*message.CompileSuccess, error) {
	var opts []CompileOption
	if style != nil {
		opts = append(opts, WithStyle(*style))
	}

	switch in := input.(type) {
	case *message.StringInput:
		if in.URL != "" {
			opts = append(opts, WithURL(in.URL))
		}

		return b.compiler.CompileString(ctx, in.Source, in.Syntax, opts...)
	case message.PathInput:
		return b.compiler.CompileFile(ctx, string(in), opts...)
	default:
		return nil, fmt.Errorf("unsupported compile input %T", input)
	}
}

func (b compilerBackend) Version(ctx context.Context) (*message.VersionResponse, error) {
	return b.compiler.Version(ctx)
}
