package mcp

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/errors"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// Tool names.
const (
	ToolCompileString   = "compile_string"
	ToolCompilerVersion = "compiler_version"
)

// Backend is the compiler the tools run against. *protocol.Session
// satisfies it.
type Backend interface {
	Compile(ctx context.Context, input message.CompileInput, style *message.OutputStyle) (*message.CompileSuccess, error)
	Version(ctx context.Context) (*message.VersionResponse, error)
}

type compileStringArgs struct {
	Source string `json:"source"`
	Syntax string `json:"syntax"`
	Style  string `json:"style"`
}

// RegisterCompilerTools adds the compile_string and compiler_version tools
// backed by backend.
func RegisterCompilerTools(s *ToolServer, backend Backend) {
	s.AddTool(
		NewTool(ToolCompileString, "Compile a Sass, SCSS or CSS stylesheet to CSS.", ObjectSchema(
			map[string]*jsonschema.Schema{
				"source": {Type: "string", Description: "Stylesheet source text."},
				"syntax": EnumSchema("Syntax of source. Defaults to scss.", "scss", "indented", "css"),
				"style":  EnumSchema("Output style. Defaults to expanded.", "expanded", "compressed"),
			},
			"source",
		)),
		compileStringHandler(backend),
	)

	s.AddTool(
		NewTool(ToolCompilerVersion, "Report the version of the connected Sass compiler.", ObjectSchema(nil)),
		func(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			version, err := backend.Version(ctx)
			if err != nil {
				return nil, err
			}

			return TextResult(fmt.Sprintf("%s %s (protocol %s, compiler %s)",
				version.ImplementationName,
				version.ImplementationVersion,
				version.ProtocolVersion,
				version.CompilerVersion,
			)), nil
		},
	)
}

func compileStringHandler(backend Backend) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := ParseArguments[compileStringArgs](req)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		syntax, err := config.ParseSyntax(args.Syntax)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		var style *message.OutputStyle

		if args.Style != "" {
			parsed, err := config.ParseOutputStyle(args.Style)
			if err != nil {
				return ErrorResult(err.Error()), nil
			}

			style = &parsed
		}

		result, err := backend.Compile(ctx, &message.StringInput{Source: args.Source, Syntax: syntax}, style)
		if err != nil {
			// Stylesheet errors are the user's to fix, not a tool failure.
			if compileErr, ok := stderrors.AsType[*errors.CompilationError](err); ok {
				return ErrorResult(compileErr.Error()), nil
			}

			return nil, err
		}

		return TextResult(result.CSS), nil
	}
}
