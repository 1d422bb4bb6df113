package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolServer is a registry of MCP tools that can be called programmatically
// or served to MCP clients.
type ToolServer struct {
	log     *slog.Logger
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*tool
}

// tool holds tool metadata and handler for the internal registry.
type tool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewToolServer creates an empty ToolServer.
func NewToolServer(log *slog.Logger, name, version string) *ToolServer {
	return &ToolServer{
		log:     log.With("component", "mcp"),
		name:    name,
		version: version,
		tools:   make(map[string]*tool, 4),
	}
}

// AddTool registers a tool with the server, replacing any tool of the same name.
func (s *ToolServer) AddTool(t *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools[t.Name] = &tool{tool: t, handler: handler}
}

// Name returns the server name.
func (s *ToolServer) Name() string {
	return s.name
}

// Version returns the server version.
func (s *ToolServer) Version() string {
	return s.version
}

// ListTools returns the registered tools sorted by name.
func (s *ToolServer) ListTools() []*mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, t.tool)
	}

	slices.SortFunc(out, func(a, b *mcp.Tool) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})

	return out
}

// CallTool executes a tool by name. Unknown tools and handler failures are
// reported as error results rather than Go errors, the way an MCP client
// would see them.
func (s *ToolServer) CallTool(ctx context.Context, name string, input map[string]any) *mcp.CallToolResult {
	s.mu.RLock()
	t, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return ErrorResult("Tool not found: " + name)
	}

	inputBytes, err := json.Marshal(input)
	if err != nil {
		return ErrorResult("Failed to marshal input: " + err.Error())
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: inputBytes,
		},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		s.log.Debug("Tool execution failed", "tool", name, "error", err)

		return ErrorResult("Tool execution failed: " + err.Error())
	}

	if result == nil {
		return &mcp.CallToolResult{Content: []mcp.Content{}}
	}

	return result
}

// Server builds an MCP SDK server carrying every registered tool.
func (s *ToolServer) Server() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, &mcp.ServerOptions{
		Logger: s.log,
	})

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		server.AddTool(t.tool, t.handler)
	}

	return server
}

// Run serves the tools over transport until the client disconnects or ctx
// is cancelled.
func (s *ToolServer) Run(ctx context.Context, transport mcp.Transport) error {
	s.log.Info("Serving MCP tools", "tools", len(s.ListTools()))

	if err := s.Server().Run(ctx, transport); err != nil {
		return fmt.Errorf("run mcp server: %w", err)
	}

	return nil
}

// ObjectSchema creates an object schema from its properties. Properties
// named in required must be present.
func ObjectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// EnumSchema creates a string schema restricted to values.
func EnumSchema(description string, values ...string) *jsonschema.Schema {
	enum := make([]any, 0, len(values))
	for _, v := range values {
		enum = append(enum, v)
	}

	return &jsonschema.Schema{Type: "string", Description: description, Enum: enum}
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// NewTool creates an mcp.Tool with the given parameters.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// ParseArguments unmarshals CallToolRequest arguments into a T.
func ParseArguments[T any](req *mcp.CallToolRequest) (T, error) {
	var args T

	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return args, nil
	}

	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return args, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	return args, nil
}
