// Package mcp exposes a running Sass compiler as Model Context Protocol tools.
//
// The ToolServer keeps its own tool registry so tools can be invoked
// directly (CallTool) as well as served to MCP clients over any transport
// supported by the official MCP SDK, typically stdio.
package mcp
