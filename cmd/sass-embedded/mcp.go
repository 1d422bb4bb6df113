package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	sass "github.com/wagiedev/sass-embedded-go"
)

func newMCPCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts a compiler and serves it as an MCP server over stdio.
This allows AI agents to compile stylesheets with the compile_string and
compiler_version tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := ro.logger(cmd)

			options, err := ro.compilerOptions(cmd, log)
			if err != nil {
				return err
			}

			return sass.WithCompiler(cmd.Context(), func(c sass.Compiler) error {
				log.Info("Starting MCP server (stdio)", "session_id", c.ID())

				server := sass.NewMCPServer(c, "sass-embedded", sass.Version, log)

				return server.Run(cmd.Context(), &mcp.StdioTransport{})
			}, options...)
		},
	}
}
