package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sass "github.com/wagiedev/sass-embedded-go"
)

func newVersionCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the host and compiler versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sass-embedded-go %s\n", sass.Version)

			options, err := ro.compilerOptions(cmd, ro.logger(cmd))
			if err != nil {
				return err
			}

			return sass.WithCompiler(cmd.Context(), func(c sass.Compiler) error {
				v, err := c.Version(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "%s %s (protocol %s, compiler %s)\n",
					v.ImplementationName, v.ImplementationVersion, v.ProtocolVersion, v.CompilerVersion)

				return nil
			}, options...)
		},
	}
}
