package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	sass "github.com/wagiedev/sass-embedded-go"
)

type compileOptions struct {
	style     string
	syntax    string
	sourceMap bool
	loadPaths []string
	output    string
}

func newCompileCmd(ro *rootOptions) *cobra.Command {
	co := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <file|url|->",
		Short: "Compile a stylesheet to CSS",
		Long: `Compile a stylesheet to CSS.

The input is a file path, an http(s) or file URL, or "-" to read the
stylesheet from stdin. CSS is written to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, ro, co, args[0])
		},
	}

	cmd.Flags().StringVar(&co.style, "style", "", "Output style: expanded or compressed")
	cmd.Flags().StringVar(&co.syntax, "syntax", "scss", "Syntax of stdin input: scss, sass or css")
	cmd.Flags().BoolVar(&co.sourceMap, "source-map", false, "Write a source map next to --output")
	cmd.Flags().StringSliceVarP(&co.loadPaths, "load-path", "I", nil, "Directory to search for imports (repeatable)")
	cmd.Flags().StringVarP(&co.output, "output", "o", "", "Write CSS to this file instead of stdout")

	return cmd
}

func runCompile(cmd *cobra.Command, ro *rootOptions, co *compileOptions, input string) error {
	var opts []sass.Option

	if cmd.Flags().Changed("style") {
		style, err := sass.ParseOutputStyle(co.style)
		if err != nil {
			return err
		}

		opts = append(opts, sass.WithOutputStyle(style))
	}

	if cmd.Flags().Changed("source-map") {
		opts = append(opts, sass.WithSourceMap(co.sourceMap))
	}

	if len(co.loadPaths) > 0 {
		opts = append(opts, sass.WithLoadPaths(co.loadPaths...))
	}

	syntax, err := sass.ParseSyntax(co.syntax)
	if err != nil {
		return err
	}

	log := ro.logger(cmd)

	options, err := ro.compilerOptions(cmd, log, opts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	return sass.WithCompiler(ctx, func(c sass.Compiler) error {
		result, err := compileInput(ctx, c, input, syntax, cmd.InOrStdin())
		if err != nil {
			return err
		}

		log.Debug("Compiled stylesheet", "input", input, "loaded_urls", len(result.LoadedURLs))

		return writeResult(cmd.OutOrStdout(), co.output, result)
	}, options...)
}

func compileInput(
	ctx context.Context,
	c sass.Compiler,
	input string,
	syntax sass.Syntax,
	stdin io.Reader,
) (*sass.CompileSuccess, error) {
	switch {
	case input == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}

		return c.CompileString(ctx, string(data), syntax)

	case strings.Contains(input, "://"):
		u, err := url.Parse(input)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", input, err)
		}

		return c.CompileURL(ctx, u)

	default:
		return c.CompileFile(ctx, input)
	}
}

// writeResult writes the CSS to output, or to stdout when output is empty.
// A source map is only written alongside an output file.
func writeResult(stdout io.Writer, output string, result *sass.CompileSuccess) error {
	css := result.CSS

	if output == "" {
		_, err := fmt.Fprintln(stdout, css)

		return err
	}

	if result.SourceMap != "" {
		mapPath := output + ".map"

		if err := os.WriteFile(mapPath, []byte(result.SourceMap), 0o644); err != nil {
			return fmt.Errorf("write source map: %w", err)
		}

		css += "\n\n/*# sourceMappingURL=" + filepath.Base(mapPath) + " */"
	}

	if err := os.WriteFile(output, []byte(css+"\n"), 0o644); err != nil {
		return fmt.Errorf("write css: %w", err)
	}

	return nil
}
