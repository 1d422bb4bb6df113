package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	sass "github.com/wagiedev/sass-embedded-go"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath   string
	compilerPath string
	protocol     string
	debug        bool

	// extra options are appended last; tests use them to inject a transport.
	extra []sass.Option
}

func newRootCmd(extra ...sass.Option) *cobra.Command {
	ro := &rootOptions{extra: extra}

	cmd := &cobra.Command{
		Use:   "sass-embedded",
		Short: "Compile Sass with the embedded Dart Sass compiler",
		Long: `sass-embedded drives a Dart Sass compiler over the embedded Sass protocol.

The compiler binary is found with --compiler, the SASS_EMBEDDED_COMPILER
environment variable, or a PATH lookup of sass, sass-embedded and
dart-sass-embedded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	cmd.PersistentFlags().StringVar(&ro.configPath, "config", "", "Path to a sass.yaml configuration file")
	cmd.PersistentFlags().StringVar(&ro.compilerPath, "compiler", "", "Path to the embedded Sass compiler binary")
	cmd.PersistentFlags().StringVar(&ro.protocol, "protocol", "",
		"Wire protocol of the compiler: 1, 2 or auto (default: from the binary name)")
	cmd.PersistentFlags().BoolVar(&ro.debug, "debug", false, "Log protocol activity to stderr")

	cmd.AddCommand(
		newCompileCmd(ro),
		newVersionCmd(ro),
		newMCPCmd(ro),
	)

	return cmd
}

// logger writes to the command's stderr so stdout stays clean for CSS and
// MCP traffic.
func (ro *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if ro.debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// compilerOptions assembles the options for a command: logger, then the
// config file, then flags, then opts.
func (ro *rootOptions) compilerOptions(cmd *cobra.Command, log *slog.Logger, opts ...sass.Option) ([]sass.Option, error) {
	out := []sass.Option{
		sass.WithLogger(log),
		sass.WithStderr(func(line string) {
			log.Debug("Compiler stderr", "line", line)
		}),
	}

	if ro.configPath != "" {
		file, err := sass.LoadConfigFile(ro.configPath)
		if err != nil {
			return nil, err
		}

		out = append(out, sass.WithConfigFile(file))
	}

	if ro.compilerPath != "" {
		out = append(out, sass.WithCompilerPath(ro.compilerPath))
	}

	if ro.protocol != "" {
		protocol, err := sass.ParseProtocol(ro.protocol)
		if err != nil {
			return nil, err
		}

		out = append(out, sass.WithProtocol(protocol))
	}

	out = append(out, opts...)
	out = append(out, ro.extra...)

	return out, nil
}
