// Package cli provides compiler discovery, version validation, and command
// building for the embedded Sass compiler binary.
//
// # Compiler Discovery
//
// The Discoverer interface locates and validates the compiler binary:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    CompilerPath: "",           // Optional explicit path
//	    Logger:       slog.Default(),
//	})
//	compilerPath, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.CompilerPath (if provided)
//  2. The SASS_EMBEDDED_COMPILER environment variable
//  3. System PATH, for sass-embedded, dart-sass-embedded and sass
//  4. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin, ~/.pub-cache/bin)
//
// # Version Validation
//
// The Dart Sass "sass" binary speaks the embedded protocol only from
// MinimumVersion on. A warning is logged for older versions. Version checking
// can be skipped via Config.SkipVersionCheck or the
// SASS_EMBEDDED_SKIP_VERSION_CHECK environment variable.
//
// # Protocol Selection
//
// SelectProtocol picks the wire dialect for a binary. dart-sass-embedded
// speaks protocol 1; sass and sass-embedded speak protocol 2. An explicit
// choice always wins:
//
//	dialect := cli.SelectProtocol(compilerPath, options.Protocol)
//
// # Command Building
//
//	args := cli.BuildArgs(compilerPath, options)
//	env := cli.BuildEnvironment(options)
package cli
