package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// legacyEmbeddedName is the standalone compiler that predates protocol 2.
const legacyEmbeddedName = "dart-sass-embedded"

func binaryBase(compilerPath string) string {
	base := strings.ToLower(filepath.Base(compilerPath))

	return strings.TrimSuffix(strings.TrimSuffix(base, ".exe"), ".bat")
}

// NeedsEmbeddedFlag reports whether compilerPath is the Dart Sass "sass"
// binary, which serves the embedded protocol only when passed --embedded.
// Standalone embedded compilers take no such flag.
func NeedsEmbeddedFlag(compilerPath string) bool {
	return binaryBase(compilerPath) == "sass"
}

// SelectProtocol returns the wire dialect to speak with compilerPath. An
// explicit choice wins. Otherwise dart-sass-embedded speaks protocol 1 and
// every other compiler, sass --embedded included, speaks protocol 2.
func SelectProtocol(compilerPath string, requested message.Protocol) message.Protocol {
	if requested != message.ProtocolAuto {
		return requested
	}

	if binaryBase(compilerPath) == legacyEmbeddedName {
		return message.Protocol1
	}

	return message.Protocol2
}

// BuildArgs constructs the compiler command arguments.
func BuildArgs(compilerPath string, options *config.Options) []string {
	args := make([]string, 0, len(options.CompilerArgs)+1)

	if NeedsEmbeddedFlag(compilerPath) {
		args = append(args, "--embedded")
	}

	return append(args, options.CompilerArgs...)
}

// BuildEnvironment constructs the environment variables for the compiler process.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
