package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/sass-embedded-go/internal/errors"
)

const (
	// MinimumVersion is the first Dart Sass release with "sass --embedded".
	MinimumVersion = "1.63.0"

	// VersionCheckTimeout is the timeout for the compiler version check command.
	VersionCheckTimeout = 2 * time.Second

	// EnvCompilerPath names the environment variable holding the compiler path.
	EnvCompilerPath = "SASS_EMBEDDED_COMPILER"

	// EnvSkipVersionCheck disables the version check when set.
	EnvSkipVersionCheck = "SASS_EMBEDDED_SKIP_VERSION_CHECK"
)

// binaryNames are looked up in PATH, in order.
var binaryNames = []string{"sass-embedded", "dart-sass-embedded", "sass"}

var versionPattern = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

// Config holds configuration for compiler discovery.
type Config struct {
	// CompilerPath is an explicit compiler path that skips PATH search.
	// If empty, discovery will search the environment, PATH and common locations.
	CompilerPath string

	// SkipVersionCheck skips version validation during discovery.
	// Can also be controlled via the SASS_EMBEDDED_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates and validates the compiler binary.
type Discoverer interface {
	// Discover locates the compiler binary and validates its version.
	// Returns the path to the compiler binary or an error.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new compiler discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &discoverer{
		cfg: cfg,
		log: log.With("component", "discovery"),
	}
}

// Discover locates the compiler binary and validates its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering embedded Sass compiler")

	compilerPath, err := d.findCompiler()
	if err != nil {
		d.log.Error("Failed to find embedded Sass compiler", "error", err)

		return "", err
	}

	d.log.Debug("Found embedded Sass compiler", "compiler_path", compilerPath)

	d.checkVersion(ctx, compilerPath)

	return compilerPath, nil
}

func (d *discoverer) findCompiler() (string, error) {
	// An explicit path is used as-is, without falling back.
	if d.cfg.CompilerPath != "" {
		if _, err := os.Stat(d.cfg.CompilerPath); err == nil {
			return d.cfg.CompilerPath, nil
		}

		return "", &errors.CompilerNotFoundError{SearchedPaths: []string{d.cfg.CompilerPath}}
	}

	searchedPaths := make([]string, 0, 8)

	if envPath := os.Getenv(EnvCompilerPath); envPath != "" {
		d.log.Debug("Using compiler path from environment", "env", EnvCompilerPath, "path", envPath)

		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}

		searchedPaths = append(searchedPaths, "$"+EnvCompilerPath+"="+envPath)
	}

	for _, name := range binaryNames {
		if path, err := exec.LookPath(name); err == nil {
			d.log.Debug("Found compiler in PATH", "name", name, "path", path)

			return path, nil
		}
	}

	searchedPaths = append(searchedPaths, "$PATH")

	for _, path := range commonPaths() {
		searchedPaths = append(searchedPaths, path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found compiler at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Embedded Sass compiler not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.CompilerNotFoundError{SearchedPaths: searchedPaths}
}

func commonPaths() []string {
	dirs := []string{"/usr/local/bin", "/usr/bin"}

	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(homeDir, ".local", "bin"),
			filepath.Join(homeDir, ".pub-cache", "bin"),
		)
	}

	paths := make([]string, 0, len(dirs)*len(binaryNames))

	for _, dir := range dirs {
		for _, name := range binaryNames {
			paths = append(paths, filepath.Join(dir, name))
		}
	}

	return paths
}

// checkVersion warns when a Dart Sass "sass" binary predates embedded mode.
// Errors are logged and otherwise ignored.
func (d *discoverer) checkVersion(ctx context.Context, compilerPath string) {
	if d.cfg.SkipVersionCheck || os.Getenv(EnvSkipVersionCheck) != "" {
		d.log.Debug("Skipping compiler version check")

		return
	}

	if !NeedsEmbeddedFlag(compilerPath) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, compilerPath, "--version").Output()
	if err != nil {
		d.log.Debug("Compiler version check failed", "error", err)

		return
	}

	match := versionPattern.FindStringSubmatch(strings.TrimSpace(string(output)))
	if match == nil {
		d.log.Debug("Could not parse compiler version", "output", string(output))

		return
	}

	version := match[1]
	if compareVersions(version, MinimumVersion) < 0 {
		d.log.Warn("Dart Sass version does not support embedded mode",
			"version", version,
			"minimum_required", MinimumVersion,
		)

		fmt.Fprintf(os.Stderr,
			"Warning: Dart Sass %s does not support --embedded. Minimum required version is %s.\n",
			version, MinimumVersion,
		)
	} else {
		d.log.Debug("Compiler version check passed", "version", version, "minimum", MinimumVersion)
	}
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
