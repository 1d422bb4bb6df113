package config

import (
	"github.com/wagiedev/sass-embedded-go/internal/importer"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// CompileOptions are settings for a single compilation.
type CompileOptions struct {
	// Style overrides Options.Style when non-nil.
	Style *message.OutputStyle

	// URL is the canonical URL of string input. Relative loads from the
	// entry stylesheet resolve against it.
	URL string

	// Importer resolves relative loads from string input. It serves this
	// call only and is never added to the compiler's registered importers.
	Importer importer.CustomImporter
}
