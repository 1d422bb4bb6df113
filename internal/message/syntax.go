package message

import (
	"path/filepath"
	"strings"
)

// SyntaxFromPath guesses the syntax of a stylesheet from its file extension.
// Unknown extensions are treated as SCSS.
func SyntaxFromPath(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sass":
		return SyntaxIndented
	case ".css":
		return SyntaxCSS
	default:
		return SyntaxSCSS
	}
}
