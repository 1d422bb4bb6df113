package config

import (
	"fmt"
	"strings"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// ParseOutputStyle maps a style name to an output style.
//
// Legacy LibSass names are accepted and normalized:
//   - "nested" -> expanded
//   - "compact" -> compressed
func ParseOutputStyle(name string) (message.OutputStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "expanded", "nested":
		return message.OutputStyleExpanded, nil
	case "compressed", "compact":
		return message.OutputStyleCompressed, nil
	default:
		return message.OutputStyleExpanded, fmt.Errorf("unknown output style %q", name)
	}
}

// ParseSyntax maps a syntax name to a stylesheet syntax. "sass" is accepted
// for the indented syntax; an empty name is SCSS.
func ParseSyntax(name string) (message.Syntax, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "scss":
		return message.SyntaxSCSS, nil
	case "indented", "sass":
		return message.SyntaxIndented, nil
	case "css":
		return message.SyntaxCSS, nil
	default:
		return message.SyntaxSCSS, fmt.Errorf("unknown syntax %q", name)
	}
}
