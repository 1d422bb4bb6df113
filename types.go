package sass

import (
	"github.com/wagiedev/sass-embedded-go/internal/config"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// ===== Results =====

// CompileSuccess is the result of a successful compilation.
type CompileSuccess = message.CompileSuccess

// VersionResponse describes the connected compiler.
type VersionResponse = message.VersionResponse

// LogEvent is a warning or debug message emitted during a compilation.
type LogEvent = message.LogEvent

// LogEventType is the kind of a LogEvent.
type LogEventType = message.LogEventType

// SourceSpan is a range of a source file, attached to errors and log events.
type SourceSpan = message.SourceSpan

// SourceLocation is a single point in a source file.
type SourceLocation = message.SourceLocation

// ImportSuccess is the stylesheet a CustomImporter loads.
type ImportSuccess = message.ImportSuccess

// Log event types.
const (
	LogEventWarning            = message.LogEventWarning
	LogEventDeprecationWarning = message.LogEventDeprecationWarning
	LogEventDebug              = message.LogEventDebug
)

// ===== Syntax and Style =====

// Syntax is the syntax of a stylesheet.
type Syntax = message.Syntax

// Stylesheet syntaxes.
const (
	SyntaxSCSS     = message.SyntaxSCSS
	SyntaxIndented = message.SyntaxIndented
	SyntaxCSS      = message.SyntaxCSS
)

// OutputStyle controls the formatting of generated CSS.
type OutputStyle = message.OutputStyle

// Output styles.
const (
	OutputStyleExpanded   = message.OutputStyleExpanded
	OutputStyleCompressed = message.OutputStyleCompressed
)

// Protocol selects the wire dialect spoken with the compiler.
type Protocol = message.Protocol

// Wire dialects.
const (
	ProtocolAuto = message.ProtocolAuto
	Protocol1    = message.Protocol1
	Protocol2    = message.Protocol2
)

// ParseProtocol parses "auto", "1" or "2".
func ParseProtocol(name string) (Protocol, error) {
	return message.ParseProtocol(name)
}

// SyntaxFromPath guesses a stylesheet's syntax from its file extension.
func SyntaxFromPath(path string) Syntax {
	return message.SyntaxFromPath(path)
}

// ParseOutputStyle parses an output style name such as "compressed".
func ParseOutputStyle(name string) (OutputStyle, error) {
	return config.ParseOutputStyle(name)
}

// ===== Values =====

// Value is a SassScript value passed to or returned from a HostFunction.
type Value = message.Value

// String is a SassScript string.
type String = message.String

// Number is a SassScript number with units.
type Number = message.Number

// RGBColor is a SassScript color in RGB.
type RGBColor = message.RGBColor

// HSLColor is a SassScript color in HSL.
type HSLColor = message.HSLColor

// List is a SassScript list.
type List = message.List

// Map is a SassScript map.
type Map = message.Map

// MapEntry is one key-value pair of a Map.
type MapEntry = message.MapEntry

// Singleton is true, false or null.
type Singleton = message.Singleton

// CompilerFunction is a reference to a function defined in a stylesheet.
type CompilerFunction = message.CompilerFunction

// ListSeparator is the separator of a List.
type ListSeparator = message.ListSeparator

// List separators.
const (
	ListSeparatorComma     = message.ListSeparatorComma
	ListSeparatorSpace     = message.ListSeparatorSpace
	ListSeparatorSlash     = message.ListSeparatorSlash
	ListSeparatorUndecided = message.ListSeparatorUndecided
)

// ===== Configuration File =====

// ConfigFile is a parsed sass.yaml configuration file.
type ConfigFile = config.File

// LoadConfigFile reads a sass.yaml configuration file.
func LoadConfigFile(path string) (*ConfigFile, error) {
	return config.LoadFile(path)
}

// ParseSyntax parses a syntax name: "scss", "sass" (or "indented"), "css".
func ParseSyntax(name string) (Syntax, error) {
	return config.ParseSyntax(name)
}
