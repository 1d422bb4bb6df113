package message

// InboundMessage is a message sent from the host to the compiler.
// Use a type switch to determine the concrete type.
type InboundMessage interface {
	inboundMessage()
}

// OutboundMessage is a message sent from the compiler to the host.
// Use a type switch to determine the concrete type.
type OutboundMessage interface {
	outboundMessage()
}

// Compile-time verification that all message types implement their sum type.
var (
	_ InboundMessage = (*CompileRequest)(nil)
	_ InboundMessage = (*CanonicalizeResponse)(nil)
	_ InboundMessage = (*ImportResponse)(nil)
	_ InboundMessage = (*FileImportResponse)(nil)
	_ InboundMessage = (*FunctionCallResponse)(nil)
	_ InboundMessage = (*VersionRequest)(nil)

	_ OutboundMessage = (*ProtocolError)(nil)
	_ OutboundMessage = (*CompileResponse)(nil)
	_ OutboundMessage = (*LogEvent)(nil)
	_ OutboundMessage = (*CanonicalizeRequest)(nil)
	_ OutboundMessage = (*ImportRequest)(nil)
	_ OutboundMessage = (*FileImportRequest)(nil)
	_ OutboundMessage = (*FunctionCallRequest)(nil)
	_ OutboundMessage = (*VersionResponse)(nil)
)

// OutputStyle controls how the compiler formats CSS output.
type OutputStyle int32

const (
	// OutputStyleExpanded writes each selector and declaration on its own line.
	OutputStyleExpanded OutputStyle = 0
	// OutputStyleCompressed removes as many extra characters as possible.
	OutputStyleCompressed OutputStyle = 1
)

// String returns the lower-case style name.
func (s OutputStyle) String() string {
	switch s {
	case OutputStyleExpanded:
		return "expanded"
	case OutputStyleCompressed:
		return "compressed"
	default:
		return "unknown"
	}
}

// Syntax is the syntax of a stylesheet.
type Syntax int32

const (
	// SyntaxSCSS is the CSS-superset .scss syntax.
	SyntaxSCSS Syntax = 0
	// SyntaxIndented is the indented .sass syntax.
	SyntaxIndented Syntax = 1
	// SyntaxCSS is plain CSS.
	SyntaxCSS Syntax = 2
)

// String returns the lower-case syntax name.
func (s Syntax) String() string {
	switch s {
	case SyntaxSCSS:
		return "scss"
	case SyntaxIndented:
		return "indented"
	case SyntaxCSS:
		return "css"
	default:
		return "unknown"
	}
}

// LogEventType is the kind of a LogEvent.
type LogEventType int32

const (
	LogEventWarning            LogEventType = 0
	LogEventDeprecationWarning LogEventType = 1
	LogEventDebug              LogEventType = 2
)

// String returns the event type name.
func (t LogEventType) String() string {
	switch t {
	case LogEventWarning:
		return "warning"
	case LogEventDeprecationWarning:
		return "deprecation_warning"
	case LogEventDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ProtocolErrorType classifies a ProtocolError.
type ProtocolErrorType int32

const (
	ProtocolErrorParse    ProtocolErrorType = 0
	ProtocolErrorParams   ProtocolErrorType = 1
	ProtocolErrorInternal ProtocolErrorType = 2
)

// String returns the error type name.
func (t ProtocolErrorType) String() string {
	switch t {
	case ProtocolErrorParse:
		return "parse"
	case ProtocolErrorParams:
		return "params"
	case ProtocolErrorInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// SourceLocation is a single point in a source file.
type SourceLocation struct {
	Offset uint32
	Line   uint32
	Column uint32
}

// SourceSpan is a chunk of a source file.
type SourceSpan struct {
	Text    string
	Start   *SourceLocation
	End     *SourceLocation
	URL     string
	Context string
}

// ===== Inbound =====

// VersionRequest asks the compiler for its version information.
type VersionRequest struct {
	ID uint32
}

func (*VersionRequest) inboundMessage() {}

// CompileInput is the entry point of a compilation: either a *StringInput or a PathInput.
type CompileInput interface {
	compileInput()
}

// StringInput is an inline stylesheet.
type StringInput struct {
	Source string
	// URL is the location the stylesheet was loaded from, if any.
	URL    string
	Syntax Syntax
	// Importer resolves relative loads from this stylesheet. Optional.
	Importer *Importer
}

func (*StringInput) compileInput() {}

// PathInput is the absolute or relative path of a stylesheet on disk.
type PathInput string

func (PathInput) compileInput() {}

// ImporterKind selects which field of an Importer is meaningful.
type ImporterKind int

const (
	// ImporterPath is a load path directory.
	ImporterPath ImporterKind = iota + 1
	// ImporterCustom is a host custom importer identified by ID.
	ImporterCustom
	// ImporterFile is a host file importer identified by ID.
	ImporterFile
)

// Importer describes one import resolver made available to a compilation.
type Importer struct {
	Kind ImporterKind
	Path string
	ID   uint32
}

// LoadPathImporter returns an Importer for a load path directory.
func LoadPathImporter(path string) *Importer {
	return &Importer{Kind: ImporterPath, Path: path}
}

// CustomImporterRef returns an Importer referring to a host custom importer.
func CustomImporterRef(id uint32) *Importer {
	return &Importer{Kind: ImporterCustom, ID: id}
}

// FileImporterRef returns an Importer referring to a host file importer.
func FileImporterRef(id uint32) *Importer {
	return &Importer{Kind: ImporterFile, ID: id}
}

// CompileRequest asks the compiler to compile a stylesheet.
type CompileRequest struct {
	ID                      uint32
	Input                   CompileInput
	Style                   OutputStyle
	SourceMap               bool
	Importers               []*Importer
	GlobalFunctions         []string
	AlertColor              bool
	AlertASCII              bool
	Verbose                 bool
	QuietDeps               bool
	SourceMapIncludeSources bool
}

func (*CompileRequest) inboundMessage() {}

// CanonicalizeResponse answers a CanonicalizeRequest.
// At most one of URL and Error is set; neither means "not handled".
type CanonicalizeResponse struct {
	ID uint32
	// CompilationID is framed outside the payload under protocol 2.
	CompilationID uint32
	URL           *string
	Error         *string
}

func (*CanonicalizeResponse) inboundMessage() {}

// ImportSuccess is the content of a successfully loaded stylesheet.
type ImportSuccess struct {
	Contents     string
	Syntax       Syntax
	SourceMapURL string
}

// ImportResponse answers an ImportRequest.
// At most one of Success and Error is set; neither means "not handled".
type ImportResponse struct {
	ID uint32
	// CompilationID is framed outside the payload under protocol 2.
	CompilationID uint32
	Success       *ImportSuccess
	Error         *string
}

func (*ImportResponse) inboundMessage() {}

// FileImportResponse answers a FileImportRequest.
// At most one of FileURL and Error is set; neither means "not found".
type FileImportResponse struct {
	ID uint32
	// CompilationID is framed outside the payload under protocol 2.
	CompilationID uint32
	FileURL       *string
	Error         *string
}

func (*FileImportResponse) inboundMessage() {}

// FunctionCallResponse answers a FunctionCallRequest.
type FunctionCallResponse struct {
	ID uint32
	// CompilationID is framed outside the payload under protocol 2.
	CompilationID uint32
	Success       Value
	Error         *string
}

func (*FunctionCallResponse) inboundMessage() {}

// ===== Outbound =====

// ProtocolError reports that the compiler cannot continue because the host
// sent something it could not handle.
type ProtocolError struct {
	Type    ProtocolErrorType
	ID      uint32
	Message string
}

func (*ProtocolError) outboundMessage() {}

// CompileSuccess is the result of a successful compilation.
type CompileSuccess struct {
	CSS        string
	SourceMap  string
	LoadedURLs []string
}

// CompileFailure is the result of a failed compilation.
type CompileFailure struct {
	Message    string
	Span       *SourceSpan
	StackTrace string
	Formatted  string
}

// CompileResponse answers a CompileRequest with exactly one of Success or Failure.
type CompileResponse struct {
	ID      uint32
	Success *CompileSuccess
	Failure *CompileFailure
}

func (*CompileResponse) outboundMessage() {}

// LogEvent is a warning or debug message emitted during compilation.
type LogEvent struct {
	CompilationID uint32
	Type          LogEventType
	Message       string
	Span          *SourceSpan
	StackTrace    string
	Formatted     string
}

func (*LogEvent) outboundMessage() {}

// CanonicalizeRequest asks a custom importer to canonicalize a URL.
type CanonicalizeRequest struct {
	ID            uint32
	CompilationID uint32
	ImporterID    uint32
	URL           string
	FromImport    bool
}

func (*CanonicalizeRequest) outboundMessage() {}

// ImportRequest asks a custom importer to load a canonical URL.
type ImportRequest struct {
	ID            uint32
	CompilationID uint32
	ImporterID    uint32
	URL           string
}

func (*ImportRequest) outboundMessage() {}

// FileImportRequest asks a file importer to resolve a URL to a file.
type FileImportRequest struct {
	ID            uint32
	CompilationID uint32
	ImporterID    uint32
	URL           string
	FromImport    bool
}

func (*FileImportRequest) outboundMessage() {}

// FunctionCallRequest asks the host to invoke a host function.
// Exactly one of Name and FunctionID identifies the function; both nil
// means the compiler sent no identifier.
type FunctionCallRequest struct {
	ID            uint32
	CompilationID uint32
	Name          *string
	FunctionID    *uint32
	Arguments     []Value
}

func (*FunctionCallRequest) outboundMessage() {}

// VersionResponse carries version information about the compiler.
type VersionResponse struct {
	ID                    uint32
	ProtocolVersion       string
	CompilerVersion       string
	ImplementationVersion string
	ImplementationName    string
}

func (*VersionResponse) outboundMessage() {}

// Ptr returns a pointer to v. It keeps optional-field literals short.
func Ptr[T any](v T) *T {
	return &v
}
