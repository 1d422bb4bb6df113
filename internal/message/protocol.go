package message

import (
	"fmt"
	"strings"
)

// Protocol selects the wire dialect spoken with the compiler.
//
// Protocol 1 is spoken by the standalone dart-sass-embedded binary: a frame
// is a varint length followed by the payload and every message carries its
// compilation id inside the payload. Protocol 2 is spoken by `sass --embedded`
// (Dart Sass 1.63 and later): the frame holds a varint compilation id before
// the payload and the payload fields that used to carry it are reserved.
type Protocol int

const (
	// ProtocolAuto picks the dialect from the compiler binary name.
	ProtocolAuto Protocol = iota
	// Protocol1 is the length-prefixed dialect of dart-sass-embedded.
	Protocol1
	// Protocol2 is the compilation-id framed dialect of sass --embedded.
	Protocol2
)

// String returns the dialect name accepted by ParseProtocol.
func (p Protocol) String() string {
	switch p {
	case ProtocolAuto:
		return "auto"
	case Protocol1:
		return "1"
	case Protocol2:
		return "2"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// Framed reports whether compilation ids travel in the frame.
func (p Protocol) Framed() bool {
	return p == Protocol2
}

// ParseProtocol parses "auto", "1" or "2". The empty string is ProtocolAuto.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ProtocolAuto, nil
	case "1", "v1":
		return Protocol1, nil
	case "2", "v2":
		return Protocol2, nil
	default:
		return ProtocolAuto, fmt.Errorf("invalid protocol %q: want auto, 1 or 2", s)
	}
}

// InboundCompilationID returns the compilation a host message belongs to.
// Version requests belong to no compilation and report 0.
func InboundCompilationID(m InboundMessage) uint32 {
	switch m := m.(type) {
	case *CompileRequest:
		return m.ID
	case *CanonicalizeResponse:
		return m.CompilationID
	case *ImportResponse:
		return m.CompilationID
	case *FileImportResponse:
		return m.CompilationID
	case *FunctionCallResponse:
		return m.CompilationID
	default:
		return 0
	}
}

// OutboundCompilationID returns the compilation a compiler message belongs
// to. Version responses and protocol errors report 0.
func OutboundCompilationID(m OutboundMessage) uint32 {
	switch m := m.(type) {
	case *CompileResponse:
		return m.ID
	case *LogEvent:
		return m.CompilationID
	case *CanonicalizeRequest:
		return m.CompilationID
	case *ImportRequest:
		return m.CompilationID
	case *FileImportRequest:
		return m.CompilationID
	case *FunctionCallRequest:
		return m.CompilationID
	default:
		return 0
	}
}

// MarshalInboundPacket encodes m for the given dialect and returns the
// compilation id the frame must carry. Under Protocol1 the id is informative
// only; the payload already contains it.
func MarshalInboundPacket(m InboundMessage, p Protocol) (uint32, []byte, error) {
	payload, err := marshalInbound(m, p.Framed())
	if err != nil {
		return 0, nil, err
	}

	return InboundCompilationID(m), payload, nil
}

// UnmarshalOutboundPacket decodes a compiler message read from a frame that
// carried compilationID. Under Protocol2 the id is stamped onto the decoded
// message so callers match responses the same way in both dialects.
func UnmarshalOutboundPacket(compilationID uint32, payload []byte, p Protocol) (OutboundMessage, error) {
	m, err := UnmarshalOutbound(payload)
	if err != nil || m == nil || !p.Framed() {
		return m, err
	}

	switch m := m.(type) {
	case *CompileResponse:
		m.ID = compilationID
	case *LogEvent:
		m.CompilationID = compilationID
	case *CanonicalizeRequest:
		m.CompilationID = compilationID
	case *ImportRequest:
		m.CompilationID = compilationID
	case *FileImportRequest:
		m.CompilationID = compilationID
	case *FunctionCallRequest:
		m.CompilationID = compilationID
	}

	return m, nil
}

// MarshalOutboundPacket is the compiler's side of MarshalInboundPacket and
// is used by test doubles.
func MarshalOutboundPacket(m OutboundMessage, p Protocol) (uint32, []byte, error) {
	payload, err := marshalOutbound(m, p.Framed())
	if err != nil {
		return 0, nil, err
	}

	return OutboundCompilationID(m), payload, nil
}

// UnmarshalInboundPacket is the compiler's side of UnmarshalOutboundPacket
// and is used by test doubles.
func UnmarshalInboundPacket(compilationID uint32, payload []byte, p Protocol) (InboundMessage, error) {
	m, err := UnmarshalInbound(payload)
	if err != nil || !p.Framed() {
		return m, err
	}

	switch m := m.(type) {
	case *CompileRequest:
		m.ID = compilationID
	case *CanonicalizeResponse:
		m.CompilationID = compilationID
	case *ImportResponse:
		m.CompilationID = compilationID
	case *FileImportResponse:
		m.CompilationID = compilationID
	case *FunctionCallResponse:
		m.CompilationID = compilationID
	}

	return m, nil
}
