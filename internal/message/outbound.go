package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MarshalOutbound encodes an OutboundMessage envelope in the protocol 1
// layout. It is the compiler's side of the codec and is used by test doubles.
func MarshalOutbound(m OutboundMessage) ([]byte, error) {
	return marshalOutbound(m, false)
}

// marshalOutbound encodes m. When framed is set the compilation id fields are
// left to the frame and loaded URLs move to CompileResponse.loaded_urls.
func marshalOutbound(m OutboundMessage, framed bool) ([]byte, error) {
	var e encoder

	// Compilation ids inside the payload are reserved under protocol 2.
	compilationID := func(e *encoder, num protowire.Number, v uint32) {
		if !framed {
			e.uint32(num, v)
		}
	}

	switch m := m.(type) {
	case *ProtocolError:
		e.message(1, func(e *encoder) {
			e.enum(1, int32(m.Type))
			e.uint32(2, m.ID)
			e.string(3, m.Message)
		})
	case *CompileResponse:
		e.message(2, func(e *encoder) {
			if !framed {
				e.uint32(1, m.ID)
			}

			switch {
			case m.Success != nil:
				e.message(2, func(e *encoder) {
					e.string(1, m.Success.CSS)
					e.string(2, m.Success.SourceMap)

					if !framed {
						e.strings(3, m.Success.LoadedURLs)
					}
				})
			case m.Failure != nil:
				e.message(3, func(e *encoder) {
					e.string(1, m.Failure.Message)
					encodeSpan(e, 2, m.Failure.Span)
					e.string(3, m.Failure.StackTrace)
					e.string(4, m.Failure.Formatted)
				})
			}

			if framed && m.Success != nil {
				e.strings(4, m.Success.LoadedURLs)
			}
		})
	case *LogEvent:
		e.message(3, func(e *encoder) {
			compilationID(e, 1, m.CompilationID)
			e.enum(2, int32(m.Type))
			e.string(3, m.Message)
			encodeSpan(e, 4, m.Span)
			e.string(5, m.StackTrace)
			e.string(6, m.Formatted)
		})
	case *CanonicalizeRequest:
		e.message(4, func(e *encoder) {
			e.uint32(1, m.ID)
			compilationID(e, 2, m.CompilationID)
			e.uint32(3, m.ImporterID)
			e.string(4, m.URL)
			e.bool(5, m.FromImport)
		})
	case *ImportRequest:
		e.message(5, func(e *encoder) {
			e.uint32(1, m.ID)
			compilationID(e, 2, m.CompilationID)
			e.uint32(3, m.ImporterID)
			e.string(4, m.URL)
		})
	case *FileImportRequest:
		e.message(6, func(e *encoder) {
			e.uint32(1, m.ID)
			compilationID(e, 2, m.CompilationID)
			e.uint32(3, m.ImporterID)
			e.string(4, m.URL)
			e.bool(5, m.FromImport)
		})
	case *FunctionCallRequest:
		e.message(7, func(e *encoder) {
			e.uint32(1, m.ID)
			compilationID(e, 2, m.CompilationID)

			switch {
			case m.Name != nil:
				e.mustString(3, *m.Name)
			case m.FunctionID != nil:
				e.mustUint32(4, *m.FunctionID)
			}

			for _, arg := range m.Arguments {
				e.message(5, func(e *encoder) { encodeValue(e, arg) })
			}
		})
	case *VersionResponse:
		e.message(8, func(e *encoder) {
			e.string(1, m.ProtocolVersion)
			e.string(2, m.CompilerVersion)
			e.string(3, m.ImplementationVersion)
			e.string(4, m.ImplementationName)
			e.uint32(5, m.ID)
		})
	case nil:
		return nil, fmt.Errorf("marshal outbound: nil message")
	default:
		return nil, fmt.Errorf("marshal outbound: unsupported type %T", m)
	}

	if e.err != nil {
		return nil, fmt.Errorf("marshal outbound: %w", e.err)
	}

	return e.b, nil
}

// UnmarshalOutbound decodes an OutboundMessage envelope. A well-formed
// envelope whose variant is unset or unknown decodes to (nil, nil); callers
// treat that as a protocol violation.
func UnmarshalOutbound(b []byte) (OutboundMessage, error) {
	var out OutboundMessage

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var (
			m   OutboundMessage
			err error
		)

		switch num {
		case 1:
			err = d.sub(typ, func(b []byte) error {
				m, err = decodeProtocolError(b)

				return err
			})
		case 2:
			err = d.sub(typ, func(b []byte) error {
				m, err = decodeCompileResponse(b)

				return err
			})
		case 3:
			err = d.sub(typ, func(b []byte) error {
				m, err = decodeLogEvent(b)

				return err
			})
		case 4:
			err = d.sub(typ, func(b []byte) error {
				r := &CanonicalizeRequest{}
				m = r

				return decodeImporterRequest(b, &r.ID, &r.CompilationID, &r.ImporterID, &r.URL, &r.FromImport)
			})
		case 5:
			err = d.sub(typ, func(b []byte) error {
				r := &ImportRequest{}
				m = r

				return decodeImporterRequest(b, &r.ID, &r.CompilationID, &r.ImporterID, &r.URL, nil)
			})
		case 6:
			err = d.sub(typ, func(b []byte) error {
				r := &FileImportRequest{}
				m = r

				return decodeImporterRequest(b, &r.ID, &r.CompilationID, &r.ImporterID, &r.URL, &r.FromImport)
			})
		case 7:
			err = d.sub(typ, func(b []byte) error {
				m, err = decodeFunctionCallRequest(b)

				return err
			})
		case 8:
			err = d.sub(typ, func(b []byte) error {
				m, err = decodeVersionResponse(b)

				return err
			})
		default:
			return false, nil
		}

		out = m

		return true, err
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal outbound: %w", err)
	}

	return out, nil
}

func decodeProtocolError(b []byte) (*ProtocolError, error) {
	m := &ProtocolError{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			var v int32

			v, err = d.int32(typ)
			m.Type = ProtocolErrorType(v)
		case 2:
			m.ID, err = d.uint32(typ)
		case 3:
			m.Message, err = d.string(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return m, err
}

func decodeCompileResponse(b []byte) (*CompileResponse, error) {
	var (
		m          = &CompileResponse{}
		loadedURLs []string
	)

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			m.ID, err = d.uint32(typ)
		case 2:
			err = d.sub(typ, func(b []byte) error {
				s, err := decodeCompileSuccess(b)
				m.Success, m.Failure = s, nil

				return err
			})
		case 3:
			err = d.sub(typ, func(b []byte) error {
				f, err := decodeCompileFailure(b)
				m.Success, m.Failure = nil, f

				return err
			})
		case 4:
			var u string

			u, err = d.string(typ)
			loadedURLs = append(loadedURLs, u)
		default:
			return false, nil
		}

		return true, err
	})

	// Protocol 2 reports loaded URLs beside the result rather than inside it.
	if m.Success != nil {
		m.Success.LoadedURLs = append(m.Success.LoadedURLs, loadedURLs...)
	}

	return m, err
}

func decodeCompileSuccess(b []byte) (*CompileSuccess, error) {
	s := &CompileSuccess{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			s.CSS, err = d.string(typ)
		case 2:
			s.SourceMap, err = d.string(typ)
		case 3:
			var u string

			u, err = d.string(typ)
			s.LoadedURLs = append(s.LoadedURLs, u)
		default:
			return false, nil
		}

		return true, err
	})

	return s, err
}

func decodeCompileFailure(b []byte) (*CompileFailure, error) {
	f := &CompileFailure{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			f.Message, err = d.string(typ)
		case 2:
			err = d.sub(typ, func(b []byte) error {
				f.Span, err = decodeSpan(b)

				return err
			})
		case 3:
			f.StackTrace, err = d.string(typ)
		case 4:
			f.Formatted, err = d.string(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return f, err
}

func decodeLogEvent(b []byte) (*LogEvent, error) {
	m := &LogEvent{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			m.CompilationID, err = d.uint32(typ)
		case 2:
			var v int32

			v, err = d.int32(typ)
			m.Type = LogEventType(v)
		case 3:
			m.Message, err = d.string(typ)
		case 4:
			err = d.sub(typ, func(b []byte) error {
				m.Span, err = decodeSpan(b)

				return err
			})
		case 5:
			m.StackTrace, err = d.string(typ)
		case 6:
			m.Formatted, err = d.string(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return m, err
}

// decodeImporterRequest decodes the fields shared by the three importer
// requests. fromImport may be nil for requests that do not carry it.
func decodeImporterRequest(b []byte, id, compilationID, importerID *uint32, url *string, fromImport *bool) error {
	return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch {
		case num == 1:
			*id, err = d.uint32(typ)
		case num == 2:
			*compilationID, err = d.uint32(typ)
		case num == 3:
			*importerID, err = d.uint32(typ)
		case num == 4:
			*url, err = d.string(typ)
		case num == 5 && fromImport != nil:
			*fromImport, err = d.bool(typ)
		default:
			return false, nil
		}

		return true, err
	})
}

func decodeFunctionCallRequest(b []byte) (*FunctionCallRequest, error) {
	m := &FunctionCallRequest{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			m.ID, err = d.uint32(typ)
		case 2:
			m.CompilationID, err = d.uint32(typ)
		case 3:
			var s string

			s, err = d.string(typ)
			m.Name, m.FunctionID = &s, nil
		case 4:
			var v uint32

			v, err = d.uint32(typ)
			m.Name, m.FunctionID = nil, &v
		case 5:
			err = d.sub(typ, func(b []byte) error {
				v, err := decodeValue(b)
				m.Arguments = append(m.Arguments, v)

				return err
			})
		default:
			return false, nil
		}

		return true, err
	})

	return m, err
}

func decodeVersionResponse(b []byte) (*VersionResponse, error) {
	m := &VersionResponse{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			m.ProtocolVersion, err = d.string(typ)
		case 2:
			m.CompilerVersion, err = d.string(typ)
		case 3:
			m.ImplementationVersion, err = d.string(typ)
		case 4:
			m.ImplementationName, err = d.string(typ)
		case 5:
			m.ID, err = d.uint32(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return m, err
}
