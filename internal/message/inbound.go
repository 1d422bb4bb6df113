package message

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrEmptyMessage is returned when a decoded envelope selects no known variant.
var ErrEmptyMessage = errors.New("message has no recognised variant")

// MarshalInbound encodes an InboundMessage envelope in the protocol 1 layout,
// where compilation ids travel inside the payload.
func MarshalInbound(m InboundMessage) ([]byte, error) {
	return marshalInbound(m, false)
}

// marshalInbound encodes m. When framed is set the compilation id is carried
// by the frame and the reserved CompileRequest.id field is left out.
func marshalInbound(m InboundMessage, framed bool) ([]byte, error) {
	var e encoder

	switch m := m.(type) {
	case *CompileRequest:
		e.message(2, func(e *encoder) { encodeCompileRequest(e, m, framed) })
	case *CanonicalizeResponse:
		e.message(3, func(e *encoder) {
			e.uint32(1, m.ID)

			switch {
			case m.URL != nil:
				e.mustString(2, *m.URL)
			case m.Error != nil:
				e.mustString(3, *m.Error)
			}
		})
	case *ImportResponse:
		e.message(4, func(e *encoder) {
			e.uint32(1, m.ID)

			switch {
			case m.Success != nil:
				e.message(2, func(e *encoder) {
					e.string(1, m.Success.Contents)
					e.enum(2, int32(m.Success.Syntax))
					e.string(3, m.Success.SourceMapURL)
				})
			case m.Error != nil:
				e.mustString(3, *m.Error)
			}
		})
	case *FileImportResponse:
		e.message(5, func(e *encoder) {
			e.uint32(1, m.ID)

			switch {
			case m.FileURL != nil:
				e.mustString(2, *m.FileURL)
			case m.Error != nil:
				e.mustString(3, *m.Error)
			}
		})
	case *FunctionCallResponse:
		e.message(6, func(e *encoder) {
			e.uint32(1, m.ID)

			switch {
			case m.Error != nil:
				e.mustString(3, *m.Error)
			default:
				e.message(2, func(e *encoder) { encodeValue(e, m.Success) })
			}
		})
	case *VersionRequest:
		e.message(7, func(e *encoder) { e.uint32(1, m.ID) })
	case nil:
		return nil, fmt.Errorf("marshal inbound: nil message")
	default:
		return nil, fmt.Errorf("marshal inbound: unsupported type %T", m)
	}

	if e.err != nil {
		return nil, fmt.Errorf("marshal inbound: %w", e.err)
	}

	return e.b, nil
}

func encodeCompileRequest(e *encoder, m *CompileRequest, framed bool) {
	if !framed {
		e.uint32(1, m.ID)
	}

	switch in := m.Input.(type) {
	case *StringInput:
		e.message(2, func(e *encoder) {
			e.string(1, in.Source)
			e.string(2, in.URL)
			e.enum(3, int32(in.Syntax))

			if in.Importer != nil {
				e.message(4, func(e *encoder) { encodeImporter(e, in.Importer) })
			}
		})
	case PathInput:
		e.mustString(3, string(in))
	case nil:
		e.fail(fmt.Errorf("compile request %d has no input", m.ID))
	default:
		e.fail(fmt.Errorf("unsupported compile input %T", in))
	}

	e.enum(4, int32(m.Style))
	e.bool(5, m.SourceMap)

	for _, imp := range m.Importers {
		e.message(6, func(e *encoder) { encodeImporter(e, imp) })
	}

	e.strings(7, m.GlobalFunctions)
	e.bool(8, m.AlertColor)
	e.bool(9, m.AlertASCII)
	e.bool(10, m.Verbose)
	e.bool(11, m.QuietDeps)
	e.bool(12, m.SourceMapIncludeSources)
}

func encodeImporter(e *encoder, imp *Importer) {
	if imp == nil {
		e.fail(fmt.Errorf("nil importer"))

		return
	}

	switch imp.Kind {
	case ImporterPath:
		e.mustString(1, imp.Path)
	case ImporterCustom:
		e.mustUint32(2, imp.ID)
	case ImporterFile:
		e.mustUint32(3, imp.ID)
	default:
		e.fail(fmt.Errorf("invalid importer kind %d", imp.Kind))
	}
}

// UnmarshalInbound decodes an InboundMessage envelope. It is the compiler's
// side of the codec and is used by test doubles.
func UnmarshalInbound(b []byte) (InboundMessage, error) {
	var out InboundMessage

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 2:
			err = d.sub(typ, func(b []byte) error {
				m, err := decodeCompileRequest(b)
				out = m

				return err
			})
		case 3:
			err = d.sub(typ, func(b []byte) error {
				m := &CanonicalizeResponse{}
				out = m

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var (
						s   string
						err error
					)

					switch num {
					case 1:
						m.ID, err = d.uint32(typ)
					case 2:
						s, err = d.string(typ)
						m.URL, m.Error = &s, nil
					case 3:
						s, err = d.string(typ)
						m.URL, m.Error = nil, &s
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 4:
			err = d.sub(typ, func(b []byte) error {
				m := &ImportResponse{}
				out = m

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var err error

					switch num {
					case 1:
						m.ID, err = d.uint32(typ)
					case 2:
						err = d.sub(typ, func(b []byte) error {
							s, err := decodeImportSuccess(b)
							m.Success, m.Error = s, nil

							return err
						})
					case 3:
						var s string

						s, err = d.string(typ)
						m.Success, m.Error = nil, &s
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 5:
			err = d.sub(typ, func(b []byte) error {
				m := &FileImportResponse{}
				out = m

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var (
						s   string
						err error
					)

					switch num {
					case 1:
						m.ID, err = d.uint32(typ)
					case 2:
						s, err = d.string(typ)
						m.FileURL, m.Error = &s, nil
					case 3:
						s, err = d.string(typ)
						m.FileURL, m.Error = nil, &s
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 6:
			err = d.sub(typ, func(b []byte) error {
				m := &FunctionCallResponse{}
				out = m

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var err error

					switch num {
					case 1:
						m.ID, err = d.uint32(typ)
					case 2:
						err = d.sub(typ, func(b []byte) error {
							v, err := decodeValue(b)
							m.Success, m.Error = v, nil

							return err
						})
					case 3:
						var s string

						s, err = d.string(typ)
						m.Success, m.Error = nil, &s
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 7:
			err = d.sub(typ, func(b []byte) error {
				m := &VersionRequest{}
				out = m

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					if num != 1 {
						return false, nil
					}

					var err error

					m.ID, err = d.uint32(typ)

					return true, err
				})
			})
		default:
			return false, nil
		}

		return true, err
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal inbound: %w", err)
	}

	if out == nil {
		return nil, ErrEmptyMessage
	}

	return out, nil
}

func decodeImportSuccess(b []byte) (*ImportSuccess, error) {
	s := &ImportSuccess{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			s.Contents, err = d.string(typ)
		case 2:
			var v int32

			v, err = d.int32(typ)
			s.Syntax = Syntax(v)
		case 3:
			s.SourceMapURL, err = d.string(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return s, err
}

func decodeCompileRequest(b []byte) (*CompileRequest, error) {
	m := &CompileRequest{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var (
			err error
			v   int32
			s   string
		)

		switch num {
		case 1:
			m.ID, err = d.uint32(typ)
		case 2:
			err = d.sub(typ, func(b []byte) error {
				in, err := decodeStringInput(b)
				m.Input = in

				return err
			})
		case 3:
			s, err = d.string(typ)
			m.Input = PathInput(s)
		case 4:
			v, err = d.int32(typ)
			m.Style = OutputStyle(v)
		case 5:
			m.SourceMap, err = d.bool(typ)
		case 6:
			err = d.sub(typ, func(b []byte) error {
				imp, err := decodeImporter(b)
				m.Importers = append(m.Importers, imp)

				return err
			})
		case 7:
			s, err = d.string(typ)
			m.GlobalFunctions = append(m.GlobalFunctions, s)
		case 8:
			m.AlertColor, err = d.bool(typ)
		case 9:
			m.AlertASCII, err = d.bool(typ)
		case 10:
			m.Verbose, err = d.bool(typ)
		case 11:
			m.QuietDeps, err = d.bool(typ)
		case 12:
			m.SourceMapIncludeSources, err = d.bool(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return m, err
}

func decodeStringInput(b []byte) (*StringInput, error) {
	in := &StringInput{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			in.Source, err = d.string(typ)
		case 2:
			in.URL, err = d.string(typ)
		case 3:
			var v int32

			v, err = d.int32(typ)
			in.Syntax = Syntax(v)
		case 4:
			err = d.sub(typ, func(b []byte) error {
				in.Importer, err = decodeImporter(b)

				return err
			})
		default:
			return false, nil
		}

		return true, err
	})

	return in, err
}

func decodeImporter(b []byte) (*Importer, error) {
	imp := &Importer{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			imp.Kind = ImporterPath
			imp.Path, err = d.string(typ)
		case 2:
			imp.Kind = ImporterCustom
			imp.ID, err = d.uint32(typ)
		case 3:
			imp.Kind = ImporterFile
			imp.ID, err = d.uint32(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return imp, err
}
