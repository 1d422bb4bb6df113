package message

import "google.golang.org/protobuf/encoding/protowire"

func encodeSpan(e *encoder, num protowire.Number, s *SourceSpan) {
	if s == nil {
		return
	}

	e.message(num, func(e *encoder) {
		e.string(1, s.Text)
		encodeLocation(e, 2, s.Start)
		encodeLocation(e, 3, s.End)
		e.string(4, s.URL)
		e.string(5, s.Context)
	})
}

func encodeLocation(e *encoder, num protowire.Number, l *SourceLocation) {
	if l == nil {
		return
	}

	e.message(num, func(e *encoder) {
		e.uint32(1, l.Offset)
		e.uint32(2, l.Line)
		e.uint32(3, l.Column)
	})
}

func decodeSpan(b []byte) (*SourceSpan, error) {
	s := &SourceSpan{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			s.Text, err = d.string(typ)
		case 2:
			err = d.sub(typ, func(b []byte) error {
				s.Start, err = decodeLocation(b)

				return err
			})
		case 3:
			err = d.sub(typ, func(b []byte) error {
				s.End, err = decodeLocation(b)

				return err
			})
		case 4:
			s.URL, err = d.string(typ)
		case 5:
			s.Context, err = d.string(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return s, err
}

func decodeLocation(b []byte) (*SourceLocation, error) {
	l := &SourceLocation{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			l.Offset, err = d.uint32(typ)
		case 2:
			l.Line, err = d.uint32(typ)
		case 3:
			l.Column, err = d.uint32(typ)
		default:
			return false, nil
		}

		return true, err
	})

	return l, err
}
