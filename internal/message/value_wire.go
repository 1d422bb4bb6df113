package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

func encodeValue(e *encoder, v Value) {
	switch v := v.(type) {
	case *String:
		e.message(1, func(e *encoder) {
			e.string(1, v.Text)
			e.bool(2, v.Quoted)
		})
	case *Number:
		e.message(2, func(e *encoder) {
			e.double(1, v.Value)
			e.strings(2, v.Numerators)
			e.strings(3, v.Denominators)
		})
	case *RGBColor:
		e.message(3, func(e *encoder) {
			e.uint32(1, v.Red)
			e.uint32(2, v.Green)
			e.uint32(3, v.Blue)
			e.double(4, v.Alpha)
		})
	case *HSLColor:
		e.message(4, func(e *encoder) {
			e.double(1, v.Hue)
			e.double(2, v.Saturation)
			e.double(3, v.Lightness)
			e.double(4, v.Alpha)
		})
	case *List:
		e.message(5, func(e *encoder) {
			e.enum(1, int32(v.Separator))
			e.bool(2, v.HasBrackets)

			for _, item := range v.Contents {
				e.message(3, func(e *encoder) { encodeValue(e, item) })
			}
		})
	case *Map:
		e.message(6, func(e *encoder) {
			for _, entry := range v.Entries {
				e.message(1, func(e *encoder) {
					e.message(1, func(e *encoder) { encodeValue(e, entry.Key) })
					e.message(2, func(e *encoder) { encodeValue(e, entry.Value) })
				})
			}
		})
	case Singleton:
		e.mustEnum(7, int32(v))
	case *CompilerFunction:
		e.message(8, func(e *encoder) {
			e.uint32(1, v.ID)
		})
	case *HostFunction:
		e.message(9, func(e *encoder) {
			e.uint32(1, v.ID)
			e.string(2, v.Signature)
		})
	case nil:
		e.fail(fmt.Errorf("nil value"))
	default:
		e.fail(fmt.Errorf("unsupported value type %T", v))
	}
}

// decodeValue decodes a Value message. Variants the host does not model
// (argument lists, newer color spaces) decode to nil.
func decodeValue(b []byte) (Value, error) {
	var out Value

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			err = d.sub(typ, func(b []byte) error {
				s := &String{}
				out = s

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var err error

					switch num {
					case 1:
						s.Text, err = d.string(typ)
					case 2:
						s.Quoted, err = d.bool(typ)
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 2:
			err = d.sub(typ, func(b []byte) error {
				n := &Number{}
				out = n

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var (
						s   string
						err error
					)

					switch num {
					case 1:
						n.Value, err = d.double(typ)
					case 2:
						s, err = d.string(typ)
						n.Numerators = append(n.Numerators, s)
					case 3:
						s, err = d.string(typ)
						n.Denominators = append(n.Denominators, s)
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 3:
			err = d.sub(typ, func(b []byte) error {
				c := &RGBColor{}
				out = c

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var err error

					switch num {
					case 1:
						c.Red, err = d.uint32(typ)
					case 2:
						c.Green, err = d.uint32(typ)
					case 3:
						c.Blue, err = d.uint32(typ)
					case 4:
						c.Alpha, err = d.double(typ)
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 4:
			err = d.sub(typ, func(b []byte) error {
				c := &HSLColor{}
				out = c

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var err error

					switch num {
					case 1:
						c.Hue, err = d.double(typ)
					case 2:
						c.Saturation, err = d.double(typ)
					case 3:
						c.Lightness, err = d.double(typ)
					case 4:
						c.Alpha, err = d.double(typ)
					default:
						return false, nil
					}

					return true, err
				})
			})
		case 5:
			err = d.sub(typ, func(b []byte) error {
				l, err := decodeList(b)
				out = l

				return err
			})
		case 6:
			err = d.sub(typ, func(b []byte) error {
				m, err := decodeMap(b)
				out = m

				return err
			})
		case 7:
			var v int32

			v, err = d.int32(typ)
			out = Singleton(v)
		case 8:
			err = d.sub(typ, func(b []byte) error {
				f := &CompilerFunction{}
				out = f

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					if num != 1 {
						return false, nil
					}

					var err error

					f.ID, err = d.uint32(typ)

					return true, err
				})
			})
		case 9:
			err = d.sub(typ, func(b []byte) error {
				f := &HostFunction{}
				out = f

				return fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
					var err error

					switch num {
					case 1:
						f.ID, err = d.uint32(typ)
					case 2:
						f.Signature, err = d.string(typ)
					default:
						return false, nil
					}

					return true, err
				})
			})
		default:
			return false, nil
		}

		return true, err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func decodeList(b []byte) (*List, error) {
	l := &List{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		var err error

		switch num {
		case 1:
			var sep int32

			sep, err = d.int32(typ)
			l.Separator = ListSeparator(sep)
		case 2:
			l.HasBrackets, err = d.bool(typ)
		case 3:
			err = d.sub(typ, func(b []byte) error {
				v, err := decodeValue(b)
				if err != nil {
					return err
				}

				l.Contents = append(l.Contents, v)

				return nil
			})
		default:
			return false, nil
		}

		return true, err
	})

	return l, err
}

func decodeMap(b []byte) (*Map, error) {
	m := &Map{}

	err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
		if num != 1 {
			return false, nil
		}

		return true, d.sub(typ, func(b []byte) error {
			var entry MapEntry

			err := fields(b, func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error) {
				var err error

				switch num {
				case 1:
					err = d.sub(typ, func(b []byte) error {
						entry.Key, err = decodeValue(b)

						return err
					})
				case 2:
					err = d.sub(typ, func(b []byte) error {
						entry.Value, err = decodeValue(b)

						return err
					})
				default:
					return false, nil
				}

				return true, err
			})
			if err != nil {
				return err
			}

			m.Entries = append(m.Entries, entry)

			return nil
		})
	})

	return m, err
}
