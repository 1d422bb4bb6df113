package message

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

var errWireType = errors.New("unexpected wire type")

// encoder appends protobuf fields to a buffer.
//
// Methods without the "must" prefix follow proto3 implicit presence and omit
// zero values. Fields inside a oneof must use the must* variants so that the
// selected case is always present on the wire.
type encoder struct {
	b   []byte
	err error
}

// fail records the first encoding error; later writes still happen but the
// result is discarded by the caller.
func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) uint32(num protowire.Number, v uint32) {
	if v == 0 {
		return
	}

	e.mustUint32(num, v)
}

func (e *encoder) mustUint32(num protowire.Number, v uint32) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(v))
}

func (e *encoder) enum(num protowire.Number, v int32) {
	if v == 0 {
		return
	}

	e.mustEnum(num, v)
}

func (e *encoder) mustEnum(num protowire.Number, v int32) {
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, uint64(int64(v)))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if !v {
		return
	}

	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

func (e *encoder) string(num protowire.Number, s string) {
	if s == "" {
		return
	}

	e.mustString(num, s)
}

func (e *encoder) mustString(num protowire.Number, s string) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

func (e *encoder) strings(num protowire.Number, ss []string) {
	for _, s := range ss {
		e.mustString(num, s)
	}
}

func (e *encoder) double(num protowire.Number, v float64) {
	if v == 0 && !math.Signbit(v) {
		return
	}

	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, math.Float64bits(v))
}

// message encodes a nested message produced by fn. The field is always
// written, even when the nested message is empty.
func (e *encoder) message(num protowire.Number, fn func(*encoder)) {
	var sub encoder

	fn(&sub)

	if sub.err != nil {
		e.fail(sub.err)
	}

	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, sub.b)
}

// decoder walks the fields of one encoded message.
type decoder struct {
	b []byte
}

func (d *decoder) done() bool {
	return len(d.b) == 0
}

func (d *decoder) next() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		return 0, 0, fmt.Errorf("read tag: %w", protowire.ParseError(n))
	}

	d.b = d.b[n:]

	return num, typ, nil
}

func (d *decoder) varint(typ protowire.Type) (uint64, error) {
	if typ != protowire.VarintType {
		return 0, fmt.Errorf("%w: got %d, want varint", errWireType, typ)
	}

	v, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		return 0, fmt.Errorf("read varint: %w", protowire.ParseError(n))
	}

	d.b = d.b[n:]

	return v, nil
}

func (d *decoder) uint32(typ protowire.Type) (uint32, error) {
	v, err := d.varint(typ)

	return uint32(v), err
}

func (d *decoder) int32(typ protowire.Type) (int32, error) {
	v, err := d.varint(typ)

	return int32(v), err
}

func (d *decoder) bool(typ protowire.Type) (bool, error) {
	v, err := d.varint(typ)

	return protowire.DecodeBool(v), err
}

func (d *decoder) bytes(typ protowire.Type) ([]byte, error) {
	if typ != protowire.BytesType {
		return nil, fmt.Errorf("%w: got %d, want bytes", errWireType, typ)
	}

	v, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		return nil, fmt.Errorf("read bytes: %w", protowire.ParseError(n))
	}

	d.b = d.b[n:]

	return v, nil
}

func (d *decoder) string(typ protowire.Type) (string, error) {
	v, err := d.bytes(typ)

	return string(v), err
}

func (d *decoder) double(typ protowire.Type) (float64, error) {
	if typ != protowire.Fixed64Type {
		return 0, fmt.Errorf("%w: got %d, want fixed64", errWireType, typ)
	}

	v, n := protowire.ConsumeFixed64(d.b)
	if n < 0 {
		return 0, fmt.Errorf("read fixed64: %w", protowire.ParseError(n))
	}

	d.b = d.b[n:]

	return math.Float64frombits(v), nil
}

func (d *decoder) skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, d.b)
	if n < 0 {
		return fmt.Errorf("skip field %d: %w", num, protowire.ParseError(n))
	}

	d.b = d.b[n:]

	return nil
}

// fields calls fn for every field of b. fn reports whether it consumed the
// field; unconsumed fields are skipped.
func fields(b []byte, fn func(d *decoder, num protowire.Number, typ protowire.Type) (bool, error)) error {
	d := &decoder{b: b}

	for !d.done() {
		num, typ, err := d.next()
		if err != nil {
			return err
		}

		handled, err := fn(d, num, typ)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}

		if !handled {
			if err := d.skip(num, typ); err != nil {
				return err
			}
		}
	}

	return nil
}

// sub decodes a nested message field with fn.
func (d *decoder) sub(typ protowire.Type, fn func([]byte) error) error {
	b, err := d.bytes(typ)
	if err != nil {
		return err
	}

	return fn(b)
}
