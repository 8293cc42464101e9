package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/htlc/errors"
)

// Protobuf wire types used by the models.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// Encoder writes models in the protobuf wire format. Zero values are
// omitted, as proto3 does.
type Encoder struct {
	buf *proto.Buffer
	err error
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{buf: proto.NewBuffer(nil)}
}

// Bytes writes a length delimited field.
func (e *Encoder) Bytes(field int, b []byte) {
	if e.err != nil || len(b) == 0 {
		return
	}
	if e.err = e.buf.EncodeVarint(uint64(field)<<3 | wireBytes); e.err != nil {
		return
	}
	e.err = e.buf.EncodeRawBytes(b)
}

// String writes a string field.
func (e *Encoder) String(field int, s string) {
	e.Bytes(field, []byte(s))
}

// Uint64 writes a varint field.
func (e *Encoder) Uint64(field int, v uint64) {
	if e.err != nil || v == 0 {
		return
	}
	if e.err = e.buf.EncodeVarint(uint64(field)<<3 | wireVarint); e.err != nil {
		return
	}
	e.err = e.buf.EncodeVarint(v)
}

// Int64 writes a varint field. Negative values take ten bytes.
func (e *Encoder) Int64(field int, v int64) {
	e.Uint64(field, uint64(v))
}

// Bool writes a varint field.
func (e *Encoder) Bool(field int, v bool) {
	if v {
		e.Uint64(field, 1)
	}
}

// Marshal returns the encoded message or the first error that occurred.
func (e *Encoder) Marshal() ([]byte, error) {
	if e.err != nil {
		return nil, errors.Wrap(errors.ErrModel, e.err.Error())
	}
	return e.buf.Bytes(), nil
}

// Field is a single decoded protobuf field. Varint holds the value of
// varint fields, Bytes the content of length delimited ones.
type Field struct {
	Num    int
	Varint uint64
	Bytes  []byte
}

// DecodeFields splits a protobuf message into its fields. Fixed size
// fields are skipped. Returned byte slices are copies.
func DecodeFields(raw []byte) ([]Field, error) {
	var fields []Field
	for len(raw) > 0 {
		tag, n := proto.DecodeVarint(raw)
		if n == 0 {
			return nil, errors.Wrap(errors.ErrModel, "truncated tag")
		}
		raw = raw[n:]
		f := Field{Num: int(tag >> 3)}
		if f.Num <= 0 {
			return nil, errors.Wrapf(errors.ErrModel, "invalid field number %d", f.Num)
		}

		switch tag & 7 {
		case wireVarint:
			v, n := proto.DecodeVarint(raw)
			if n == 0 {
				return nil, errors.Wrapf(errors.ErrModel, "field %d: truncated varint", f.Num)
			}
			raw = raw[n:]
			f.Varint = v
		case wireBytes:
			size, n := proto.DecodeVarint(raw)
			if n == 0 || uint64(len(raw)-n) < size {
				return nil, errors.Wrapf(errors.ErrModel, "field %d: truncated bytes", f.Num)
			}
			raw = raw[n:]
			f.Bytes = append([]byte(nil), raw[:size]...)
			raw = raw[size:]
		case wireFixed64:
			if len(raw) < 8 {
				return nil, errors.Wrapf(errors.ErrModel, "field %d: truncated fixed64", f.Num)
			}
			raw = raw[8:]
			continue
		case wireFixed32:
			if len(raw) < 4 {
				return nil, errors.Wrapf(errors.ErrModel, "field %d: truncated fixed32", f.Num)
			}
			raw = raw[4:]
			continue
		default:
			return nil, errors.Wrapf(errors.ErrModel, "field %d: unsupported wire type %d", f.Num, tag&7)
		}
		fields = append(fields, f)
	}
	return fields, nil
}
