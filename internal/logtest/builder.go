// Package logtest builds well-formed .wpilog byte streams for tests.
// The production code is read-only; this writer exists purely so tests
// can round-trip generated logs through the decoder.
package logtest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Builder accumulates an encoded log. The zero value is not usable;
// call New so the file header is written first.
type Builder struct {
	buf bytes.Buffer
}

// New returns a builder whose buffer already holds a version 1.0 header
// with the given extra-header string.
func New(extra string) *Builder {
	b := &Builder{}
	b.buf.WriteString("WPILOG")
	writeU16(&b.buf, 0x0100)
	writeString(&b.buf, extra)
	return b
}

// Bytes returns a copy of the encoded log so far
func (b *Builder) Bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}

// Record appends one record with minimal field widths
func (b *Builder) Record(entry uint32, ts int64, payload []byte) *Builder {
	entryWidth := uintWidth(uint64(entry), 4)
	sizeWidth := uintWidth(uint64(len(payload)), 4)
	tsWidth := uintWidth(uint64(ts), 8)

	header := byte(entryWidth-1) | byte(sizeWidth-1)<<2 | byte(tsWidth-1)<<4
	b.buf.WriteByte(header)
	writeUint(&b.buf, uint64(entry), entryWidth)
	writeUint(&b.buf, uint64(len(payload)), sizeWidth)
	writeUint(&b.buf, uint64(ts), tsWidth)
	b.buf.Write(payload)
	return b
}

// Start appends a Start control record
func (b *Builder) Start(entry uint32, name, entryType, metadata string, ts int64) *Builder {
	var p bytes.Buffer
	p.WriteByte(0)
	writeU32(&p, entry)
	writeString(&p, name)
	writeString(&p, entryType)
	writeString(&p, metadata)
	return b.Record(0, ts, p.Bytes())
}

// Finish appends a Finish control record
func (b *Builder) Finish(entry uint32, ts int64) *Builder {
	var p bytes.Buffer
	p.WriteByte(1)
	writeU32(&p, entry)
	return b.Record(0, ts, p.Bytes())
}

// SetMetadata appends a SetMetadata control record
func (b *Builder) SetMetadata(entry uint32, metadata string, ts int64) *Builder {
	var p bytes.Buffer
	p.WriteByte(2)
	writeU32(&p, entry)
	writeString(&p, metadata)
	return b.Record(0, ts, p.Bytes())
}

// ControlRaw appends a control record with an arbitrary payload, for
// exercising unknown tags and malformed control bodies.
func (b *Builder) ControlRaw(ts int64, payload []byte) *Builder {
	return b.Record(0, ts, payload)
}

// Bool appends a boolean data record
func (b *Builder) Bool(entry uint32, ts int64, v bool) *Builder {
	if v {
		return b.Record(entry, ts, []byte{1})
	}
	return b.Record(entry, ts, []byte{0})
}

// Int64 appends an int64 data record
func (b *Builder) Int64(entry uint32, ts int64, v int64) *Builder {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], uint64(v))
	return b.Record(entry, ts, p[:])
}

// Float64 appends a double data record
func (b *Builder) Float64(entry uint32, ts int64, v float64) *Builder {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], math.Float64bits(v))
	return b.Record(entry, ts, p[:])
}

// Float32 appends a legacy 4-byte float data record
func (b *Builder) Float32(entry uint32, ts int64, v float32) *Builder {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], math.Float32bits(v))
	return b.Record(entry, ts, p[:])
}

// String appends a string data record (payload is the raw UTF-8 bytes)
func (b *Builder) String(entry uint32, ts int64, v string) *Builder {
	return b.Record(entry, ts, []byte(v))
}

// Float64Array appends a double[] data record
func (b *Builder) Float64Array(entry uint32, ts int64, vs []float64) *Builder {
	p := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(p[8*i:], math.Float64bits(v))
	}
	return b.Record(entry, ts, p)
}

// Int64Array appends an int64[] data record
func (b *Builder) Int64Array(entry uint32, ts int64, vs []int64) *Builder {
	p := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(p[8*i:], uint64(v))
	}
	return b.Record(entry, ts, p)
}

// BoolArray appends a boolean[] data record
func (b *Builder) BoolArray(entry uint32, ts int64, vs []bool) *Builder {
	p := make([]byte, len(vs))
	for i, v := range vs {
		if v {
			p[i] = 1
		}
	}
	return b.Record(entry, ts, p)
}

// StringArray appends a string[] data record
func (b *Builder) StringArray(entry uint32, ts int64, vs []string) *Builder {
	var p bytes.Buffer
	writeU32(&p, uint32(len(vs)))
	for _, v := range vs {
		writeString(&p, v)
	}
	return b.Record(entry, ts, p.Bytes())
}

func uintWidth(v uint64, maxBytes int) int {
	w := 1
	for v > 0xff && w < maxBytes {
		v >>= 8
		w++
	}
	return w
}

func writeUint(buf *bytes.Buffer, v uint64, width int) {
	for i := 0; i < width; i++ {
		buf.WriteByte(byte(v >> (8 * i)))
	}
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}
