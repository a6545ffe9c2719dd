package cursor

import (
	"encoding/binary"
	"errors"
)

// ErrTruncatedInput is returned when a read would pass the end of the
// buffer. After a failed read the cursor position is unspecified and the
// caller must abandon whatever structure it was decoding.
var ErrTruncatedInput = errors.New("truncated input")

// Cursor is a bounds-checked sequential reader over an immutable byte
// buffer. All integer reads are little-endian. The buffer is never
// mutated and never copied; callers that retain slices returned by
// Bytes must copy them if they outlive the buffer.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a cursor positioned at the start of buf
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current byte offset
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Skip advances the position by n bytes
func (c *Cursor) Skip(n int) error {
	if n < 0 || c.Remaining() < n {
		return ErrTruncatedInput
	}
	c.pos += n
	return nil
}

// U8 reads one byte
func (c *Cursor) U8() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, ErrTruncatedInput
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// U16 reads a little-endian uint16
func (c *Cursor) U16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, ErrTruncatedInput
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// U32 reads a little-endian uint32
func (c *Cursor) U32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, ErrTruncatedInput
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// U64 reads a little-endian uint64
func (c *Cursor) U64() (uint64, error) {
	if c.Remaining() < 8 {
		return 0, ErrTruncatedInput
	}
	v := binary.LittleEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

// Uint reads a little-endian unsigned integer of width 1..8 bytes.
// The record framing encodes field widths in a header byte, so widths
// outside that range indicate a decoder bug, not bad input.
func (c *Cursor) Uint(width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, ErrTruncatedInput
	}
	if c.Remaining() < width {
		return 0, ErrTruncatedInput
	}
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(c.buf[c.pos+i]) << (8 * i)
	}
	c.pos += width
	return v, nil
}

// Bytes reads exactly n bytes and returns a view into the underlying
// buffer without copying
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, ErrTruncatedInput
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// String reads a u32 length-prefixed UTF-8 string
func (c *Cursor) String() (string, error) {
	n, err := c.U32()
	if err != nil {
		return "", err
	}
	b, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
