// Package wire decodes the WPILib DataLog (.wpilog) binary framing: the
// fixed file header followed by a stream of variable-width records.
//
// Framing is length-prefixed throughout, which is load-bearing for error
// recovery: a record whose contents are unintelligible can still be
// skipped exactly, so one unknown record never desynchronizes the rest
// of the stream.
package wire

import (
	"errors"
	"fmt"
	"io"

	"github.com/frcviz/wpilog/internal/cursor"
)

// Magic is the fixed 6-byte signature opening every .wpilog file
const Magic = "WPILOG"

// SupportedMajor is the major format version this decoder understands
const SupportedMajor = 1

// ControlEntry is the reserved entry ID carrying control records
const ControlEntry = 0

// ErrInvalidHeader is returned when the file does not begin with a
// well-formed WPILOG header. Fatal: nothing can be decoded.
var ErrInvalidHeader = errors.New("invalid wpilog header")

// Header is the parsed fixed file header
type Header struct {
	// Version packs major in the high byte and minor in the low byte
	// (0x0100 is 1.0).
	Version uint16
	// Extra is the free-form extra header string written by the recorder
	Extra string
}

// Major returns the major format version
func (h Header) Major() int { return int(h.Version >> 8) }

// Minor returns the minor format version
func (h Header) Minor() int { return int(h.Version & 0xff) }

// Record is one decoded frame from the stream. Payload is a view into
// the log buffer and is valid for the life of the buffer.
type Record struct {
	// Index is the zero-based position of the record in the stream
	Index int
	// Entry is the entry ID the record addresses; 0 is the control channel
	Entry uint32
	// Timestamp is microseconds since log start
	Timestamp int64
	// Payload is the raw record payload, exactly as framed
	Payload []byte
}

// IsControl reports whether the record rides the control channel
func (r Record) IsControl() bool { return r.Entry == ControlEntry }

// ControlType tags the three control record variants
type ControlType uint8

const (
	ControlStart       ControlType = 0
	ControlFinish      ControlType = 1
	ControlSetMetadata ControlType = 2
)

func (t ControlType) String() string {
	switch t {
	case ControlStart:
		return "start"
	case ControlFinish:
		return "finish"
	case ControlSetMetadata:
		return "set-metadata"
	default:
		return fmt.Sprintf("control(%d)", uint8(t))
	}
}

// Control is a decoded control-channel payload. Fields beyond Entry are
// populated only for the variants that carry them.
type Control struct {
	Type     ControlType
	Entry    uint32 // target entry ID
	Name     string // Start only
	DataType string // Start only
	Metadata string // Start, SetMetadata
}

// Control decodes the record payload as a control record. The returned
// error describes why the payload could not be understood; the caller
// is expected to skip the record and keep going, since the outer frame
// length was already validated.
func (r Record) Control() (Control, error) {
	c := cursor.New(r.Payload)
	tag, err := c.U8()
	if err != nil {
		return Control{}, fmt.Errorf("empty control payload: %w", err)
	}
	ctl := Control{Type: ControlType(tag)}
	switch ctl.Type {
	case ControlStart:
		if ctl.Entry, err = c.U32(); err != nil {
			return Control{}, fmt.Errorf("start: entry id: %w", err)
		}
		if ctl.Name, err = c.String(); err != nil {
			return Control{}, fmt.Errorf("start: name: %w", err)
		}
		if ctl.DataType, err = c.String(); err != nil {
			return Control{}, fmt.Errorf("start: type: %w", err)
		}
		if ctl.Metadata, err = c.String(); err != nil {
			return Control{}, fmt.Errorf("start: metadata: %w", err)
		}
	case ControlFinish:
		if ctl.Entry, err = c.U32(); err != nil {
			return Control{}, fmt.Errorf("finish: entry id: %w", err)
		}
	case ControlSetMetadata:
		if ctl.Entry, err = c.U32(); err != nil {
			return Control{}, fmt.Errorf("set-metadata: entry id: %w", err)
		}
		if ctl.Metadata, err = c.String(); err != nil {
			return Control{}, fmt.Errorf("set-metadata: metadata: %w", err)
		}
	default:
		return Control{}, fmt.Errorf("unrecognized control type %d", tag)
	}
	return ctl, nil
}

// Decoder iterates the record stream of a single log buffer. It is a
// one-shot forward pass; re-decoding means constructing a new Decoder.
type Decoder struct {
	cur   *cursor.Cursor
	hdr   Header
	index int
}

// NewDecoder validates the file header and positions the decoder at the
// first record. Returns ErrInvalidHeader if the magic is absent or the
// major version is unsupported.
func NewDecoder(buf []byte) (*Decoder, error) {
	c := cursor.New(buf)
	magic, err := c.Bytes(len(Magic))
	if err != nil || string(magic) != Magic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidHeader)
	}
	version, err := c.U16()
	if err != nil {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidHeader)
	}
	hdr := Header{Version: version}
	if hdr.Major() != SupportedMajor {
		return nil, fmt.Errorf("%w: unsupported version %d.%d", ErrInvalidHeader, hdr.Major(), hdr.Minor())
	}
	if hdr.Extra, err = c.String(); err != nil {
		return nil, fmt.Errorf("%w: bad extra header", ErrInvalidHeader)
	}
	return &Decoder{cur: c, hdr: hdr}, nil
}

// Header returns the parsed file header
func (d *Decoder) Header() Header { return d.hdr }

// Next decodes the next record. It returns io.EOF at a clean end of
// stream and cursor.ErrTruncatedInput when a record is cut off, in
// which case the stream position is unrecoverable and iteration must
// stop.
func (d *Decoder) Next() (Record, error) {
	if d.cur.Remaining() == 0 {
		return Record{}, io.EOF
	}

	lenHeader, err := d.cur.U8()
	if err != nil {
		return Record{}, err
	}
	entryWidth := int(lenHeader&0x3) + 1
	sizeWidth := int(lenHeader>>2&0x3) + 1
	tsWidth := int(lenHeader>>4&0x7) + 1
	// bit 7 is spare and ignored

	entry, err := d.cur.Uint(entryWidth)
	if err != nil {
		return Record{}, err
	}
	size, err := d.cur.Uint(sizeWidth)
	if err != nil {
		return Record{}, err
	}
	ts, err := d.cur.Uint(tsWidth)
	if err != nil {
		return Record{}, err
	}
	payload, err := d.cur.Bytes(int(size))
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Index:     d.index,
		Entry:     uint32(entry),
		Timestamp: int64(ts),
		Payload:   payload,
	}
	d.index++
	return rec, nil
}
