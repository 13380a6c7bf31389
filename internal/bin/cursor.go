// Package bin provides the sequential byte-level primitives the preset
// codec is built on: a bounds-checked Cursor for decoding and an
// append-only Assembler for encoding. Both fail loudly instead of
// truncating; neither ever returns partial data.
package bin

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/takt-audio/presetkit/internal/buf"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// Endianness selects byte order for multi-byte integer reads and writes.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Order returns the encoding/binary byte order for e.
func (e Endianness) Order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Cursor is a sequential, single-owner reader over a byte buffer. The
// position only moves forward unless Seek is called explicitly.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor returns a cursor positioned at the start of data. The cursor
// does not copy; the buffer must stay unmodified while the cursor is live.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.data) }

func (c *Cursor) outOfBounds(n int) error {
	return fmt.Errorf("read %d bytes at offset %d, %d remaining: %w",
		n, c.off, c.Remaining(), preset.ErrTruncated)
}

// ReadBytes reads exactly n bytes and advances the cursor.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	b, ok := buf.Slice(c.data, c.off, n)
	if !ok {
		return nil, c.outOfBounds(n)
	}
	c.off += n
	return b, nil
}

// ReadUint8 reads a single byte as an unsigned integer.
func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint reads an unsigned integer of width 1, 2 or 4 bytes.
func (c *Cursor) ReadUint(width int, e Endianness) (uint32, error) {
	b, err := c.ReadBytes(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(e.Order().Uint16(b)), nil
	case 4:
		return e.Order().Uint32(b), nil
	default:
		return 0, fmt.Errorf("unsupported uint width %d", width)
	}
}

// ReadFixedString reads a fixed-width string field. Decoding stops at the
// first NUL inside the field; bytes after it are padding and ignored.
// Extended bytes decode as Windows-1252, matching what the devices store.
func (c *Cursor) ReadFixedString(width int) (string, error) {
	b, err := c.ReadBytes(width)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	ascii := true
	for _, ch := range b {
		if ch >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode fixed string: %w", err)
	}
	return string(decoded), nil
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	b, ok := buf.Slice(c.data, c.off, n)
	if !ok {
		return nil, c.outOfBounds(n)
	}
	return b, nil
}

// Skip advances the cursor by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 || !buf.Has(c.data, c.off, n) {
		return c.outOfBounds(n)
	}
	c.off += n
	return nil
}

// Seek moves the cursor to an absolute offset. Seeking to len(data) is
// allowed (end of buffer), anything past it is not.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return fmt.Errorf("seek to %d in %d-byte buffer: %w", off, len(c.data), preset.ErrTruncated)
	}
	c.off = off
	return nil
}
