package bin

import (
	"fmt"

	"github.com/takt-audio/presetkit/pkg/preset"
)

// Assembler is an append-only writer mirroring Cursor's primitives. It is
// single-use: Finalize yields the output buffer and retires the assembler.
type Assembler struct {
	data      []byte
	finalized bool
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Len returns the number of bytes written so far.
func (a *Assembler) Len() int { return len(a.data) }

func (a *Assembler) check() error {
	if a.finalized {
		return preset.ErrFinalized
	}
	return nil
}

// WriteBytes appends raw bytes.
func (a *Assembler) WriteBytes(b []byte) error {
	if err := a.check(); err != nil {
		return err
	}
	a.data = append(a.data, b...)
	return nil
}

// WriteUint8 appends a single byte.
func (a *Assembler) WriteUint8(v uint8) error {
	if err := a.check(); err != nil {
		return err
	}
	a.data = append(a.data, v)
	return nil
}

// WriteUint appends an unsigned integer of width 1, 2 or 4 bytes. Fails
// when v does not fit the width.
func (a *Assembler) WriteUint(v uint32, width int, e Endianness) error {
	if err := a.check(); err != nil {
		return err
	}
	switch width {
	case 1:
		if v > 0xFF {
			return fmt.Errorf("value %d does not fit 1 byte", v)
		}
		a.data = append(a.data, byte(v))
	case 2:
		if v > 0xFFFF {
			return fmt.Errorf("value %d does not fit 2 bytes", v)
		}
		var b [2]byte
		e.Order().PutUint16(b[:], uint16(v))
		a.data = append(a.data, b[:]...)
	case 4:
		var b [4]byte
		e.Order().PutUint32(b[:], v)
		a.data = append(a.data, b[:]...)
	default:
		return fmt.Errorf("unsupported uint width %d", width)
	}
	return nil
}

// WriteFixedString encodes s into exactly width bytes, padded with padByte.
// Fails rather than truncating when the encoded text exceeds the field.
// Callers are expected to sanitize the text first; anything outside
// printable ASCII is rejected here so garbage never reaches the device.
func (a *Assembler) WriteFixedString(s string, width int, padByte byte) error {
	if err := a.check(); err != nil {
		return err
	}
	encoded := []byte(s)
	if len(encoded) > width {
		return fmt.Errorf("string %q is %d bytes, field is %d", s, len(encoded), width)
	}
	for _, ch := range encoded {
		if ch < 0x20 || ch > 0x7E {
			return fmt.Errorf("string %q contains non-printable byte 0x%02X", s, ch)
		}
	}
	a.data = append(a.data, encoded...)
	for i := len(encoded); i < width; i++ {
		a.data = append(a.data, padByte)
	}
	return nil
}

// Finalize returns the assembled buffer and retires the assembler. Any
// write after Finalize fails with a state error.
func (a *Assembler) Finalize() []byte {
	a.finalized = true
	return a.data
}
