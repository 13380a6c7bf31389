// Package writer serializes preset records back to the target byte layout.
package writer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/takt-audio/presetkit/internal/bin"
	"github.com/takt-audio/presetkit/internal/checksum"
	"github.com/takt-audio/presetkit/internal/layout"
	"github.com/takt-audio/presetkit/internal/parser"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// Options controls serialization behavior.
type Options struct {
	// SelfCheck re-parses the produced bytes and verifies they reconstruct
	// the record. On by default in the facade; the cost is one extra parse.
	SelfCheck bool
}

// SanitizeName maps a name onto the character set the devices accept:
// printable ASCII, at most width-1 bytes. Anything else becomes '_'.
func SanitizeName(name string, width int) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 0x20 && r <= 0x7E {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > width-1 {
		s = s[:width-1]
	}
	return s
}

// Serialize encodes rec into the byte layout described by f, computing the
// declared size and the checksum footer. The output always re-parses to an
// equivalent record; with opts.SelfCheck that invariant is verified before
// the bytes are returned.
func Serialize(rec *preset.Record, f *layout.Format, opts Options) (*preset.RawBytes, error) {
	if err := rec.ValidateLimits(f.Limits()); err != nil {
		return nil, err
	}
	if len(rec.Routing) > f.RoutingSize {
		return nil, fmt.Errorf("routing block %d bytes, layout allows %d: %w",
			len(rec.Routing), f.RoutingSize, preset.ErrInvalidRecord)
	}

	order := f.Order()
	a := bin.NewAssembler()

	// Total size is known up front: fixed region, chain, routing, unknown
	// region, footer.
	total := f.Effects.Offset + f.Effects.CountWidth
	for _, e := range rec.Effects {
		total += 4 + len(e.Params)*f.Effects.ParamWidth
	}
	total += f.RoutingSize + len(rec.Unknown) + f.Checksum.Width
	maxDeclared := 1<<(8*f.SizeWidth) - 1
	if total > maxDeclared {
		return nil, fmt.Errorf("preset is %d bytes, size field caps at %d: %w",
			total, maxDeclared, preset.ErrInvalidRecord)
	}

	if err := a.WriteBytes(f.Signature); err != nil {
		return nil, err
	}
	version := rec.Version
	if version == 0 {
		version = f.Version
	}
	if err := a.WriteUint8(version); err != nil {
		return nil, err
	}
	if err := pad(a, f.SizeOffset); err != nil {
		return nil, err
	}
	if err := a.WriteUint(uint32(total), f.SizeWidth, order); err != nil {
		return nil, err
	}

	if err := pad(a, f.NameOffset); err != nil {
		return nil, err
	}
	if err := a.WriteFixedString(SanitizeName(rec.Name, f.NameWidth), f.NameWidth, 0x00); err != nil {
		return nil, fmt.Errorf("name field: %w", err)
	}

	for _, p := range f.Params {
		key, ok := p.Key()
		if !ok {
			return nil, fmt.Errorf("layout names unknown parameter %q", p.Name)
		}
		if err := pad(a, p.Offset); err != nil {
			return nil, err
		}
		v := rec.Params[key] // zero Value encodes as 0 when the record lacks the key
		if v.Raw < 0 || v.Raw > 1<<(8*p.Width)-1 {
			return nil, fmt.Errorf("param %s value %d does not fit %d-byte field: %w",
				p.Name, v.Raw, p.Width, preset.ErrInvalidRecord)
		}
		if err := a.WriteUint(uint32(v.Raw), p.Width, order); err != nil {
			return nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
	}

	if err := pad(a, f.Effects.Offset); err != nil {
		return nil, err
	}
	if err := a.WriteUint(uint32(len(rec.Effects)), f.Effects.CountWidth, order); err != nil {
		return nil, fmt.Errorf("effect count: %w", err)
	}
	for i, e := range rec.Effects {
		if err := a.WriteUint(uint32(e.Type), 2, order); err != nil {
			return nil, fmt.Errorf("effect %d type: %w", i, err)
		}
		enabled := uint8(0)
		if e.Enabled {
			enabled = 1
		}
		if err := a.WriteUint8(enabled); err != nil {
			return nil, err
		}
		if err := a.WriteUint8(uint8(len(e.Params))); err != nil {
			return nil, err
		}
		for j, v := range e.Params {
			if v < 0 || v > 1<<(8*f.Effects.ParamWidth)-1 {
				return nil, fmt.Errorf("effect %d param %d value %d does not fit %d-byte field: %w",
					i, j, v, f.Effects.ParamWidth, preset.ErrInvalidRecord)
			}
			if err := a.WriteUint(uint32(v), f.Effects.ParamWidth, order); err != nil {
				return nil, fmt.Errorf("effect %d param %d: %w", i, j, err)
			}
		}
	}

	if err := a.WriteBytes(rec.Routing); err != nil {
		return nil, err
	}
	if err := pad(a, a.Len()+f.RoutingSize-len(rec.Routing)); err != nil {
		return nil, err
	}
	if err := a.WriteBytes(rec.Unknown); err != nil {
		return nil, err
	}

	body := a.Finalize()
	cs, err := checksum.Compute(f.Checksum.Algorithm, body[f.Checksum.Start:])
	if err != nil {
		return nil, err
	}
	footer := make([]byte, f.Checksum.Width)
	if f.Checksum.Width == 1 {
		footer[0] = byte(cs)
	} else {
		order.Order().PutUint16(footer, cs)
	}
	out := append(body, footer...)

	if len(out) != total {
		return nil, fmt.Errorf("assembled %d bytes, expected %d: %w", len(out), total, preset.ErrWriteValidation)
	}
	if opts.SelfCheck {
		if err := verify(rec, out, f, version); err != nil {
			return nil, err
		}
	}
	return preset.NewRawBytes(out, ""), nil
}

// pad writes NULs until the assembler reaches offset upTo.
func pad(a *bin.Assembler, upTo int) error {
	if a.Len() > upTo {
		return fmt.Errorf("field overlap: at %d, next field at %d: %w", a.Len(), upTo, preset.ErrWriteValidation)
	}
	for a.Len() < upTo {
		if err := a.WriteUint8(0); err != nil {
			return err
		}
	}
	return nil
}

// verify re-parses out and compares the reconstruction against rec field by
// field. Any disagreement is a writer bug surfaced as ErrWriteValidation.
func verify(rec *preset.Record, out []byte, f *layout.Format, version uint8) error {
	reparsed, _, err := parser.Parse(preset.NewRawBytes(out, ""), f, parser.Options{StrictChecksum: true})
	if err != nil {
		return fmt.Errorf("re-parse: %v: %w", err, preset.ErrWriteValidation)
	}
	if reparsed.Name != SanitizeName(rec.Name, f.NameWidth) {
		return fmt.Errorf("name %q re-parsed as %q: %w", rec.Name, reparsed.Name, preset.ErrWriteValidation)
	}
	if reparsed.Version != version {
		return fmt.Errorf("version %d re-parsed as %d: %w", version, reparsed.Version, preset.ErrWriteValidation)
	}
	for _, p := range f.Params {
		key, _ := p.Key()
		if reparsed.Params[key].Raw != rec.Params[key].Raw {
			return fmt.Errorf("param %s %d re-parsed as %d: %w",
				key, rec.Params[key].Raw, reparsed.Params[key].Raw, preset.ErrWriteValidation)
		}
	}
	if len(reparsed.Effects) != len(rec.Effects) {
		return fmt.Errorf("effect count %d re-parsed as %d: %w",
			len(rec.Effects), len(reparsed.Effects), preset.ErrWriteValidation)
	}
	for i := range rec.Effects {
		want, got := rec.Effects[i], reparsed.Effects[i]
		if want.Type != got.Type || want.Enabled != got.Enabled || len(want.Params) != len(got.Params) {
			return fmt.Errorf("effect %d mismatch after re-parse: %w", i, preset.ErrWriteValidation)
		}
		for j := range want.Params {
			if want.Params[j] != got.Params[j] {
				return fmt.Errorf("effect %d param %d mismatch after re-parse: %w", i, j, preset.ErrWriteValidation)
			}
		}
	}
	if len(rec.Routing) > 0 && !bytes.Equal(reparsed.Routing[:len(rec.Routing)], rec.Routing) {
		return fmt.Errorf("routing block mismatch after re-parse: %w", preset.ErrWriteValidation)
	}
	if !bytes.Equal(reparsed.Unknown, rec.Unknown) {
		return fmt.Errorf("unknown region mismatch after re-parse: %w", preset.ErrWriteValidation)
	}
	return nil
}
