// Package parser decodes raw preset bytes into the structured record model.
// All layout knowledge comes from the descriptor; the parser only enforces
// the structural rules every version shares.
package parser

import (
	"bytes"
	"fmt"

	"github.com/takt-audio/presetkit/internal/bin"
	"github.com/takt-audio/presetkit/internal/buf"
	"github.com/takt-audio/presetkit/internal/checksum"
	"github.com/takt-audio/presetkit/internal/layout"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// Options controls parse behavior.
type Options struct {
	// StrictChecksum promotes a checksum mismatch from a warning to a
	// fatal error.
	StrictChecksum bool
}

// Parse decodes raw bytes laid out per f into a Record. Non-fatal findings
// (size disagreement, checksum mismatch in non-strict mode) come back as
// warnings next to a usable record; structural problems fail with a typed
// error and no record.
func Parse(raw *preset.RawBytes, f *layout.Format, opts Options) (*preset.Record, []preset.Warning, error) {
	data := raw.Bytes()
	order := f.Order()
	c := bin.NewCursor(data)
	var warnings []preset.Warning

	// Signature.
	sig, err := c.ReadBytes(len(f.Signature))
	if err != nil {
		return nil, nil, fmt.Errorf("signature: %w", err)
	}
	if !bytes.Equal(sig, f.Signature) {
		return nil, nil, fmt.Errorf("want % X, have % X: %w", []byte(f.Signature), sig, preset.ErrBadSignature)
	}

	// Version and declared size.
	version, err := c.ReadUint8()
	if err != nil {
		return nil, nil, fmt.Errorf("version: %w", err)
	}
	if err := c.Seek(f.SizeOffset); err != nil {
		return nil, nil, fmt.Errorf("size field: %w", err)
	}
	declared, err := c.ReadUint(f.SizeWidth, order)
	if err != nil {
		return nil, nil, fmt.Errorf("size field: %w", err)
	}
	if int(declared) > len(data) {
		return nil, nil, fmt.Errorf("header declares %d bytes, buffer has %d: %w",
			declared, len(data), preset.ErrTruncated)
	}
	if int(declared) != len(data) {
		warnings = append(warnings, preset.Warning{
			Kind:   preset.WarnSizeMismatch,
			Detail: fmt.Sprintf("declared %d, actual %d", declared, len(data)),
		})
	}

	// Name.
	if err := c.Seek(f.NameOffset); err != nil {
		return nil, nil, fmt.Errorf("name field: %w", err)
	}
	name, err := c.ReadFixedString(f.NameWidth)
	if err != nil {
		return nil, nil, fmt.Errorf("name field: %w", err)
	}

	// Global parameters at their fixed offsets.
	params := make(map[preset.ParamKey]preset.Value, len(f.Params))
	for _, p := range f.Params {
		key, ok := p.Key()
		if !ok {
			return nil, nil, fmt.Errorf("layout names unknown parameter %q", p.Name)
		}
		if err := c.Seek(p.Offset); err != nil {
			return nil, nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
		v, err := c.ReadUint(p.Width, order)
		if err != nil {
			return nil, nil, fmt.Errorf("param %s: %w", p.Name, err)
		}
		switch p.Kind {
		case "bool":
			params[key] = preset.BoolValue(v != 0)
		case "enum":
			params[key] = preset.EnumValue(int(v), p.Max)
		default:
			params[key] = preset.IntValue(int(v), p.Min, p.Max)
		}
	}

	// Effect chain. The declared counts are bounds-checked before any block
	// is read so a corrupt count fails as truncation, not as garbage data.
	if err := c.Seek(f.Effects.Offset); err != nil {
		return nil, nil, fmt.Errorf("effect count: %w", err)
	}
	count, err := c.ReadUint(f.Effects.CountWidth, order)
	if err != nil {
		return nil, nil, fmt.Errorf("effect count: %w", err)
	}
	if int(count) > f.Effects.MaxEffects {
		return nil, nil, fmt.Errorf("effect count %d exceeds format maximum %d: %w",
			count, f.Effects.MaxEffects, preset.ErrInvalidRecord)
	}
	if _, err := buf.CheckListBounds(len(data), c.Pos(), int(count), 4); err != nil {
		return nil, nil, fmt.Errorf("effect chain: %v: %w", err, preset.ErrTruncated)
	}
	effects := make([]preset.EffectBlock, 0, count)
	for i := 0; i < int(count); i++ {
		typeID, err := c.ReadUint(2, order)
		if err != nil {
			return nil, nil, fmt.Errorf("effect %d type: %w", i, err)
		}
		enabled, err := c.ReadUint8()
		if err != nil {
			return nil, nil, fmt.Errorf("effect %d flag: %w", i, err)
		}
		pcount, err := c.ReadUint8()
		if err != nil {
			return nil, nil, fmt.Errorf("effect %d param count: %w", i, err)
		}
		if int(pcount) > f.Effects.MaxBlockParams {
			return nil, nil, fmt.Errorf("effect %d declares %d params, max %d: %w",
				i, pcount, f.Effects.MaxBlockParams, preset.ErrInvalidRecord)
		}
		if _, err := buf.CheckListBounds(len(data), c.Pos(), int(pcount), f.Effects.ParamWidth); err != nil {
			return nil, nil, fmt.Errorf("effect %d params: %v: %w", i, err, preset.ErrTruncated)
		}
		values := make([]int, pcount)
		for j := range values {
			v, err := c.ReadUint(f.Effects.ParamWidth, order)
			if err != nil {
				return nil, nil, fmt.Errorf("effect %d param %d: %w", i, j, err)
			}
			values[j] = int(v)
		}
		effects = append(effects, preset.EffectBlock{
			Type:    preset.EffectType(typeID),
			Enabled: enabled != 0,
			Params:  values,
		})
	}

	// Routing block.
	routing, err := c.ReadBytes(f.RoutingSize)
	if err != nil {
		return nil, nil, fmt.Errorf("routing block: %w", err)
	}

	// Whatever sits between the routing block and the footer is not modeled
	// by this layout; carry it verbatim so rewrites stay lossless.
	footerStart := len(data) - f.Checksum.Width
	if c.Pos() > footerStart {
		return nil, nil, fmt.Errorf("footer overlaps payload at offset %d: %w", c.Pos(), preset.ErrTruncated)
	}
	unknown := append([]byte(nil), data[c.Pos():footerStart]...)

	// Checksum footer.
	if err := c.Seek(footerStart); err != nil {
		return nil, nil, fmt.Errorf("checksum footer: %w", err)
	}
	stored, err := c.ReadUint(f.Checksum.Width, order)
	if err != nil {
		return nil, nil, fmt.Errorf("checksum footer: %w", err)
	}
	computed, err := checksum.Compute(f.Checksum.Algorithm, data[f.Checksum.Start:footerStart])
	if err != nil {
		return nil, nil, fmt.Errorf("checksum: %w", err)
	}
	info := preset.ChecksumInfo{
		Algorithm: string(f.Checksum.Algorithm),
		Stored:    uint16(stored),
		Computed:  computed,
		Valid:     uint16(stored) == computed,
	}
	if !info.Valid {
		detail := fmt.Sprintf("stored 0x%04X, computed 0x%04X", info.Stored, info.Computed)
		if opts.StrictChecksum {
			return nil, nil, fmt.Errorf("%s: %w", detail, preset.ErrChecksumMismatch)
		}
		warnings = append(warnings, preset.Warning{Kind: preset.WarnChecksumMismatch, Detail: detail})
	}

	rec := &preset.Record{
		Schema:   f.SchemaTag(),
		Name:     name,
		Version:  version,
		Params:   params,
		Effects:  effects,
		Routing:  append([]byte(nil), routing...),
		Unknown:  unknown,
		Checksum: info,
	}
	return rec, warnings, nil
}
