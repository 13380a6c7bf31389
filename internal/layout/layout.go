// Package layout describes preset byte layouts as data. The true GP-5 and
// GP-50 layouts are documented upstream only as a hypothesis, so offsets,
// field widths and the checksum algorithm live in a descriptor that can be
// replaced from a YAML file without touching the codec.
package layout

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/takt-audio/presetkit/internal/bin"
	"github.com/takt-audio/presetkit/internal/checksum"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// HexBytes is a byte string spelled as whitespace-separated hex in YAML,
// e.g. "47 50 35 00". Signatures contain NUL bytes, which plain YAML
// strings cannot carry readably.
type HexBytes []byte

// UnmarshalYAML decodes the hex spelling.
func (h *HexBytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	cleaned := strings.Join(strings.Fields(s), "")
	b, err := hex.DecodeString(cleaned)
	if err != nil {
		return fmt.Errorf("signature %q: %w", s, err)
	}
	*h = b
	return nil
}

// MarshalYAML renders the hex spelling.
func (h HexBytes) MarshalYAML() (any, error) {
	parts := make([]string, len(h))
	for i, b := range h {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " "), nil
}

// ParamField places one global parameter at a fixed offset in the header
// region and declares its valid range in this schema.
type ParamField struct {
	Name   string `yaml:"name"` // preset.ParamKey name
	Offset int    `yaml:"offset"`
	Width  int    `yaml:"width"` // 1 or 2 bytes
	Kind   string `yaml:"kind"`  // "int" (default), "bool" or "enum"
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
}

// Key resolves the field's parameter key.
func (p ParamField) Key() (preset.ParamKey, bool) {
	return preset.ParamKeyByName(p.Name)
}

// EffectSection describes the count-prefixed effect chain.
type EffectSection struct {
	Offset         int `yaml:"offset"`      // where the chain count lives
	CountWidth     int `yaml:"count_width"` // 1 or 2 bytes
	MaxEffects     int `yaml:"max_effects"`
	ParamWidth     int `yaml:"param_width"` // bytes per parameter value
	MaxBlockParams int `yaml:"max_block_params"`
}

// ChecksumSpec selects the footer algorithm and its coverage. The covered
// range runs from Start through the last byte before the footer.
type ChecksumSpec struct {
	Algorithm checksum.Algorithm `yaml:"algorithm"`
	Start     int                `yaml:"start"`
	Width     int                `yaml:"width"` // footer width, 1 or 2 bytes
}

// Format is one schema version's complete byte layout:
//
//	[signature][version:1][declared_size][name][global params]
//	[effect_count][count x {type:2, enabled:1, param_count:1, params}]
//	[routing][unknown region][checksum footer]
//
// Everything up to the effect section sits at fixed offsets; the sections
// after it are variable-length and packed in order.
type Format struct {
	Schema      string        `yaml:"schema"`
	Signature   HexBytes      `yaml:"signature"`
	Version     uint8         `yaml:"version"`
	Endian      string        `yaml:"endian"` // "le" (default) or "be"
	SizeOffset  int           `yaml:"size_offset"`
	SizeWidth   int           `yaml:"size_width"`
	NameOffset  int           `yaml:"name_offset"`
	NameWidth   int           `yaml:"name_width"`
	Params      []ParamField  `yaml:"params"`
	Effects     EffectSection `yaml:"effects"`
	RoutingSize int           `yaml:"routing_size"`
	Checksum    ChecksumSpec  `yaml:"checksum"`
}

// SchemaTag maps the descriptor's schema name onto the model tag.
func (f *Format) SchemaTag() preset.Schema {
	switch f.Schema {
	case "GP5":
		return preset.SchemaGP5
	case "GP50":
		return preset.SchemaGP50
	default:
		return preset.SchemaUnknown
	}
}

// Order returns the byte order for multi-byte fields.
func (f *Format) Order() bin.Endianness {
	if f.Endian == "be" {
		return bin.BigEndian
	}
	return bin.LittleEndian
}

// Limits derives the record limits this layout can represent. The name
// field reserves one byte for the NUL terminator.
func (f *Format) Limits() preset.Limits {
	return preset.Limits{
		MaxNameBytes:      f.NameWidth - 1,
		MaxEffects:        f.Effects.MaxEffects,
		MaxParamsPerBlock: f.Effects.MaxBlockParams,
	}
}

// MinSize returns the smallest buffer this layout can describe: the fixed
// region, an empty chain, the routing block and the footer.
func (f *Format) MinSize() int {
	return f.Effects.Offset + f.Effects.CountWidth + f.RoutingSize + f.Checksum.Width
}

// Validate checks the descriptor for internal consistency.
func (f *Format) Validate() error {
	if f.SchemaTag() == preset.SchemaUnknown {
		return fmt.Errorf("layout: unknown schema %q", f.Schema)
	}
	if len(f.Signature) == 0 || len(f.Signature) > 8 {
		return fmt.Errorf("layout %s: signature must be 1-8 bytes, got %d", f.Schema, len(f.Signature))
	}
	if f.Endian != "" && f.Endian != "le" && f.Endian != "be" {
		return fmt.Errorf("layout %s: endian must be le or be, got %q", f.Schema, f.Endian)
	}
	if f.SizeWidth != 1 && f.SizeWidth != 2 {
		return fmt.Errorf("layout %s: size_width must be 1 or 2", f.Schema)
	}
	// The version byte sits immediately after the signature.
	if f.SizeOffset < len(f.Signature)+1 {
		return fmt.Errorf("layout %s: size field overlaps signature or version", f.Schema)
	}
	if f.NameWidth < 2 {
		return fmt.Errorf("layout %s: name_width must be at least 2", f.Schema)
	}
	if f.NameOffset < f.SizeOffset+f.SizeWidth {
		return fmt.Errorf("layout %s: name field overlaps size field", f.Schema)
	}
	paramStart := f.NameOffset + f.NameWidth
	for _, p := range f.Params {
		if _, ok := p.Key(); !ok {
			return fmt.Errorf("layout %s: unknown parameter name %q", f.Schema, p.Name)
		}
		if p.Width != 1 && p.Width != 2 {
			return fmt.Errorf("layout %s: param %s width must be 1 or 2", f.Schema, p.Name)
		}
		if p.Kind != "" && p.Kind != "int" && p.Kind != "bool" && p.Kind != "enum" {
			return fmt.Errorf("layout %s: param %s kind %q unknown", f.Schema, p.Name, p.Kind)
		}
		if p.Offset < paramStart {
			return fmt.Errorf("layout %s: param %s at %d overlaps field ending at %d",
				f.Schema, p.Name, p.Offset, paramStart)
		}
		if p.Min > p.Max {
			return fmt.Errorf("layout %s: param %s has min %d > max %d", f.Schema, p.Name, p.Min, p.Max)
		}
		if p.Offset+p.Width > f.Effects.Offset {
			return fmt.Errorf("layout %s: param %s runs into the effect section", f.Schema, p.Name)
		}
		paramStart = p.Offset + p.Width
	}
	if f.Effects.CountWidth != 1 && f.Effects.CountWidth != 2 {
		return fmt.Errorf("layout %s: effect count_width must be 1 or 2", f.Schema)
	}
	if f.Effects.MaxEffects < 1 || f.Effects.MaxBlockParams < 1 {
		return fmt.Errorf("layout %s: effect section limits must be positive", f.Schema)
	}
	if f.Effects.ParamWidth != 1 && f.Effects.ParamWidth != 2 {
		return fmt.Errorf("layout %s: effect param_width must be 1 or 2", f.Schema)
	}
	if f.RoutingSize < 0 {
		return fmt.Errorf("layout %s: negative routing_size", f.Schema)
	}
	if !f.Checksum.Algorithm.Valid() {
		return fmt.Errorf("layout %s: unknown checksum algorithm %q", f.Schema, f.Checksum.Algorithm)
	}
	if f.Checksum.Width != 1 && f.Checksum.Width != 2 {
		return fmt.Errorf("layout %s: checksum width must be 1 or 2", f.Schema)
	}
	if f.Checksum.Start < 0 || f.Checksum.Start > f.Effects.Offset {
		return fmt.Errorf("layout %s: checksum start %d outside fixed region", f.Schema, f.Checksum.Start)
	}
	return nil
}

// Load parses and validates a YAML descriptor.
func Load(data []byte) (*Format, error) {
	var f Format
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses a YAML descriptor from disk.
func LoadFile(path string) (*Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return Load(data)
}
