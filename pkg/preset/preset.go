// Package preset defines the in-memory model for device preset records and
// the typed errors and warnings the conversion pipeline reports.
package preset

import "fmt"

// Schema tags which device layout a record or byte buffer belongs to.
type Schema uint8

const (
	SchemaUnknown Schema = iota
	SchemaGP5
	SchemaGP50
)

func (s Schema) String() string {
	switch s {
	case SchemaGP5:
		return "GP5"
	case SchemaGP50:
		return "GP50"
	default:
		return "UNKNOWN"
	}
}

// ParamKey enumerates the global (non-effect) parameters of the shared
// engine. Keys are stable across schemas; only offsets and ranges differ.
type ParamKey uint8

const (
	ParamInputGain ParamKey = iota
	ParamOutputLevel
	ParamNoiseGateEnabled
	ParamNoiseGateThreshold
	ParamCabSimEnabled
	ParamMasterTone
)

func (k ParamKey) String() string {
	switch k {
	case ParamInputGain:
		return "input_gain"
	case ParamOutputLevel:
		return "output_level"
	case ParamNoiseGateEnabled:
		return "noise_gate_enabled"
	case ParamNoiseGateThreshold:
		return "noise_gate_threshold"
	case ParamCabSimEnabled:
		return "cab_sim_enabled"
	case ParamMasterTone:
		return "master_tone"
	default:
		return fmt.Sprintf("param_%d", uint8(k))
	}
}

// ParamKeyByName resolves the YAML name of a parameter key. Used by rule
// tables and layout descriptors so the data files stay human-readable.
func ParamKeyByName(name string) (ParamKey, bool) {
	for k := ParamInputGain; k <= ParamMasterTone; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// ValueKind tags the interpretation of a Value.
type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindBool
	KindEnum
)

// Value is a typed parameter value carrying its own valid range.
type Value struct {
	Kind ValueKind
	Raw  int
	Min  int
	Max  int
}

// IntValue builds an integer value with an inclusive valid range.
func IntValue(v, min, max int) Value { return Value{Kind: KindInt, Raw: v, Min: min, Max: max} }

// BoolValue builds a boolean value (stored as 0/1).
func BoolValue(b bool) Value {
	v := 0
	if b {
		v = 1
	}
	return Value{Kind: KindBool, Raw: v, Min: 0, Max: 1}
}

// EnumValue builds an enumerated value with max enumerator index.
func EnumValue(v, max int) Value { return Value{Kind: KindEnum, Raw: v, Min: 0, Max: max} }

// Bool reports the value as a boolean.
func (v Value) Bool() bool { return v.Raw != 0 }

// InRange reports whether Raw lies within [Min, Max].
func (v Value) InRange() bool { return v.Raw >= v.Min && v.Raw <= v.Max }

// Clamp returns the value clamped to its range and whether clamping occurred.
func (v Value) Clamp() (Value, bool) {
	switch {
	case v.Raw < v.Min:
		v.Raw = v.Min
		return v, true
	case v.Raw > v.Max:
		v.Raw = v.Max
		return v, true
	default:
		return v, false
	}
}

func (v Value) String() string {
	if v.Kind == KindBool {
		if v.Bool() {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("%d", v.Raw)
}

// EffectType identifies one effect in a schema-specific ID space.
type EffectType uint16

func (t EffectType) String() string {
	if name, ok := effectNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", uint16(t))
}

// Known effect IDs for both schemas. The GP50 engine shares the GP5 effect
// set but numbers it in a separate bank. These IDs reflect the documented
// layout hypothesis; unknown IDs still round-trip, they just print as hex.
const (
	GP5Overdrive  EffectType = 0x0001
	GP5Distortion EffectType = 0x0002
	GP5Fuzz       EffectType = 0x0003
	GP5Boost      EffectType = 0x0004
	GP5Chorus     EffectType = 0x0010
	GP5Flanger    EffectType = 0x0011
	GP5Phaser     EffectType = 0x0012
	GP5Tremolo    EffectType = 0x0013
	GP5Delay      EffectType = 0x0020
	GP5Reverb     EffectType = 0x0021
	GP5Compressor EffectType = 0x0030
	GP5NoiseGate  EffectType = 0x0031
	GP5EQ         EffectType = 0x0032
	GP5AmpSim     EffectType = 0x0040
	GP5Cabinet    EffectType = 0x0041
	GP5Wah        EffectType = 0x0050

	GP50Overdrive  EffectType = 0x0101
	GP50Distortion EffectType = 0x0102
	GP50Boost      EffectType = 0x0104
	GP50Chorus     EffectType = 0x0110
	GP50Flanger    EffectType = 0x0111
	GP50Phaser     EffectType = 0x0112
	GP50Tremolo    EffectType = 0x0113
	GP50Delay      EffectType = 0x0120
	GP50Reverb     EffectType = 0x0121
	GP50Compressor EffectType = 0x0130
	GP50NoiseGate  EffectType = 0x0131
	GP50EQ         EffectType = 0x0132
	GP50AmpSim     EffectType = 0x0140
	GP50Cabinet    EffectType = 0x0141
)

var effectNames = map[EffectType]string{
	GP5Overdrive: "overdrive", GP5Distortion: "distortion", GP5Fuzz: "fuzz",
	GP5Boost: "boost", GP5Chorus: "chorus", GP5Flanger: "flanger",
	GP5Phaser: "phaser", GP5Tremolo: "tremolo", GP5Delay: "delay",
	GP5Reverb: "reverb", GP5Compressor: "compressor", GP5NoiseGate: "noise_gate",
	GP5EQ: "eq", GP5AmpSim: "amp_sim", GP5Cabinet: "cabinet", GP5Wah: "wah",

	GP50Overdrive: "overdrive", GP50Distortion: "distortion", GP50Boost: "boost",
	GP50Chorus: "chorus", GP50Flanger: "flanger", GP50Phaser: "phaser",
	GP50Tremolo: "tremolo", GP50Delay: "delay", GP50Reverb: "reverb",
	GP50Compressor: "compressor", GP50NoiseGate: "noise_gate", GP50EQ: "eq",
	GP50AmpSim: "amp_sim", GP50Cabinet: "cabinet",
}

// EffectBlock is one unit of the effect chain: a type identifier, an enabled
// flag, and its ordered parameter values. The serialized parameter count is
// always len(Params).
type EffectBlock struct {
	Type    EffectType
	Enabled bool
	Params  []int
}

// Clone deep-copies the block.
func (b EffectBlock) Clone() EffectBlock {
	out := b
	out.Params = append([]int(nil), b.Params...)
	return out
}

// ChecksumInfo records what the parser saw in the footer.
type ChecksumInfo struct {
	Algorithm string
	Stored    uint16
	Computed  uint16
	Valid     bool
}

// Limits bounds the variable-width parts of a record. Derived from the
// layout descriptor in the pipeline; DefaultLimits supplies the documented
// values for standalone validation.
type Limits struct {
	MaxNameBytes      int
	MaxEffects        int
	MaxParamsPerBlock int
}

// DefaultLimits returns the documented limits for a schema.
func DefaultLimits(s Schema) Limits {
	switch s {
	case SchemaGP50:
		return Limits{MaxNameBytes: 32, MaxEffects: 12, MaxParamsPerBlock: 16}
	default:
		return Limits{MaxNameBytes: 32, MaxEffects: 9, MaxParamsPerBlock: 16}
	}
}

// Record is a fully decoded preset. Whichever pipeline stage holds a Record
// owns it; the conversion engine always produces a fresh Record and leaves
// the source untouched.
type Record struct {
	Schema   Schema
	Name     string
	Version  uint8
	Params   map[ParamKey]Value
	Effects  []EffectBlock
	Routing  []byte
	Unknown  []byte // bytes the engine does not interpret, carried verbatim
	Checksum ChecksumInfo
}

// Clone deep-copies the record.
func (r *Record) Clone() *Record {
	out := *r
	out.Params = make(map[ParamKey]Value, len(r.Params))
	for k, v := range r.Params {
		out.Params[k] = v
	}
	out.Effects = make([]EffectBlock, len(r.Effects))
	for i, e := range r.Effects {
		out.Effects[i] = e.Clone()
	}
	out.Routing = append([]byte(nil), r.Routing...)
	out.Unknown = append([]byte(nil), r.Unknown...)
	return &out
}

// Validate checks the record against its schema invariants using the
// documented limits for its schema.
func (r *Record) Validate() error {
	return r.ValidateLimits(DefaultLimits(r.Schema))
}

// ValidateLimits checks the record against explicit limits.
func (r *Record) ValidateLimits(lim Limits) error {
	if r.Schema == SchemaUnknown {
		return fmt.Errorf("schema not set: %w", ErrInvalidRecord)
	}
	if len(r.Name) > lim.MaxNameBytes {
		return fmt.Errorf("name %q exceeds %d bytes: %w", r.Name, lim.MaxNameBytes, ErrInvalidRecord)
	}
	if len(r.Effects) > lim.MaxEffects {
		return fmt.Errorf("effect chain length %d exceeds %d: %w", len(r.Effects), lim.MaxEffects, ErrInvalidRecord)
	}
	for i, e := range r.Effects {
		if len(e.Params) > lim.MaxParamsPerBlock {
			return fmt.Errorf("effect %d (%s) has %d params, max %d: %w",
				i, e.Type, len(e.Params), lim.MaxParamsPerBlock, ErrInvalidRecord)
		}
	}
	return nil
}
