package layout

import (
	"github.com/takt-audio/presetkit/internal/checksum"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// GP5 returns the built-in descriptor for GP-5 presets. It encodes the
// documented layout hypothesis; `presetctl --layout` or Options.Layout can
// substitute a corrected descriptor once real captures pin the format down.
//
//	Offset  Size  Description
//	------  ----  -------------------------------------------
//	 0x00    4    'G' 'P' '5' NUL
//	 0x04    1    Format version
//	 0x05    2    Declared total file size (LE)
//	 0x07   32    Preset name, NUL-padded
//	 0x27    6    Global parameters, one byte each
//	 0x2D    1    Effect count, then the variable chain
//	  ...  var    Effects, routing (8), unknown region
//	  end    2    Sum-16 footer over bytes [0x04, footer)
func GP5() *Format {
	return &Format{
		Schema:     "GP5",
		Signature:  HexBytes{'G', 'P', '5', 0x00},
		Version:    1,
		Endian:     "le",
		SizeOffset: 5,
		SizeWidth:  2,
		NameOffset: 7,
		NameWidth:  32,
		Params: []ParamField{
			{Name: "input_gain", Offset: 0x27, Width: 1, Kind: "int", Min: 0, Max: 100},
			{Name: "output_level", Offset: 0x28, Width: 1, Kind: "int", Min: 0, Max: 100},
			{Name: "noise_gate_enabled", Offset: 0x29, Width: 1, Kind: "bool", Min: 0, Max: 1},
			{Name: "noise_gate_threshold", Offset: 0x2A, Width: 1, Kind: "int", Min: 0, Max: 100},
			{Name: "cab_sim_enabled", Offset: 0x2B, Width: 1, Kind: "bool", Min: 0, Max: 1},
			{Name: "master_tone", Offset: 0x2C, Width: 1, Kind: "int", Min: 0, Max: 100},
		},
		Effects: EffectSection{
			Offset:         0x2D,
			CountWidth:     1,
			MaxEffects:     9,
			ParamWidth:     2,
			MaxBlockParams: 16,
		},
		RoutingSize: 8,
		Checksum:    ChecksumSpec{Algorithm: checksum.Sum16, Start: 4, Width: 2},
	}
}

// GP50 returns the built-in descriptor for GP-50 presets. Same engine and
// fixed-region shape as the GP-5, wider parameter ranges, a longer chain,
// a larger routing block for the extra I/O, and a CRC-16 footer.
func GP50() *Format {
	return &Format{
		Schema:     "GP50",
		Signature:  HexBytes{'G', 'P', '5', '0'},
		Version:    1,
		Endian:     "le",
		SizeOffset: 5,
		SizeWidth:  2,
		NameOffset: 7,
		NameWidth:  32,
		Params: []ParamField{
			{Name: "input_gain", Offset: 0x27, Width: 1, Kind: "int", Min: 0, Max: 127},
			{Name: "output_level", Offset: 0x28, Width: 1, Kind: "int", Min: 0, Max: 127},
			{Name: "noise_gate_enabled", Offset: 0x29, Width: 1, Kind: "bool", Min: 0, Max: 1},
			{Name: "noise_gate_threshold", Offset: 0x2A, Width: 1, Kind: "int", Min: 0, Max: 127},
			{Name: "cab_sim_enabled", Offset: 0x2B, Width: 1, Kind: "bool", Min: 0, Max: 1},
			{Name: "master_tone", Offset: 0x2C, Width: 1, Kind: "int", Min: 0, Max: 127},
		},
		Effects: EffectSection{
			Offset:         0x2D,
			CountWidth:     1,
			MaxEffects:     12,
			ParamWidth:     2,
			MaxBlockParams: 16,
		},
		RoutingSize: 12,
		Checksum:    ChecksumSpec{Algorithm: checksum.CRC16, Start: 4, Width: 2},
	}
}

// ForSchema returns the built-in descriptor for a schema tag.
func ForSchema(s preset.Schema) (*Format, bool) {
	switch s {
	case preset.SchemaGP5:
		return GP5(), true
	case preset.SchemaGP50:
		return GP50(), true
	default:
		return nil, false
	}
}
