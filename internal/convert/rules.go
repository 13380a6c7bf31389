// Package convert maps preset records between device schemas using a
// declarative rule table. The table is data (YAML) and the value transforms
// are expressions compiled once at load time, so a corrected mapping ships
// without a rebuild.
package convert

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/takt-audio/presetkit/pkg/preset"
)

// ParamRule maps one global parameter. An empty To drops the parameter
// explicitly (same outcome as no rule at all, but self-documenting in the
// table).
type ParamRule struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Transform string `yaml:"transform,omitempty"` // expression over v
	Min       int    `yaml:"min"`
	Max       int    `yaml:"max"`

	prog *vm.Program
}

// SlotRule maps one effect parameter slot. Entries are listed in target
// slot order; FromSlot names the source position.
type SlotRule struct {
	FromSlot  int    `yaml:"from_slot"`
	Transform string `yaml:"transform,omitempty"`
	Min       int    `yaml:"min"`
	Max       int    `yaml:"max"`

	prog *vm.Program
}

// EffectRule maps one effect type. An empty Params list carries every slot
// through unchanged (ranges bounded only by the field width); a non-empty
// list replaces the slot layout and drops unreferenced source slots.
type EffectRule struct {
	From   uint16     `yaml:"from"`
	To     uint16     `yaml:"to"`
	Params []SlotRule `yaml:"params,omitempty"`
}

// RuleTable is the declarative source-to-target mapping.
type RuleTable struct {
	Source        string       `yaml:"source"`
	Target        string       `yaml:"target"`
	TargetVersion uint8        `yaml:"target_version"`
	Params        []ParamRule  `yaml:"params"`
	Effects       []EffectRule `yaml:"effects"`

	paramsByKey   map[preset.ParamKey]*ParamRule
	effectsByType map[preset.EffectType]*EffectRule
}

// SourceSchema returns the table's source schema tag.
func (t *RuleTable) SourceSchema() preset.Schema { return schemaByName(t.Source) }

// TargetSchema returns the table's target schema tag.
func (t *RuleTable) TargetSchema() preset.Schema { return schemaByName(t.Target) }

func schemaByName(name string) preset.Schema {
	switch name {
	case "GP5":
		return preset.SchemaGP5
	case "GP50":
		return preset.SchemaGP50
	default:
		return preset.SchemaUnknown
	}
}

func compileTransform(src string) (*vm.Program, error) {
	if src == "" {
		return nil, nil
	}
	return expr.Compile(src, expr.Env(map[string]any{"v": 0}), expr.AsInt())
}

func runTransform(prog *vm.Program, v int) (int, error) {
	if prog == nil {
		return v, nil
	}
	out, err := expr.Run(prog, map[string]any{"v": v})
	if err != nil {
		return 0, err
	}
	n, ok := out.(int)
	if !ok {
		return 0, fmt.Errorf("transform yielded %T, want int", out)
	}
	return n, nil
}

// compile resolves names, compiles transforms and builds the lookup maps.
func (t *RuleTable) compile() error {
	if t.SourceSchema() == preset.SchemaUnknown || t.TargetSchema() == preset.SchemaUnknown {
		return fmt.Errorf("rules: unknown schema pair %q -> %q", t.Source, t.Target)
	}
	t.paramsByKey = make(map[preset.ParamKey]*ParamRule, len(t.Params))
	for i := range t.Params {
		r := &t.Params[i]
		key, ok := preset.ParamKeyByName(r.From)
		if !ok {
			return fmt.Errorf("rules: unknown parameter %q", r.From)
		}
		if r.To != "" {
			if _, ok := preset.ParamKeyByName(r.To); !ok {
				return fmt.Errorf("rules: unknown target parameter %q", r.To)
			}
		}
		if r.Min > r.Max {
			return fmt.Errorf("rules: param %s has min %d > max %d", r.From, r.Min, r.Max)
		}
		prog, err := compileTransform(r.Transform)
		if err != nil {
			return fmt.Errorf("rules: param %s transform: %w", r.From, err)
		}
		r.prog = prog
		if _, dup := t.paramsByKey[key]; dup {
			return fmt.Errorf("rules: duplicate param rule for %s", r.From)
		}
		t.paramsByKey[key] = r
	}
	t.effectsByType = make(map[preset.EffectType]*EffectRule, len(t.Effects))
	for i := range t.Effects {
		r := &t.Effects[i]
		for j := range r.Params {
			s := &r.Params[j]
			if s.FromSlot < 0 {
				return fmt.Errorf("rules: effect 0x%04X slot rule %d has negative from_slot", r.From, j)
			}
			if s.Min > s.Max {
				return fmt.Errorf("rules: effect 0x%04X slot %d has min %d > max %d", r.From, j, s.Min, s.Max)
			}
			prog, err := compileTransform(s.Transform)
			if err != nil {
				return fmt.Errorf("rules: effect 0x%04X slot %d transform: %w", r.From, j, err)
			}
			s.prog = prog
		}
		if _, dup := t.effectsByType[preset.EffectType(r.From)]; dup {
			return fmt.Errorf("rules: duplicate effect rule for 0x%04X", r.From)
		}
		t.effectsByType[preset.EffectType(r.From)] = r
	}
	return nil
}

// LoadTable parses and compiles a YAML rule table.
func LoadTable(data []byte) (*RuleTable, error) {
	var t RuleTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTableFile reads and compiles a rule table from disk.
func LoadTableFile(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return LoadTable(data)
}

// defaultGP5ToGP50 is the built-in mapping. GP-5 ranges run 0-100, GP-50
// ranges 0-127, hence the scaling transforms. Fuzz and wah have no GP-50
// counterpart and carry no rule, so those effects drop with a warning.
const defaultGP5ToGP50 = `
source: GP5
target: GP50
target_version: 1
params:
  - {from: input_gain, to: input_gain, transform: "v * 127 / 100", min: 0, max: 127}
  - {from: output_level, to: output_level, transform: "v * 127 / 100", min: 0, max: 127}
  - {from: noise_gate_enabled, to: noise_gate_enabled, min: 0, max: 1}
  - {from: noise_gate_threshold, to: noise_gate_threshold, transform: "v * 127 / 100", min: 0, max: 127}
  - {from: cab_sim_enabled, to: cab_sim_enabled, min: 0, max: 1}
  - {from: master_tone, to: master_tone, transform: "v * 127 / 100", min: 0, max: 127}
effects:
  - {from: 0x0001, to: 0x0101} # overdrive
  - {from: 0x0002, to: 0x0102} # distortion
  - {from: 0x0004, to: 0x0104} # boost
  - {from: 0x0010, to: 0x0110} # chorus
  - {from: 0x0011, to: 0x0111} # flanger
  - {from: 0x0012, to: 0x0112} # phaser
  - {from: 0x0013, to: 0x0113} # tremolo
  - from: 0x0020 # delay: time in ms carries, levels rescale
    to: 0x0120
    params:
      - {from_slot: 0, min: 0, max: 2000}
      - {from_slot: 1, transform: "v * 127 / 100", min: 0, max: 127}
      - {from_slot: 2, transform: "v * 127 / 100", min: 0, max: 127}
      - {from_slot: 3, min: 0, max: 1}
  - {from: 0x0021, to: 0x0121} # reverb
  - {from: 0x0030, to: 0x0130} # compressor
  - {from: 0x0031, to: 0x0131} # noise_gate
  - {from: 0x0032, to: 0x0132} # eq
  - {from: 0x0040, to: 0x0140} # amp_sim
  - {from: 0x0041, to: 0x0141} # cabinet
`

// DefaultGP5ToGP50 returns a fresh compiled copy of the built-in table.
func DefaultGP5ToGP50() *RuleTable {
	t, err := LoadTable([]byte(defaultGP5ToGP50))
	if err != nil {
		// The embedded table is part of the build; failing to compile it is
		// a programming error, not an input error.
		panic(fmt.Sprintf("convert: built-in rule table: %v", err))
	}
	return t
}
