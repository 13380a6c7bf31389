package convert

import (
	"fmt"

	"github.com/takt-audio/presetkit/internal/layout"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// Engine converts records from the table's source schema to its target
// schema. An Engine is immutable after construction and safe for concurrent
// use; Convert never touches the source record.
type Engine struct {
	table  *RuleTable
	target *layout.Format
}

// NewEngine pairs a compiled rule table with the target layout.
func NewEngine(table *RuleTable, target *layout.Format) (*Engine, error) {
	if table.TargetSchema() != target.SchemaTag() {
		return nil, fmt.Errorf("rules target %s, layout is %s", table.Target, target.Schema)
	}
	return &Engine{table: table, target: target}, nil
}

// Convert maps src onto a fresh target record. Per-parameter and per-effect
// issues never abort the conversion; they surface as ordered warnings. Only
// a source record that violates its own schema invariants fails.
func (e *Engine) Convert(src *preset.Record) (*preset.Record, []preset.Warning, error) {
	if src.Schema != e.table.SourceSchema() {
		return nil, nil, fmt.Errorf("source schema %s, rules expect %s: %w",
			src.Schema, e.table.Source, preset.ErrInvalidRecord)
	}
	if err := src.Validate(); err != nil {
		return nil, nil, err
	}

	warnings := make([]preset.Warning, 0, 4)
	out := &preset.Record{
		Schema:  e.table.TargetSchema(),
		Name:    src.Name,
		Version: e.table.TargetVersion,
		Params:  make(map[preset.ParamKey]preset.Value),
	}

	// Global parameters, iterated in key order so the warning list is
	// identical across runs regardless of map layout.
	for key := preset.ParamInputGain; key <= preset.ParamMasterTone; key++ {
		v, present := src.Params[key]
		if !present {
			continue
		}
		rule := e.table.paramsByKey[key]
		if rule == nil || rule.To == "" {
			warnings = append(warnings, preset.Warning{
				Kind: preset.WarnDroppedParam, Param: key, Slot: -1, Position: -1,
			})
			continue
		}
		mapped, err := runTransform(rule.prog, v.Raw)
		if err != nil {
			return nil, nil, fmt.Errorf("param %s: %w", key, err)
		}
		targetKey, _ := preset.ParamKeyByName(rule.To)
		tv := preset.Value{Kind: v.Kind, Raw: mapped, Min: rule.Min, Max: rule.Max}
		if clamped, changed := tv.Clamp(); changed {
			warnings = append(warnings, preset.Warning{
				Kind: preset.WarnClampedValue, Param: key, Slot: -1, Position: -1,
				Original: mapped, Clamped: clamped.Raw,
			})
			tv = clamped
		}
		out.Params[targetKey] = tv
	}

	// Effect chain, original order preserved for the survivors.
	for i, block := range src.Effects {
		rule := e.table.effectsByType[block.Type]
		if rule == nil {
			warnings = append(warnings, preset.Warning{
				Kind: preset.WarnDroppedEffect, Effect: block.Type, Position: i, Slot: -1,
			})
			continue
		}
		mapped := preset.EffectBlock{
			Type:    preset.EffectType(rule.To),
			Enabled: block.Enabled,
		}
		if len(rule.Params) == 0 {
			mapped.Params = append([]int(nil), block.Params...)
		} else {
			mapped.Params = make([]int, 0, len(rule.Params))
			used := make([]bool, len(block.Params))
			for _, slot := range rule.Params {
				if slot.FromSlot >= len(block.Params) {
					continue // source block is shorter than the rule expects
				}
				used[slot.FromSlot] = true
				v, err := runTransform(slot.prog, block.Params[slot.FromSlot])
				if err != nil {
					return nil, nil, fmt.Errorf("effect %s slot %d: %w", block.Type, slot.FromSlot, err)
				}
				tv := preset.IntValue(v, slot.Min, slot.Max)
				if clamped, changed := tv.Clamp(); changed {
					warnings = append(warnings, preset.Warning{
						Kind: preset.WarnClampedValue, Effect: block.Type, Slot: slot.FromSlot,
						Position: i, Original: v, Clamped: clamped.Raw,
					})
					tv = clamped
				}
				mapped.Params = append(mapped.Params, tv.Raw)
			}
			for s, u := range used {
				if !u {
					warnings = append(warnings, preset.Warning{
						Kind: preset.WarnDroppedParam, Effect: block.Type, Slot: s, Position: i,
					})
				}
			}
		}
		out.Effects = append(out.Effects, mapped)
	}

	// Routing and the unknown region describe the source device's byte
	// layout; neither survives a schema change. The writer emits the
	// target's default (zeroed) routing block.
	if err := out.ValidateLimits(e.target.Limits()); err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}

// CheckCompatibility reports whether src would convert without losing any
// effect, along with the warnings a conversion would produce.
func (e *Engine) CheckCompatibility(src *preset.Record) (bool, []preset.Warning) {
	_, warnings, err := e.Convert(src)
	if err != nil {
		return false, warnings
	}
	for _, w := range warnings {
		if w.Kind == preset.WarnDroppedEffect {
			return false, warnings
		}
	}
	return true, warnings
}
