package preset

import "fmt"

// WarnKind classifies non-fatal findings reported alongside a successful
// parse or conversion. Warnings are data, never errors: the pipeline keeps
// going and hands the full ordered list back to the caller.
type WarnKind int

const (
	// WarnDroppedParam: a source parameter had no entry in the rule table.
	WarnDroppedParam WarnKind = iota
	// WarnClampedValue: a mapped value fell outside the target range.
	WarnClampedValue
	// WarnDroppedEffect: an effect type had no target-side mapping.
	WarnDroppedEffect
	// WarnChecksumMismatch: footer did not verify (non-strict mode).
	WarnChecksumMismatch
	// WarnSizeMismatch: declared size disagrees with the buffer length.
	WarnSizeMismatch
)

// Warning is a structured conversion or parse warning. Fields are populated
// per kind; String renders a stable human-readable form.
type Warning struct {
	Kind     WarnKind
	Param    ParamKey   // DroppedParam, ClampedValue (global params)
	Effect   EffectType // DroppedEffect, ClampedValue (effect params)
	Slot     int        // ClampedValue inside an effect block, else -1
	Position int        // DroppedEffect: original chain position, else -1
	Original int        // ClampedValue: value before clamping
	Clamped  int        // ClampedValue: value after clamping
	Detail   string     // free-form context for size/checksum warnings
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnDroppedParam:
		if w.Slot >= 0 {
			return fmt.Sprintf("dropped %s param %d: no target mapping", w.Effect, w.Slot)
		}
		return fmt.Sprintf("dropped parameter %s: no target mapping", w.Param)
	case WarnClampedValue:
		if w.Slot >= 0 {
			return fmt.Sprintf("clamped %s param %d: %d -> %d", w.Effect, w.Slot, w.Original, w.Clamped)
		}
		return fmt.Sprintf("clamped %s: %d -> %d", w.Param, w.Original, w.Clamped)
	case WarnDroppedEffect:
		return fmt.Sprintf("dropped effect %s at position %d: no target mapping", w.Effect, w.Position)
	case WarnChecksumMismatch:
		return "checksum mismatch: " + w.Detail
	case WarnSizeMismatch:
		return "declared size mismatch: " + w.Detail
	default:
		return fmt.Sprintf("warning(%d)", int(w.Kind))
	}
}
