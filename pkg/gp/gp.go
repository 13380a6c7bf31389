// Package gp is the high-level entry point of the preset toolkit. It wires
// the parser, conversion engine and writer together behind a small facade,
// so most callers never import the internal packages.
//
// The typical flow converts a GP-5 capture to GP-50 bytes in one call:
//
//	raw, err := presetfile.Read("solo.gp5")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, warnings, err := gp.ConvertBytes(raw, gp.DefaultOptions())
package gp

import (
	"bytes"
	"fmt"

	"github.com/takt-audio/presetkit/internal/convert"
	"github.com/takt-audio/presetkit/internal/layout"
	"github.com/takt-audio/presetkit/internal/parser"
	"github.com/takt-audio/presetkit/internal/writer"
	"github.com/takt-audio/presetkit/pkg/preset"
)

// Options controls the whole pipeline. The zero value works; DefaultOptions
// additionally enables the writer self-check.
type Options struct {
	// Layouts overrides the built-in byte layout per schema. Schemas not
	// present fall back to the built-ins.
	Layouts map[preset.Schema]*layout.Format

	// StrictChecksum makes a checksum mismatch a fatal parse error instead
	// of a warning.
	StrictChecksum bool

	// SelfCheck makes the writer re-parse its own output before returning.
	SelfCheck bool

	// Rules overrides the built-in GP-5 to GP-50 rule table.
	Rules *convert.RuleTable
}

// DefaultOptions returns the recommended settings: lenient checksum
// handling on input, self-checked output.
func DefaultOptions() Options {
	return Options{SelfCheck: true}
}

func (o Options) layoutFor(s preset.Schema) (*layout.Format, error) {
	if f, ok := o.Layouts[s]; ok {
		return f, nil
	}
	if f, ok := layout.ForSchema(s); ok {
		return f, nil
	}
	return nil, fmt.Errorf("gp: no layout for schema %s: %w", s, preset.ErrBadSignature)
}

func (o Options) rules() *convert.RuleTable {
	if o.Rules != nil {
		return o.Rules
	}
	return convert.DefaultGP5ToGP50()
}

// DetectSchema sniffs the signature bytes of a capture.
func DetectSchema(data []byte) preset.Schema {
	for _, s := range []preset.Schema{preset.SchemaGP5, preset.SchemaGP50} {
		if f, ok := layout.ForSchema(s); ok && bytes.HasPrefix(data, f.Signature) {
			return s
		}
	}
	return preset.SchemaUnknown
}

// Parse decodes raw as the given schema. SchemaUnknown means sniff the
// signature first.
func Parse(raw *preset.RawBytes, schema preset.Schema, opts Options) (*preset.Record, []preset.Warning, error) {
	if schema == preset.SchemaUnknown {
		schema = DetectSchema(raw.Bytes())
		if schema == preset.SchemaUnknown {
			return nil, nil, fmt.Errorf("gp: %s: unrecognized signature: %w",
				origin(raw), preset.ErrBadSignature)
		}
	}
	f, err := opts.layoutFor(schema)
	if err != nil {
		return nil, nil, err
	}
	return parser.Parse(raw, f, parser.Options{StrictChecksum: opts.StrictChecksum})
}

// Convert maps rec through the configured rule table. The source record is
// never modified.
func Convert(rec *preset.Record, opts Options) (*preset.Record, []preset.Warning, error) {
	table := opts.rules()
	target, err := opts.layoutFor(table.TargetSchema())
	if err != nil {
		return nil, nil, err
	}
	eng, err := convert.NewEngine(table, target)
	if err != nil {
		return nil, nil, err
	}
	return eng.Convert(rec)
}

// Serialize encodes rec using its schema's layout.
func Serialize(rec *preset.Record, opts Options) (*preset.RawBytes, error) {
	f, err := opts.layoutFor(rec.Schema)
	if err != nil {
		return nil, err
	}
	return writer.Serialize(rec, f, writer.Options{SelfCheck: opts.SelfCheck})
}

// ConvertBytes runs the full pipeline: parse raw, convert, serialize.
// The returned warnings merge the parse and conversion stages in order.
func ConvertBytes(raw *preset.RawBytes, opts Options) (*preset.RawBytes, []preset.Warning, error) {
	rec, parseWarnings, err := Parse(raw, preset.SchemaUnknown, opts)
	if err != nil {
		return nil, nil, err
	}
	out, convWarnings, err := Convert(rec, opts)
	if err != nil {
		return nil, parseWarnings, err
	}
	warnings := append(parseWarnings, convWarnings...)
	data, err := Serialize(out, opts)
	if err != nil {
		return nil, warnings, err
	}
	return data, warnings, nil
}

// CheckCompatibility reports whether rec would convert without losing any
// effect, along with the warnings a conversion would produce.
func CheckCompatibility(rec *preset.Record, opts Options) (bool, []preset.Warning, error) {
	table := opts.rules()
	target, err := opts.layoutFor(table.TargetSchema())
	if err != nil {
		return false, nil, err
	}
	eng, err := convert.NewEngine(table, target)
	if err != nil {
		return false, nil, err
	}
	ok, warnings := eng.CheckCompatibility(rec)
	return ok, warnings, nil
}

func origin(raw *preset.RawBytes) string {
	if raw.Origin() != "" {
		return raw.Origin()
	}
	return "<memory>"
}
