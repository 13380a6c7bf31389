package writer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/takt-audio/presetkit/internal/checksum"
	"github.com/takt-audio/presetkit/internal/layout"
	"github.com/takt-audio/presetkit/internal/parser"
	"github.com/takt-audio/presetkit/pkg/preset"
)

func gp5Record() *preset.Record {
	return &preset.Record{
		Schema:  preset.SchemaGP5,
		Name:    "Clean Comp",
		Version: 1,
		Params: map[preset.ParamKey]preset.Value{
			preset.ParamInputGain:          preset.IntValue(50, 0, 100),
			preset.ParamOutputLevel:        preset.IntValue(60, 0, 100),
			preset.ParamNoiseGateEnabled:   preset.BoolValue(true),
			preset.ParamNoiseGateThreshold: preset.IntValue(30, 0, 100),
			preset.ParamCabSimEnabled:      preset.BoolValue(false),
			preset.ParamMasterTone:         preset.IntValue(55, 0, 100),
		},
		Effects: []preset.EffectBlock{
			{Type: preset.GP5Compressor, Enabled: true, Params: []int{40, 70}},
			{Type: preset.GP5Reverb, Enabled: true, Params: []int{35, 50, 80}},
		},
		Routing: []byte{1, 2, 3, 4, 5, 6, 7, 8},
		Unknown: []byte{0xDE, 0xAD},
	}
}

func TestSerializeRoundTrips(t *testing.T) {
	f := layout.GP5()
	rec := gp5Record()

	raw, err := Serialize(rec, f, Options{SelfCheck: true})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got, warnings, err := parser.Parse(raw, f, parser.Options{StrictChecksum: true})
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if got.Name != rec.Name {
		t.Errorf("name = %q, want %q", got.Name, rec.Name)
	}
	if got.Version != rec.Version {
		t.Errorf("version = %d, want %d", got.Version, rec.Version)
	}
	for key, want := range rec.Params {
		if got.Params[key].Raw != want.Raw {
			t.Errorf("param %s = %d, want %d", key, got.Params[key].Raw, want.Raw)
		}
	}
	if len(got.Effects) != len(rec.Effects) {
		t.Fatalf("effect count = %d, want %d", len(got.Effects), len(rec.Effects))
	}
	for i := range rec.Effects {
		want, have := rec.Effects[i], got.Effects[i]
		if want.Type != have.Type || want.Enabled != have.Enabled {
			t.Errorf("effect %d = %v/%v, want %v/%v", i, have.Type, have.Enabled, want.Type, want.Enabled)
		}
		for j := range want.Params {
			if have.Params[j] != want.Params[j] {
				t.Errorf("effect %d param %d = %d, want %d", i, j, have.Params[j], want.Params[j])
			}
		}
	}
	if !bytes.Equal(got.Routing, rec.Routing) {
		t.Errorf("routing = % X, want % X", got.Routing, rec.Routing)
	}
	if !bytes.Equal(got.Unknown, rec.Unknown) {
		t.Errorf("unknown region = % X, want % X", got.Unknown, rec.Unknown)
	}
	if !got.Checksum.Valid {
		t.Error("checksum reported invalid on freshly written bytes")
	}
}

func TestSerializeGP50RoundTrips(t *testing.T) {
	f := layout.GP50()
	rec := &preset.Record{
		Schema:  preset.SchemaGP50,
		Name:    "Wide Hall",
		Version: 1,
		Params: map[preset.ParamKey]preset.Value{
			preset.ParamInputGain: preset.IntValue(90, 0, 127),
		},
		Effects: []preset.EffectBlock{
			{Type: preset.GP50Reverb, Enabled: true, Params: []int{100, 64}},
		},
	}
	raw, err := Serialize(rec, f, Options{SelfCheck: true})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, _, err := parser.Parse(raw, f, parser.Options{StrictChecksum: true})
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if got.Schema != preset.SchemaGP50 || got.Name != "Wide Hall" {
		t.Errorf("got schema %v name %q", got.Schema, got.Name)
	}
	if len(got.Routing) != f.RoutingSize {
		t.Errorf("routing = %d bytes, want the layout's %d", len(got.Routing), f.RoutingSize)
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	f := layout.GP5()
	rec := gp5Record()
	a, err := Serialize(rec, f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Serialize(rec, f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same record serialized to different bytes")
	}
}

func TestSerializeFooterMatchesAlgorithm(t *testing.T) {
	f := layout.GP5()
	raw, err := Serialize(gp5Record(), f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	data := raw.Bytes()
	body := data[:len(data)-f.Checksum.Width]
	want, err := checksum.Compute(f.Checksum.Algorithm, body[f.Checksum.Start:])
	if err != nil {
		t.Fatal(err)
	}
	got := uint16(data[len(data)-2]) | uint16(data[len(data)-1])<<8
	if got != want {
		t.Errorf("footer = 0x%04X, want 0x%04X", got, want)
	}
}

func TestSerializeDetectableCorruption(t *testing.T) {
	f := layout.GP5()
	raw, err := Serialize(gp5Record(), f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	data := append([]byte(nil), raw.Bytes()...)
	data[0x28] ^= 0xFF // flip a parameter byte
	_, _, err = parser.Parse(preset.NewRawBytes(data, ""), f, parser.Options{StrictChecksum: true})
	if !errors.Is(err, preset.ErrChecksumMismatch) {
		t.Fatalf("want checksum mismatch after corruption, got %v", err)
	}
}

func TestSerializeSanitizesName(t *testing.T) {
	f := layout.GP5()
	rec := gp5Record()
	rec.Name = "Lead\tTone \x01"

	raw, err := Serialize(rec, f, Options{SelfCheck: true})
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, _, err := parser.Parse(raw, f, parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Lead_Tone _" {
		t.Errorf("name = %q, want %q", got.Name, "Lead_Tone _")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Plain", 32, "Plain"},
		{"Tab\there", 32, "Tab_here"},
		{"Café", 32, "Caf_"},
		{"This name runs far past the field", 16, "This name runs "},
		{"", 32, ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in, tt.width); got != tt.want {
			t.Errorf("SanitizeName(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestSerializeRejectsOversizedRouting(t *testing.T) {
	rec := gp5Record()
	rec.Routing = make([]byte, 20)
	_, err := Serialize(rec, layout.GP5(), Options{})
	if !errors.Is(err, preset.ErrInvalidRecord) {
		t.Fatalf("want invalid record, got %v", err)
	}
}

func TestSerializeRejectsOversizedChain(t *testing.T) {
	rec := gp5Record()
	for len(rec.Effects) <= layout.GP5().Effects.MaxEffects {
		rec.Effects = append(rec.Effects, preset.EffectBlock{Type: preset.GP5Chorus, Params: []int{1}})
	}
	_, err := Serialize(rec, layout.GP5(), Options{})
	if !errors.Is(err, preset.ErrInvalidRecord) {
		t.Fatalf("want invalid record, got %v", err)
	}
}

func TestSerializeRejectsValueOutsideField(t *testing.T) {
	rec := gp5Record()
	rec.Params[preset.ParamInputGain] = preset.IntValue(300, 0, 100)
	_, err := Serialize(rec, layout.GP5(), Options{})
	if !errors.Is(err, preset.ErrInvalidRecord) {
		t.Fatalf("want invalid record for 300 in a one-byte field, got %v", err)
	}

	rec = gp5Record()
	rec.Effects[0].Params[0] = 1 << 17
	_, err = Serialize(rec, layout.GP5(), Options{})
	if !errors.Is(err, preset.ErrInvalidRecord) {
		t.Fatalf("want invalid record for oversized effect param, got %v", err)
	}
}

func TestSerializeDefaultsVersionFromLayout(t *testing.T) {
	f := layout.GP5()
	rec := gp5Record()
	rec.Version = 0
	raw, err := Serialize(rec, f, Options{SelfCheck: true})
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := parser.Parse(raw, f, parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != f.Version {
		t.Errorf("version = %d, want layout default %d", got.Version, f.Version)
	}
}
