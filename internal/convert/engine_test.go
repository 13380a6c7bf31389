package convert

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takt-audio/presetkit/internal/layout"
	"github.com/takt-audio/presetkit/pkg/preset"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultGP5ToGP50(), layout.GP50())
	require.NoError(t, err)
	return e
}

func sourceRecord() *preset.Record {
	return &preset.Record{
		Schema:  preset.SchemaGP5,
		Name:    "Stage Rig",
		Version: 1,
		Params: map[preset.ParamKey]preset.Value{
			preset.ParamInputGain:        preset.IntValue(50, 0, 100),
			preset.ParamOutputLevel:      preset.IntValue(80, 0, 100),
			preset.ParamNoiseGateEnabled: preset.BoolValue(true),
		},
		Effects: []preset.EffectBlock{
			{Type: preset.GP5Overdrive, Enabled: true, Params: []int{70, 45, 60}},
			{Type: preset.GP5Delay, Enabled: true, Params: []int{500, 30, 80, 1}},
		},
	}
}

func TestConvertMapsParamsAndEffects(t *testing.T) {
	e := newTestEngine(t)
	src := sourceRecord()

	out, warnings, err := e.Convert(src)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, preset.SchemaGP50, out.Schema)
	assert.Equal(t, "Stage Rig", out.Name)
	// 0-100 values rescale onto 0-127.
	assert.Equal(t, 63, out.Params[preset.ParamInputGain].Raw)
	assert.Equal(t, 101, out.Params[preset.ParamOutputLevel].Raw)
	assert.True(t, out.Params[preset.ParamNoiseGateEnabled].Bool())

	require.Len(t, out.Effects, 2)
	assert.Equal(t, preset.GP50Overdrive, out.Effects[0].Type)
	assert.Equal(t, []int{70, 45, 60}, out.Effects[0].Params, "carry-all rule keeps slots")
	assert.Equal(t, preset.GP50Delay, out.Effects[1].Type)
	// Delay: time carries, levels rescale, tap flag carries.
	assert.Equal(t, []int{500, 38, 101, 1}, out.Effects[1].Params)
}

func TestConvertNeverMutatesSource(t *testing.T) {
	e := newTestEngine(t)
	src := sourceRecord()
	before := src.Clone()

	_, _, err := e.Convert(src)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(before, src.Clone()), "source record changed during conversion")
}

func TestConvertClampsOutOfRangeValue(t *testing.T) {
	table, err := LoadTable([]byte(`
source: GP5
target: GP50
target_version: 1
params:
  - {from: input_gain, to: input_gain, min: 0, max: 127}
`))
	require.NoError(t, err)
	e, err := NewEngine(table, layout.GP50())
	require.NoError(t, err)

	src := &preset.Record{
		Schema: preset.SchemaGP5,
		Name:   "Hot",
		Params: map[preset.ParamKey]preset.Value{
			preset.ParamInputGain: preset.IntValue(140, 0, 100),
		},
	}
	out, warnings, err := e.Convert(src)
	require.NoError(t, err)
	assert.Equal(t, 127, out.Params[preset.ParamInputGain].Raw)
	require.Len(t, warnings, 1)
	assert.Equal(t, preset.WarnClampedValue, warnings[0].Kind)
	assert.Equal(t, 140, warnings[0].Original)
	assert.Equal(t, 127, warnings[0].Clamped)
}

func TestConvertDropsMiddleEffectKeepingOrder(t *testing.T) {
	e := newTestEngine(t)
	src := sourceRecord()
	src.Effects = []preset.EffectBlock{
		{Type: preset.GP5Chorus, Enabled: true, Params: []int{40, 50}},
		{Type: preset.GP5Fuzz, Enabled: true, Params: []int{90}}, // no GP-50 mapping
		{Type: preset.GP5Reverb, Enabled: true, Params: []int{60, 70}},
	}

	out, warnings, err := e.Convert(src)
	require.NoError(t, err)
	require.Len(t, out.Effects, 2)
	assert.Equal(t, preset.GP50Chorus, out.Effects[0].Type)
	assert.Equal(t, preset.GP50Reverb, out.Effects[1].Type)

	var dropped []preset.Warning
	for _, w := range warnings {
		if w.Kind == preset.WarnDroppedEffect {
			dropped = append(dropped, w)
		}
	}
	require.Len(t, dropped, 1)
	assert.Equal(t, preset.GP5Fuzz, dropped[0].Effect)
	assert.Equal(t, 1, dropped[0].Position)
}

func TestConvertDropsUnmappedParam(t *testing.T) {
	table, err := LoadTable([]byte(`
source: GP5
target: GP50
target_version: 1
params:
  - {from: input_gain, to: input_gain, min: 0, max: 127}
`))
	require.NoError(t, err)
	e, err := NewEngine(table, layout.GP50())
	require.NoError(t, err)

	src := &preset.Record{
		Schema: preset.SchemaGP5,
		Params: map[preset.ParamKey]preset.Value{
			preset.ParamInputGain:  preset.IntValue(10, 0, 100),
			preset.ParamMasterTone: preset.IntValue(70, 0, 100),
		},
	}
	out, warnings, err := e.Convert(src)
	require.NoError(t, err)
	_, kept := out.Params[preset.ParamMasterTone]
	assert.False(t, kept)
	require.Len(t, warnings, 1)
	assert.Equal(t, preset.WarnDroppedParam, warnings[0].Kind)
	assert.Equal(t, preset.ParamMasterTone, warnings[0].Param)
}

func TestConvertDropsUnreferencedSlot(t *testing.T) {
	e := newTestEngine(t)
	src := sourceRecord()
	// A fifth delay slot the rule table does not know about.
	src.Effects = []preset.EffectBlock{
		{Type: preset.GP5Delay, Enabled: true, Params: []int{500, 30, 80, 1, 99}},
	}
	out, warnings, err := e.Convert(src)
	require.NoError(t, err)
	assert.Equal(t, []int{500, 38, 101, 1}, out.Effects[0].Params)
	require.Len(t, warnings, 1)
	assert.Equal(t, preset.WarnDroppedParam, warnings[0].Kind)
	assert.Equal(t, 4, warnings[0].Slot)
}

func TestConvertIsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	src := sourceRecord()
	src.Effects = append(src.Effects, preset.EffectBlock{Type: preset.GP5Wah, Enabled: true, Params: []int{10}})
	src.Params[preset.ParamMasterTone] = preset.IntValue(200, 0, 100)

	out1, warn1, err1 := e.Convert(src)
	out2, warn2, err2 := e.Convert(src)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, reflect.DeepEqual(out1, out2), "records differ across runs")
	assert.True(t, reflect.DeepEqual(warn1, warn2), "warning lists differ across runs")
	assert.NotEmpty(t, warn1)
}

func TestConvertRejectsInvalidSource(t *testing.T) {
	e := newTestEngine(t)
	src := sourceRecord()
	src.Effects = make([]preset.EffectBlock, 30) // beyond any chain maximum
	_, _, err := e.Convert(src)
	assert.True(t, errors.Is(err, preset.ErrInvalidRecord), "got %v", err)
}

func TestConvertRejectsWrongSchema(t *testing.T) {
	e := newTestEngine(t)
	src := sourceRecord()
	src.Schema = preset.SchemaGP50
	_, _, err := e.Convert(src)
	assert.True(t, errors.Is(err, preset.ErrInvalidRecord), "got %v", err)
}

func TestCheckCompatibility(t *testing.T) {
	e := newTestEngine(t)

	ok, warnings := e.CheckCompatibility(sourceRecord())
	assert.True(t, ok)
	assert.Empty(t, warnings)

	src := sourceRecord()
	src.Effects = append(src.Effects, preset.EffectBlock{Type: preset.GP5Wah, Enabled: true, Params: []int{1}})
	ok, warnings = e.CheckCompatibility(src)
	assert.False(t, ok)
	assert.NotEmpty(t, warnings)
}

func TestNewEngineRejectsMismatchedLayout(t *testing.T) {
	_, err := NewEngine(DefaultGP5ToGP50(), layout.GP5())
	assert.Error(t, err)
}

func TestLoadTableRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"unknown schema":    "source: GPX\ntarget: GP50",
		"unknown param":     "source: GP5\ntarget: GP50\nparams: [{from: bogus, to: input_gain}]",
		"bad transform":     "source: GP5\ntarget: GP50\nparams: [{from: input_gain, to: input_gain, transform: 'v +', min: 0, max: 1}]",
		"min above max":     "source: GP5\ntarget: GP50\nparams: [{from: input_gain, to: input_gain, min: 9, max: 1}]",
		"duplicate param":   "source: GP5\ntarget: GP50\nparams: [{from: input_gain, to: input_gain, min: 0, max: 1}, {from: input_gain, to: input_gain, min: 0, max: 1}]",
		"duplicate effect":  "source: GP5\ntarget: GP50\neffects: [{from: 1, to: 2}, {from: 1, to: 3}]",
		"negative slot":     "source: GP5\ntarget: GP50\neffects: [{from: 1, to: 2, params: [{from_slot: -1, min: 0, max: 1}]}]",
		"bad slot transform": "source: GP5\ntarget: GP50\neffects: [{from: 1, to: 2, params: [{from_slot: 0, transform: '???', min: 0, max: 1}]}]",
	}
	for name, doc := range cases {
		_, err := LoadTable([]byte(doc))
		assert.Error(t, err, name)
	}
}
