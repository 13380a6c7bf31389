package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takt-audio/presetkit/pkg/gp"
	"github.com/takt-audio/presetkit/pkg/preset"
	"github.com/takt-audio/presetkit/pkg/presetfile"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <preset>",
		Short: "Parse a preset file and report its contents",
		Long: `The info command parses a preset file (schema detected from the
signature) and reports its name, version, parameters, effect chain and
checksum state.

Example:
  presetctl info solo.gp5
  presetctl info solo.gp5 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

// presetInfo is the JSON shape of the report.
type presetInfo struct {
	File     string         `json:"file"`
	Schema   string         `json:"schema"`
	Name     string         `json:"name"`
	Version  uint8          `json:"version"`
	Size     int            `json:"size"`
	Params   map[string]int `json:"params"`
	Effects  []effectInfo   `json:"effects"`
	Checksum checksumInfo   `json:"checksum"`
	Warnings []string       `json:"warnings,omitempty"`
}

type effectInfo struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
	Params  []int  `json:"params"`
}

type checksumInfo struct {
	Algorithm string `json:"algorithm"`
	Stored    string `json:"stored"`
	Computed  string `json:"computed"`
	Valid     bool   `json:"valid"`
}

func runInfo(path string) error {
	raw, err := presetfile.Read(path)
	if err != nil {
		return err
	}
	rec, warnings, err := gp.Parse(raw, preset.SchemaUnknown, gp.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	info := presetInfo{
		File:    path,
		Schema:  rec.Schema.String(),
		Name:    rec.Name,
		Version: rec.Version,
		Size:    raw.Len(),
		Params:  make(map[string]int, len(rec.Params)),
		Checksum: checksumInfo{
			Algorithm: rec.Checksum.Algorithm,
			Stored:    fmt.Sprintf("0x%04X", rec.Checksum.Stored),
			Computed:  fmt.Sprintf("0x%04X", rec.Checksum.Computed),
			Valid:     rec.Checksum.Valid,
		},
	}
	for key, v := range rec.Params {
		info.Params[key.String()] = v.Raw
	}
	for _, e := range rec.Effects {
		info.Effects = append(info.Effects, effectInfo{
			Type: e.Type.String(), Enabled: e.Enabled, Params: e.Params,
		})
	}
	for _, w := range warnings {
		info.Warnings = append(info.Warnings, w.String())
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("Preset: %s\n", path)
	printInfo("  Schema: %s (version %d)\n", info.Schema, info.Version)
	printInfo("  Name: %q\n", info.Name)
	printInfo("  Size: %d bytes\n", info.Size)
	printInfo("  Parameters:\n")
	for key := preset.ParamInputGain; key <= preset.ParamMasterTone; key++ {
		if v, ok := rec.Params[key]; ok {
			printInfo("    %-22s %s\n", key, v)
		}
	}
	printInfo("  Effects (%d):\n", len(rec.Effects))
	for i, e := range rec.Effects {
		state := "off"
		if e.Enabled {
			state = "on"
		}
		printInfo("    %d. %-12s %-3s params %v\n", i+1, e.Type, state, e.Params)
	}
	check := "valid"
	if !rec.Checksum.Valid {
		check = fmt.Sprintf("MISMATCH (stored %s, computed %s)", info.Checksum.Stored, info.Checksum.Computed)
	}
	printInfo("  Checksum: %s, %s\n", info.Checksum.Algorithm, check)
	for _, w := range warnings {
		printInfo("  warning: %s\n", w)
	}
	return nil
}
