package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takt-audio/presetkit/internal/layout"
	"github.com/takt-audio/presetkit/pkg/gp"
	"github.com/takt-audio/presetkit/pkg/preset"
	"github.com/takt-audio/presetkit/pkg/presetfile"
)

var (
	convertOutput   string
	convertStrict   bool
	convertNoBackup bool
	convertLayouts  string
)

func init() {
	cmd := newConvertCmd()
	cmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file or directory (default: input with .gp50 extension)")
	cmd.Flags().BoolVar(&convertStrict, "strict", false, "Treat checksum mismatches as fatal")
	cmd.Flags().BoolVar(&convertNoBackup, "no-backup", false, "Do not back up files being overwritten")
	cmd.Flags().StringVar(&convertLayouts, "layout", "", "Directory of YAML layout descriptors overriding the built-ins")
	rootCmd.AddCommand(cmd)
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in>",
		Short: "Convert GP-5 presets to the GP-50 format",
		Long: `The convert command reads a GP-5 preset file, maps it through the
conversion rules, and writes a GP-50 preset. Given a directory it converts
every .gp5 file in it, continuing past failures and printing a summary.

Per-parameter and per-effect issues (unmappable effects, clamped values)
are reported as warnings; only structurally invalid input aborts.

Example:
  presetctl convert solo.gp5
  presetctl convert solo.gp5 -o rig/solo.gp50 --strict
  presetctl convert captures/ -o converted/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0])
		},
	}
}

// convertOptions assembles pipeline options from the command flags.
func convertOptions() (gp.Options, error) {
	opts := gp.DefaultOptions()
	opts.StrictChecksum = convertStrict
	if convertLayouts == "" {
		return opts, nil
	}
	opts.Layouts = make(map[preset.Schema]*layout.Format)
	entries, err := os.ReadDir(convertLayouts)
	if err != nil {
		return opts, fmt.Errorf("layout dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		f, err := layout.LoadFile(filepath.Join(convertLayouts, e.Name()))
		if err != nil {
			return opts, err
		}
		printVerbose("Loaded layout %s from %s\n", f.Schema, e.Name())
		opts.Layouts[f.SchemaTag()] = f
	}
	return opts, nil
}

func runConvert(in string) error {
	opts, err := convertOptions()
	if err != nil {
		return err
	}
	stat, err := os.Stat(in)
	if err != nil {
		return err
	}
	if stat.IsDir() {
		return convertDir(in, opts)
	}
	return convertFile(in, outputPath(in, convertOutput), opts)
}

// outputPath picks the destination for one input file. An explicit -o that
// names a directory keeps the input's base name.
func outputPath(in, out string) string {
	if out == "" {
		ext := filepath.Ext(in)
		return strings.TrimSuffix(in, ext) + ".gp50"
	}
	if stat, err := os.Stat(out); err == nil && stat.IsDir() {
		base := filepath.Base(in)
		return filepath.Join(out, strings.TrimSuffix(base, filepath.Ext(base))+".gp50")
	}
	return out
}

func convertFile(in, out string, opts gp.Options) error {
	printVerbose("Reading %s\n", in)
	raw, err := presetfile.Read(in)
	if err != nil {
		return err
	}
	data, warnings, err := gp.ConvertBytes(raw, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	reportWarnings(in, warnings)

	err = presetfile.Write(out, data, presetfile.WriteOptions{
		Overwrite:    true,
		CreateBackup: !convertNoBackup,
	})
	if err != nil {
		return err
	}
	printInfo("%s -> %s (%d bytes, %d warnings)\n", in, out, data.Len(), len(warnings))
	return nil
}

func convertDir(dir string, opts gp.Options) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var items []gp.BatchItem
	failed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".gp5") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		raw, err := presetfile.Read(path)
		if err != nil {
			// An unreadable file counts as a failure but never stops the
			// batch.
			printError("%s: %v\n", path, err)
			failed++
			continue
		}
		items = append(items, gp.BatchItem{Name: path, Raw: raw})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	outDir := convertOutput
	if outDir == "" {
		outDir = dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	converted := 0
	for _, res := range gp.ConvertBatch(items, opts) {
		if res.Err != nil {
			printError("%s: %v\n", res.Name, res.Err)
			failed++
			continue
		}
		reportWarnings(res.Name, res.Warnings)
		out := outputPath(res.Name, outDir)
		err := presetfile.Write(out, res.Raw, presetfile.WriteOptions{
			Overwrite:    true,
			CreateBackup: !convertNoBackup,
		})
		if err != nil {
			printError("%v\n", err)
			failed++
			continue
		}
		printInfo("%s -> %s (%d bytes, %d warnings)\n", res.Name, out, res.Raw.Len(), len(res.Warnings))
		converted++
	}
	printInfo("\nConverted %d preset(s), %d failure(s)\n", converted, failed)
	if failed > 0 {
		return fmt.Errorf("%d preset(s) failed to convert", failed)
	}
	return nil
}

// reportWarnings prints conversion warnings for one input.
func reportWarnings(name string, warnings []preset.Warning) {
	for _, w := range warnings {
		printInfo("  warning: %s: %s\n", name, w)
	}
}
