package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/takt-audio/presetkit/internal/analyze"
)

var (
	diffDump     bool
	diffMaxDiffs int
)

func init() {
	cmd := newDiffCmd()
	cmd.Flags().BoolVar(&diffDump, "dump", false, "Side-by-side hex dump with DIFF markers")
	cmd.Flags().IntVar(&diffMaxDiffs, "max-diffs", 32, "Limit listed byte differences (0 = unlimited)")
	rootCmd.AddCommand(cmd)
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two binary captures byte by byte",
		Long: `The diff command compares two captures and reports differing offsets
and a similarity percentage. Capture the same preset twice with one knob
changed and diff the results to locate that knob's offset.

Example:
  presetctl diff clean.gp5 clean_gain80.gp5
  presetctl diff a.gp5 b.gp5 --dump`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1])
		},
	}
}

func runDiff(pathA, pathB string) error {
	a, err := os.ReadFile(pathA)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		return err
	}
	c := analyze.Compare(a, b)

	if jsonOut {
		return printJSON(c)
	}

	printInfo("A: %s (%d bytes)\n", pathA, c.SizeA)
	printInfo("B: %s (%d bytes)\n", pathB, c.SizeB)
	printInfo("Similarity: %.1f%%, %d differing offset(s)\n", c.Similarity, len(c.Diffs))

	shown := len(c.Diffs)
	if diffMaxDiffs > 0 && shown > diffMaxDiffs {
		shown = diffMaxDiffs
	}
	for _, d := range c.Diffs[:shown] {
		printInfo("  0x%04X  %02X -> %02X\n", d.Offset, d.A, d.B)
	}
	if shown < len(c.Diffs) {
		printInfo("  ... %d more\n", len(c.Diffs)-shown)
	}

	if diffDump {
		printInfo("\n%s", analyze.DumpComparison(a, b))
	}
	return nil
}
