package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takt-audio/presetkit/internal/analyze"
)

var searchContext int

func init() {
	cmd := newSearchCmd()
	cmd.Flags().IntVar(&searchContext, "context", 0, "Hex dump lines of context around each match")
	rootCmd.AddCommand(cmd)
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <file> <hex-pattern>",
		Short: "Find a byte pattern in a capture",
		Long: `The search command finds every occurrence of a byte pattern, given as
hex digits (spaces allowed). Overlapping occurrences all count.

Example:
  presetctl search solo.gp5 "AA BB"
  presetctl search solo.gp5 475035 --context 1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], args[1])
		},
	}
}

func runSearch(path, patternHex string) error {
	pattern, err := hex.DecodeString(strings.ReplaceAll(patternHex, " ", ""))
	if err != nil {
		return fmt.Errorf("bad hex pattern %q: %w", patternHex, err)
	}
	if len(pattern) == 0 {
		return fmt.Errorf("empty pattern")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	offsets := analyze.FindPattern(data, pattern)

	if jsonOut {
		return printJSON(map[string]interface{}{
			"file": path, "pattern": fmt.Sprintf("% X", pattern), "offsets": offsets,
		})
	}

	printInfo("%d occurrence(s) of % X in %s\n", len(offsets), pattern, path)
	for _, off := range offsets {
		printInfo("  0x%04X\n", off)
		if searchContext > 0 {
			printInfo("%s", analyze.DumpAround(data, off, searchContext))
		}
	}
	return nil
}
