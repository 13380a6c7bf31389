package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/takt-audio/presetkit/internal/analyze"
)

var analyzePreviewLines int

func init() {
	cmd := newAnalyzeCmd()
	cmd.Flags().IntVar(&analyzePreviewLines, "preview", 8, "Hex preview lines (0 to disable)")
	rootCmd.AddCommand(cmd)
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Inspect an unknown binary capture",
		Long: `The analyze command inspects a raw capture without assuming any
layout: signature bytes, embedded strings, byte distribution, and
heuristic guesses at header size and section boundaries. Useful while
reverse-engineering firmware captures that the parser cannot read yet.

Example:
  presetctl analyze mystery.bin
  presetctl analyze mystery.bin --json --preview 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0])
		},
	}
}

func runAnalyze(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	report := analyze.Analyze(data)

	if jsonOut {
		return printJSON(report)
	}

	printInfo("File: %s (%d bytes)\n", path, report.Size)
	printInfo("Signature: % X\n", report.Signature)

	d := report.Distribution
	printInfo("Bytes: min 0x%02X max 0x%02X mean %.1f, %d null (%.1f%%)\n",
		d.Min, d.Max, d.Mean, d.NullCount, d.NullFraction*100)

	if len(report.Strings) > 0 {
		printInfo("Strings:\n")
		for _, s := range report.Strings {
			printInfo("  0x%04X  %q\n", s.Offset, s.Text)
		}
	}

	h := report.Hints
	if h.HeaderSize > 0 {
		printInfo("Header size guess: %d bytes\n", h.HeaderSize)
	}
	if len(h.SectionBoundaries) > 0 {
		printInfo("Section boundaries:")
		for _, off := range h.SectionBoundaries {
			printInfo(" 0x%04X", off)
		}
		printInfo("\n")
	}
	printInfo("Checksum guess: trailing 2 bytes at 0x%04X\n", h.ChecksumOffset)

	if analyzePreviewLines > 0 {
		n := analyzePreviewLines * 16
		if n > len(data) {
			n = len(data)
		}
		printInfo("\n%s", analyze.Dump(data[:n]))
	}
	return nil
}
