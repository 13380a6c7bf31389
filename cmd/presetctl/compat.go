package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takt-audio/presetkit/pkg/gp"
	"github.com/takt-audio/presetkit/pkg/preset"
	"github.com/takt-audio/presetkit/pkg/presetfile"
)

func init() {
	rootCmd.AddCommand(newCompatCmd())
}

func newCompatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compat <preset>",
		Short: "Check whether a GP-5 preset converts without losing effects",
		Long: `The compat command runs a dry conversion and reports whether every
effect in the chain has a GP-50 counterpart. Exit status is non-zero when
something would be lost, so the command works in scripts.

Example:
  presetctl compat solo.gp5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompat(args[0])
		},
	}
}

func runCompat(path string) error {
	raw, err := presetfile.Read(path)
	if err != nil {
		return err
	}
	rec, _, err := gp.Parse(raw, preset.SchemaUnknown, gp.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	ok, warnings, err := gp.CheckCompatibility(rec, gp.DefaultOptions())
	if err != nil {
		return err
	}

	if jsonOut {
		list := make([]string, 0, len(warnings))
		for _, w := range warnings {
			list = append(list, w.String())
		}
		if err := printJSON(map[string]interface{}{
			"file": path, "compatible": ok, "warnings": list,
		}); err != nil {
			return err
		}
	} else {
		for _, w := range warnings {
			printInfo("  %s\n", w)
		}
		if ok {
			printInfo("%s: fully convertible\n", path)
		} else {
			printInfo("%s: conversion would lose effects\n", path)
		}
	}

	if !ok {
		return fmt.Errorf("%s is not fully convertible", path)
	}
	return nil
}
