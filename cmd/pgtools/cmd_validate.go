// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

// maxListed caps each list in the validation report unless --verbose.
const maxListed = 5

// errValidationFailed is returned under --strict when errors were found.
var errValidationFailed = errors.New("validation failed")

var (
	validateInput   string
	validateVerbose bool
	validateStrict  bool
	validateJSON    bool

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check a GFA file for dangling references",
		Long: `Report links and path steps that name undefined segments (errors) and
segments with empty or placeholder sequences (warnings).

The exit code is 0 even when errors are found, unless --strict is given.`,
		Args: exactArgs(0),
		RunE: runValidate,
	}
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Input GFA file (.gfa or .gfa.gz)")
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "List every issue")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Exit 1 when errors are found")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output as JSON")
	_ = validateCmd.MarkFlagRequired("input")
}

func runValidate(cmd *cobra.Command, args []string) error {
	g, err := gfa.ParseFile(cmd.Context(), validateInput)
	if err != nil {
		return err
	}
	report := gfa.Validate(g)

	if validateJSON {
		if err := outputJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printValidation(cmd.OutOrStdout(), report, validateVerbose)
	}

	if validateStrict && !report.OK() {
		return fmt.Errorf("%w with %d errors", errValidationFailed, len(report.Errors))
	}
	return nil
}

func printValidation(w io.Writer, r *gfa.ValidationReport, verbose bool) {
	fmt.Fprint(w, "\n=== Validation Results ===\n\n")
	fmt.Fprintf(w, "Segments: %d\n", r.Segments)
	fmt.Fprintf(w, "Links: %d\n", r.Links)
	fmt.Fprintf(w, "Paths: %d\n", r.Paths)
	fmt.Fprintln(w)

	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		fmt.Fprintln(w, "✓ No issues found")
	} else {
		if len(r.Errors) > 0 {
			fmt.Fprintf(w, "Errors (%d):\n", len(r.Errors))
			printIssues(w, r.Errors, "✗", "errors", verbose)
			fmt.Fprintln(w)
		}
		if len(r.Warnings) > 0 {
			fmt.Fprintf(w, "Warnings (%d):\n", len(r.Warnings))
			printIssues(w, r.Warnings, "⚠", "warnings", verbose)
		}
	}

	if r.OK() {
		fmt.Fprint(w, "\n✓ Validation passed\n")
	} else {
		fmt.Fprintf(w, "\n✗ Validation failed with %d errors\n", len(r.Errors))
	}
}

func printIssues(w io.Writer, issues []string, marker, noun string, verbose bool) {
	shown := issues
	if !verbose && len(shown) > maxListed {
		shown = shown[:maxListed]
	}
	for _, issue := range shown {
		fmt.Fprintf(w, "  %s %s\n", marker, issue)
	}
	if len(issues) > len(shown) {
		fmt.Fprintf(w, "  ... and %d more %s\n", len(issues)-len(shown), noun)
	}
}
