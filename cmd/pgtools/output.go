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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pgtools/services/pangenome/index"
)

// Process exit codes.
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitBadArgs = 2
)

// exitError carries the exit code for an error returned from a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// badArgs marks an error as a usage problem.
func badArgs(format string, args ...any) error {
	return &exitError{code: ExitBadArgs, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error from Execute to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, index.ErrInvalidIndexType) {
		return ExitBadArgs
	}
	return ExitError
}

// exactArgs is cobra.ExactArgs with the bad-arguments exit code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &exitError{code: ExitBadArgs, err: err}
		}
		return nil
	}
}

// outputJSON writes v as indented JSON followed by a newline.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResult writes text to path, or to the command's stdout when path is
// empty.
func writeResult(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Statistics written to: %s\n", path)
	return nil
}
