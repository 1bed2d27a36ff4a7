// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package population summarizes haplotype paths stored in a vg XG index.
//
// It shells out to `vg paths -L -x FILE` and groups the listed path names by
// sample, where the sample is the text before the first '#' of a
// SAMPLE#HAPLOTYPE#CONTIG name.
package population

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

// DefaultBinary is the vg executable looked up on PATH.
const DefaultBinary = "vg"

// maxNameLine bounds a single path name line.
const maxNameLine = 1 << 20

// SampleSummary is the path count for one sample.
type SampleSummary struct {
	Sample    string `json:"sample"`
	PathCount uint64 `json:"path_count"`
}

// Summary groups path names by sample. Samples are sorted by name.
type Summary struct {
	TotalPaths uint64          `json:"total_paths"`
	Samples    []SampleSummary `json:"samples"`
}

// CommandError reports a failed vg invocation.
type CommandError struct {
	// Command is the command line that was run.
	Command string

	// ExitCode is the process exit code, -1 if the process never ran.
	ExitCode int

	// Stderr is the trimmed standard error output.
	Stderr string

	// Wrapped is the underlying error.
	Wrapped error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.ExitCode, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

// Runner invokes vg.
type Runner struct {
	// Binary is the vg executable. Default: DefaultBinary.
	Binary string

	// Timeout bounds one invocation. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Summarize lists the paths of xgPath with vg and groups them by sample.
//
// # Outputs
//
//   - *Summary: Per-sample counts.
//   - error: *gfa.FileNotFoundError if xgPath is missing, *CommandError if
//     vg cannot be started or exits non-zero.
func (r *Runner) Summarize(ctx context.Context, xgPath string) (*Summary, error) {
	if err := gfa.CheckExists(xgPath); err != nil {
		return nil, err
	}

	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := []string{"paths", "-L", "-x", xgPath}
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &CommandError{
			Command:  binary + " " + strings.Join(args, " "),
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Wrapped:  err,
		}
	}

	return ParsePathNames(&stdout)
}

// SampleOf returns the text before the first '#', or the whole name.
func SampleOf(name string) string {
	sample, _, _ := strings.Cut(name, "#")
	return sample
}

// ParsePathNames reads one path name per line and counts them per sample.
// Blank lines are skipped.
func ParsePathNames(r io.Reader) (*Summary, error) {
	counts := make(map[string]uint64)
	var total uint64

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxNameLine)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		total++
		counts[SampleOf(name)]++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read path names: %w", err)
	}

	samples := make([]SampleSummary, 0, len(counts))
	for sample, n := range counts {
		samples = append(samples, SampleSummary{Sample: sample, PathCount: n})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Sample < samples[j].Sample })

	return &Summary{TotalPaths: total, Samples: samples}, nil
}

// FormatText renders s as the plain-text report for source.
func (s *Summary) FormatText(source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path stats for %s\n", source)
	b.WriteString("-----------------------------------------\n")
	fmt.Fprintf(&b, "Total paths (haplotypes): %d\n", s.TotalPaths)
	b.WriteString("Samples:\n")
	for _, sample := range s.Samples {
		fmt.Fprintf(&b, "  %s -> %d paths\n", sample.Sample, sample.PathCount)
	}
	return b.String()
}
