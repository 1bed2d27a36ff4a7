// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gfa

import (
	"fmt"
	"sort"
)

// ValidationReport collects graph-level inconsistencies.
//
// Errors are dangling references. Warnings are empty or placeholder
// sequences. Neither prevents statistics or index construction.
type ValidationReport struct {
	Segments int      `json:"segments"`
	Links    int      `json:"links"`
	Paths    int      `json:"paths"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether no errors were found. Warnings do not count.
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks g for references to undefined segments.
//
// # Description
//
// Emits one error per undefined link endpoint (so a link with two undefined
// ends yields two errors), one error per path step naming an undefined
// segment, and one warning per segment whose sequence is empty or "*".
// Errors follow link then path source order. Warnings are sorted by segment
// name.
//
// # Thread Safety
//
// Read-only over g.
func Validate(g *Graph) *ValidationReport {
	report := &ValidationReport{
		Segments: g.SegmentCount(),
		Links:    g.LinkCount(),
		Paths:    g.PathCount(),
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	for _, link := range g.Links {
		if _, ok := g.Segments[link.From]; !ok {
			report.Errors = append(report.Errors,
				fmt.Sprintf("Link references undefined segment: %s", link.From))
		}
		if _, ok := g.Segments[link.To]; !ok {
			report.Errors = append(report.Errors,
				fmt.Sprintf("Link references undefined segment: %s", link.To))
		}
	}

	for _, path := range g.Paths {
		for _, step := range path.Steps {
			if _, ok := g.Segments[step.Segment]; !ok {
				report.Errors = append(report.Errors,
					fmt.Sprintf("Path '%s' references undefined segment: %s", path.Name, step.Segment))
			}
		}
	}

	names := make([]string, 0)
	for name, seg := range g.Segments {
		if seg.IsPlaceholder() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Segment '%s' has empty/placeholder sequence", name))
	}

	return report
}
