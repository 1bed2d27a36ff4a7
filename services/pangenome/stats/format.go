// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stats

import (
	"fmt"
	"strings"
)

// FormatSummary renders the report as aligned human-readable text.
//
// The path section is omitted when there are no paths, and only non-empty
// length bins are listed.
func (r *Report) FormatSummary() string {
	var b strings.Builder

	b.WriteString("=== GFA Graph Statistics ===\n\n")
	fmt.Fprintf(&b, "Segments (nodes):        %12d\n", r.SegmentCount)
	fmt.Fprintf(&b, "Links (edges):           %12d\n", r.LinkCount)
	fmt.Fprintf(&b, "Paths:                   %12d\n", r.PathCount)
	fmt.Fprintf(&b, "Connected components:    %12d\n", r.ConnectedComponents)
	b.WriteString("\n")

	b.WriteString("--- Sequence Statistics ---\n")
	fmt.Fprintf(&b, "Total sequence length:   %12d bp\n", r.TotalSequenceLength)
	fmt.Fprintf(&b, "Average segment length:  %12.2f bp\n", r.AverageSegmentLength)
	fmt.Fprintf(&b, "Min segment length:      %12d bp\n", r.MinSegmentLength)
	fmt.Fprintf(&b, "Max segment length:      %12d bp\n", r.MaxSegmentLength)
	fmt.Fprintf(&b, "N50:                     %12d bp\n", r.N50)
	fmt.Fprintf(&b, "L50:                     %12d\n", r.L50)
	fmt.Fprintf(&b, "GC content:              %12.2f%%\n", r.GCContent)
	b.WriteString("\n")

	if r.PathCount > 0 {
		b.WriteString("--- Path Statistics ---\n")
		fmt.Fprintf(&b, "Average path length:     %12.2f segments\n", r.AveragePathLength)
		fmt.Fprintf(&b, "Total path seq length:   %12d bp\n", r.TotalPathSequenceLength)
		b.WriteString("\n")
	}

	b.WriteString("--- Segment Length Distribution ---\n")
	for _, bin := range r.SegmentLengthHistogram {
		if bin.Count > 0 {
			fmt.Fprintf(&b, "%15s: %8d\n", bin.Label, bin.Count)
		}
	}

	return b.String()
}
