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
	"slices"
)

// N50 returns the N50 and L50 of lengths.
//
// # Description
//
// Sorts lengths in descending order and accumulates until the running sum is
// at least ceil(total/2). N50 is the length at which that happens and L50 is
// its 1-based rank. Both are zero when lengths is empty or sums to zero.
//
// lengths is not modified.
func N50(lengths []uint64) (n50 uint64, l50 int) {
	if len(lengths) == 0 {
		return 0, 0
	}

	sorted := slices.Clone(lengths)
	slices.SortFunc(sorted, func(a, b uint64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	var total uint64
	for _, l := range sorted {
		total += l
	}
	if total == 0 {
		return 0, 0
	}

	threshold := total/2 + total%2
	var running uint64
	for i, l := range sorted {
		running += l
		if running >= threshold {
			return l, i + 1
		}
	}
	return 0, 0
}
