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

// BaseCounts tallies nucleotides case-insensitively.
type BaseCounts struct {
	GC    uint64 `json:"gc"`
	AT    uint64 `json:"at"`
	N     uint64 `json:"n"`
	Other uint64 `json:"other"`
}

// Add counts the bases of seq. The placeholder "*" is not a base.
func (b *BaseCounts) Add(seq string) {
	if seq == "*" {
		return
	}
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'g', 'C', 'c':
			b.GC++
		case 'A', 'a', 'T', 't':
			b.AT++
		case 'N', 'n':
			b.N++
		default:
			b.Other++
		}
	}
}

// GCPercent returns GC over A/C/G/T as a percentage, 0 with no ACGT bases.
func (b BaseCounts) GCPercent() float64 {
	denom := b.GC + b.AT
	if denom == 0 {
		return 0
	}
	return float64(b.GC) / float64(denom) * 100
}
