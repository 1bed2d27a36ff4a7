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

import "math"

// LengthBin is one half-open [Min, Max) bucket of the length histogram.
//
// The last bucket has Max == math.MaxUint64 and is open-ended.
type LengthBin struct {
	Label string `json:"label"`
	Min   uint64 `json:"min"`
	Max   uint64 `json:"max"`
	Count int    `json:"count"`
}

var lengthBins = []LengthBin{
	{Label: "0-100", Min: 0, Max: 100},
	{Label: "100-500", Min: 100, Max: 500},
	{Label: "500-1K", Min: 500, Max: 1000},
	{Label: "1K-5K", Min: 1000, Max: 5000},
	{Label: "5K-10K", Min: 5000, Max: 10000},
	{Label: "10K-50K", Min: 10000, Max: 50000},
	{Label: "50K-100K", Min: 50000, Max: 100000},
	{Label: "100K-500K", Min: 100000, Max: 500000},
	{Label: "500K-1M", Min: 500000, Max: 1000000},
	{Label: ">1M", Min: 1000000, Max: math.MaxUint64},
}

// LengthHistogram buckets lengths. Every bucket is present, possibly zero.
func LengthHistogram(lengths []uint64) []LengthBin {
	bins := make([]LengthBin, len(lengthBins))
	copy(bins, lengthBins)

	for _, l := range lengths {
		for i := range bins {
			if l >= bins[i].Min && (l < bins[i].Max || i == len(bins)-1) {
				bins[i].Count++
				break
			}
		}
	}
	return bins
}
