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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestN50(t *testing.T) {
	tests := []struct {
		name    string
		lengths []uint64
		n50     uint64
		l50     int
	}{
		{"empty", nil, 0, 0},
		{"all zero", []uint64{0, 0}, 0, 0},
		{"single", []uint64{7}, 7, 1},
		{"reference example", []uint64{10, 20, 30, 40, 50}, 40, 2},
		{"unsorted input", []uint64{30, 10, 50, 20, 40}, 40, 2},
		{"odd total needs ceiling", []uint64{2, 1}, 2, 1},
		{"exact half", []uint64{5, 5}, 5, 1},
		{"ceiling crosses", []uint64{3, 2, 2}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n50, l50 := N50(tt.lengths)
			assert.Equal(t, tt.n50, n50)
			assert.Equal(t, tt.l50, l50)
		})
	}
}

func TestN50_PrefixProperty(t *testing.T) {
	lengths := []uint64{9, 1, 8, 2, 7, 3, 6, 4, 5, 100}
	n50, l50 := N50(lengths)

	var total uint64
	for _, l := range lengths {
		total += l
	}
	threshold := (total + 1) / 2

	// 100 alone is 100 of 145, threshold 73.
	assert.Equal(t, uint64(100), n50)
	assert.Equal(t, 1, l50)
	assert.GreaterOrEqual(t, n50, threshold)
}

func TestN50_DoesNotMutateInput(t *testing.T) {
	lengths := []uint64{1, 2, 3}
	N50(lengths)
	assert.Equal(t, []uint64{1, 2, 3}, lengths)
}
