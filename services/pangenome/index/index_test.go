// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package index

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

const exampleGFA = "H\tVN:Z:1.0\n" +
	"S\ts1\tACGT\n" +
	"S\ts2\tGGGG\n" +
	"L\ts1\t+\ts2\t+\t0M\n" +
	"P\tpath1\ts1+,s2+\t*\n"

const chainGFA = "H\tVN:Z:1.0\n" +
	"S\ts1\tACGTACGT\n" +
	"S\ts2\tGGGGGGGG\n" +
	"S\ts3\tTTTTTTTT\n" +
	"L\ts1\t+\ts2\t+\t0M\n" +
	"L\ts2\t+\ts3\t+\t0M\n" +
	"P\tpath1\ts1+,s2+,s3+\t*\n"

func mustParse(t *testing.T, text string) *gfa.Graph {
	t.Helper()
	g, err := gfa.Parse(context.Background(), strings.NewReader(text))
	require.NoError(t, err)
	return g
}

func mustBuild(t *testing.T, text string, typ IndexType) *Index {
	t.Helper()
	idx, err := Build(context.Background(), mustParse(t, text), "test.gfa", typ)
	require.NoError(t, err)
	return idx
}

func TestParseIndexType(t *testing.T) {
	tests := []struct {
		in   string
		want IndexType
	}{
		{"segment", TypeSegment},
		{"seg", TypeSegment},
		{"S", TypeSegment},
		{"path", TypePath},
		{"p", TypePath},
		{"Position", TypePosition},
		{"pos", TypePosition},
		{"full", TypeFull},
		{"ALL", TypeFull},
		{"f", TypeFull},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIndexType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseIndexType("bogus")
	assert.ErrorIs(t, err, ErrInvalidIndexType)
	assert.Contains(t, err.Error(), "Valid types: segment, path, position, full")
}

func TestIndexType_FlagValue(t *testing.T) {
	var typ IndexType
	require.NoError(t, typ.Set("pos"))
	assert.Equal(t, TypePosition, typ)
	assert.Equal(t, "position", typ.String())
	assert.Equal(t, "index-type", typ.Type())

	assert.Error(t, typ.Set("nope"))
	assert.Equal(t, TypePosition, typ)

	text, err := TypeFull.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "full", string(text))

	_, err = IndexType(42).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidIndexType)
}

func TestBuild_Variants(t *testing.T) {
	tests := []struct {
		typ       IndexType
		segments  bool
		paths     bool
		positions bool
	}{
		{TypeSegment, true, false, false},
		{TypePath, false, true, false},
		{TypePosition, false, false, true},
		{TypeFull, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			idx := mustBuild(t, chainGFA, tt.typ)
			assert.Equal(t, "test.gfa", idx.SourceFile)
			assert.Equal(t, FormatVersion, idx.Version)
			assert.Equal(t, tt.segments, idx.Segments != nil)
			assert.Equal(t, tt.paths, idx.Paths != nil)
			assert.Equal(t, tt.positions, idx.Positions != nil)
		})
	}
}

func TestBuild_InvalidInput(t *testing.T) {
	g := mustParse(t, chainGFA)

	_, err := Build(context.Background(), g, "x", IndexType(9))
	assert.ErrorIs(t, err, ErrInvalidIndexType)

	_, err = Build(context.Background(), nil, "x", TypeFull)
	assert.ErrorIs(t, err, ErrNilGraph)

	//nolint:staticcheck // nil context is the case under test
	_, err = Build(nil, g, "x", TypeFull)
	assert.ErrorIs(t, err, ErrNilContext)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Build(ctx, g, "x", TypeFull)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSegmentIndex(t *testing.T) {
	idx := mustBuild(t, chainGFA+"S\tempty\t*\n", TypeSegment)

	require.Len(t, idx.Segments.Entries, 4)
	assert.Equal(t, SegmentIndexEntry{Name: "s1", SequenceLength: 8, FileOffset: 1}, idx.Segments.Entries["s1"])
	assert.Equal(t, SegmentIndexEntry{Name: "empty", SequenceLength: 0, FileOffset: 0}, idx.Segments.Entries["empty"])

	e, ok := idx.Segment("s3")
	require.True(t, ok)
	assert.Equal(t, 8, e.SequenceLength)
	assert.Equal(t, uint64(3), e.FileOffset)

	_, ok = idx.Segment("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"empty", "s1", "s2", "s3"}, idx.ListSegments())
}

func TestBuildPathIndex(t *testing.T) {
	input := chainGFA +
		"P\tpath2\ts3-,ghost+\t*\n" +
		"P\tpath1\ts1+\t*\n"
	idx := mustBuild(t, input, TypePath)

	assert.Equal(t, []string{"path1", "path2", "path1"}, idx.ListPaths())
	require.Len(t, idx.Paths.Entries, 2)

	p1, ok := idx.Path("path1")
	require.True(t, ok)
	assert.Equal(t, PathIndexEntry{Name: "path1", StepCount: 1, TotalLength: 8, FileOffset: 2}, p1)

	p2, ok := idx.Path("path2")
	require.True(t, ok)
	assert.Equal(t, 2, p2.StepCount)
	assert.Equal(t, uint64(8), p2.TotalLength)
	assert.Equal(t, uint64(1), p2.FileOffset)
}

func TestBuildPositionIndex(t *testing.T) {
	idx := mustBuild(t, chainGFA, TypePosition)

	ranges := idx.Positions.Entries["path1"]
	require.Len(t, ranges, 3)
	assert.Equal(t, PositionIndexEntry{PathName: "path1", Start: 0, End: 8, SegmentName: "s1", StepIndex: 0}, ranges[0])
	assert.Equal(t, PositionIndexEntry{PathName: "path1", Start: 8, End: 16, SegmentName: "s2", StepIndex: 1}, ranges[1])
	assert.Equal(t, PositionIndexEntry{PathName: "path1", Start: 16, End: 24, SegmentName: "s3", StepIndex: 2}, ranges[2])
}

func TestBuildPositionIndex_MissingSegment(t *testing.T) {
	input := "S\ta\tAAAA\nS\tb\tCC\nP\tp\ta+,ghost+,b+\t*\n"
	idx := mustBuild(t, input, TypeFull)

	ranges := idx.Positions.Entries["p"]
	require.Len(t, ranges, 3)
	assert.Equal(t, uint64(4), ranges[1].Start)
	assert.Equal(t, uint64(4), ranges[1].End)
	assert.Equal(t, "ghost", ranges[1].SegmentName)
	assert.Equal(t, uint64(4), ranges[2].Start)
	assert.Equal(t, uint64(6), ranges[2].End)

	e, ok := idx.QueryPosition("p", 4)
	require.True(t, ok)
	assert.Equal(t, "b", e.SegmentName)
	assert.Equal(t, 2, e.StepIndex)

	p, ok := idx.Path("p")
	require.True(t, ok)
	assert.Equal(t, uint64(6), p.TotalLength)
}

func TestQueryPosition_Example(t *testing.T) {
	g := mustParse(t, exampleGFA)
	assert.Equal(t, 2, g.SegmentCount())
	assert.Equal(t, 1, g.LinkCount())
	assert.Equal(t, 1, g.PathCount())
	assert.Equal(t, uint64(8), g.TotalSequenceLength())

	idx, err := Build(context.Background(), g, "example.gfa", TypeFull)
	require.NoError(t, err)

	e, ok := idx.QueryPosition("path1", 3)
	require.True(t, ok)
	assert.Equal(t, "s1", e.SegmentName)

	e, ok = idx.QueryPosition("path1", 5)
	require.True(t, ok)
	assert.Equal(t, "s2", e.SegmentName)

	_, ok = idx.QueryPosition("path1", 8)
	assert.False(t, ok)

	_, ok = idx.QueryPosition("nope", 0)
	assert.False(t, ok)
}

func TestQueryPosition_Tiling(t *testing.T) {
	var b strings.Builder
	var steps []string
	var total uint64
	for i := 0; i < 50; i++ {
		n := 1 + (i*7)%13
		name := fmt.Sprintf("seg%d", i)
		fmt.Fprintf(&b, "S\t%s\t%s\n", name, strings.Repeat("A", n))
		steps = append(steps, name+"+")
		total += uint64(n)
	}
	fmt.Fprintf(&b, "P\ttiled\t%s\t*\n", strings.Join(steps, ","))

	idx := mustBuild(t, b.String(), TypeFull)

	ranges := idx.Positions.Entries["tiled"]
	require.Len(t, ranges, 50)
	var cursor uint64
	for i, r := range ranges {
		assert.Equal(t, cursor, r.Start, "gap or overlap at step %d", i)
		assert.Greater(t, r.End, r.Start)
		cursor = r.End
	}
	assert.Equal(t, total, cursor)

	p, ok := idx.Path("tiled")
	require.True(t, ok)
	assert.Equal(t, total, p.TotalLength)

	for pos := uint64(0); pos < total; pos++ {
		matches := 0
		for _, r := range ranges {
			if r.Contains(pos) {
				matches++
			}
		}
		require.Equal(t, 1, matches, "position %d", pos)

		e, ok := idx.QueryPosition("tiled", pos)
		require.True(t, ok, "position %d", pos)
		assert.True(t, e.Contains(pos))
	}

	_, ok = idx.QueryPosition("tiled", total)
	assert.False(t, ok)
	_, ok = idx.QueryPosition("tiled", total+100)
	assert.False(t, ok)
}

func TestLookups_UnbuiltSubIndex(t *testing.T) {
	idx := mustBuild(t, chainGFA, TypeSegment)

	_, ok := idx.Path("path1")
	assert.False(t, ok)
	_, ok = idx.QueryPosition("path1", 0)
	assert.False(t, ok)
	assert.Nil(t, idx.ListPaths())

	idx = mustBuild(t, chainGFA, TypePosition)
	_, ok = idx.Segment("s1")
	assert.False(t, ok)
	assert.Nil(t, idx.ListSegments())
}

func TestSummary(t *testing.T) {
	full := mustBuild(t, chainGFA, TypeFull)
	assert.Equal(t, "=== Index Summary ===\n\n"+
		"Source file: test.gfa\n"+
		"Version: 1\n\n"+
		"Segment index: 3 entries\n"+
		"Path index: 1 entries\n"+
		"Position index: 3 entries across 1 paths\n", full.Summary())

	seg := mustBuild(t, chainGFA, TypeSegment)
	text := seg.Summary()
	assert.Contains(t, text, "Segment index: 3 entries\n")
	assert.Contains(t, text, "Path index: not built\n")
	assert.Contains(t, text, "Position index: not built\n")

	info := seg.Info()
	assert.True(t, info.HasSegments)
	assert.False(t, info.HasPaths)
	assert.Equal(t, 3, info.SegmentEntries)
}
