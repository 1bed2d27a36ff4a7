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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGFA = "H\tVN:Z:1.0\n" +
	"S\ts1\tACGT\n" +
	"S\ts2\tGGGG\n" +
	"L\ts1\t+\ts2\t+\t0M\n" +
	"P\tpath1\ts1+,s2+\t*\n"

func parseString(t *testing.T, text string) *Graph {
	t.Helper()
	g, err := Parse(context.Background(), strings.NewReader(text))
	require.NoError(t, err)
	return g
}

func TestParse_Basic(t *testing.T) {
	g := parseString(t, sampleGFA)

	assert.Equal(t, "Z:1.0", g.Header.Version)
	assert.Equal(t, 2, g.SegmentCount())
	assert.Equal(t, 1, g.LinkCount())
	assert.Equal(t, 1, g.PathCount())
	assert.Equal(t, uint64(8), g.TotalSequenceLength())

	link := g.Links[0]
	assert.Equal(t, "s1", link.From)
	assert.Equal(t, Forward, link.FromOrient)
	assert.Equal(t, "s2", link.To)
	assert.Equal(t, "0M", link.Overlap)

	path := g.Paths[0]
	assert.Equal(t, "path1", path.Name)
	assert.Equal(t, []PathStep{{"s1", Forward}, {"s2", Forward}}, path.Steps)
	assert.Nil(t, path.Overlaps)
}

func TestParse_HeaderTags(t *testing.T) {
	g := parseString(t, "H\tVN:Z:1.1\tTS:i:42\tnocolon\n")

	assert.Equal(t, "Z:1.1", g.Header.Version)
	assert.Equal(t, map[string]string{"TS": "i:42"}, g.Header.Tags)
}

func TestParse_SegmentTags(t *testing.T) {
	g := parseString(t, "S\ts1\tACGT\tLN:i:4\tRC:i:10\tjunk\n")

	seg := g.Segment("s1")
	require.NotNil(t, seg)
	assert.Equal(t, "ACGT", seg.Sequence)
	assert.Equal(t, map[string]string{"LN": "i:4", "RC": "i:10"}, seg.Tags)
}

func TestParse_DuplicateSegmentLastWins(t *testing.T) {
	g := parseString(t, "S\ts1\tAAAA\nS\ts1\tCC\n")

	require.Equal(t, 1, g.SegmentCount())
	assert.Equal(t, "CC", g.Segment("s1").Sequence)
}

func TestParse_SkipsBlankCommentAndUnknown(t *testing.T) {
	text := "# comment\n\n   \nX\tfoo\tbar\nC\tcontainment\nS\ts1\tA\n"
	g := parseString(t, text)

	assert.Equal(t, 1, g.SegmentCount())
	assert.Equal(t, 0, g.LinkCount())
}

func TestParse_NoTrailingNewline(t *testing.T) {
	g := parseString(t, "S\ts1\tACGT\nS\ts2\tTT")
	assert.Equal(t, 2, g.SegmentCount())
	assert.Equal(t, "TT", g.Segment("s2").Sequence)
}

func TestParse_CRLF(t *testing.T) {
	g := parseString(t, "S\ts1\tACGT\r\nL\ts1\t-\ts1\t+\t*\r\n")
	assert.Equal(t, "ACGT", g.Segment("s1").Sequence)
	assert.Equal(t, Reverse, g.Links[0].FromOrient)
	assert.Equal(t, "*", g.Links[0].Overlap)
}

func TestParse_PathOverlapsAndOrientation(t *testing.T) {
	g := parseString(t, "P\tp\ts1+, s2-,,s3+\t4M,5M\n")

	path := g.Paths[0]
	assert.Equal(t, []PathStep{
		{"s1", Forward},
		{"s2", Reverse},
		{"s3", Forward},
	}, path.Steps)
	assert.Equal(t, []string{"4M", "5M"}, path.Overlaps)
}

func TestParse_DuplicatePathNamesKept(t *testing.T) {
	g := parseString(t, "P\tp\ts1+\t*\nP\tp\ts2+\t*\n")
	require.Len(t, g.Paths, 2)
	assert.Equal(t, "s1", g.Paths[0].Steps[0].Segment)
	assert.Equal(t, "s2", g.Paths[1].Steps[0].Segment)
}

func TestParse_Walk(t *testing.T) {
	g := parseString(t, "W\tHG002\t1\tchr1\t0\t100\t>s1<s2>s3<s4\n")

	require.Len(t, g.Paths, 1)
	path := g.Paths[0]
	assert.Equal(t, "HG002#1#chr1", path.Name)
	assert.Equal(t, []PathStep{
		{"s1", Forward},
		{"s2", Reverse},
		{"s3", Forward},
		{"s4", Reverse},
	}, path.Steps)
}

func TestParse_WalkSingleReverseStep(t *testing.T) {
	g := parseString(t, "W\tS\t0\tc\t0\t4\t<seg10\n")
	assert.Equal(t, []PathStep{{"seg10", Reverse}}, g.Paths[0].Steps)
}

func TestParse_WalkIgnoresLeadingText(t *testing.T) {
	g := parseString(t, "W\tS\t0\tc\t0\t4\tzz>a\n")
	assert.Equal(t, []PathStep{{"a", Forward}}, g.Paths[0].Steps)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		message string
	}{
		{"short segment", "S\ts1\n", 1, "Segment record requires at least 3 fields"},
		{"short link", "S\ts1\tA\nL\ts1\t+\ts2\t+\n", 2, "Link record requires at least 6 fields"},
		{"short path", "# c\nP\tp\n", 2, "Path record requires at least 3 fields"},
		{"short walk", "W\ta\tb\tc\t0\t1\n", 1, "Walk record requires at least 7 fields"},
		{"step without orientation", "P\tp\ts1+,s2\t*\n", 1, "Path step missing orientation: s2"},
		{"blank lines counted", "\n\nS\tx\n", 3, "Segment record requires at least 3 fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.message, perr.Message)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParse_BadLinkOrientation(t *testing.T) {
	for _, orient := range []string{"x", "++", "+-", "*"} {
		t.Run(orient, func(t *testing.T) {
			input := "L\ts1\t" + orient + "\ts2\t+\t0M\n"
			_, err := Parse(context.Background(), strings.NewReader(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParse_FirstErrorAborts(t *testing.T) {
	input := "S\ts1\tA\nS\tbad\nL\ts1\tq\ts1\t+\t*\n"
	_, err := Parse(context.Background(), strings.NewReader(input))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestParse_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Parse(nil, strings.NewReader(sampleGFA))
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestParse_CancelledContext(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < cancelCheckInterval*2; i++ {
		sb.WriteString("S\ts\tA\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, strings.NewReader(sb.String()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseOrientation(t *testing.T) {
	o, err := ParseOrientation("+")
	require.NoError(t, err)
	assert.Equal(t, Forward, o)

	o, err = ParseOrientation("-")
	require.NoError(t, err)
	assert.Equal(t, Reverse, o)

	_, err = ParseOrientation("?")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, "+", Forward.String())
	assert.Equal(t, "-", Reverse.String())
}

func TestSequenceLength_Placeholder(t *testing.T) {
	assert.Equal(t, 0, SequenceLength("*"))
	assert.Equal(t, 0, SequenceLength(""))
	assert.Equal(t, 3, SequenceLength("ACG"))

	g := parseString(t, "S\ts1\t*\nS\ts2\tACG\n")
	assert.Equal(t, uint64(3), g.TotalSequenceLength())

	n, ok := g.SegmentLength("s1")
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	_, ok = g.SegmentLength("missing")
	assert.False(t, ok)
}
