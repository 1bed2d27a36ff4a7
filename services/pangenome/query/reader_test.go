// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
	"github.com/AleutianAI/pgtools/services/pangenome/index"
)

const testGFA = "H\tVN:Z:1.0\n" +
	"S\ts1\tACGT\n" +
	"S\ts2\tGGGG\n" +
	"L\ts1\t+\ts2\t+\t0M\n" +
	"P\tpath1\ts1+,s2+\t*\n" +
	"P\tpath0\ts2-\t*\n"

// writeFixture writes the GFA and an index of type typ into a temp dir.
func writeFixture(t *testing.T, typ index.IndexType) (gfaPath, indexPath string) {
	t.Helper()
	dir := t.TempDir()
	gfaPath = filepath.Join(dir, "graph.gfa")
	indexPath = filepath.Join(dir, "graph.idx")
	require.NoError(t, os.WriteFile(gfaPath, []byte(testGFA), 0o644))

	ctx := context.Background()
	g, err := gfa.Parse(ctx, strings.NewReader(testGFA))
	require.NoError(t, err)
	idx, err := index.Build(ctx, g, gfaPath, typ)
	require.NoError(t, err)
	require.NoError(t, index.Save(ctx, idx, indexPath))
	return gfaPath, indexPath
}

func TestIndexedReader_Full(t *testing.T) {
	gfaPath, indexPath := writeFixture(t, index.TypeFull)

	r, err := New(context.Background(), gfaPath, indexPath)
	require.NoError(t, err)
	assert.Equal(t, gfaPath, r.SourcePath())
	assert.Equal(t, gfaPath, r.Index().SourceFile)
	assert.False(t, r.LoadedAt().IsZero())

	seg, ok := r.GetSegment("s2")
	require.True(t, ok)
	assert.Equal(t, SegmentInfo{Name: "s2", SequenceLength: 4, FileOffset: 1}, seg)

	p, ok := r.GetPath("path1")
	require.True(t, ok)
	assert.Equal(t, PathInfo{Name: "path1", StepCount: 2, TotalLength: 8}, p)

	e, ok := r.QueryPosition("path1", 3)
	require.True(t, ok)
	assert.Equal(t, "s1", e.SegmentName)
	e, ok = r.QueryPosition("path1", 5)
	require.True(t, ok)
	assert.Equal(t, "s2", e.SegmentName)
	_, ok = r.QueryPosition("path1", 8)
	assert.False(t, ok)

	assert.Equal(t, []string{"s1", "s2"}, r.ListSegments())
	assert.Equal(t, []string{"path1", "path0"}, r.ListPaths())
}

func TestIndexedReader_SegmentOnlyIndex(t *testing.T) {
	gfaPath, indexPath := writeFixture(t, index.TypeSegment)

	r, err := New(context.Background(), gfaPath, indexPath)
	require.NoError(t, err)

	_, ok := r.GetSegment("s1")
	assert.True(t, ok)
	_, ok = r.GetPath("path1")
	assert.False(t, ok)
	_, ok = r.QueryPosition("path1", 0)
	assert.False(t, ok)
	assert.Empty(t, r.ListPaths())
}

func TestNew_MissingFiles(t *testing.T) {
	gfaPath, indexPath := writeFixture(t, index.TypeFull)
	dir := filepath.Dir(gfaPath)

	_, err := New(context.Background(), gfaPath, filepath.Join(dir, "nope.idx"))
	assert.ErrorIs(t, err, gfa.ErrFileNotFound)

	_, err = New(context.Background(), filepath.Join(dir, "nope.gfa"), indexPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, gfa.ErrFileNotFound)

	var fnf *gfa.FileNotFoundError
	require.ErrorAs(t, err, &fnf)
	assert.Equal(t, filepath.Join(dir, "nope.gfa"), fnf.Path)
}

func TestNew_NotAnIndex(t *testing.T) {
	gfaPath, _ := writeFixture(t, index.TypeFull)

	_, err := New(context.Background(), gfaPath, gfaPath)
	assert.ErrorIs(t, err, index.ErrInvalidMagic)
}
