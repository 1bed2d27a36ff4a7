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
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestParseFile_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.gfa")
	require.NoError(t, os.WriteFile(path, []byte(sampleGFA), 0644))

	g, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.SegmentCount())
}

func TestParseFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.gfa.gz")
	writeGzip(t, path, sampleGFA)

	g, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.SegmentCount())
	assert.Equal(t, 1, g.PathCount())
}

func TestParseFile_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.gfa")

	_, err := ParseFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)

	var nf *FileNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, path, nf.Path)
}

func TestOpen_CorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gfa.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip at all"), 0644))

	_, err := Open(path)
	require.Error(t, err)

	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}
