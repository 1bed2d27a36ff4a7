// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package objstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	u, err := ParseURI("gs://pangenomes/hprc/v1/graph.idx")
	require.NoError(t, err)
	assert.Equal(t, URI{Bucket: "pangenomes", Object: "hprc/v1/graph.idx"}, u)
	assert.Equal(t, "gs://pangenomes/hprc/v1/graph.idx", u.String())
}

func TestParseURI_Invalid(t *testing.T) {
	for _, in := range []string{
		"graph.idx",
		"s3://bucket/key",
		"gs://",
		"gs://bucket",
		"gs://bucket/",
		"gs:///object",
		"gs://bucket/dir/",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseURI(in)
			assert.ErrorIs(t, err, ErrInvalidURI)
		})
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("gs://b/o"))
	assert.False(t, IsRemote("/tmp/gs://b"))
	assert.False(t, IsRemote("graph.idx"))
}

func TestWriteLocal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	path, err := writeLocal(strings.NewReader("index bytes"), dir, "graph.idx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "graph.idx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "index bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("network reset") }

func TestWriteLocal_ReadFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()

	_, err := writeLocal(failingReader{}, dir, "graph.idx")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
