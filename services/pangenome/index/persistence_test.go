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
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

const roundTripGFA = chainGFA +
	"S\tplaceholder\t*\n" +
	"P\tempty\t\t*\n" +
	"P\twithghost\ts1+,ghost-,s2+\t*\n" +
	"P\tpath1\ts3-\t*\n" +
	"W\tHG002\t1\tchr1\t0\t16\t>s1<s2\n"

func TestSaveLoad_RoundTrip(t *testing.T) {
	inputs := map[string]string{
		"chain":      chainGFA,
		"edge cases": roundTripGFA,
		"empty":      "",
	}
	types := []IndexType{TypeSegment, TypePath, TypePosition, TypeFull}

	for name, input := range inputs {
		for _, typ := range types {
			t.Run(name+"/"+typ.String(), func(t *testing.T) {
				built := mustBuild(t, input, typ)

				path := filepath.Join(t.TempDir(), "graph.idx")
				require.NoError(t, Save(context.Background(), built, path))

				loaded, err := Load(context.Background(), path)
				require.NoError(t, err)
				assert.Equal(t, built, loaded)
			})
		}
	}
}

func TestSaveTo_HeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveTo(&buf, mustBuild(t, chainGFA, TypeFull)))

	raw := buf.Bytes()
	require.Greater(t, len(raw), headerSize)
	assert.Equal(t, []byte("ISLOOTGP"), raw[0:8])
	assert.Equal(t, Magic, binary.LittleEndian.Uint64(raw[0:8]))
	assert.Equal(t, FormatVersion, binary.LittleEndian.Uint32(raw[8:12]))
	assert.Equal(t, uint64(len(raw)-headerSize), binary.LittleEndian.Uint64(raw[12:20]))
}

func TestSaveTo_ZeroVersionWritesCurrent(t *testing.T) {
	idx := &Index{SourceFile: "x.gfa"}

	var buf bytes.Buffer
	require.NoError(t, SaveTo(&buf, idx))

	loaded, err := LoadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, loaded.Version)
	assert.Nil(t, loaded.Segments)
	assert.Nil(t, loaded.Paths)
	assert.Nil(t, loaded.Positions)
}

func encoded(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, SaveTo(&buf, mustBuild(t, chainGFA, TypeFull)))
	return buf.Bytes()
}

func TestLoadFrom_BadMagic(t *testing.T) {
	raw := encoded(t)
	raw[0] ^= 0xFF

	_, err := LoadFrom(bytes.NewReader(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMagic)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Invalid index file format", fe.Reason)
}

func TestLoadFrom_NotAnIndex(t *testing.T) {
	_, err := LoadFrom(bytes.NewReader([]byte("H\tVN:Z:1.0\nS\ts1\tACGT\n")))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestLoadFrom_FutureVersion(t *testing.T) {
	raw := encoded(t)
	binary.LittleEndian.PutUint32(raw[8:12], FormatVersion+1)

	_, err := LoadFrom(bytes.NewReader(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Contains(t, err.Error(), "Index version 2 not supported (max: 1)")
}

func TestLoadFrom_Truncated(t *testing.T) {
	raw := encoded(t)

	cuts := map[string]int{
		"empty file":     0,
		"inside magic":   4,
		"after magic":    8,
		"inside header":  14,
		"header only":    headerSize,
		"inside payload": len(raw) - 1,
	}
	for name, n := range cuts {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(bytes.NewReader(raw[:n]))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptPayload)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestLoadFrom_CorruptPayload(t *testing.T) {
	raw := encoded(t)
	for i := headerSize; i < len(raw); i++ {
		raw[i] = 0xFF
	}

	_, err := LoadFrom(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrCorruptPayload)
}

func TestLoadFrom_LengthMismatch(t *testing.T) {
	raw := encoded(t)
	declared := binary.LittleEndian.Uint64(raw[12:20])

	padded := append(append([]byte(nil), raw...), 0, 0, 0, 0)
	binary.LittleEndian.PutUint64(padded[12:20], declared+4)

	_, err := LoadFrom(bytes.NewReader(padded))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptPayload)
	assert.Contains(t, err.Error(), "trailing bytes")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.idx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gfa.ErrFileNotFound)
}

func TestLoad_WrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.idx")
	require.NoError(t, os.WriteFile(path, []byte("not an index at all"), 0o644))

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMagic)
	assert.Contains(t, err.Error(), path)
}

func TestSave_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.idx")

	first := mustBuild(t, chainGFA, TypeSegment)
	require.NoError(t, Save(context.Background(), first, path))

	second := mustBuild(t, chainGFA, TypeFull)
	require.NoError(t, Save(context.Background(), second, path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")

	loaded, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
}

func TestSave_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "graph.idx")
	err := Save(context.Background(), mustBuild(t, chainGFA, TypeFull), path)
	assert.Error(t, err)
}

func TestSave_NilArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.idx")
	assert.ErrorIs(t, Save(context.Background(), nil, path), ErrNilIndex)
	assert.ErrorIs(t, SaveTo(io.Discard, nil), ErrNilIndex)
}
