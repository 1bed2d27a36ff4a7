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
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

const (
	// Magic identifies index files. It spells "PGTOOLSI".
	Magic uint64 = 0x5047544F4F4C5349

	// FormatVersion is the highest version this package reads and the
	// version it writes.
	FormatVersion uint32 = 1

	headerSize = 8 + 4 + 8

	// preallocLimit caps the buffer reserved up front from an untrusted
	// payload length. Larger payloads still load; they just grow.
	preallocLimit = 64 << 20
)

// wireIndex is the gob payload. gob omits empty maps and slices, so
// presence of each sub-index is carried explicitly.
type wireIndex struct {
	SourceFile string
	Version    uint32

	HasSegments bool
	Segments    map[string]SegmentIndexEntry

	HasPaths    bool
	PathEntries map[string]PathIndexEntry
	PathNames   []string

	HasPositions bool
	Positions    map[string][]PositionIndexEntry
}

func toWire(idx *Index) *wireIndex {
	w := &wireIndex{SourceFile: idx.SourceFile, Version: idx.Version}
	if idx.Segments != nil {
		w.HasSegments = true
		w.Segments = idx.Segments.Entries
	}
	if idx.Paths != nil {
		w.HasPaths = true
		w.PathEntries = idx.Paths.Entries
		w.PathNames = idx.Paths.PathNames
	}
	if idx.Positions != nil {
		w.HasPositions = true
		w.Positions = idx.Positions.Entries
	}
	return w
}

// fromWire rebuilds the index, restoring the empty collections gob dropped.
func fromWire(w *wireIndex) *Index {
	idx := &Index{SourceFile: w.SourceFile, Version: w.Version}
	if w.HasSegments {
		if w.Segments == nil {
			w.Segments = make(map[string]SegmentIndexEntry)
		}
		idx.Segments = &SegmentIndex{Entries: w.Segments}
	}
	if w.HasPaths {
		if w.PathEntries == nil {
			w.PathEntries = make(map[string]PathIndexEntry)
		}
		if w.PathNames == nil {
			w.PathNames = make([]string, 0)
		}
		idx.Paths = &PathIndex{Entries: w.PathEntries, PathNames: w.PathNames}
	}
	if w.HasPositions {
		if w.Positions == nil {
			w.Positions = make(map[string][]PositionIndexEntry)
		}
		for name, ranges := range w.Positions {
			if ranges == nil {
				w.Positions[name] = make([]PositionIndexEntry, 0)
			}
		}
		idx.Positions = &PositionIndex{Entries: w.Positions}
	}
	return idx
}

// SaveTo writes idx to w in the index file format.
//
// The header version is idx.Version, or FormatVersion when unset.
func SaveTo(w io.Writer, idx *Index) error {
	if idx == nil {
		return ErrNilIndex
	}

	wire := toWire(idx)
	if wire.Version == 0 {
		wire.Version = FormatVersion
	}

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(wire); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[0:8], Magic)
	binary.LittleEndian.PutUint32(header[8:12], wire.Version)
	binary.LittleEndian.PutUint64(header[12:20], uint64(payload.Len()))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := payload.WriteTo(w); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// LoadFrom reads one index from r.
//
// # Description
//
// Verifies the magic, rejects versions newer than FormatVersion, reads
// exactly the declared payload length, and decodes it. The payload must
// decode completely with no trailing bytes.
//
// # Outputs
//
//   - *Index: The decoded index.
//   - error: *FormatError matching ErrInvalidMagic, ErrUnsupportedVersion,
//     or ErrCorruptPayload.
func LoadFrom(r io.Reader) (*Index, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, corrupt("reading magic", shortRead(err))
	}
	if binary.LittleEndian.Uint64(magic[:]) != Magic {
		return nil, &FormatError{Kind: ErrInvalidMagic, Reason: "Invalid index file format"}
	}

	var rest [headerSize - 8]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return nil, corrupt("reading header", shortRead(err))
	}
	version := binary.LittleEndian.Uint32(rest[0:4])
	if version > FormatVersion {
		return nil, &FormatError{
			Kind:   ErrUnsupportedVersion,
			Reason: fmt.Sprintf("Index version %d not supported (max: %d)", version, FormatVersion),
		}
	}

	size := binary.LittleEndian.Uint64(rest[4:12])
	if size > math.MaxInt64 {
		return nil, corrupt(fmt.Sprintf("payload length %d out of range", size), nil)
	}

	var payload bytes.Buffer
	payload.Grow(int(min(size, preallocLimit)))
	if _, err := io.CopyN(&payload, r, int64(size)); err != nil {
		return nil, corrupt(fmt.Sprintf("reading %d byte payload", size), shortRead(err))
	}

	body := bytes.NewReader(payload.Bytes())
	var wire wireIndex
	if err := gob.NewDecoder(body).Decode(&wire); err != nil {
		return nil, corrupt("decoding payload", err)
	}
	if body.Len() != 0 {
		return nil, corrupt(fmt.Sprintf("%d trailing bytes after payload", body.Len()), nil)
	}
	if wire.Version != version {
		return nil, corrupt(fmt.Sprintf("payload version %d does not match header version %d",
			wire.Version, version), nil)
	}

	return fromWire(&wire), nil
}

// Save writes idx to path atomically.
//
// # Description
//
// The index is written to a temporary file in the destination directory,
// synced, and renamed over path. A failed save leaves any previous file at
// path untouched.
//
// # Inputs
//
//   - ctx: Context for tracing. Checked once before writing.
//   - idx: Index to write.
//   - path: Destination file.
//
// # Outputs
//
//   - error: Non-nil on any create, write, sync, or rename failure.
func Save(ctx context.Context, idx *Index, path string) (err error) {
	if ctx == nil {
		return ErrNilContext
	}
	if idx == nil {
		return ErrNilIndex
	}

	start := time.Now()
	ctx, span := startOperationSpan(ctx, "index.Save", attribute.String("index.path", path))
	defer span.End()
	defer func() {
		recordOperationMetrics(ctx, "save", time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	cw := &countingWriter{w: tmp}
	bw := bufio.NewWriter(cw)
	if err := SaveTo(bw, idx); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	cleanupTmp = false

	if err := syncDir(dir); err != nil {
		return err
	}

	span.SetAttributes(attribute.Int64("index.bytes", cw.count))
	recordIndexBytes(ctx, "save", cw.count)
	return nil
}

// Load reads the index file at path.
//
// A missing file is reported as *gfa.FileNotFoundError before any open is
// attempted. Format problems are *FormatError.
func Load(ctx context.Context, path string) (idx *Index, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	start := time.Now()
	ctx, span := startOperationSpan(ctx, "index.Load", attribute.String("index.path", path))
	defer span.End()
	defer func() {
		recordOperationMetrics(ctx, "load", time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if err := gfa.CheckExists(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &gfa.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	cr := &countingReader{r: f}
	idx, err = LoadFrom(bufio.NewReader(cr))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	recordIndexBytes(ctx, "load", cr.count)
	return idx, nil
}

// shortRead reports running out of input inside the file as
// io.ErrUnexpectedEOF.
func shortRead(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

type countingReader struct {
	r     io.Reader
	count int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.count += int64(n)
	return n, err
}

// syncDir syncs a directory so a completed rename survives a crash.
func syncDir(dirPath string) error {
	dir, err := os.Open(dirPath)
	if err != nil {
		return fmt.Errorf("open dir for sync: %w", err)
	}
	defer dir.Close()

	if err := dir.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}
