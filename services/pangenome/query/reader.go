// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query serves read-only lookups from a persisted GFA index.
package query

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
	"github.com/AleutianAI/pgtools/services/pangenome/index"
)

var tracer = otel.Tracer("pgtools.query")

// ErrNilContext is returned when a nil context is passed.
var ErrNilContext = errors.New("ctx must not be nil")

// SegmentInfo is the result of a segment lookup.
type SegmentInfo struct {
	Name           string `json:"name"`
	SequenceLength int    `json:"sequence_length"`
	FileOffset     uint64 `json:"file_offset"`
}

// PathInfo is the result of a path lookup.
type PathInfo struct {
	Name        string `json:"name"`
	StepCount   int    `json:"step_count"`
	TotalLength uint64 `json:"total_length"`
}

// IndexedReader answers lookups from a loaded index.
//
// # Description
//
// Holds the index in memory together with the path of the GFA it was built
// from. The GFA is checked for existence at construction but never opened:
// every answer comes from the index. Lookups against a sub-index that was
// not built return ok=false.
//
// # Thread Safety
//
// Immutable after New. Safe for concurrent use.
type IndexedReader struct {
	idx        *index.Index
	sourcePath string
	loadedAt   time.Time
}

// New loads indexPath and pairs it with gfaPath.
//
// # Inputs
//
//   - ctx: Context for tracing.
//   - gfaPath: The source GFA. Must exist.
//   - indexPath: The index file.
//
// # Outputs
//
//   - *IndexedReader: Ready for lookups.
//   - error: Any error from index.Load, or *gfa.FileNotFoundError when the
//     source GFA is missing.
func New(ctx context.Context, gfaPath, indexPath string) (*IndexedReader, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	ctx, span := tracer.Start(ctx, "query.New")
	defer span.End()
	span.SetAttributes(
		attribute.String("query.gfa_path", gfaPath),
		attribute.String("query.index_path", indexPath),
	)

	idx, err := index.Load(ctx, indexPath)
	if err == nil {
		err = gfa.CheckExists(gfaPath)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return NewFromIndex(idx, gfaPath), nil
}

// NewFromIndex wraps an index that is already in memory.
func NewFromIndex(idx *index.Index, sourcePath string) *IndexedReader {
	return &IndexedReader{idx: idx, sourcePath: sourcePath, loadedAt: time.Now()}
}

// Index returns the underlying index. Callers must not modify it.
func (r *IndexedReader) Index() *index.Index {
	return r.idx
}

// SourcePath returns the GFA path the reader was opened with.
func (r *IndexedReader) SourcePath() string {
	return r.sourcePath
}

// LoadedAt returns when the reader was created.
func (r *IndexedReader) LoadedAt() time.Time {
	return r.loadedAt
}

// GetSegment looks up a segment by name.
func (r *IndexedReader) GetSegment(name string) (SegmentInfo, bool) {
	e, ok := r.idx.Segment(name)
	if !ok {
		return SegmentInfo{}, false
	}
	return SegmentInfo{Name: e.Name, SequenceLength: e.SequenceLength, FileOffset: e.FileOffset}, true
}

// GetPath looks up a path by name.
func (r *IndexedReader) GetPath(name string) (PathInfo, bool) {
	e, ok := r.idx.Path(name)
	if !ok {
		return PathInfo{}, false
	}
	return PathInfo{Name: e.Name, StepCount: e.StepCount, TotalLength: e.TotalLength}, true
}

// QueryPosition returns the step of path covering pos.
func (r *IndexedReader) QueryPosition(path string, pos uint64) (index.PositionIndexEntry, bool) {
	return r.idx.QueryPosition(path, pos)
}

// ListSegments returns all indexed segment names, sorted.
func (r *IndexedReader) ListSegments() []string {
	return r.idx.ListSegments()
}

// ListPaths returns all indexed path names in source order.
func (r *IndexedReader) ListPaths() []string {
	return r.idx.ListPaths()
}
