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
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

// Build constructs the sub-indexes selected by t over g.
//
// # Description
//
// Each sub-index is built independently from the immutable graph. A path
// step naming an undefined segment contributes a zero-length position range
// at the current coordinate and adds nothing to the path's total length.
//
// # Inputs
//
//   - ctx: Context for tracing and cancellation between sub-indexes.
//   - g: Parsed graph. Not modified.
//   - sourceFile: Recorded in the index for provenance.
//   - t: Variant to build.
//
// # Outputs
//
//   - *Index: The new index at FormatVersion.
//   - error: ErrNilContext, ErrNilGraph, ErrInvalidIndexType, or ctx.Err().
//
// # Thread Safety
//
// Safe to call concurrently on the same graph.
func Build(ctx context.Context, g *gfa.Graph, sourceFile string, t IndexType) (*Index, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if g == nil {
		return nil, ErrNilGraph
	}

	start := time.Now()
	ctx, span := startOperationSpan(ctx, "index.Build",
		attribute.String("index.type", t.String()),
		attribute.String("index.source", sourceFile),
	)
	defer span.End()

	idx, err := build(ctx, g, sourceFile, t)
	recordOperationMetrics(ctx, "build", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	info := idx.Info()
	span.SetAttributes(
		attribute.Int("index.segments", info.SegmentEntries),
		attribute.Int("index.paths", info.PathEntries),
		attribute.Int("index.positions", info.PositionEntries),
	)
	return idx, nil
}

func build(ctx context.Context, g *gfa.Graph, sourceFile string, t IndexType) (*Index, error) {
	idx := New(sourceFile)
	withSegments, withPaths, withPositions := false, false, false

	switch t {
	case TypeSegment:
		withSegments = true
	case TypePath:
		withPaths = true
	case TypePosition:
		withPositions = true
	case TypeFull:
		withSegments, withPaths, withPositions = true, true, true
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndexType, uint8(t))
	}

	if withSegments {
		idx.Segments = BuildSegmentIndex(g)
	}
	if withPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx.Paths = BuildPathIndex(g)
	}
	if withPositions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx.Positions = BuildPositionIndex(g)
	}
	return idx, nil
}

// BuildSegmentIndex indexes every segment of g. FileOffset is the ordinal of
// the name in sorted order, so the same graph always yields the same index.
func BuildSegmentIndex(g *gfa.Graph) *SegmentIndex {
	names := make([]string, 0, len(g.Segments))
	for name := range g.Segments {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make(map[string]SegmentIndexEntry, len(names))
	for i, name := range names {
		entries[name] = SegmentIndexEntry{
			Name:           name,
			SequenceLength: g.Segments[name].Length(),
			FileOffset:     uint64(i),
		}
	}
	return &SegmentIndex{Entries: entries}
}

// BuildPathIndex indexes every path of g in source order.
func BuildPathIndex(g *gfa.Graph) *PathIndex {
	entries := make(map[string]PathIndexEntry, len(g.Paths))
	names := make([]string, 0, len(g.Paths))

	for i, path := range g.Paths {
		var total uint64
		for _, step := range path.Steps {
			if n, ok := g.SegmentLength(step.Segment); ok {
				total += uint64(n)
			}
		}
		entries[path.Name] = PathIndexEntry{
			Name:        path.Name,
			StepCount:   len(path.Steps),
			TotalLength: total,
			FileOffset:  uint64(i),
		}
		names = append(names, path.Name)
	}
	return &PathIndex{Entries: entries, PathNames: names}
}

// BuildPositionIndex walks each path once, emitting one range per step.
func BuildPositionIndex(g *gfa.Graph) *PositionIndex {
	entries := make(map[string][]PositionIndexEntry, len(g.Paths))

	for _, path := range g.Paths {
		ranges := make([]PositionIndexEntry, 0, len(path.Steps))
		var pos uint64
		for i, step := range path.Steps {
			n, _ := g.SegmentLength(step.Segment)
			end := pos + uint64(n)
			ranges = append(ranges, PositionIndexEntry{
				PathName:    path.Name,
				Start:       pos,
				End:         end,
				SegmentName: step.Segment,
				StepIndex:   i,
			})
			pos = end
		}
		entries[path.Name] = ranges
	}
	return &PositionIndex{Entries: entries}
}
