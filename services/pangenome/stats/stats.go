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
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

var tracer = otel.Tracer("pgtools.stats")

// Report is the full statistics report for a materialized graph.
type Report struct {
	SegmentCount            int          `json:"segment_count"`
	LinkCount               int          `json:"link_count"`
	PathCount               int          `json:"path_count"`
	TotalSequenceLength     uint64       `json:"total_sequence_length"`
	AverageSegmentLength    float64      `json:"average_segment_length"`
	MinSegmentLength        uint64       `json:"min_segment_length"`
	MaxSegmentLength        uint64       `json:"max_segment_length"`
	N50                     uint64       `json:"n50"`
	L50                     int          `json:"l50"`
	GCContent               float64      `json:"gc_content"`
	ConnectedComponents     int          `json:"connected_components"`
	AveragePathLength       float64      `json:"average_path_length"`
	TotalPathSequenceLength uint64       `json:"total_path_sequence_length"`
	SegmentLengthHistogram  []LengthBin  `json:"segment_length_histogram"`
	InDegreeDistribution    Distribution `json:"in_degree_distribution"`
	OutDegreeDistribution   Distribution `json:"out_degree_distribution"`
}

// Topology is the unified total-degree view shared with the streaming path.
type Topology struct {
	N50               uint64        `json:"n50"`
	L50               int           `json:"l50"`
	DegreeHistogram   []DegreeCount `json:"degree_histogram"`
	BranchingSegments int           `json:"branching_nodes"`
}

// Options configures Compute. The zero value is ready to use.
type Options struct {
	// Logger receives a debug line with the elapsed time.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Compute derives the full Report from g.
//
// # Description
//
// Independent metrics are computed concurrently over the immutable graph.
// The result is identical to a sequential pass.
//
// # Inputs
//
//   - ctx: Used for tracing. Cancellation is observed before the join.
//   - g: The graph. Must not be nil. Not modified.
//
// # Outputs
//
//   - *Report: Never nil on success.
//   - error: ErrNilContext, ErrNilGraph, or the context error.
//
// # Thread Safety
//
// Safe for concurrent use; each call owns its intermediate maps.
func Compute(ctx context.Context, g *gfa.Graph, opts ...Options) (*Report, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if g == nil {
		return nil, ErrNilGraph
	}
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, span := tracer.Start(ctx, "stats.Compute")
	defer span.End()
	start := time.Now()

	report := &Report{
		SegmentCount:        g.SegmentCount(),
		LinkCount:           g.LinkCount(),
		PathCount:           g.PathCount(),
		TotalSequenceLength: g.TotalSequenceLength(),
	}

	lengths := segmentLengths(g)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		report.MinSegmentLength, report.MaxSegmentLength, report.AverageSegmentLength = lengthSummary(lengths)
		report.N50, report.L50 = N50(lengths)
		report.SegmentLengthHistogram = LengthHistogram(lengths)
		return nil
	})
	eg.Go(func() error {
		var bases BaseCounts
		for _, seg := range g.Segments {
			bases.Add(seg.Sequence)
		}
		report.GCContent = bases.GCPercent()
		return nil
	})
	eg.Go(func() error {
		report.ConnectedComponents = ConnectedComponents(g)
		return egCtx.Err()
	})
	eg.Go(func() error {
		report.InDegreeDistribution, report.OutDegreeDistribution = DegreeDistributions(g)
		return nil
	})
	eg.Go(func() error {
		report.AveragePathLength, report.TotalPathSequenceLength = PathStats(g)
		return nil
	})
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("stats.segments", report.SegmentCount),
		attribute.Int("stats.components", report.ConnectedComponents),
		attribute.Int64("stats.n50", int64(report.N50)),
	)
	logger.Debug("computed graph statistics",
		slog.Int("segments", report.SegmentCount),
		slog.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// TopologyOf computes the total-degree topology view of g.
//
// Agrees exactly with ComputeTopology over the same GFA text.
func TopologyOf(g *gfa.Graph) Topology {
	n50, l50 := N50(segmentLengths(g))
	hist, branching := countDegrees(g).totals()
	return Topology{
		N50:               n50,
		L50:               l50,
		DegreeHistogram:   hist.Sorted(),
		BranchingSegments: branching,
	}
}

// PathStats returns the mean step count per path and the total number of
// bases traversed by all paths. Steps naming undefined segments add zero.
func PathStats(g *gfa.Graph) (averageSteps float64, totalLength uint64) {
	if len(g.Paths) == 0 {
		return 0, 0
	}

	steps := 0
	for _, path := range g.Paths {
		steps += len(path.Steps)
		for _, step := range path.Steps {
			if n, ok := g.SegmentLength(step.Segment); ok {
				totalLength += uint64(n)
			}
		}
	}
	return float64(steps) / float64(len(g.Paths)), totalLength
}

func segmentLengths(g *gfa.Graph) []uint64 {
	lengths := make([]uint64, 0, len(g.Segments))
	for _, seg := range g.Segments {
		lengths = append(lengths, uint64(seg.Length()))
	}
	return lengths
}

func lengthSummary(lengths []uint64) (lo, hi uint64, mean float64) {
	if len(lengths) == 0 {
		return 0, 0, 0
	}
	lo = lengths[0]
	var total uint64
	for _, l := range lengths {
		lo = min(lo, l)
		hi = max(hi, l)
		total += l
	}
	return lo, hi, float64(total) / float64(len(lengths))
}
