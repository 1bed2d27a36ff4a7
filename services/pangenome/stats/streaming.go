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
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

// BasicStats are the counts gathered by a single streaming pass.
//
// TotalLines counts non-blank lines. MinNodeLength is 0 when no segment
// carried a sequence. Segments with sequence "*" are counted as nodes but do
// not contribute to length or base accounting.
type BasicStats struct {
	TotalLines    uint64     `json:"total_lines"`
	NodeCount     uint64     `json:"node_count"`
	EdgeCount     uint64     `json:"edge_count"`
	PathCount     uint64     `json:"path_count"`
	OtherRecords  uint64     `json:"other_records"`
	CommentLines  uint64     `json:"comment_lines"`
	TotalBP       uint64     `json:"total_bp"`
	MinNodeLength uint64     `json:"min_node_length"`
	MaxNodeLength uint64     `json:"max_node_length"`
	Bases         BaseCounts `json:"bases"`

	sized bool
}

// MeanNodeLength returns TotalBP over NodeCount, 0 with no nodes.
func (b *BasicStats) MeanNodeLength() float64 {
	if b.NodeCount == 0 {
		return 0
	}
	return float64(b.TotalBP) / float64(b.NodeCount)
}

// GraphStats is the streaming topology report.
type GraphStats struct {
	Basic BasicStats `json:"basic"`
	Topology
}

// streamer holds the state of one streaming pass. topo is nil for the
// basic variant so that no per-segment state is retained.
type streamer struct {
	basic BasicStats
	topo  *topologyState
}

type topologyState struct {
	lengths map[string]uint64
	degrees *degreeCounter
}

func (s *streamer) line(lineNo int, line string) error {
	if line == "" {
		return nil
	}
	s.basic.TotalLines++
	if line[0] == '#' {
		s.basic.CommentLines++
		return nil
	}

	kind, rest, _ := strings.Cut(line, "\t")
	switch kind {
	case "S":
		s.basic.NodeCount++
		return s.segment(lineNo, line, rest)
	case "L":
		s.basic.EdgeCount++
		return s.link(lineNo, line, rest)
	// Walks are paths here too, matching the full engine.
	case "P", "W":
		s.basic.PathCount++
	default:
		s.basic.OtherRecords++
	}
	return nil
}

func (s *streamer) segment(lineNo int, line, rest string) error {
	fields := strings.SplitN(rest, "\t", 3)
	if len(fields) < 2 {
		return &MalformedLineError{Line: lineNo, Record: line}
	}
	name, seq := fields[0], fields[1]

	if s.topo != nil {
		s.topo.lengths[name] = uint64(gfa.SequenceLength(seq))
		s.topo.degrees.addSegment(name)
	}
	if seq == gfa.PlaceholderSequence {
		return nil
	}

	n := uint64(len(seq))
	s.basic.TotalBP += n
	if !s.basic.sized || n < s.basic.MinNodeLength {
		s.basic.MinNodeLength = n
	}
	s.basic.MaxNodeLength = max(s.basic.MaxNodeLength, n)
	s.basic.sized = true
	s.basic.Bases.Add(seq)
	return nil
}

func (s *streamer) link(lineNo int, line, rest string) error {
	if s.topo == nil {
		return nil
	}
	fields := strings.SplitN(rest, "\t", 4)
	if len(fields) < 3 {
		return &MalformedLineError{Line: lineNo, Record: line}
	}
	s.topo.degrees.addLink(fields[0], fields[2])
	return nil
}

func (s *streamer) run(ctx context.Context, name string, r readerFunc) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	if err := r(ctx, s.line); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(
		attribute.Int64("stats.lines", int64(s.basic.TotalLines)),
		attribute.Int64("stats.nodes", int64(s.basic.NodeCount)),
	)
	return nil
}

// readerFunc feeds lines to fn until the input is exhausted.
type readerFunc func(ctx context.Context, fn gfa.LineFunc) error

func fromReader(r io.Reader) readerFunc {
	return func(ctx context.Context, fn gfa.LineFunc) error {
		return gfa.ForEachLine(ctx, r, fn)
	}
}

func fromPath(path string) readerFunc {
	return func(ctx context.Context, fn gfa.LineFunc) error {
		rc, err := gfa.Open(path)
		if err != nil {
			return err
		}
		defer rc.Close()
		return gfa.ForEachLine(ctx, rc, fn)
	}
}

// ComputeBasic counts records, bases, and node lengths in one pass over r.
//
// # Description
//
// Holds O(1) state regardless of input size. An S record without a sequence
// field returns a *MalformedLineError.
func ComputeBasic(ctx context.Context, r io.Reader) (*BasicStats, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	s := &streamer{}
	if err := s.run(ctx, "stats.ComputeBasic", fromReader(r)); err != nil {
		return nil, err
	}
	return &s.basic, nil
}

// ComputeBasicFromPath runs ComputeBasic over a file, gunzipping ".gz".
func ComputeBasicFromPath(ctx context.Context, path string) (*BasicStats, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	s := &streamer{}
	if err := s.run(ctx, "stats.ComputeBasicFromPath", fromPath(path)); err != nil {
		return nil, err
	}
	return &s.basic, nil
}

// ComputeTopology adds N50/L50 and the total-degree histogram to the basic
// counts.
//
// # Description
//
// Retains one length and one degree pair per segment name but never the
// sequences. N50, L50, and degree definitions are those of the full engine:
// the result equals TopologyOf on the parsed graph. L records need at least
// the from and to name fields.
//
// # Thread Safety
//
// Safe for concurrent use with distinct readers.
func ComputeTopology(ctx context.Context, r io.Reader) (*GraphStats, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return computeTopology(ctx, "stats.ComputeTopology", fromReader(r))
}

// ComputeTopologyFromPath runs ComputeTopology over a file, gunzipping ".gz".
func ComputeTopologyFromPath(ctx context.Context, path string) (*GraphStats, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return computeTopology(ctx, "stats.ComputeTopologyFromPath", fromPath(path),
		trace.WithAttributes(attribute.String("gfa.path", path)))
}

func computeTopology(ctx context.Context, name string, r readerFunc, spanOpts ...trace.SpanStartOption) (*GraphStats, error) {
	ctx, span := tracer.Start(ctx, name+".topology", spanOpts...)
	defer span.End()

	s := &streamer{topo: &topologyState{
		lengths: make(map[string]uint64),
		degrees: newDegreeCounter(0),
	}}
	if err := s.run(ctx, name, r); err != nil {
		return nil, err
	}

	lengths := make([]uint64, 0, len(s.topo.lengths))
	for _, l := range s.topo.lengths {
		lengths = append(lengths, l)
	}
	n50, l50 := N50(lengths)
	hist, branching := s.topo.degrees.totals()

	return &GraphStats{
		Basic: s.basic,
		Topology: Topology{
			N50:               n50,
			L50:               l50,
			DegreeHistogram:   hist.Sorted(),
			BranchingSegments: branching,
		},
	}, nil
}
