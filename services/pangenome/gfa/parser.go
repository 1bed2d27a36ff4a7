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
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pgtools.gfa")

// Options configures parsing. The zero value is ready to use.
type Options struct {
	// Logger receives a debug summary when parsing completes.
	// Default: slog.Default()
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Parse reads GFA records from r into a new Graph.
//
// # Description
//
// Consumes r to completion in a single pass. Blank lines and lines starting
// with '#' are skipped, unknown record kinds are ignored, and the first
// malformed record aborts with a *ParseError.
//
// # Inputs
//
//   - ctx: Used for tracing and checked for cancellation between records.
//   - r: The GFA text. Not closed by Parse.
//   - opts: Optional. Only the first value is used.
//
// # Outputs
//
//   - *Graph: The parsed graph. Nil on error.
//   - error: *ParseError, *IOError, or the context error.
//
// # Thread Safety
//
// Safe for concurrent use with distinct readers.
func Parse(ctx context.Context, r io.Reader, opts ...Options) (*Graph, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	ctx, span := tracer.Start(ctx, "gfa.Parse")
	defer span.End()

	p := &parser{graph: NewGraph()}
	if err := p.run(ctx, r); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	g := p.graph
	span.SetAttributes(
		attribute.Int("gfa.lines", p.line),
		attribute.Int("gfa.segments", g.SegmentCount()),
		attribute.Int("gfa.links", g.LinkCount()),
		attribute.Int("gfa.paths", g.PathCount()),
	)
	opt.logger().Debug("parsed GFA",
		slog.Int("lines", p.line),
		slog.Int("segments", g.SegmentCount()),
		slog.Int("links", g.LinkCount()),
		slog.Int("paths", g.PathCount()),
	)
	return g, nil
}

// ParseFile opens path (gunzipping ".gz" inputs) and parses it.
//
// A missing file returns a *FileNotFoundError before any open is attempted.
func ParseFile(ctx context.Context, path string, opts ...Options) (*Graph, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	ctx, span := tracer.Start(ctx, "gfa.ParseFile", trace.WithAttributes(
		attribute.String("gfa.path", path),
	))
	defer span.End()

	rc, err := Open(path)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer rc.Close()

	g, err := Parse(ctx, rc, opts...)
	if err != nil {
		var ioErr *IOError
		if errors.As(err, &ioErr) && ioErr.Path == "" {
			ioErr.Path = path
		}
		return nil, err
	}
	return g, nil
}

// parser holds the per-call state of one Parse.
type parser struct {
	graph *Graph
	line  int
}

func (p *parser) run(ctx context.Context, r io.Reader) error {
	return ForEachLine(ctx, r, func(lineNo int, line string) error {
		p.line = lineNo
		return p.record(line)
	})
}

// record dispatches one trimmed line.
func (p *parser) record(line string) error {
	if line == "" || line[0] == '#' {
		return nil
	}

	fields := strings.Split(line, "\t")
	switch fields[0] {
	case "H":
		p.header(fields)
	case "S":
		return p.segment(fields)
	case "L":
		return p.link(fields)
	case "P":
		return p.path(fields)
	case "W":
		return p.walk(fields)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) header(fields []string) {
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		if key == "VN" {
			p.graph.Header.Version = value
			continue
		}
		p.graph.Header.Tags[key] = value
	}
}

func (p *parser) segment(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("Segment record requires at least 3 fields")
	}

	seg := &Segment{
		Name:     fields[1],
		Sequence: fields[2],
	}
	if len(fields) > 3 {
		seg.Tags = make(map[string]string, len(fields)-3)
		for _, field := range fields[3:] {
			if key, value, ok := strings.Cut(field, ":"); ok {
				seg.Tags[key] = value
			}
		}
	}

	p.graph.Segments[seg.Name] = seg
	return nil
}

func (p *parser) link(fields []string) error {
	if len(fields) < 6 {
		return p.errorf("Link record requires at least 6 fields")
	}

	fromOrient, err := p.orientation(fields[2], "from")
	if err != nil {
		return err
	}
	toOrient, err := p.orientation(fields[4], "to")
	if err != nil {
		return err
	}

	p.graph.Links = append(p.graph.Links, Link{
		From:       fields[1],
		FromOrient: fromOrient,
		To:         fields[3],
		ToOrient:   toOrient,
		Overlap:    fields[5],
	})
	return nil
}

func (p *parser) orientation(field, which string) (Orientation, error) {
	if field == "" {
		return Forward, p.errorf("Missing %s orientation", which)
	}
	o, err := ParseOrientation(field)
	if err != nil {
		return Forward, &ParseError{Line: p.line, Message: err.Error(), Err: err}
	}
	return o, nil
}

func (p *parser) path(fields []string) error {
	if len(fields) < 3 {
		return p.errorf("Path record requires at least 3 fields")
	}

	tokens := strings.Split(fields[2], ",")
	steps := make([]PathStep, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		var orient Orientation
		switch token[len(token)-1] {
		case '+':
			orient = Forward
		case '-':
			orient = Reverse
		default:
			return p.errorf("Path step missing orientation: %s", token)
		}
		steps = append(steps, PathStep{
			Segment:     token[:len(token)-1],
			Orientation: orient,
		})
	}

	var overlaps []string
	if len(fields) > 3 && fields[3] != "" && fields[3] != "*" {
		overlaps = strings.Split(fields[3], ",")
	}

	p.graph.Paths = append(p.graph.Paths, Path{
		Name:     fields[1],
		Steps:    steps,
		Overlaps: overlaps,
	})
	return nil
}

// walk parses a W record into a Path named sample#haplotype#seqid.
//
// Each segment takes the orientation of the '>' or '<' marker that opened
// it, the final segment included. Characters before the first marker are
// ignored.
func (p *parser) walk(fields []string) error {
	if len(fields) < 7 {
		return p.errorf("Walk record requires at least 7 fields")
	}

	name := fields[1] + "#" + fields[2] + "#" + fields[3]
	walk := fields[6]

	var (
		steps   []PathStep
		current strings.Builder
		orient  Orientation
		opened  bool
	)
	flush := func() {
		if opened && current.Len() > 0 {
			steps = append(steps, PathStep{Segment: current.String(), Orientation: orient})
			current.Reset()
		}
	}

	for i := 0; i < len(walk); i++ {
		switch c := walk[i]; c {
		case '>':
			flush()
			orient, opened = Forward, true
		case '<':
			flush()
			orient, opened = Reverse, true
		default:
			if opened {
				current.WriteByte(c)
			}
		}
	}
	flush()

	if steps == nil {
		steps = make([]PathStep, 0)
	}
	p.graph.Paths = append(p.graph.Paths, Path{Name: name, Steps: steps})
	return nil
}
