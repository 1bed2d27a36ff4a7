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

import "fmt"

// PlaceholderSequence marks a segment whose sequence was omitted.
const PlaceholderSequence = "*"

// Orientation is the traversal direction of a segment.
type Orientation uint8

const (
	// Forward is written '+' in L/P records and '>' in walks.
	Forward Orientation = iota

	// Reverse is written '-' in L/P records and '<' in walks.
	Reverse
)

// String returns "+" or "-".
func (o Orientation) String() string {
	if o == Reverse {
		return "-"
	}
	return "+"
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOrientation converts "+" or "-" to an Orientation.
//
// Any other value, including the empty string and multi-character strings,
// returns an *InvalidInputError.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	default:
		return Forward, &InvalidInputError{Message: fmt.Sprintf("Invalid orientation: %q", s)}
	}
}

// Segment is a named sequence fragment (a graph node).
type Segment struct {
	Name     string            `json:"name"`
	Sequence string            `json:"sequence"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Length returns the number of bases in the segment.
//
// The placeholder "*" has length zero.
func (s *Segment) Length() int {
	return SequenceLength(s.Sequence)
}

// IsPlaceholder reports whether the sequence is empty or "*".
func (s *Segment) IsPlaceholder() bool {
	return s.Sequence == "" || s.Sequence == PlaceholderSequence
}

// SequenceLength returns len(seq), treating "*" as zero.
func SequenceLength(seq string) int {
	if seq == PlaceholderSequence {
		return 0
	}
	return len(seq)
}

// Link is a directed, oriented edge between two segment names.
//
// Overlap is an opaque CIGAR-like string.
type Link struct {
	From       string      `json:"from"`
	FromOrient Orientation `json:"from_orient"`
	To         string      `json:"to"`
	ToOrient   Orientation `json:"to_orient"`
	Overlap    string      `json:"overlap"`
}

// PathStep is one oriented segment visit within a path.
type PathStep struct {
	Segment     string      `json:"segment"`
	Orientation Orientation `json:"orientation"`
}

// Path is an ordered traversal of oriented segments.
//
// Walk (W) records are stored as paths named sample#haplotype#seqid.
// Overlaps is nil when the record carried none.
type Path struct {
	Name     string     `json:"name"`
	Steps    []PathStep `json:"steps"`
	Overlaps []string   `json:"overlaps,omitempty"`
}

// Header holds the H record contents. Version is the VN tag value.
type Header struct {
	Version string            `json:"version,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// Graph is the aggregate root produced by the parser.
//
// # Description
//
// Segments are keyed by name; the last definition of a duplicated name wins.
// Links and Paths preserve source order. Paths with equal names are all kept.
//
// # Thread Safety
//
// Read-only after Parse returns. Safe for concurrent readers.
type Graph struct {
	Header   Header              `json:"header"`
	Segments map[string]*Segment `json:"segments"`
	Links    []Link              `json:"links"`
	Paths    []Path              `json:"paths"`
}

// NewGraph creates an empty graph with initialized maps.
func NewGraph() *Graph {
	return &Graph{
		Header:   Header{Tags: make(map[string]string)},
		Segments: make(map[string]*Segment),
		Links:    make([]Link, 0),
		Paths:    make([]Path, 0),
	}
}

// Segment returns the named segment, or nil.
func (g *Graph) Segment(name string) *Segment {
	return g.Segments[name]
}

// SegmentCount returns the number of distinct segments.
func (g *Graph) SegmentCount() int {
	return len(g.Segments)
}

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int {
	return len(g.Links)
}

// PathCount returns the number of paths, including walks.
func (g *Graph) PathCount() int {
	return len(g.Paths)
}

// TotalSequenceLength sums every segment length, "*" counting zero.
func (g *Graph) TotalSequenceLength() uint64 {
	var total uint64
	for _, seg := range g.Segments {
		total += uint64(seg.Length())
	}
	return total
}

// SegmentLength returns the length of the named segment and whether it
// exists.
func (g *Graph) SegmentLength(name string) (int, bool) {
	seg, ok := g.Segments[name]
	if !ok {
		return 0, false
	}
	return seg.Length(), true
}
