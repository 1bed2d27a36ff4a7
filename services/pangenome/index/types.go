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
	"fmt"
	"strings"
)

// IndexType selects which sub-indexes Build constructs.
type IndexType uint8

const (
	// TypeSegment builds only the segment index.
	TypeSegment IndexType = iota

	// TypePath builds only the path index.
	TypePath

	// TypePosition builds only the position index.
	TypePosition

	// TypeFull builds all three sub-indexes.
	TypeFull
)

// String returns the canonical lowercase name.
func (t IndexType) String() string {
	switch t {
	case TypeSegment:
		return "segment"
	case TypePath:
		return "path"
	case TypePosition:
		return "position"
	case TypeFull:
		return "full"
	default:
		return fmt.Sprintf("IndexType(%d)", uint8(t))
	}
}

// Set parses s into t. Together with String and Type it lets an IndexType
// be bound directly as a command-line flag.
func (t *IndexType) Set(s string) error {
	parsed, err := ParseIndexType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Type names the flag value type.
func (t *IndexType) Type() string {
	return "index-type"
}

// MarshalText implements encoding.TextMarshaler.
func (t IndexType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndexType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *IndexType) UnmarshalText(text []byte) error {
	return t.Set(string(text))
}

func (t IndexType) valid() bool {
	return t <= TypeFull
}

// ParseIndexType parses a variant name case-insensitively.
//
// Accepted spellings: segment, seg, s; path, p; position, pos; full, all, f.
func ParseIndexType(s string) (IndexType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "segment", "seg", "s":
		return TypeSegment, nil
	case "path", "p":
		return TypePath, nil
	case "position", "pos":
		return TypePosition, nil
	case "full", "all", "f":
		return TypeFull, nil
	}
	return 0, fmt.Errorf("%w: %s. Valid types: segment, path, position, full",
		ErrInvalidIndexType, s)
}

// SegmentIndexEntry describes one segment.
//
// FileOffset is an ordinal position in sorted name order, not a byte offset.
type SegmentIndexEntry struct {
	Name           string `json:"name"`
	SequenceLength int    `json:"sequence_length"`
	FileOffset     uint64 `json:"file_offset"`
}

// PathIndexEntry describes one path.
//
// TotalLength sums the lengths of the segments the path visits; steps naming
// undefined segments add zero. FileOffset is the ordinal of the path in
// source order.
type PathIndexEntry struct {
	Name        string `json:"name"`
	StepCount   int    `json:"step_count"`
	TotalLength uint64 `json:"total_length"`
	FileOffset  uint64 `json:"file_offset"`
}

// PositionIndexEntry is the half-open range [Start, End) covered by one
// path step along the path's concatenated sequence.
type PositionIndexEntry struct {
	PathName    string `json:"path_name"`
	Start       uint64 `json:"start"`
	End         uint64 `json:"end"`
	SegmentName string `json:"segment_name"`
	StepIndex   int    `json:"step_index"`
}

// Contains reports whether pos falls inside [Start, End).
func (e PositionIndexEntry) Contains(pos uint64) bool {
	return pos >= e.Start && pos < e.End
}

// SegmentIndex maps segment name to entry.
type SegmentIndex struct {
	Entries map[string]SegmentIndexEntry
}

// PathIndex maps path name to entry.
//
// When several paths share a name, Entries keeps the last one while
// PathNames lists every occurrence in source order.
type PathIndex struct {
	Entries   map[string]PathIndexEntry
	PathNames []string
}

// PositionIndex maps path name to its step ranges in increasing coordinate
// order. Ranges of one path are contiguous and never overlap.
type PositionIndex struct {
	Entries map[string][]PositionIndexEntry
}

// EntryCount returns the number of ranges across all paths.
func (p *PositionIndex) EntryCount() int {
	n := 0
	for _, entries := range p.Entries {
		n += len(entries)
	}
	return n
}

// Index is the persisted aggregate.
//
// # Description
//
// SourceFile records the GFA the index was built from. It is provenance
// only and is not revalidated on load. A nil sub-index was not built.
//
// # Thread Safety
//
// Immutable once built or loaded. Safe for concurrent readers.
type Index struct {
	SourceFile string
	Version    uint32
	Segments   *SegmentIndex
	Paths      *PathIndex
	Positions  *PositionIndex
}

// New returns an empty index at the current format version.
func New(sourceFile string) *Index {
	return &Index{SourceFile: sourceFile, Version: FormatVersion}
}
