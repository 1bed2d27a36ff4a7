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
	"sort"
	"strings"
)

// Segment returns the entry for name. ok is false when the segment index
// was not built or has no such segment.
func (idx *Index) Segment(name string) (SegmentIndexEntry, bool) {
	if idx.Segments == nil {
		return SegmentIndexEntry{}, false
	}
	e, ok := idx.Segments.Entries[name]
	return e, ok
}

// Path returns the entry for name. ok is false when the path index was not
// built or has no such path.
func (idx *Index) Path(name string) (PathIndexEntry, bool) {
	if idx.Paths == nil {
		return PathIndexEntry{}, false
	}
	e, ok := idx.Paths.Entries[name]
	return e, ok
}

// QueryPosition returns the step of path whose range contains pos.
//
// # Description
//
// Ranges are sorted by End, so a binary search finds the first range ending
// after pos. Because ranges are contiguous that range also starts at or
// before pos, unless pos is beyond the path. Zero-length ranges from
// undefined segments never match.
//
// # Outputs
//
//   - PositionIndexEntry: The matching step.
//   - bool: False if the position index was not built, the path is not
//     indexed, or pos >= the path's total length.
func (idx *Index) QueryPosition(path string, pos uint64) (PositionIndexEntry, bool) {
	if idx.Positions == nil {
		return PositionIndexEntry{}, false
	}
	ranges, ok := idx.Positions.Entries[path]
	if !ok {
		return PositionIndexEntry{}, false
	}

	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].End > pos })
	if i == len(ranges) || !ranges[i].Contains(pos) {
		return PositionIndexEntry{}, false
	}
	return ranges[i], true
}

// ListSegments returns every indexed segment name in sorted order, or nil
// when the segment index was not built.
func (idx *Index) ListSegments() []string {
	if idx.Segments == nil {
		return nil
	}
	names := make([]string, 0, len(idx.Segments.Entries))
	for name := range idx.Segments.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListPaths returns path names in source order, repeated names included, or
// nil when the path index was not built.
func (idx *Index) ListPaths() []string {
	if idx.Paths == nil {
		return nil
	}
	return append([]string(nil), idx.Paths.PathNames...)
}

// Info is a count-only view of an index.
type Info struct {
	SourceFile      string `json:"source_file"`
	Version         uint32 `json:"version"`
	HasSegments     bool   `json:"has_segments"`
	HasPaths        bool   `json:"has_paths"`
	HasPositions    bool   `json:"has_positions"`
	SegmentEntries  int    `json:"segments"`
	PathEntries     int    `json:"paths"`
	PositionEntries int    `json:"positions"`
	PositionPaths   int    `json:"position_paths"`
}

// Info counts the entries of each built sub-index.
func (idx *Index) Info() Info {
	info := Info{SourceFile: idx.SourceFile, Version: idx.Version}
	if idx.Segments != nil {
		info.HasSegments = true
		info.SegmentEntries = len(idx.Segments.Entries)
	}
	if idx.Paths != nil {
		info.HasPaths = true
		info.PathEntries = len(idx.Paths.Entries)
	}
	if idx.Positions != nil {
		info.HasPositions = true
		info.PositionEntries = idx.Positions.EntryCount()
		info.PositionPaths = len(idx.Positions.Entries)
	}
	return info
}

// Summary renders Info as the human-readable index report.
func (idx *Index) Summary() string {
	info := idx.Info()

	var b strings.Builder
	b.WriteString("=== Index Summary ===\n\n")
	fmt.Fprintf(&b, "Source file: %s\n", info.SourceFile)
	fmt.Fprintf(&b, "Version: %d\n\n", info.Version)

	if info.HasSegments {
		fmt.Fprintf(&b, "Segment index: %d entries\n", info.SegmentEntries)
	} else {
		b.WriteString("Segment index: not built\n")
	}
	if info.HasPaths {
		fmt.Fprintf(&b, "Path index: %d entries\n", info.PathEntries)
	} else {
		b.WriteString("Path index: not built\n")
	}
	if info.HasPositions {
		fmt.Fprintf(&b, "Position index: %d entries across %d paths\n",
			info.PositionEntries, info.PositionPaths)
	} else {
		b.WriteString("Position index: not built\n")
	}
	return b.String()
}
