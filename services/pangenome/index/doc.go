// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index builds, persists, and queries random-access indexes over
// parsed GFA graphs.
//
// An Index holds up to three independent sub-indexes:
//
//   - SegmentIndex: segment name to sequence length.
//   - PathIndex: path name to step count and total length, plus the path
//     names in source order.
//   - PositionIndex: path name to the half-open coordinate range of every
//     step along the path's concatenated sequence.
//
// Which sub-indexes exist is chosen at build time with an IndexType. Lookups
// against a sub-index that was not built report "not found", never an error.
//
// # File Format
//
// All integers are little-endian:
//
//	offset  size  field
//	0       8     magic 0x5047544F4F4C5349 ("PGTOOLSI")
//	8       4     format version
//	12      8     payload length in bytes
//	20      n     payload (encoding/gob)
//
// Readers reject a bad magic, a version newer than FormatVersion, and any
// truncated or undecodable payload. No partial index is ever returned.
//
// # File Offsets
//
// The FileOffset fields of segment and path entries are ordinal positions,
// not byte offsets into the source file. Do not seek with them.
package index
