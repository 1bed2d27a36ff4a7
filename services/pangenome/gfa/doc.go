// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gfa parses Graphical Fragment Assembly text into an in-memory
// pangenome graph.
//
// # Description
//
// The parser is line oriented and single pass. Each non-blank, non-comment
// line is one record selected by its first tab-separated field:
//
//	H  header      VN:Z:1.0 and other KEY:VALUE tags
//	S  segment     S <name> <sequence> [KEY:VALUE ...]
//	L  link        L <from> <+|-> <to> <+|-> <overlap>
//	P  path        P <name> <seg+,seg-,...> [overlaps]
//	W  walk        W <sample> <hap> <seqid> <start> <end> <>a<b>c>
//
// Unknown record kinds are ignored. The first malformed record aborts the
// parse with a *ParseError carrying the 1-based line number.
//
// # Graph Model
//
// A Graph owns its segments by name. Links and paths refer to segments by
// name only and may reference names that were never defined; Validate reports
// those without failing.
//
// # Thread Safety
//
// A parsed Graph is never mutated by this package and may be shared by
// concurrent readers.
package gfa
