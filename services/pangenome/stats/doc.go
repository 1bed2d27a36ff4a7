// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stats computes topology and sequence statistics for GFA graphs.
//
// Compute is a pure function of a parsed *gfa.Graph. ComputeBasic and
// ComputeTopology are the streaming variants: they read GFA text directly and
// never retain segment sequences, for inputs too large to materialize.
//
// N50/L50 and degree counting are shared by both paths, so the streaming
// topology report agrees exactly with TopologyOf on the same input.
package stats
