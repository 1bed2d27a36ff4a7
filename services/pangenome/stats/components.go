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

import "github.com/AleutianAI/pgtools/services/pangenome/gfa"

// ConnectedComponents counts weakly connected components of g.
//
// # Description
//
// Links are treated as undirected and orientation is ignored. Every defined
// segment belongs to exactly one component, isolated segments forming
// singletons. Link endpoints naming undefined segments do not join
// components.
//
// Traversal uses an explicit stack, so a single component spanning millions
// of segments does not grow the goroutine stack.
func ConnectedComponents(g *gfa.Graph) int {
	if len(g.Segments) == 0 {
		return 0
	}

	adjacency := make(map[string][]string, len(g.Segments))
	for _, link := range g.Links {
		if _, ok := g.Segments[link.From]; !ok {
			continue
		}
		if _, ok := g.Segments[link.To]; !ok {
			continue
		}
		adjacency[link.From] = append(adjacency[link.From], link.To)
		adjacency[link.To] = append(adjacency[link.To], link.From)
	}

	visited := make(map[string]struct{}, len(g.Segments))
	stack := make([]string, 0, 64)
	components := 0

	for name := range g.Segments {
		if _, seen := visited[name]; seen {
			continue
		}
		components++

		visited[name] = struct{}{}
		stack = append(stack[:0], name)
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range adjacency[node] {
				if _, seen := visited[next]; seen {
					continue
				}
				visited[next] = struct{}{}
				stack = append(stack, next)
			}
		}
	}
	return components
}
