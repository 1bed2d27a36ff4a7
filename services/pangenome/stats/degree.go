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
	"sort"

	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
)

// Distribution maps a degree value to the number of segments with it.
type Distribution map[int]int

// DegreeCount is one row of a sorted degree histogram.
type DegreeCount struct {
	Degree int `json:"degree"`
	Count  int `json:"count"`
}

// Sorted returns the rows of d in ascending degree order.
func (d Distribution) Sorted() []DegreeCount {
	rows := make([]DegreeCount, 0, len(d))
	for degree, count := range d {
		rows = append(rows, DegreeCount{Degree: degree, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Degree < rows[j].Degree })
	return rows
}

// degreeCounter accumulates per-name link endpoint counts.
//
// Segments from S records get a zero entry in both tables. A link endpoint
// naming an undefined segment is only entered in the table of the direction
// it takes part in.
type degreeCounter struct {
	in  map[string]int
	out map[string]int
}

func newDegreeCounter(sizeHint int) *degreeCounter {
	return &degreeCounter{
		in:  make(map[string]int, sizeHint),
		out: make(map[string]int, sizeHint),
	}
}

func (c *degreeCounter) addSegment(name string) {
	if _, ok := c.in[name]; !ok {
		c.in[name] = 0
	}
	if _, ok := c.out[name]; !ok {
		c.out[name] = 0
	}
}

func (c *degreeCounter) addLink(from, to string) {
	c.out[from]++
	c.in[to]++
}

func (c *degreeCounter) distributions() (in, out Distribution) {
	in = make(Distribution)
	out = make(Distribution)
	for _, d := range c.in {
		in[d]++
	}
	for _, d := range c.out {
		out[d]++
	}
	return in, out
}

// totals returns the total degree histogram and the count of names whose
// total degree exceeds two.
func (c *degreeCounter) totals() (Distribution, int) {
	hist := make(Distribution)
	branching := 0
	record := func(total int) {
		hist[total]++
		if total > 2 {
			branching++
		}
	}
	for name, in := range c.in {
		record(in + c.out[name])
	}
	for name, out := range c.out {
		if _, seen := c.in[name]; !seen {
			record(out)
		}
	}
	return hist, branching
}

func countDegrees(g *gfa.Graph) *degreeCounter {
	c := newDegreeCounter(len(g.Segments))
	for name := range g.Segments {
		c.addSegment(name)
	}
	for _, link := range g.Links {
		c.addLink(link.From, link.To)
	}
	return c
}

// DegreeDistributions returns the in-degree and out-degree frequency tables.
//
// Every defined segment contributes one entry to each table, zero-degree
// segments included. An undefined link endpoint appears only in the table of
// its direction. For each direction, the sum of degree*count equals the
// number of links.
func DegreeDistributions(g *gfa.Graph) (in, out Distribution) {
	return countDegrees(g).distributions()
}
