// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pgtools/cmd/pgtools/config"
	"github.com/AleutianAI/pgtools/cmd/pgtools/internal/population"
	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
	"github.com/AleutianAI/pgtools/services/pangenome/stats"
	"github.com/AleutianAI/pgtools/services/pangenome/storage/badger"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	statsInput  string // GFA input
	statsFormat string // text or json
	statsOutput string // Output file, stdout when empty
	statsCache  bool   // Use the badger stats cache

	statsBasicJSON bool
	statsGraphJSON bool
	statsPathsJSON bool
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var (
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Compute statistics for a GFA file",
		Long: `Parse a GFA file and report segment, link and path counts, sequence
length statistics (N50, L50, GC content), connected components, degree
distributions and a segment length histogram.

With --cache, reports are stored in a local badger database keyed by the
SHA-256 of the input, so unchanged files are not reparsed.`,
		Args: exactArgs(0),
		RunE: runStats,
	}

	statsBasicCmd = &cobra.Command{
		Use:   "stats-basic FILE",
		Short: "Stream basic counts from a GFA file without loading the graph",
		Args:  exactArgs(1),
		RunE:  runStatsBasic,
	}

	statsGraphCmd = &cobra.Command{
		Use:   "stats-graph FILE",
		Short: "Stream N50, L50 and the degree histogram from a GFA file",
		Args:  exactArgs(1),
		RunE:  runStatsGraph,
	}

	statsPathsCmd = &cobra.Command{
		Use:   "stats-paths XG",
		Short: "Summarize paths per sample from an XG index using vg",
		Args:  exactArgs(1),
		RunE:  runStatsPaths,
	}
)

func init() {
	statsCmd.Flags().StringVarP(&statsInput, "input", "i", "", "Input GFA file (.gfa or .gfa.gz)")
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "text", "Output format: text or json")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "Write the report to a file")
	statsCmd.Flags().BoolVar(&statsCache, "cache", false, "Reuse cached reports (overrides cache.enabled)")
	_ = statsCmd.MarkFlagRequired("input")

	statsBasicCmd.Flags().BoolVar(&statsBasicJSON, "json", false, "Output as JSON")
	statsGraphCmd.Flags().BoolVar(&statsGraphJSON, "json", false, "Output as JSON")
	statsPathsCmd.Flags().BoolVar(&statsPathsJSON, "json", false, "Output as JSON")
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runStats(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(statsFormat)
	if format != "text" && format != "json" {
		return badArgs("unknown format %q: use text or json", statsFormat)
	}

	ctx := cmd.Context()
	start := time.Now()
	compute := func(ctx context.Context) (*stats.Report, error) {
		g, err := gfa.ParseFile(ctx, statsInput)
		if err != nil {
			return nil, err
		}
		return stats.Compute(ctx, g)
	}

	useCache := config.Global.Cache.Enabled
	if cmd.Flags().Changed("cache") {
		useCache = statsCache
	}

	var report *stats.Report
	var err error
	if useCache {
		report, err = cachedStats(ctx, compute)
	} else {
		report, err = compute(ctx)
	}
	if err != nil {
		return err
	}
	slog.Debug("Statistics computed", "input", statsInput, "elapsed", time.Since(start))

	var text string
	if format == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		text = string(data)
	} else {
		text = report.FormatSummary()
	}
	return writeResult(cmd, statsOutput, text)
}

// cachedStats serves the report through the badger stats cache.
func cachedStats(ctx context.Context, compute badger.ComputeFunc) (*stats.Report, error) {
	cc := config.Global.Cache
	db, err := badger.OpenDB(badger.DefaultConfig(config.ExpandHome(cc.Dir)))
	if err != nil {
		return nil, fmt.Errorf("open stats cache: %w", err)
	}
	defer db.Close()

	cache, err := badger.NewStatsCache(db, cc.TTL, slog.Default())
	if err != nil {
		return nil, err
	}
	report, hit, err := cache.GetOrCompute(ctx, statsInput, compute)
	if err != nil {
		return nil, err
	}
	slog.Debug("Stats cache lookup", "input", statsInput, "hit", hit)
	return report, nil
}

func runStatsBasic(cmd *cobra.Command, args []string) error {
	s, err := stats.ComputeBasicFromPath(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if statsBasicJSON {
		return outputJSON(cmd.OutOrStdout(), basicJSON(s))
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), formatBasic(args[0], s))
	return err
}

func runStatsGraph(cmd *cobra.Command, args []string) error {
	s, err := stats.ComputeTopologyFromPath(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if statsGraphJSON {
		return outputJSON(cmd.OutOrStdout(), s)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), formatGraph(args[0], s))
	return err
}

func runStatsPaths(cmd *cobra.Command, args []string) error {
	runner := &population.Runner{
		Binary:  config.Global.Population.VGBinary,
		Timeout: config.Global.Population.Timeout,
	}
	summary, err := runner.Summarize(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if statsPathsJSON {
		return outputJSON(cmd.OutOrStdout(), summary)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), summary.FormatText(args[0]))
	return err
}

// basicJSON groups the basic counts the way the JSON report nests them.
func basicJSON(s *stats.BasicStats) map[string]any {
	return map[string]any{
		"total_lines": s.TotalLines,
		"nodes": map[string]any{
			"count":       s.NodeCount,
			"total_bp":    s.TotalBP,
			"min_length":  s.MinNodeLength,
			"max_length":  s.MaxNodeLength,
			"mean_length": s.MeanNodeLength(),
		},
		"edges":         map[string]any{"count": s.EdgeCount},
		"paths":         map[string]any{"count": s.PathCount},
		"bases":         map[string]any{"gc": s.Bases.GC, "n": s.Bases.N},
		"other_records": s.OtherRecords,
		"comment_lines": s.CommentLines,
	}
}

func formatBasic(source string, s *stats.BasicStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Basic stats for %s\n", source)
	b.WriteString("-----------------------------------------\n")
	fmt.Fprintf(&b, "Total lines        : %d\n", s.TotalLines)
	fmt.Fprintf(&b, "Nodes (S)          : %d\n", s.NodeCount)
	fmt.Fprintf(&b, "Edges (L)          : %d\n", s.EdgeCount)
	fmt.Fprintf(&b, "Paths (P)          : %d\n", s.PathCount)
	fmt.Fprintf(&b, "Other records      : %d\n", s.OtherRecords)
	fmt.Fprintf(&b, "Comment lines (#)  : %d\n", s.CommentLines)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total bp           : %d\n", s.TotalBP)
	fmt.Fprintf(&b, "Min node length    : %d\n", s.MinNodeLength)
	fmt.Fprintf(&b, "Max node length    : %d\n", s.MaxNodeLength)
	fmt.Fprintf(&b, "Mean node length   : %.2f\n", s.MeanNodeLength())
	b.WriteString("\n")
	fmt.Fprintf(&b, "GC bases           : %d\n", s.Bases.GC)
	fmt.Fprintf(&b, "N bases            : %d\n", s.Bases.N)
	return b.String()
}

func formatGraph(source string, s *stats.GraphStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Graph stats for %s\n", source)
	b.WriteString("-----------------------------------------\n")
	fmt.Fprintf(&b, "Segments (S)        : %d\n", s.Basic.NodeCount)
	fmt.Fprintf(&b, "Edges (L)           : %d\n", s.Basic.EdgeCount)
	fmt.Fprintf(&b, "Other records       : %d\n", s.Basic.OtherRecords)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total bp            : %d\n", s.Basic.TotalBP)
	fmt.Fprintf(&b, "Segment N50         : %d\n", s.N50)
	fmt.Fprintf(&b, "Segment L50         : %d\n", s.L50)
	fmt.Fprintf(&b, "Mean segment length : %.2f\n", s.Basic.MeanNodeLength())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Branching nodes (deg>2): %d\n", s.BranchingSegments)
	b.WriteString("Degree histogram (deg -> count):\n")
	for _, row := range s.DegreeHistogram {
		fmt.Fprintf(&b, "  %d -> %d\n", row.Degree, row.Count)
	}
	return b.String()
}
