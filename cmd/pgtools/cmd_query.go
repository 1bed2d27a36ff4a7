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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pgtools/services/pangenome/query"
)

var (
	queryInput string
	queryIndex string
	queryJSON  bool

	querySegmentName string
	queryPathName    string
	queryPosPath     string
	queryPos         uint64
)

// queryResult is the --json envelope. Result is omitted when not found.
type queryResult struct {
	Found  bool `json:"found"`
	Result any  `json:"result,omitempty"`
}

var (
	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Query a GFA file through its index",
		Long: `Answer lookups from a prebuilt index. The GFA file must exist but is
not read; every answer comes from the index. The index may be a local
file or a gs://bucket/object URI.`,
	}

	querySegmentCmd = &cobra.Command{
		Use:   "segment",
		Short: "Look up a segment by name",
		Args:  exactArgs(0),
		RunE:  runQuerySegment,
	}

	queryPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Look up a path by name",
		Args:  exactArgs(0),
		RunE:  runQueryPath,
	}

	queryPositionCmd = &cobra.Command{
		Use:   "position",
		Short: "Find the segment covering a coordinate of a path",
		Args:  exactArgs(0),
		RunE:  runQueryPosition,
	}

	queryListSegmentsCmd = &cobra.Command{
		Use:   "list-segments",
		Short: "List indexed segments",
		Args:  exactArgs(0),
		RunE:  runQueryListSegments,
	}

	queryListPathsCmd = &cobra.Command{
		Use:   "list-paths",
		Short: "List indexed paths",
		Args:  exactArgs(0),
		RunE:  runQueryListPaths,
	}
)

func init() {
	queryCmd.PersistentFlags().StringVarP(&queryInput, "input", "i", "", "GFA file the index was built from")
	queryCmd.PersistentFlags().StringVarP(&queryIndex, "index", "x", "", "Index file or gs:// URI")
	queryCmd.PersistentFlags().BoolVar(&queryJSON, "json", false, "Output as JSON")
	_ = queryCmd.MarkPersistentFlagRequired("input")
	_ = queryCmd.MarkPersistentFlagRequired("index")

	querySegmentCmd.Flags().StringVarP(&querySegmentName, "name", "n", "", "Segment name")
	_ = querySegmentCmd.MarkFlagRequired("name")

	queryPathCmd.Flags().StringVarP(&queryPathName, "name", "n", "", "Path name")
	_ = queryPathCmd.MarkFlagRequired("name")

	queryPositionCmd.Flags().StringVarP(&queryPosPath, "path", "p", "", "Path name")
	queryPositionCmd.Flags().Uint64Var(&queryPos, "pos", 0, "Zero-based coordinate along the path")
	_ = queryPositionCmd.MarkFlagRequired("path")
	_ = queryPositionCmd.MarkFlagRequired("pos")

	queryCmd.AddCommand(querySegmentCmd)
	queryCmd.AddCommand(queryPathCmd)
	queryCmd.AddCommand(queryPositionCmd)
	queryCmd.AddCommand(queryListSegmentsCmd)
	queryCmd.AddCommand(queryListPathsCmd)
}

func openReader(cmd *cobra.Command) (*query.IndexedReader, error) {
	ctx := cmd.Context()
	path, err := fetchIndex(ctx, queryIndex)
	if err != nil {
		return nil, err
	}
	return query.New(ctx, queryInput, path)
}

func runQuerySegment(cmd *cobra.Command, args []string) error {
	r, err := openReader(cmd)
	if err != nil {
		return err
	}
	seg, found := r.GetSegment(querySegmentName)
	out := cmd.OutOrStdout()
	if queryJSON {
		return outputJSON(out, queryResult{Found: found, Result: resultOrNil(found, seg)})
	}
	if !found {
		fmt.Fprintf(out, "Segment '%s' not found in index\n", querySegmentName)
		return nil
	}
	fmt.Fprintf(out, "Segment: %s\n", seg.Name)
	fmt.Fprintf(out, "  Sequence length: %d bp\n", seg.SequenceLength)
	fmt.Fprintf(out, "  File offset: %d\n", seg.FileOffset)
	return nil
}

func runQueryPath(cmd *cobra.Command, args []string) error {
	r, err := openReader(cmd)
	if err != nil {
		return err
	}
	p, found := r.GetPath(queryPathName)
	out := cmd.OutOrStdout()
	if queryJSON {
		return outputJSON(out, queryResult{Found: found, Result: resultOrNil(found, p)})
	}
	if !found {
		fmt.Fprintf(out, "Path '%s' not found in index\n", queryPathName)
		return nil
	}
	fmt.Fprintf(out, "Path: %s\n", p.Name)
	fmt.Fprintf(out, "  Steps: %d\n", p.StepCount)
	fmt.Fprintf(out, "  Total length: %d bp\n", p.TotalLength)
	return nil
}

func runQueryPosition(cmd *cobra.Command, args []string) error {
	r, err := openReader(cmd)
	if err != nil {
		return err
	}
	e, found := r.QueryPosition(queryPosPath, queryPos)
	out := cmd.OutOrStdout()
	if queryJSON {
		return outputJSON(out, queryResult{Found: found, Result: resultOrNil(found, e)})
	}
	if !found {
		fmt.Fprintf(out, "Position %d not found in path '%s'\n", queryPos, queryPosPath)
		return nil
	}
	fmt.Fprintf(out, "Position %d in path '%s':\n", queryPos, queryPosPath)
	fmt.Fprintf(out, "  Segment: %s\n", e.SegmentName)
	fmt.Fprintf(out, "  Segment range: %d - %d\n", e.Start, e.End)
	fmt.Fprintf(out, "  Step index: %d\n", e.StepIndex)
	return nil
}

func runQueryListSegments(cmd *cobra.Command, args []string) error {
	r, err := openReader(cmd)
	if err != nil {
		return err
	}
	return printNames(cmd, "Indexed segments", r.ListSegments())
}

func runQueryListPaths(cmd *cobra.Command, args []string) error {
	r, err := openReader(cmd)
	if err != nil {
		return err
	}
	return printNames(cmd, "Indexed paths", r.ListPaths())
}

func printNames(cmd *cobra.Command, title string, names []string) error {
	out := cmd.OutOrStdout()
	if names == nil {
		names = []string{}
	}
	if queryJSON {
		return outputJSON(out, names)
	}
	fmt.Fprintf(out, "%s (%d):\n", title, len(names))
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}

func resultOrNil(found bool, v any) any {
	if !found {
		return nil
	}
	return v
}
