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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pgtools/cmd/pgtools/config"
	"github.com/AleutianAI/pgtools/cmd/pgtools/internal/objstore"
	"github.com/AleutianAI/pgtools/services/pangenome/gfa"
	"github.com/AleutianAI/pgtools/services/pangenome/index"
)

var (
	indexInput  string
	indexOutput string
	indexType   = index.TypeFull

	indexInfoPath string
	indexInfoJSON bool
)

var (
	indexCmd = &cobra.Command{
		Use:   "index",
		Short: "Build an index of a GFA file",
		Long: `Parse a GFA file and write a binary index of the requested type:

  segment   segment name -> length
  path      path name -> step count and total length
  position  path coordinate -> segment
  full      all of the above

The output may be a local file or a gs://bucket/object URI.`,
		Args: exactArgs(0),
		RunE: runIndex,
	}

	indexInfoCmd = &cobra.Command{
		Use:   "index-info",
		Short: "Show the metadata of an index file",
		Args:  exactArgs(0),
		RunE:  runIndexInfo,
	}
)

func init() {
	indexCmd.Flags().StringVarP(&indexInput, "input", "i", "", "Input GFA file (.gfa or .gfa.gz)")
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "Output index file or gs:// URI")
	indexCmd.Flags().VarP(&indexType, "type", "t", "Index type: segment, path, position, full (default from config)")
	_ = indexCmd.MarkFlagRequired("input")
	_ = indexCmd.MarkFlagRequired("output")

	indexInfoCmd.Flags().StringVarP(&indexInfoPath, "index", "x", "", "Index file or gs:// URI")
	indexInfoCmd.Flags().BoolVar(&indexInfoJSON, "json", false, "Output as JSON")
	_ = indexInfoCmd.MarkFlagRequired("index")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t := indexType
	if !cmd.Flags().Changed("type") {
		parsed, err := index.ParseIndexType(config.Global.Index.DefaultType)
		if err != nil {
			return err
		}
		t = parsed
	}

	start := time.Now()
	g, err := gfa.ParseFile(ctx, indexInput)
	if err != nil {
		return err
	}
	slog.Info("Building index", "type", t.String(), "segments", g.SegmentCount(), "paths", g.PathCount())

	idx, err := index.Build(ctx, g, indexInput, t)
	if err != nil {
		return err
	}

	if objstore.IsRemote(indexOutput) {
		if err := saveRemote(ctx, idx, indexOutput); err != nil {
			return err
		}
	} else if err := index.Save(ctx, idx, indexOutput); err != nil {
		return err
	}
	slog.Info("Index built", "output", indexOutput, "elapsed", time.Since(start))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", idx.Summary())
	fmt.Fprintf(out, "Index saved to: %s\n", indexOutput)
	return nil
}

// saveRemote writes idx to a temp file and uploads it to uri.
func saveRemote(ctx context.Context, idx *index.Index, uri string) error {
	dst, err := objstore.ParseURI(uri)
	if err != nil {
		return badArgs("%v", err)
	}

	dir, err := os.MkdirTemp("", "pgtools-index-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, filepath.Base(dst.Object))
	if err := index.Save(ctx, idx, local); err != nil {
		return err
	}

	client, err := objstore.NewClient(ctx, config.Global.Index.CredentialsFile)
	if err != nil {
		return err
	}
	defer client.Close()

	n, err := client.Upload(ctx, local, dst)
	if err != nil {
		return err
	}
	slog.Info("Index uploaded", "uri", dst.String(), "bytes", n)
	return nil
}

// fetchIndex returns a local path for pathOrURI, downloading gs:// URIs
// into the configured download directory.
func fetchIndex(ctx context.Context, pathOrURI string) (string, error) {
	if !objstore.IsRemote(pathOrURI) {
		return pathOrURI, nil
	}
	src, err := objstore.ParseURI(pathOrURI)
	if err != nil {
		return "", badArgs("%v", err)
	}

	client, err := objstore.NewClient(ctx, config.Global.Index.CredentialsFile)
	if err != nil {
		return "", err
	}
	defer client.Close()

	local, err := client.Download(ctx, src, config.ExpandHome(config.Global.Index.DownloadDir))
	if err != nil {
		return "", err
	}
	slog.Info("Index downloaded", "uri", src.String(), "path", local)
	return local, nil
}

func runIndexInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path, err := fetchIndex(ctx, indexInfoPath)
	if err != nil {
		return err
	}
	idx, err := index.Load(ctx, path)
	if err != nil {
		return err
	}
	if indexInfoJSON {
		return outputJSON(cmd.OutOrStdout(), idx.Info())
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), idx.Summary())
	return err
}
