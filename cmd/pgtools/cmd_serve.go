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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/pgtools/cmd/pgtools/config"
	"github.com/AleutianAI/pgtools/services/pangenome/server"
)

var (
	serveIndex  string
	serveSource string
	serveAddr   string
	serveWatch  bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve index lookups over HTTP",
		Long: `Load an index and answer segment, path and position lookups under
/v1/pgtools. Prometheus metrics are exposed at /metrics. With --watch the
index is reloaded whenever the file is rewritten.`,
		Args: exactArgs(0),
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().StringVarP(&serveIndex, "index", "x", "", "Index file or gs:// URI (default server.index_path)")
	serveCmd.Flags().StringVarP(&serveSource, "source", "i", "", "GFA file the index was built from (default server.source_path)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload when the index file changes (default server.watch)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc := config.Global.Server

	indexPath := firstNonEmpty(serveIndex, sc.IndexPath)
	sourcePath := firstNonEmpty(serveSource, sc.SourcePath)
	addr := firstNonEmpty(serveAddr, sc.Addr)
	watch := sc.Watch
	if cmd.Flags().Changed("watch") {
		watch = serveWatch
	}
	if indexPath == "" || sourcePath == "" {
		return badArgs("--index and --source are required (or server.index_path and server.source_path)")
	}

	localIndex, err := fetchIndex(ctx, indexPath)
	if err != nil {
		return err
	}

	svc, err := server.Open(ctx, server.Config{
		IndexPath:  localIndex,
		SourcePath: sourcePath,
		Logger:     slog.Default(),
	})
	if err != nil {
		return err
	}

	if watch {
		watcher, err := server.NewWatcher(svc, 0)
		if err != nil {
			return err
		}
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(svc, "pgtools"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Serving index", "addr", addr, "index", localIndex, "watch", watch)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	timeout := sc.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
