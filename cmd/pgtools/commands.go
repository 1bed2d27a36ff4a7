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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pgtools/cmd/pgtools/config"
	"github.com/AleutianAI/pgtools/pkg/logging"
	"github.com/AleutianAI/pgtools/services/pangenome/telemetry"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	logJSON    bool

	logger            *logging.Logger
	telemetryShutdown func(context.Context) error

	rootCmd = &cobra.Command{
		Use:   "pgtools",
		Short: "Statistics, indexing and queries for GFA pangenome graphs",
		Long: `pgtools reads GFA 1.x pangenome graphs (optionally gzipped), reports
graph statistics, builds a binary index for fast segment, path and
coordinate lookups, and serves that index over HTTP.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default $PGTOOLS_CONFIG or ~/.pgtools/pgtools.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Write logs as JSON")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: ExitBadArgs, err: err}
	})

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(statsBasicCmd)
	rootCmd.AddCommand(statsGraphCmd)
	rootCmd.AddCommand(statsPathsCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads the config, then installs the logger and telemetry. Flags
// override config values.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Load(configPath); err != nil {
		return err
	}
	cfg := config.Global

	levelName := cfg.Logging.Level
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return &exitError{code: ExitBadArgs, err: err}
	}

	logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "pgtools",
		JSON:    logJSON || cfg.Logging.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	logger.SetDefault()

	telemetryShutdown, err = telemetry.Init(cmd.Context(), telemetryConfig(cmd, cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

// telemetryConfig merges the config file into telemetry.DefaultConfig.
// OTEL_* environment variables win over the file. The Prometheus exporter
// only makes sense for serve, where something scrapes /metrics.
func telemetryConfig(cmd *cobra.Command, tc config.TelemetryConfig) telemetry.Config {
	out := telemetry.DefaultConfig()
	out.Output = cmd.ErrOrStderr()
	if os.Getenv("OTEL_TRACES_EXPORTER") == "" {
		out.TraceExporter = tc.TraceExporter
	}
	if os.Getenv("OTEL_METRICS_EXPORTER") == "" {
		out.MetricExporter = tc.MetricExporter
	}
	if out.MetricExporter == telemetry.ExporterPrometheus && cmd != serveCmd {
		out.MetricExporter = telemetry.ExporterNone
	}
	return out
}

func teardown(cmd *cobra.Command, args []string) {
	if telemetryShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := telemetryShutdown(ctx); err != nil {
			slog.Warn("Telemetry shutdown failed", "error", err)
		}
		cancel()
		telemetryShutdown = nil
	}
	if logger != nil {
		logger.Close()
	}
}
