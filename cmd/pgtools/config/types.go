// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"net"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/pgtools/services/pangenome/index"
)

// PgToolsConfig is the on-disk configuration.
type PgToolsConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Index      IndexConfig      `yaml:"index"`
	Server     ServerConfig     `yaml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Cache      CacheConfig      `yaml:"cache"`
	Population PopulationConfig `yaml:"population"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// IndexConfig holds index build and remote storage defaults.
type IndexConfig struct {
	// DefaultType is used when --type is not given.
	DefaultType string `yaml:"default_type" validate:"indextype"`

	// DownloadDir receives indexes fetched from gs:// URIs.
	DownloadDir string `yaml:"download_dir" validate:"required"`

	// CredentialsFile is a service account key for GCS. Empty uses
	// Application Default Credentials.
	CredentialsFile string `yaml:"credentials_file"`
}

// ServerConfig configures `pgtools serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"listenaddr"`
	IndexPath       string        `yaml:"index_path"`
	SourcePath      string        `yaml:"source_path"`
	Watch           bool          `yaml:"watch"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// TelemetryConfig selects OpenTelemetry exporters.
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
}

// CacheConfig configures the statistics cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir" validate:"required_if=Enabled true"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

// PopulationConfig configures the vg wrapper.
type PopulationConfig struct {
	VGBinary string        `yaml:"vg_binary" validate:"required"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() PgToolsConfig {
	return PgToolsConfig{
		Logging: LoggingConfig{Level: "info"},
		Index: IndexConfig{
			DefaultType: index.TypeFull.String(),
			DownloadDir: "~/.pgtools/indexes",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     "~/.pgtools/cache",
			TTL:     30 * 24 * time.Hour,
		},
		Population: PopulationConfig{
			VGBinary: "vg",
			Timeout:  10 * time.Minute,
		},
	}
}

// validate is the shared validator with the pgtools rules registered.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("indextype", validateIndexType)
	_ = validate.RegisterValidation("listenaddr", validateListenAddr)
}

func validateIndexType(fl validator.FieldLevel) bool {
	_, err := index.ParseIndexType(fl.Field().String())
	return err == nil
}

// validateListenAddr accepts host:port with an optional host.
func validateListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	return err == nil && port != ""
}

// Validate checks every field rule.
func (c *PgToolsConfig) Validate() error {
	return validate.Struct(c)
}
