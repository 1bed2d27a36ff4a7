// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes a loaded GFA index over HTTP.
//
// A Service owns the active query.IndexedReader and swaps it on Reload.
// Handlers read the current reader under a read lock, so a reload never
// blocks a lookup for longer than the pointer swap.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/pgtools/services/pangenome/query"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "0.1.0"

var (
	// ErrNotLoaded is returned when no index has been loaded yet.
	ErrNotLoaded = errors.New("index not loaded")

	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("ctx must not be nil")

	// ErrNoIndexPath is returned when Config.IndexPath is empty.
	ErrNoIndexPath = errors.New("index path is required")
)

// Config describes which files a Service serves.
type Config struct {
	// IndexPath is the persisted index file.
	IndexPath string

	// SourcePath is the GFA the index was built from. It must exist.
	SourcePath string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service holds the active reader.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Concurrent Reload calls share a
// single load.
type Service struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	reader *query.IndexedReader

	group singleflight.Group
}

// NewService creates a Service without loading anything. Call Reload
// before serving, or use Open.
func NewService(cfg Config) (*Service, error) {
	if cfg.IndexPath == "" {
		return nil, ErrNoIndexPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, logger: logger.With("component", "pgtools_server")}, nil
}

// Open creates a Service and performs the initial load.
func Open(ctx context.Context, cfg Config) (*Service, error) {
	svc, err := NewService(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// Reader returns the active reader, or ErrNotLoaded.
func (s *Service) Reader() (*query.IndexedReader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.reader == nil {
		return nil, ErrNotLoaded
	}
	return s.reader, nil
}

// Reload loads the index from disk and swaps it in.
//
// # Description
//
// On failure the previous reader stays active. Callers that arrive while a
// load is running wait for it and receive the same result.
//
// # Outputs
//
//   - *query.IndexedReader: The reader now being served.
//   - error: Any error from query.New.
func (s *Service) Reload(ctx context.Context) (*query.IndexedReader, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	v, err, shared := s.group.Do("reload", func() (any, error) {
		start := time.Now()
		r, err := query.New(ctx, s.cfg.SourcePath, s.cfg.IndexPath)
		if err != nil {
			reloadTotal.WithLabelValues("error").Inc()
			s.logger.Error("Index reload failed", "index", s.cfg.IndexPath, "error", err)
			return nil, err
		}

		s.mu.Lock()
		s.reader = r
		s.mu.Unlock()

		reloadTotal.WithLabelValues("success").Inc()
		info := r.Index().Info()
		s.logger.Info("Index loaded",
			"index", s.cfg.IndexPath,
			"segments", info.SegmentEntries,
			"paths", info.PathEntries,
			"positions", info.PositionEntries,
			"duration_ms", time.Since(start).Milliseconds())
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Reload shared with an in-flight load")
	}
	return v.(*query.IndexedReader), nil
}

// IndexPath returns the configured index file.
func (s *Service) IndexPath() string {
	return s.cfg.IndexPath
}
