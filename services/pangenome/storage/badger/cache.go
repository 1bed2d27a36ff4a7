// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/pgtools/services/pangenome/stats"
)

// statsKeyPrefix namespaces report entries by source content digest.
const statsKeyPrefix = "stats:"

// ErrNilDB is returned when NewStatsCache is given a nil database.
var ErrNilDB = errors.New("db must not be nil")

// ComputeFunc produces a report on a cache miss.
type ComputeFunc func(ctx context.Context) (*stats.Report, error)

// cachedReport is the stored value.
type cachedReport struct {
	Source   string        `json:"source"`
	CachedAt time.Time     `json:"cached_at"`
	Report   *stats.Report `json:"report"`
}

// StatsCache stores statistics reports keyed by the SHA-256 of the GFA
// bytes, so renaming or touching a file does not invalidate its entry but
// any content change does.
//
// # Thread Safety
//
// Safe for concurrent use. Concurrent GetOrCompute calls for the same
// digest share one computation.
type StatsCache struct {
	db     *DB
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewStatsCache wraps db. A positive ttl expires entries; zero keeps them
// until deleted.
func NewStatsCache(db *DB, ttl time.Duration, logger *slog.Logger) (*StatsCache, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{db: db, ttl: ttl, logger: logger}, nil
}

// StatsKey returns the database key for a content digest.
func StatsKey(digest string) []byte {
	return []byte(statsKeyPrefix + digest)
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the report stored for digest. ok is false on a miss.
func (c *StatsCache) Get(ctx context.Context, digest string) (report *stats.Report, ok bool, err error) {
	err = c.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(StatsKey(digest))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var entry cachedReport
			if err := json.Unmarshal(val, &entry); err != nil {
				return fmt.Errorf("decode cached report: %w", err)
			}
			report, ok = entry.Report, entry.Report != nil
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return report, ok, nil
}

// Put stores report under digest. source is recorded for inspection only.
func (c *StatsCache) Put(ctx context.Context, digest, source string, report *stats.Report) error {
	if report == nil {
		return errors.New("report must not be nil")
	}
	val, err := json.Marshal(cachedReport{Source: source, CachedAt: time.Now().UTC(), Report: report})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return c.db.WithTxn(ctx, func(txn *badger.Txn) error {
		e := badger.NewEntry(StatsKey(digest), val)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes the entry for digest. Deleting a missing key is not an
// error.
func (c *StatsCache) Delete(ctx context.Context, digest string) error {
	return c.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Delete(StatsKey(digest))
	})
}

// GetOrCompute returns the cached report for the file at path, computing
// and storing it on a miss.
//
// # Description
//
// Hashes the file, looks up the digest, and on a miss runs compute once per
// digest even under concurrent callers. A failure to store the result is
// logged and does not fail the call.
//
// # Outputs
//
//   - *stats.Report: Cached or freshly computed.
//   - bool: True when served from the cache.
//   - error: Hashing, lookup, or compute failure.
func (c *StatsCache) GetOrCompute(ctx context.Context, path string, compute ComputeFunc) (*stats.Report, bool, error) {
	digest, err := HashFile(path)
	if err != nil {
		return nil, false, err
	}

	if report, ok, err := c.Get(ctx, digest); err != nil {
		return nil, false, err
	} else if ok {
		c.logger.Debug("stats cache hit", slog.String("path", path), slog.String("digest", digest))
		return report, true, nil
	}

	v, err, _ := c.group.Do(digest, func() (interface{}, error) {
		report, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Put(ctx, digest, path, report); err != nil {
			c.logger.Warn("stats cache store failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return report, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*stats.Report), false, nil
}
