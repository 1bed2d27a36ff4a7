// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for further events before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Service when its index file changes.
//
// # Description
//
// The parent directory is watched rather than the file itself: index.Save
// replaces the file by rename, which would drop a watch on the old inode.
// Events for other names in the directory are ignored. Bursts of events
// are collapsed into one reload after the debounce window.
//
// # Thread Safety
//
// Start and Stop may be called from any goroutine. Stop is idempotent.
type Watcher struct {
	svc      *Service
	target   string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	// reloaded receives after every reload attempt; tests wait on it.
	reloaded chan error

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for svc's index file. A zero debounce uses
// DefaultDebounce.
func NewWatcher(svc *Service, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(svc.IndexPath())
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		svc:      svc,
		target:   target,
		debounce: debounce,
		logger:   svc.logger.With("watcher", target),
		watcher:  fw,
		reloaded: make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start processes events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop releases the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			_, err := w.svc.Reload(ctx)
			if err != nil {
				w.logger.Warn("Reload after change failed, keeping previous index", "error", err)
			}
			select {
			case w.reloaded <- err:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.target
}
