// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch re-runs a handler whenever a call log changes on disk.
//
// The directory holding the file is watched rather than the file itself, so
// editors that save by writing a new file and renaming it over the old one
// are still observed. Bursts of events are debounced into a single run.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tombee/circuitview/internal/log"
)

// DefaultDebounce is the quiet period after the last event before a re-run.
const DefaultDebounce = 100 * time.Millisecond

// Handler is called once at start and after every debounced change. A
// handler error is logged and the watch continues.
type Handler func(ctx context.Context, path string) error

// Watcher watches a single file.
type Watcher struct {
	path     string
	dir      string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	runs int
}

// NewWatcher creates a watcher for path. The file's directory must exist.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		path:     absPath,
		dir:      dir,
		debounce: debounce,
		logger:   slog.Default().With(slog.String("component", "watch"), slog.String("path", absPath)),
		watcher:  fsw,
	}, nil
}

// WithLogger sets a custom logger for the watcher.
func (w *Watcher) WithLogger(logger *slog.Logger) *Watcher {
	if logger != nil {
		w.logger = logger.With(slog.String("component", "watch"), slog.String("path", w.path))
	}
	return w
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Runs returns how many times the handler has been called. It must not be
// called concurrently with Run.
func (w *Watcher) Runs() int {
	return w.runs
}

// Run calls handler, then blocks re-running it on every change until ctx is
// done. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer w.watcher.Close()

	w.call(ctx, handler)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watch event channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			log.Trace(w.logger, "file event", slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watch error channel closed")
			}
			w.logger.Error("watch error", slog.Any("error", err))

		case <-timer.C:
			w.call(ctx, handler)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) call(ctx context.Context, handler Handler) {
	w.runs++
	if err := handler(ctx, w.path); err != nil {
		w.logger.Warn("run failed", slog.Int("run", w.runs), slog.Any("error", err))
	}
}
