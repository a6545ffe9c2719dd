// Package watcher reloads a .wpilog file whenever it changes on disk.
// Robot logs are often copied off the robot while a viewer is open, or
// grow while the recorder flushes; watching the file keeps the index
// current without any live-connection protocol. Each change triggers a
// full re-read and re-index: the format has no safe mid-record resume
// point, and files are small enough that a clean reload wins.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/frcviz/wpilog/internal/logging"
	"github.com/frcviz/wpilog/pkg/wpilog"
)

// Result is one reload outcome. Index may be non-nil even when Err is
// set: truncated files still yield the partial index, which is exactly
// what a viewer wants for a log that is still being written.
type Result struct {
	Index *wpilog.LogIndex
	Err   error
}

// Watcher watches one log file and re-indexes it on change
type Watcher struct {
	path     string
	logger   *logging.Logger
	limiter  *rate.Limiter
	interval time.Duration
	opts     []wpilog.Option

	watcher *fsnotify.Watcher
	results chan Result
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a watcher for path. interval caps how often the file is
// re-indexed during a burst of writes.
func New(path string, interval time.Duration, logger *logging.Logger, opts ...wpilog.Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		logger:   logger.WithComponent("watcher"),
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
		opts:     opts,
		watcher:  fsw,
		results:  make(chan Result, 1),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start performs the initial load and begins watching. The containing
// directory is watched rather than the file itself so replacements
// (rename-over, scp) are seen too.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.deliver(w.reload())

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Results returns the channel reload outcomes are delivered on. Only
// the most recent result is retained if the consumer falls behind.
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Stop cancels the watch loop and closes the results channel
func (w *Watcher) Stop() {
	w.cancel()
	w.wg.Wait()
	w.watcher.Close()
	close(w.results)
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	pending := false

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if w.limiter.Allow() {
				w.deliver(w.reload())
			} else {
				// Burst of writes; the ticker flushes the last one.
				pending = true
			}

		case <-ticker.C:
			if pending {
				pending = false
				w.deliver(w.reload())
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) reload() Result {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("Failed to read log file")
		return Result{Err: err}
	}
	idx, err := wpilog.Load(data, w.opts...)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("Log reloaded with fatal error")
	} else {
		w.logger.Debug().Str("path", w.path).Int("records", idx.RecordCount()).Msg("Log reloaded")
	}
	return Result{Index: idx, Err: err}
}

// deliver replaces any undelivered result so consumers always see the
// newest index.
func (w *Watcher) deliver(r Result) {
	for {
		select {
		case w.results <- r:
			return
		default:
			select {
			case <-w.results:
			default:
			}
		}
	}
}
