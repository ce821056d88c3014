// Package watcher turns raw filesystem events into schedule and cancel
// signals: events accumulate into a pending set, survive a stabilization
// window, and pass a filter chain before anything is scheduled.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bobbin/internal/logging"
)

// Events receives the watcher's output signals.
type Events struct {
	Schedule func(file string)
	Cancel   func(file string)
}

// Watcher observes a directory tree and debounces its changes.
type Watcher struct {
	root    string
	window  time.Duration
	filters []Filter
	events  Events
	logger  *slog.Logger

	fsw     *fsnotify.Watcher
	pending []string
	timer   *time.Timer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a watcher over root. Files must survive the stabilization
// window without further events before the filter chain sees them.
func New(root string, window time.Duration, filters []Filter, events Events, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		root:    root,
		window:  window,
		filters: filters,
		events:  events,
		logger:  logging.WithComponent(logger, "watcher"),
	}
}

// Scan walks the tree once, pushing every regular file through the filter
// chain in sorted order. Used for the initial pass and in no-watch mode.
func (w *Watcher) Scan(ctx context.Context) error {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, file := range files {
		w.offer(ctx, file)
	}
	return nil
}

// Start begins watching. It returns once the event loop is running.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	if err := w.watchTree(w.root); err != nil {
		_ = fsw.Close()
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.timer = time.NewTimer(w.window)
	if !w.timer.Stop() {
		<-w.timer.C
	}

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Close stops the event loop and releases the underlying watches.
func (w *Watcher) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		case <-w.timer.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// A directory dropped into the tree brings its files along.
			if err := w.watchTree(event.Name); err != nil {
				w.logger.Warn("watch new directory", logging.String("path", event.Name), logging.Error(err))
			}
			_ = filepath.WalkDir(event.Name, func(path string, d fs.DirEntry, err error) error {
				if err == nil && d.Type().IsRegular() {
					w.add(path)
				}
				return nil
			})
			return
		}
		w.add(event.Name)
	case event.Op.Has(fsnotify.Write):
		w.change(event.Name)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.remove(event.Name)
	}
}

func (w *Watcher) add(file string) {
	w.logger.Debug("file added", logging.String("path", file))
	if !contains(w.pending, file) {
		w.pending = append(w.pending, file)
	}
	w.restartTimer()
}

func (w *Watcher) change(file string) {
	if contains(w.pending, file) {
		w.restartTimer()
	}
}

func (w *Watcher) remove(file string) {
	if i := index(w.pending, file); i >= 0 {
		w.pending = append(w.pending[:i], w.pending[i+1:]...)
		w.restartTimer()
	}
	// A file can vanish after stabilizing; cancelling an unknown file is a
	// no-op in the scheduler.
	if w.events.Cancel != nil {
		w.events.Cancel(file)
	}
}

func (w *Watcher) restartTimer() {
	if !w.timer.Stop() {
		select {
		case <-w.timer.C:
		default:
		}
	}
	w.timer.Reset(w.window)
}

// flush snapshots the pending set in sorted order and pushes each file
// through the filter chain.
func (w *Watcher) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	snapshot := append([]string{}, w.pending...)
	w.pending = w.pending[:0]
	sort.Strings(snapshot)

	for _, file := range snapshot {
		w.offer(ctx, file)
	}
}

func (w *Watcher) offer(ctx context.Context, file string) {
	for _, filter := range w.filters {
		ok, reason, err := filter.Accept(ctx, file)
		if err != nil {
			w.logger.Warn("filter failed, skipping file",
				logging.String("filter", filter.Name()),
				logging.String("file", file),
				logging.Error(err))
			return
		}
		if !ok {
			w.logger.Debug("IGNORE: '"+file+"': "+reason, logging.String("filter", filter.Name()))
			return
		}
	}
	if w.events.Schedule != nil {
		w.events.Schedule(file)
	}
}

func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

func contains(list []string, value string) bool {
	return index(list, value) >= 0
}

func index(list []string, value string) int {
	for i, entry := range list {
		if entry == value {
			return i
		}
	}
	return -1
}
