package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jonwraymond/healthops/observe"
)

// WatchDebounce is how long Watch waits for writes to settle before
// reloading.
var WatchDebounce = 100 * time.Millisecond

// Watch reloads the file at path whenever it changes and hands every valid
// configuration to apply. Invalid revisions are logged and skipped. Watch
// blocks until ctx is done.
//
// The parent directory is watched, so atomic replacements by editors and
// Kubernetes ConfigMap symlink swaps are seen.
func Watch(ctx context.Context, path string, logger observe.Logger, apply func(*Config) error) error {
	if logger == nil {
		logger = observe.NopLogger()
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, path) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(WatchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(path)
			if err != nil {
				logger.Error(ctx, "config reload rejected", observe.Field{Key: "path", Value: path}, observe.Field{Key: "error", Value: err})
				continue
			}
			if err := apply(cfg); err != nil {
				logger.Error(ctx, "config reload failed", observe.Field{Key: "path", Value: path}, observe.Field{Key: "error", Value: err})
				continue
			}
			logger.Info(ctx, "config reloaded", observe.Field{Key: "path", Value: path})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn(ctx, "config watcher error", observe.Field{Key: "error", Value: err})
		}
	}
}

// relevant reports whether ev may have changed the contents of path. A
// ConfigMap update only touches the "..data" symlink next to it.
func relevant(ev fsnotify.Event, path string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == path || filepath.Base(name) == "..data"
}
