package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Result is one catalog load. On failure Catalog is nil and consumers keep
// whatever they had.
type Result struct {
	Catalog *Catalog
	Err     error
}

// LoadAsync loads path off the calling goroutine. The channel yields exactly
// one result and is then closed.
func LoadAsync(ctx context.Context, path string, opts Options) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		c, err := Load(path, opts)
		select {
		case out <- Result{Catalog: c, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// Watch loads path once and again whenever it changes on disk, debouncing
// bursts of writes. The directory is watched rather than the file so that
// editors that save by rename are seen. The channel closes when ctx ends.
func Watch(ctx context.Context, path string, opts Options, debounce time.Duration, log *zap.Logger) (<-chan Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer w.Close()

		publish := func() bool {
			c, err := Load(abs, opts)
			select {
			case out <- Result{Catalog: c, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !publish() {
			return
		}

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				log.Debug("catalog changed", zap.String("path", abs), zap.Stringer("op", ev.Op))
				pending = time.After(debounce)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("catalog watcher error", zap.Error(err))

			case <-pending:
				pending = nil
				if !publish() {
					return
				}
			}
		}
	}()
	return out, nil
}
