// Package watch reruns a build when package sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/logx"
)

// Handler is called once per settled batch of changes.
type Handler func(ctx context.Context, changed []string) error

// Watcher watches a package tree and debounces change bursts.
type Watcher struct {
	cfg     config.WatchConfig
	root    string
	fsw     *fsnotify.Watcher
	ignored map[string]bool
}

// New watches every directory under root except ignored names.
func New(root string, cfg config.WatchConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{cfg: cfg, root: root, fsw: fsw, ignored: map[string]bool{}}
	for _, name := range cfg.Ignore {
		w.ignored[name] = true
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fsw.Close() }

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored[d.Name()] {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Relevant reports whether a path should trigger a rebuild.
func (w *Watcher) Relevant(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err == nil {
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if w.ignored[part] {
				return false
			}
		}
	}
	if filepath.Base(path) == "Cargo.lock" {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range w.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Run delivers debounced batches to h until ctx is cancelled. Handler
// errors are logged, not fatal, so a broken build keeps being watched.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	log := logx.FromContext(ctx)
	pending := map[string]bool{}
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// New directories need their own watch.
				if isDir(ev.Name) && !w.ignored[filepath.Base(ev.Name)] {
					if err := w.addTree(ev.Name); err != nil {
						log.Warn("watch new directory", "path", ev.Name, "err", err)
					}
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.Relevant(ev.Name) {
				continue
			}
			pending[ev.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			pending = map[string]bool{}
			sort.Strings(changed)
			if err := h(ctx, changed); err != nil {
				log.Error("rebuild failed", "err", err)
			}
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
