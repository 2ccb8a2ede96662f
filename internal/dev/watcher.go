package dev

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeTemplate ChangeType = iota
	ChangeConfig
	ChangeAsset
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTemplate:
		return "template"
	case ChangeConfig:
		return "config"
	}
	return "asset"
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch, recursively.
	Paths []string

	// Ignore patterns to skip (names, path segments or globs).
	Ignore []string

	// Debounce is the quiet period before changes are reported.
	Debounce time.Duration

	// Logger receives watch errors (default: slog.Default()).
	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"tmp",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors directories for changes. Bursts of events are collapsed:
// once the debounce period passes without events, the first change of each
// type is reported.
type Watcher struct {
	config   WatcherConfig
	logger   *slog.Logger
	onChange func(Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		config: config,
		logger: logger.With("component", "watcher"),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.setStopped()
		return err
	}
	defer fw.Close()

	for _, p := range w.config.Paths {
		if err := w.addTree(fw, p); err != nil {
			w.setStopped()
			return err
		}
	}

	var (
		pending []Change
		timer   = time.NewTimer(w.config.Debounce)
	)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						w.logger.Warn("watch directory", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			pending = append(pending, Change{Path: ev.Name, Type: classifyChange(ev.Name)})
			timer.Reset(w.config.Debounce)
		case <-timer.C:
			w.report(pending)
			pending = nil
		}
	}
}

// addTree watches root and every directory below it that is not ignored.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}

func (w *Watcher) report(changes []Change) {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()
	if callback == nil {
		return
	}

	reported := make(map[ChangeType]bool)
	for _, change := range changes {
		if !reported[change.Type] {
			reported[change.Type] = true
			callback(change)
		}
	}
}

func (w *Watcher) setStopped() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/")
		if strings.ContainsAny(pattern, "*?[") {
			if hasPathSep {
				if matched, _ := path.Match(pattern, normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if strings.Contains("/"+normalized+"/", "/"+strings.Trim(pattern, "/")+"/") {
				return true
			}
			continue
		}
		if strings.Contains("/"+normalized+"/", "/"+pattern+"/") {
			return true
		}
	}
	return false
}

// classifyChange determines the type of change based on the file name.
func classifyChange(p string) ChangeType {
	if filepath.Base(p) == "slate.yaml" {
		return ChangeConfig
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return ChangeTemplate
	}
	return ChangeAsset
}
