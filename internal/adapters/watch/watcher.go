package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
)

var ErrNothingToWatch = errors.New("watch set is empty")

const bufferSize = 100

// Watcher reports changes to a fixed set of files. Glob patterns are expanded
// once at creation; files created later that match a pattern inside an
// already-watched directory are reported too.
type Watcher struct {
	watcher    *fsnotify.Watcher
	projectDir string
	patterns   []string
	files      map[string]bool
	dirs       []string

	events chan string
	errors chan error

	mu       sync.Mutex
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

func New(projectDir string, patterns []string) (*Watcher, error) {
	normalized, err := normalizePatterns(projectDir, patterns)
	if err != nil {
		return nil, err
	}
	files, err := Expand(projectDir, patterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNothingToWatch
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:    fsw,
		projectDir: projectDir,
		patterns:   normalized,
		files:      make(map[string]bool, len(files)),
		events:     make(chan string, bufferSize),
		errors:     make(chan error, bufferSize),
		closeCh:    make(chan struct{}),
	}

	for _, file := range files {
		w.files[file] = true
	}
	w.dirs = lo.Uniq(lo.Map(files, func(file string, _ int) string { return filepath.Dir(file) }))
	sort.Strings(w.dirs)

	for _, dir := range w.dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Expand resolves patterns relative to projectDir into absolute file paths.
// A literal path is kept even when the file does not exist yet.
func Expand(projectDir string, patterns []string) ([]string, error) {
	normalized, err := normalizePatterns(projectDir, patterns)
	if err != nil {
		return nil, err
	}

	var files []string
	fsys := os.DirFS(projectDir)
	for _, pattern := range normalized {
		if !hasMeta(pattern) {
			files = append(files, filepath.Join(projectDir, filepath.FromSlash(pattern)))
			continue
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		for _, match := range matches {
			files = append(files, filepath.Join(projectDir, filepath.FromSlash(match)))
		}
	}

	files = lo.Uniq(files)
	sort.Strings(files)
	return files, nil
}

// normalizePatterns makes every pattern slash-separated and relative to
// projectDir.
func normalizePatterns(projectDir string, patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if filepath.IsAbs(pattern) {
			rel, err := filepath.Rel(projectDir, pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid watch path %s: %w", pattern, err)
			}
			pattern = rel
		}
		pattern = filepath.ToSlash(filepath.Clean(pattern))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid watch pattern %q", pattern)
		}
		out = append(out, pattern)
	}
	return out, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{', '\\':
			return true
		}
	}
	return false
}

func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Files returns the expanded watch set.
func (w *Watcher) Files() []string {
	files := lo.Keys(w.files)
	sort.Strings(files)
	return files
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.closedWg.Wait()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isWatchEvent(event.Op) || !w.matches(event.Name) {
				continue
			}
			select {
			case w.events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) matches(path string) bool {
	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	rel, err := filepath.Rel(w.projectDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isWatchEvent(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
