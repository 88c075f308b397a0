package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultWatchDebounce collapses editor save bursts into one re-run
const defaultWatchDebounce = 1 * time.Second

// WatchService re-runs the audit when a lockfile or the configuration changes.
type WatchService struct {
	root     string
	extra    []string // Additional watched files (e.g. --policy)
	ui       UICallback
	debounce time.Duration
}

// NewWatchService creates a watcher for the project at root. extra lists
// additional files, such as an explicit policy file, that trigger a re-run.
func NewWatchService(root string, extra []string, ui UICallback) *WatchService {
	if ui == nil {
		ui = &SilentUICallback{}
	}
	return &WatchService{root: root, extra: extra, ui: ui, debounce: defaultWatchDebounce}
}

// watchedFiles returns the absolute paths that trigger a re-run
func (s *WatchService) watchedFiles() (map[string]bool, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}
	files := make(map[string]bool)
	for _, name := range append(append([]string{}, LockfileNames...), ConfigFile, PyprojectFile) {
		files[filepath.Join(root, name)] = true
	}
	for _, p := range s.extra {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		files[abs] = true
	}
	return files, nil
}

// Watch calls run once, then again after each debounced change, until ctx is done.
// Errors from run are reported and do not stop the watch.
func (s *WatchService) Watch(ctx context.Context, run func(ctx context.Context) error) error {
	files, err := s.watchedFiles()
	if err != nil {
		return fmt.Errorf("resolve watched files: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so files that are deleted and recreated keep triggering.
	dirs := make(map[string]bool)
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	s.runOnce(ctx, run)
	s.ui.ShowInfo("Watching lockfiles and policy for changes (Ctrl+C to stop)")

	var debounceTimer *time.Timer
	trigger := make(chan string, 1)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			// Debounce: reset timer on each event
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := filepath.Base(event.Name)
			debounceTimer = time.AfterFunc(s.debounce, func() {
				select {
				case trigger <- name:
				default:
				}
			})

		case name := <-trigger:
			s.ui.ShowInfo(fmt.Sprintf("Detected change to %s", name))
			s.runOnce(ctx, run)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.ui.ShowWarning("Watch Error", err.Error())
		}
	}
}

func (s *WatchService) runOnce(ctx context.Context, run func(ctx context.Context) error) {
	if err := run(ctx); err != nil && ctx.Err() == nil {
		s.ui.ShowError("Audit Failed", err.Error())
	}
}
