package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces bursts of events for the same file.
const debounceDelay = 100 * time.Millisecond

// Watch re-parses templates under root as they are written or created and
// passes each result to onChange. It blocks until ctx is done.
func Watch(ctx context.Context, root string, opts Options, onChange func(Result)) error {
	opts = opts.withDefaults()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, root, opts); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	opts.Logger.Debug("watching templates", "root", root)

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			if t.Stop() {
				wg.Done()
			}
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only handle write/create events
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
				if err := watchDir(watcher, event.Name, opts); err != nil {
					opts.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
				continue
			}
			if !opts.matchesExtension(event.Name) {
				continue
			}

			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			mu.Lock()
			if t, ok := pending[rel]; ok && t.Stop() {
				wg.Done()
			}
			wg.Add(1)
			pending[rel] = time.AfterFunc(debounceDelay, func() {
				defer wg.Done()
				mu.Lock()
				delete(pending, rel)
				mu.Unlock()

				opts.Logger.Debug("template changed", "path", rel)
				onChange(ParseFile(root, rel, opts.Parser))
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDir recursively adds a directory to the watcher, skipping excluded
// directories.
func watchDir(watcher *fsnotify.Watcher, dir string, opts Options) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && opts.excluded(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
