package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounceDelay coalesces rapid write events on the same collection.
const WatchDebounceDelay = 300 * time.Millisecond

// Watch invokes onChange with the collection id whenever its backing file is
// written by another process (an editor, a second CLI). It blocks until the
// context is cancelled.
func (s *FileStore) Watch(ctx context.Context, onChange func(id string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			id := strings.TrimSuffix(name, ".json")
			if t, ok := timers[id]; ok {
				t.Stop()
			}
			timers[id] = time.AfterFunc(WatchDebounceDelay, func() {
				onChange(id)
			})

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
