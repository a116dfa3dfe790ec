package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const coalesceDelay = 100 * time.Millisecond

// Event reports that the watched file changed.
type Event struct {
	Path string
	// Removed is set when the file no longer exists after the burst.
	Removed bool
}

// WatchFile streams change events for path until ctx is cancelled. The
// parent directory is watched so editors that replace the file on save are
// still seen. Bursts of writes are coalesced into one event. The channel is
// closed once ctx is done or the watcher fails.
func WatchFile(ctx context.Context, path string) (<-chan Event, error) {
	if path == "" {
		return nil, errors.New("store: watch path required")
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	if err := watcher.Add(dir); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", dir, err)
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		// Bursts of writes are coalesced: the first event arms the timer and
		// the file is reported once it fires.
		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		arm := func() {
			if timer == nil {
				timer = time.NewTimer(coalesceDelay)
				fire = timer.C
			}
		}
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				arm()
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != path {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				arm()
			case <-fire:
				timer, fire = nil, nil
				_, statErr := os.Stat(path)
				select {
				case events <- Event{Path: path, Removed: errors.Is(statErr, os.ErrNotExist)}:
				default:
					// Consumer is behind; it rereads the file on the next event.
				}
			}
		}
	}()

	return events, nil
}
