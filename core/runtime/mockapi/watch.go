package mockapi

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
	"github.com/lariat-data/lariat-go/core/shared/errors"
)

// fixtureDebounce collapses the burst of events an editor save produces
const fixtureDebounce = 200 * time.Millisecond

// WatchFixture reloads the fixture at path whenever the file changes, until
// ctx is done. A fixture that fails to load is logged and the previous one
// keeps being served.
func (s *Server) WatchFixture(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.WrapError(errors.ErrCodeIOError, "failed to resolve fixture path", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(errors.ErrCodeIOError, "failed to create fixture watcher", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return errors.WrapError(errors.ErrCodeIOError, "failed to watch "+filepath.Dir(abs), err)
	}

	go s.watchFixture(ctx, watcher, abs)
	return nil
}

func (s *Server) watchFixture(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()
	log := logging.New("mockapi:watch")
	log.Infof("Watching %s for changes", path)

	reload := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(fixtureDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			fixture, err := LoadFixture(path)
			if err != nil {
				log.Warnf("Keeping previous fixture: %v", err)
				continue
			}
			s.SetFixture(fixture)
			log.Infof("Reloaded fixture %s", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Fixture watcher error: %v", err)
		}
	}
}
