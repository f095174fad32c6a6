package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Handler receives the path of a candidate file when it appears in or is
// written to the watched directory. Delivery is at-least-once: create and
// write events for the same file commonly fire in quick succession, and
// the handler is expected to be idempotent rather than the events
// deduplicated here.
type Handler func(path string)

// Watcher reacts to filesystem notifications for files matching an
// extension filter in a single directory.
type Watcher struct {
	dir       string
	extension string
	handler   Handler
}

func New(dir string, extension string, handler Handler) *Watcher {
	return &Watcher{
		dir:       dir,
		extension: strings.ToLower(extension),
		handler:   handler,
	}
}

// Run watches the directory until ctx is cancelled. Handler outcomes
// never stop the loop; one bad file never halts the service.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer func() {
		if cerr := fsWatcher.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close filesystem watcher")
		}
	}()

	if err := fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", w.dir, err)
	}

	log.Info().Str("dir", w.dir).Msg("Monitoring started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.handler(event.Name)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("filesystem watcher error")
		}
	}
}

func (w *Watcher) matches(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == w.extension
}
