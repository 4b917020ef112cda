package automation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jbapex/planeje/internal/eventbus"
)

// watchDebounce is the delay after a file event before a reload is
// announced, so bulk edits collapse into one notification.
const watchDebounce = 100 * time.Millisecond

// Watcher observes the automation-rule directory of a local storage backend
// and announces rule changes on the bus, so dashboard clients (and logs)
// see edits made directly on disk.
type Watcher struct {
	dir string
	bus *eventbus.Bus
}

func NewWatcher(dir string, bus *eventbus.Bus) *Watcher {
	return &Watcher{
		dir: dir,
		bus: bus,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create rules watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	slog.Info("watching automation rules", "dir", w.dir)

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".yaml") {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				debounceCh = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("rules watcher error", "error", err)
		case <-debounceCh:
			debounce = nil
			debounceCh = nil
			slog.Info("automation rules changed on disk")
			w.bus.PublishNew(eventbus.TypeRulesReloaded, "", nil)
		}
	}
}
