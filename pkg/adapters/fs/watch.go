package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"biblio/pkg/core"
)

// debounceWindow collapses the bursts of filesystem events an editor or an
// atomic rename produces into a single change notification per registry.
const debounceWindow = 50 * time.Millisecond

var registryByFile = map[string]string{
	documentsFile: core.RegistryDocuments,
	usersFile:     core.RegistryUsers,
	loansFile:     core.RegistryLoans,
}

// Watch reports out-of-process changes to the registry files until ctx is
// canceled. The store's own atomic writes are visible too; callers that only
// care about external edits should pause consumption around their own saves.
func (s *Store) Watch(ctx context.Context) (<-chan core.ChangeEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.config.Dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.config.Dir, err)
	}

	events := make(chan core.ChangeEvent, 16)
	deb := newDebouncer(debounceWindow)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer func() {
			deb.stopAndWait(time.Second)
			close(events)
			_ = watcher.Close()
			s.setWatcherActive(false)
		}()

		for {
			select {
			case <-ctx.Done():
				return nil

			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				registry, relevant := s.classify(ev)
				if !relevant {
					continue
				}
				deb.add(registry, func() {
					select {
					case events <- core.ChangeEvent{Registry: registry, At: time.Now()}:
					case <-ctx.Done():
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if s.config.Logger != nil {
					s.config.Logger.Error("fsnotify error", "error", err)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if s.config.Logger != nil {
			s.config.Logger.Error("watcher terminated", "error", err)
		}
	}))

	return events, nil
}

// classify maps a filesystem event to the registry it touches, filtering out
// temp files and irrelevant operations.
func (s *Store) classify(ev fsnotify.Event) (registry string, relevant bool) {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, TempFilePrefix) {
		return "", false
	}
	registry, known := registryByFile[base]
	if !known {
		return "", false
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	if s.config.Logger != nil {
		s.config.Logger.Debug("registry file changed", "file", base, "op", ev.Op.String())
	}
	return registry, true
}

// debouncer delays one callback per key, restarting the timer on every add.
type debouncer struct {
	window time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
	closed bool
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(key string, fire func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[key]; ok {
		// Stop reports false when the timer already fired; its callback then
		// owns the matching Done and must not be double-counted here.
		if t.Stop() {
			d.wg.Done()
		}
	}
	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.mu.Lock()
		// A fired-but-blocked callback may find its slot already taken by a
		// replacement timer; only the current owner clears the entry.
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		d.mu.Unlock()
		fire()
	})
	d.timers[key] = t
}

// stopAndWait stops accepting new work and waits up to timeout for in-flight
// timers to fire or be canceled.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.closed = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
