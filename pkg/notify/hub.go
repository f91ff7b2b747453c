// Package notify fans loan lifecycle events out to registered observers.
// Delivery is best-effort: a failing observer is logged and skipped, never
// allowed to block the others or the transition that produced the event.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"biblio/pkg/core"
)

// Observer handles one delivered event. Name is used for logging only;
// identity is the subscription id handed out by Attach.
type Observer interface {
	Name() string
	Notify(e core.Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc struct {
	ObserverName string
	Fn           func(e core.Event) error
}

func (o ObserverFunc) Name() string              { return o.ObserverName }
func (o ObserverFunc) Notify(e core.Event) error { return o.Fn(e) }

// Hub is the observer registry and broadcaster.
type Hub struct {
	mu        sync.RWMutex
	observers map[uuid.UUID]Observer
	logger    *slog.Logger
}

// NewHub creates a Hub. A nil logger disables logging.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		observers: make(map[uuid.UUID]Observer),
		logger:    logger,
	}
}

var _ core.Broadcaster = (*Hub)(nil)

// Attach registers an observer and returns its subscription id.
func (h *Hub) Attach(o Observer) uuid.UUID {
	id := uuid.New()

	h.mu.Lock()
	h.observers[id] = o
	h.mu.Unlock()

	h.logger.Debug("observer attached", "name", o.Name(), "subscription", id.String())
	return id
}

// Detach removes the observer with the given subscription id.
func (h *Hub) Detach(id uuid.UUID) bool {
	h.mu.Lock()
	o, ok := h.observers[id]
	if ok {
		delete(h.observers, id)
	}
	h.mu.Unlock()

	if ok {
		h.logger.Debug("observer detached", "name", o.Name(), "subscription", id.String())
	}
	return ok
}

// Len reports the number of registered observers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Broadcast delivers the event to every observer. The caller's transition has
// already committed, so failures are contained here: an error or panic in one
// handler is logged and the remaining observers still get the event.
func (h *Hub) Broadcast(e core.Event) {
	h.mu.RLock()
	observers := make([]Observer, 0, len(h.observers))
	for _, o := range h.observers {
		observers = append(observers, o)
	}
	h.mu.RUnlock()

	for _, o := range observers {
		h.deliver(o, e)
	}
}

func (h *Hub) deliver(o Observer, e core.Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("observer panicked", "name", o.Name(), "panic", fmt.Sprint(r))
		}
	}()

	if err := o.Notify(e); err != nil {
		h.logger.Error("observer failed", "name", o.Name(), "error", err)
	}
}
