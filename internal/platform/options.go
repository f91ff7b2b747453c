package platform

import (
	"log/slog"
	"time"

	"biblio/pkg/core"
)

// options holds the internal configuration assembled by the factory.
type options struct {
	store       core.Store
	broadcaster core.Broadcaster
	logger      *slog.Logger
	clock       func() time.Time
}

// Option defines a functional option for configuring the engine.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithStore injects a custom snapshot store. If provided, the default
// flat-file store is skipped.
func WithStore(store core.Store) Option {
	return func(o *options) { o.store = store }
}

// WithBroadcaster sets the observer fan-out notified on loan transitions.
func WithBroadcaster(b core.Broadcaster) Option {
	return func(o *options) { o.broadcaster = b }
}

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}
