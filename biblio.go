package biblio

import (
	"context"
	"log/slog"
	"time"

	"biblio/internal/platform"
	"biblio/pkg/core"
)

// Version exposes the version of the library.
const Version = "0.2.0"

// --- Types ---

// Re-exported core types, so most callers only import this package.
type (
	Document       = core.Document
	BookParams     = core.BookParams
	MagazineParams = core.MagazineParams
	User           = core.User
	Loan           = core.Loan
	Event          = core.Event
	Statistics     = core.Statistics
	Service        = core.Service
)

// --- Configuration ---

// Option defines a functional option for configuring the engine.
type Option = platform.Option

// Config is the YAML application configuration.
type Config = platform.Config

// WithStore injects a custom snapshot store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithBroadcaster sets the observer fan-out notified on loan transitions.
func WithBroadcaster(b core.Broadcaster) Option {
	return platform.WithBroadcaster(b)
}

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// --- Factory ---

// New creates a lending Service whose snapshots live under dataDir.
func New(ctx context.Context, dataDir string, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, dataDir, opts...)
}

// LoadConfig reads a YAML config file, falling back to defaults when the
// file does not exist.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return platform.DefaultConfig()
}
