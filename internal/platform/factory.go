// Package platform wires the lending engine together: store, service,
// observers, configuration.
package platform

import (
	"context"

	"biblio/pkg/adapters/fs"
	"biblio/pkg/core"
)

// New builds a ready-to-use lending service over dataDir: it initializes the
// store, constructs the service, and hydrates the registries from the
// persisted snapshot.
func New(ctx context.Context, dataDir string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store := o.store
	if store == nil {
		store = fs.NewStore(fs.Config{Dir: dataDir, Logger: o.logger})
	}
	if err := store.Initialize(ctx); err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{}
	if o.logger != nil {
		svcOpts = append(svcOpts, core.WithLogger(o.logger))
	}
	if o.broadcaster != nil {
		svcOpts = append(svcOpts, core.WithBroadcaster(o.broadcaster))
	}
	if o.clock != nil {
		svcOpts = append(svcOpts, core.WithClock(o.clock))
	}

	svc := core.NewService(store, svcOpts...)
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
