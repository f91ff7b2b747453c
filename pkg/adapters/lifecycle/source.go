package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"biblio/pkg/core"
)

type changeSource struct {
	events <-chan core.ChangeEvent
	out    chan lifecycle.Event
}

// NewSource bridges a store's change-event channel to the generic
// lifecycle.Source interface, so registry-file changes can feed a supervised
// application loop alongside other event sources.
func NewSource(events <-chan core.ChangeEvent) lifecycle.Source {
	return &changeSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	// lifecycle.Go keeps the bridge goroutine tracked and panic-safe.
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// core.ChangeEvent implements lifecycle.Event (has String()).
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
