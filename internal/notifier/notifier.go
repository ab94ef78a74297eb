package notifier

import (
	"context"
	"errors"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// Notifier defines the interface for announcing a stored snapshot
type Notifier interface {
	// Notify announces the events of a snapshot, in snapshot order
	Notify(ctx context.Context, events []*event.Event) error
}

// Multi fans a snapshot out to several notifiers, attempting all of them
type Multi []Notifier

// Notify calls every notifier and joins their errors
func (m Multi) Notify(ctx context.Context, events []*event.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
