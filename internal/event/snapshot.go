package event

import "time"

// Snapshot is the full result set of one successful run. It replaces the
// previous snapshot as a whole; nothing is merged or diffed.
type Snapshot struct {
	Events    []*Event
	UpdatedAt time.Time
}

// NewSnapshot creates a snapshot of events in discovery order
func NewSnapshot(events []*Event, updatedAt time.Time) *Snapshot {
	if events == nil {
		events = make([]*Event, 0)
	}
	return &Snapshot{
		Events:    events,
		UpdatedAt: updatedAt.UTC(),
	}
}

// Len returns the number of events in the snapshot
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Events)
}

// Upcoming returns the events at or after now, preserving order
func (s *Snapshot) Upcoming(now time.Time) []*Event {
	out := make([]*Event, 0, s.Len())
	if s == nil {
		return out
	}
	for _, evt := range s.Events {
		if !evt.TimeUTC.Before(now) {
			out = append(out, evt)
		}
	}
	return out
}
