// Package filter narrows a snapshot for display.
//
// Filters never change what is stored; they select events from a loaded
// snapshot for the read API and the show command. Criteria:
//   - Time range: event instant within From and To (inclusive)
//   - Currencies: exact code match, case-insensitive
//   - Keywords: title contains at least one keyword, case-insensitive
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Currencies = []string{"USD"}
//	f.Keywords = []string{"CPI"}
//	filtered := f.Apply(snapshot.Events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	// Time range filtering
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	// Currency filtering (exact code match)
	Currencies []string `json:"currencies,omitempty"`

	// Title filtering (case-insensitive substring match)
	Keywords []string `json:"keywords,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Currencies: []string{},
		Keywords:   []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all events.
func (f *Filter) IsEmpty() bool {
	return f.From == nil &&
		f.To == nil &&
		len(f.Currencies) == 0 &&
		len(f.Keywords) == 0
}

// Matches checks if an event matches all active filter criteria.
// An empty filter matches all events.
func (f *Filter) Matches(evt *event.Event) bool {
	// Empty filter matches all events
	if f.IsEmpty() {
		return true
	}

	if f.From != nil && evt.TimeUTC.Before(*f.From) {
		return false
	}
	if f.To != nil && evt.TimeUTC.After(*f.To) {
		return false
	}

	if len(f.Currencies) > 0 {
		matched := false
		for _, cur := range f.Currencies {
			if strings.EqualFold(evt.Currency, strings.TrimSpace(cur)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// Check title (case-insensitive substring match)
	if len(f.Keywords) > 0 {
		matched := false
		titleLower := strings.ToLower(evt.Title)
		for _, kw := range f.Keywords {
			if strings.Contains(titleLower, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply applies the filter to a list of events and returns only matching events.
// If the filter is empty, returns the original list unchanged.
// Otherwise, returns a new slice containing only events that match all criteria.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: 2024-01-15T00:00:00Z | Currencies: USD, EUR | Keywords: CPI"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.From != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.From.UTC().Format(time.RFC3339)))
	}

	if f.To != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.To.UTC().Format(time.RFC3339)))
	}

	if len(f.Currencies) > 0 {
		parts = append(parts, fmt.Sprintf("Currencies: %s", strings.Join(f.Currencies, ", ")))
	}

	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}

	return strings.Join(parts, " | ")
}
