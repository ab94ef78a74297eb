package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByTime     SortOrder = "time"
	SortByCurrency SortOrder = "currency"
	SortByTitle    SortOrder = "title"
)

func parseSortOrder(raw string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	switch order {
	case "":
		return SortByTime, nil
	case SortByTime, SortByCurrency, SortByTitle:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (must be 'time', 'currency' or 'title')", raw)
	}
}

// sortedEvents returns a sorted copy; snapshots keep discovery order
func sortedEvents(events []*event.Event, sortOrder SortOrder) []*event.Event {
	out := append([]*event.Event(nil), events...)
	switch sortOrder {
	case SortByTime:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].TimeUTC.Before(out[j].TimeUTC)
		})
	case SortByCurrency:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Currency != out[j].Currency {
				return out[i].Currency < out[j].Currency
			}
			// If currencies are equal, sort by time
			return out[i].TimeUTC.Before(out[j].TimeUTC)
		})
	case SortByTitle:
		sort.SliceStable(out, func(i, j int) bool {
			ti, tj := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
			if ti != tj {
				return ti < tj
			}
			// If titles are equal, sort by time
			return out[i].TimeUTC.Before(out[j].TimeUTC)
		})
	}
	return out
}
