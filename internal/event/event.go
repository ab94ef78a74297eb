package event

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ImpactHigh is the only impact level that reaches the snapshot.
const ImpactHigh = "HIGH"

// TimeLayout is the wire format of event_time_utc, e.g. 2024-01-15T01:30:00+00:00.
const TimeLayout = "2006-01-02T15:04:05-07:00"

// Event represents a high impact calendar event
type Event struct {
	ID       string    `json:"-"` // row identity on the source page
	TimeUTC  time.Time `json:"event_time_utc"`
	Currency string    `json:"currency"`
	Impact   string    `json:"impact"`
	Title    string    `json:"event"`
}

// NewEvent creates a high impact Event, normalizing the instant to UTC at
// second resolution and trimming the title.
func NewEvent(id string, at time.Time, currency, title string) *Event {
	return &Event{
		ID:       id,
		TimeUTC:  at.UTC().Truncate(time.Second),
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		Impact:   ImpactHigh,
		Title:    strings.TrimSpace(title),
	}
}

type wireEvent struct {
	TimeUTC  string `json:"event_time_utc"`
	Currency string `json:"currency"`
	Impact   string `json:"impact"`
	Title    string `json:"event"`
}

// MarshalJSON writes event_time_utc with an explicit +00:00 offset.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{
		TimeUTC:  e.TimeUTC.UTC().Format(TimeLayout),
		Currency: e.Currency,
		Impact:   e.Impact,
		Title:    e.Title,
	})
}

// UnmarshalJSON accepts any RFC 3339 instant and stores it in UTC.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, w.TimeUTC)
	if err != nil {
		return fmt.Errorf("parsing event_time_utc %q: %w", w.TimeUTC, err)
	}
	e.TimeUTC = t.UTC()
	e.Currency = w.Currency
	e.Impact = w.Impact
	e.Title = w.Title
	return nil
}

// String renders the event as a single line for logs and text output
func (e *Event) String() string {
	title := e.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s %s %s", e.TimeUTC.UTC().Format("Mon Jan 02 15:04 MST"), e.Currency, title)
}

// Key returns the row identity, or a digest of the event fields when the
// event was loaded from a snapshot that does not carry identities.
func (e *Event) Key() string {
	if e.ID != "" {
		return e.ID
	}
	h := sha1.Sum([]byte(e.TimeUTC.UTC().Format(TimeLayout) + "|" + e.Currency + "|" + e.Title))
	return hex.EncodeToString(h[:8])
}
