package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ff-events/internal/event"
)

func fixtureEvents() []*event.Event {
	mon := time.Date(2024, time.January, 15, 1, 30, 0, 0, time.UTC)
	return []*event.Event{
		event.NewEvent("3", mon.Add(26*time.Hour), "EUR", "German ZEW Economic Sentiment"),
		event.NewEvent("1", mon, "USD", "Core CPI m/m"),
		event.NewEvent("2", mon, "AUD", "cash Rate"),
		event.NewEvent("4", mon.Add(time.Hour), "USD", ""),
	}
}

func TestSortedEvents(t *testing.T) {
	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortByTime, []string{"1", "2", "4", "3"}},
		{SortByCurrency, []string{"2", "3", "1", "4"}},
		{SortByTitle, []string{"4", "2", "1", "3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			events := fixtureEvents()
			got := sortedEvents(events, tt.order)

			ids := make([]string, len(got))
			for i, evt := range got {
				ids[i] = evt.ID
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, "3", events[0].ID, "input order must not change")
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	order, err := parseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortByTime, order)

	order, err = parseSortOrder(" Currency ")
	require.NoError(t, err)
	assert.Equal(t, SortByCurrency, order)

	_, err = parseSortOrder("impact")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	format, err := parseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	_, err = parseFormat("yaml")
	assert.Error(t, err)
}

func TestWriteOutput_Text(t *testing.T) {
	events := sortedEvents(fixtureEvents(), SortByTime)
	result := &OutputResult{
		LastUpdated: time.Date(2024, time.January, 14, 17, 0, 0, 0, time.UTC),
		Events:      events,
		EventCount:  len(events),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, result, FormatText, true))
	out := buf.String()

	assert.Contains(t, out, "Mon Jan 15\n")
	assert.Contains(t, out, "Tue Jan 16\n")
	assert.Contains(t, out, "  01:30 UTC  USD  Core CPI m/m\n")
	assert.Contains(t, out, "  02:30 UTC  USD  (untitled)\n")
	assert.Contains(t, out, "ID: 1")
	assert.Contains(t, out, "Total: 4 events")
	assert.Contains(t, out, "Last updated: 2024-01-14T17:00:00Z")
	// one header per day
	assert.Equal(t, 1, strings.Count(out, "Mon Jan 15"))
}

func TestWriteOutput_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, &OutputResult{}, FormatText, false))
	assert.Equal(t, "No high impact events found.\n", buf.String())
}

func TestWriteOutput_JSON(t *testing.T) {
	events := fixtureEvents()[:1]
	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, &OutputResult{Events: events, EventCount: 1}, FormatJSON, false))

	out := buf.String()
	assert.Contains(t, out, `"event_time_utc": "2024-01-16T03:30:00+00:00"`)
	assert.Contains(t, out, `"event_count": 1`)
	assert.NotContains(t, out, `"run_id"`)
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	assert.Error(t, WriteOutput(&bytes.Buffer{}, &OutputResult{}, OutputFormat("xml"), false))
}
