package telegram

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// FormatDigest formats a snapshot as an HTML digest message, grouped by day
// in loc (UTC when nil). Events keep snapshot order within a day.
func FormatDigest(events []*event.Event, loc *time.Location) string {
	if len(events) == 0 {
		return "No high impact events this week."
	}
	if loc == nil {
		loc = time.UTC
	}

	var msg strings.Builder
	msg.WriteString("📅 <b>High Impact Events This Week</b>\n")
	msg.WriteString(fmt.Sprintf("%d event%s • times in %s\n", len(events), pluralize(len(events)), loc))

	lastDay := ""
	for _, evt := range events {
		local := evt.TimeUTC.In(loc)
		day := local.Format("Mon Jan 2")
		if day != lastDay {
			msg.WriteString(fmt.Sprintf("\n<b>%s</b>\n", day))
			lastDay = day
		}

		title := evt.Title
		if title == "" {
			title = "(untitled)"
		}
		msg.WriteString(fmt.Sprintf("  %s <code>%s</code> %s\n", local.Format("15:04"), evt.Currency, html.EscapeString(title)))
	}

	return msg.String()
}

// FormatDigestSummary creates a one-line summary, counting events per currency
func FormatDigestSummary(events []*event.Event) string {
	if len(events) == 0 {
		return "No high impact events this week"
	}

	// Count events by currency
	byCurrency := make(map[string]int)
	for _, evt := range events {
		byCurrency[evt.Currency]++
	}

	currencies := make([]string, 0, len(byCurrency))
	for cur, count := range byCurrency {
		currencies = append(currencies, fmt.Sprintf("%s (%d)", cur, count))
	}
	sort.Strings(currencies)

	return fmt.Sprintf("%d high impact event%s this week: %s",
		len(events),
		pluralize(len(events)),
		strings.Join(currencies, ", "))
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
