package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// DefaultCalendarName is the X-WR-CALNAME of the snapshot feed
const DefaultCalendarName = "Forex Factory High Impact Events"

// eventLength is the nominal length of a release; calendar clients need a DTEND
const eventLength = 15 * time.Minute

const uidDomain = "ff-events"

// GenerateICS generates an iCalendar (.ics) file for a single event
func GenerateICS(evt *event.Event, stamp time.Time) string {
	var ics strings.Builder

	writeHeader(&ics, "")
	writeEvent(&ics, evt, stamp)
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// GenerateFeed generates one iCalendar feed holding every event of a snapshot.
// An empty snapshot still produces a valid calendar without events.
func GenerateFeed(events []*event.Event, calendarName string, stamp time.Time) string {
	var ics strings.Builder

	writeHeader(&ics, calendarName)
	for _, evt := range events {
		writeEvent(&ics, evt, stamp)
	}
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func writeHeader(ics *strings.Builder, calendarName string) {
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//ff-events//calendar//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(calendarName)))
		ics.WriteString("X-WR-TIMEZONE:UTC\r\n")
	}
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s@%s\r\n", evt.Key(), uidDomain))

	// DTSTAMP is the snapshot time so an unchanged snapshot renders identically
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(stamp)))

	start := evt.TimeUTC
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(start.Add(eventLength))))

	title := evt.Title
	if title == "" {
		title = "Untitled event"
	}
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(fmt.Sprintf("[%s] %s", evt.Currency, title))))

	description := fmt.Sprintf("Currency: %s\nImpact: %s", evt.Currency, evt.Impact)
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))
	ics.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", escapeICS(evt.Currency)))

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	// Releases are moments, not busy time
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
