package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/ff-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	RunID       string         `json:"run_id,omitempty"`
	LastUpdated time.Time      `json:"last_updated"`
	Events      []*event.Event `json:"events"`
	EventCount  int            `json:"event_count"`
	Stored      bool           `json:"stored"`
}

func parseFormat(raw string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", raw)
	}
	return format, nil
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.EventCount == 0 {
		fmt.Fprintln(w, "No high impact events found.")
		return nil
	}

	lastDay := ""
	for _, evt := range result.Events {
		day := evt.TimeUTC.UTC().Format("Mon Jan 02")
		if day != lastDay {
			fmt.Fprintf(w, "\n%s\n", day)
			lastDay = day
		}

		title := evt.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "  %s UTC  %s  %s\n", evt.TimeUTC.UTC().Format("15:04"), evt.Currency, title)
		if verbose && evt.ID != "" {
			fmt.Fprintf(w, "       ID: %s\n", evt.ID)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events\n", result.EventCount)
	if verbose && !result.LastUpdated.IsZero() {
		fmt.Fprintf(w, "Last updated: %s\n", result.LastUpdated.UTC().Format(time.RFC3339))
	}
	return nil
}
