package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParseTime accepts an RFC 3339 instant or a bare date, which means midnight UTC.
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD", raw)
}

// FromQuery builds a filter from request parameters:
//
//	currency=USD,EUR  currency codes
//	q=cpi,gdp         title keywords
//	from=2024-01-15   lower bound, inclusive
//	to=2024-01-16T12:00:00Z
//	upcoming=true     lower bound of now, unless from is given
func FromQuery(values url.Values, now time.Time) (*Filter, error) {
	f := NewFilter()
	f.Currencies = splitList(values["currency"])
	f.Keywords = splitList(values["q"])

	if raw := values.Get("from"); raw != "" {
		from, err := ParseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		f.From = &from
	}
	if raw := values.Get("to"); raw != "" {
		to, err := ParseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		f.To = &to
	}
	if raw := values.Get("upcoming"); raw != "" {
		upcoming, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("upcoming: invalid boolean %q", raw)
		}
		if upcoming && f.From == nil {
			n := now.UTC()
			f.From = &n
		}
	}

	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("from must not be after to")
	}
	return f, nil
}

// splitList flattens repeated and comma separated values
func splitList(raw []string) []string {
	out := []string{}
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
