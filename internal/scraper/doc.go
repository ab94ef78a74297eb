// Package scraper turns the rows of the Forex Factory calendar into normalized
// high impact events.
//
// The calendar prints a date and a time only on the first row of each group,
// so every row inherits them from the nearest header above it. Rows are
// filtered by currency and impact, their local time is converted to UTC in the
// configured source timezone, and they are deduplicated by the row's
// data-event-id. Rows that do not qualify are dropped and tallied by reason;
// they are never errors.
package scraper
