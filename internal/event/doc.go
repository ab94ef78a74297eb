// Package event provides the normalized calendar event and the snapshot that
// holds the events produced by one scrape run.
//
// Events carry the row identity they were discovered under, an instant in UTC,
// the currency code, the impact level and the title. The identity is kept in
// memory only; the JSON form matches the document served to API clients.
package event
