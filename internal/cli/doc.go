// Package cli implements the ffcal command-line interface.
//
// The cli package provides the Cobra-based commands: scrape runs the pipeline
// once and replaces the stored snapshot, show prints the stored snapshot, and
// serve starts the read API together with the weekly scheduler. Output is
// text or JSON and can be sorted by time, currency or title.
package cli
