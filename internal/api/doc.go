// Package api serves the current snapshot over HTTP.
//
// Routes:
//
//	GET  /                    service info
//	GET  /api/news            snapshot wrapped in {success, count, data, last_updated}
//	GET  /weekly_ecocar.json  snapshot as a bare JSON array
//	GET  /calendar.ics        snapshot as an iCalendar feed
//	GET  /health              liveness and snapshot presence
//	GET|POST /scrape-now      synchronous manual refresh
//	GET  /metrics             Prometheus metrics, when configured
//
// /api/news and /calendar.ics accept the filter query parameters currency, q,
// from, to and upcoming. Reads of a missing snapshot run the pipeline first.
package api
