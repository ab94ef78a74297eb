// Package render drives a browser page over the calendar and yields the rows
// present in the document after each scroll step.
//
// The calendar table mounts rows lazily as the viewport moves, so the driver
// scrolls from the top to the (growing) content height in fixed increments and
// captures the rendered document after every increment. The same row is usually
// yielded on many consecutive steps; consumers dedup by row identity.
package render
