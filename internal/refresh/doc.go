// Package refresh owns the lifecycle of the snapshot.
//
// A Service runs the pipeline, replaces the stored snapshot on success and
// announces it. Every trigger goes through the same Service, which holds a
// mutex so scheduled, manual and first-access runs never interleave. The
// Scheduler fires the weekly refresh on a cron expression evaluated in the
// calendar's source timezone.
package refresh
