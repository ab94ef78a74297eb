// Package notifier announces a freshly stored snapshot.
//
// Notifiers run after the snapshot has been replaced; a notifier failure is
// reported but never undoes the write. Implementations publish every event to
// Kafka, post a digest tweet, send a Telegram digest with the week's calendar
// attached, or print the announcement in dry-run mode.
package notifier
