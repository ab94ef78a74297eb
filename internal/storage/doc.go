// Package storage persists the latest event snapshot.
//
// A Store replaces the whole snapshot on every successful run and never merges.
// FileStore keeps it as a JSON array on disk (written to a temporary file and
// renamed into place) and PostgresStore keeps it in two tables rewritten inside
// one transaction. Readers get ErrNotFound until the first run has completed.
package storage
