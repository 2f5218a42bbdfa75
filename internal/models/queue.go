package models

import "time"

// GrabbedRelease captures the grab history event recorded for a queue item
// during the current run (score plus descriptive metadata).
type GrabbedRelease struct {
	EventID     int64
	SourceTitle string
	Quality     string
	Score       int
	Date        time.Time
}

// QueueItem is the unit of work tracked through the reconciliation pipeline.
// Fields are snapshots copied from the Radarr movie at enqueue time; the item
// is mutated only by the orchestrator loop that currently owns it.
type QueueItem struct {
	ID      int64
	Title   string
	Year    int
	HasFile bool

	Status Status

	// Grabbed is nil until the search phase observes a new grab event.
	Grabbed *GrabbedRelease

	// InitialHistoryIDs is the set of history event IDs known at enqueue
	// time, used to tell new events apart from pre-existing history.
	InitialHistoryIDs map[int64]struct{}

	// Error holds the failure reason; set only when Status is failed.
	Error string

	// StartedAt is stamped when the item enters the downloading state and
	// drives the download timeout computation.
	StartedAt time.Time
}
