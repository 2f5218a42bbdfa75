package models

import "time"

// ItemFailure records why a single queue item ended up failed.
type ItemFailure struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// RunSummary aggregates the outcome of one batch run, built from the
// completed list once both queues have drained.
type RunSummary struct {
	Completed  int           `json:"completed"`
	Failed     int           `json:"failed"`
	Failures   []ItemFailure `json:"failures,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}
