package controllers

import (
	"context"
	"sort"
	"time"

	"github.com/scorarr/scorarr/internal/services/radarr"
)

// HistoryFetcher returns the current history list for one movie
type HistoryFetcher func(ctx context.Context) ([]radarr.HistoryEvent, error)

// FindEventByType returns the first event of the given type in iteration
// order, or nil. Callers needing "most recent" must sort first.
func FindEventByType(events []radarr.HistoryEvent, eventType string) *radarr.HistoryEvent {
	for i := range events {
		if events[i].EventType == eventType {
			return &events[i]
		}
	}
	return nil
}

// FindNewEvent returns the first event of the given type whose ID is absent
// from knownIDs, or nil.
func FindNewEvent(events []radarr.HistoryEvent, eventType string, knownIDs map[int64]struct{}) *radarr.HistoryEvent {
	for i := range events {
		if events[i].EventType != eventType {
			continue
		}
		if _, known := knownIDs[events[i].ID]; known {
			continue
		}
		return &events[i]
	}
	return nil
}

// EventIDs collects the IDs of a history list into a set
func EventIDs(events []radarr.HistoryEvent) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(events))
	for i := range events {
		ids[events[i].ID] = struct{}{}
	}
	return ids
}

// SortEventsByDateDesc sorts events newest-first in place. Radarr does not
// contractually order history, so this runs before any "take the first" pick.
func SortEventsByDateDesc(events []radarr.HistoryEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
}

// WaitOptions bounds a WaitForNewEvent call
type WaitOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration

	// KnownIDs is the baseline of already-seen event IDs. When nil, one
	// initial fetch establishes it.
	KnownIDs map[int64]struct{}
}

// WaitForNewEvent polls until a new event of the given type appears or the
// timeout elapses. A timeout returns (nil, nil): it is a normal "nothing
// happened yet" outcome, not an error. The sleep happens before each poll, so
// the first poll is delayed by one interval.
func WaitForNewEvent(ctx context.Context, fetch HistoryFetcher, eventType string, opts WaitOptions) (*radarr.HistoryEvent, error) {
	known := opts.KnownIDs
	if known == nil {
		events, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		known = EventIDs(events)
	}

	start := time.Now()
	for time.Since(start) < opts.Timeout {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.PollInterval):
		}

		events, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if event := FindNewEvent(events, eventType, known); event != nil {
			return event, nil
		}
	}

	return nil, nil
}
