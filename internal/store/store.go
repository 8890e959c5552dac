// Package store persists and queries application usage intervals.
package store

import (
	"context"
	"time"
)

// Record is one closed usage interval: an application held focus from Start
// until End. Times are stored as millisecond epoch integers, matching the
// schema used by earlier trackers writing to the same database.
type Record struct {
	ID        int64
	App       string
	Start     time.Time
	End       time.Time
	Duration  time.Duration
	SessionID string
}

// AppTotal is the aggregated usage for one application.
type AppTotal struct {
	App   string
	Total time.Duration
}

// DayTotal is the aggregated usage across all applications for one day.
type DayTotal struct {
	Day   time.Time
	Total time.Duration
}

// Range restricts a query to records whose start time falls in [Start, End).
// A nil *Range means all time.
type Range struct {
	Start time.Time
	End   time.Time
}

// Store is the persistence interface shared by the daemon and the viewer.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	TopApps(ctx context.Context, rng *Range) ([]AppTotal, error)
	TotalForApp(ctx context.Context, app string, rng *Range) (time.Duration, error)
	Total(ctx context.Context, rng *Range) (time.Duration, error)
	Records(ctx context.Context, rng *Range) ([]Record, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
