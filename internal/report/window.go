// Package report aggregates usage records into the views shown by the CLI and
// the daemon's summary endpoint.
package report

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/appusage/internal/store"
)

// Window is a named reporting time range relative to "now".
type Window int

const (
	WindowToday Window = iota
	WindowWeek
	WindowMonth
	WindowAll
)

// ParseWindow maps user input to a Window.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "today", "":
		return WindowToday, nil
	case "week":
		return WindowWeek, nil
	case "month":
		return WindowMonth, nil
	case "all":
		return WindowAll, nil
	default:
		return WindowToday, fmt.Errorf("unknown window %q (want today, week, month or all)", s)
	}
}

func (w Window) String() string {
	switch w {
	case WindowToday:
		return "today"
	case WindowWeek:
		return "week"
	case WindowMonth:
		return "month"
	case WindowAll:
		return "all"
	default:
		return "unknown"
	}
}

// Label is the human heading used in CLI output.
func (w Window) Label() string {
	switch w {
	case WindowToday:
		return "Today"
	case WindowWeek:
		return "Past Week"
	case WindowMonth:
		return "Past Month"
	case WindowAll:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Range resolves the window to a concrete half-open store range in local time.
// WindowAll returns nil (no restriction). Week is the 7 days ending at the end
// of today; Month is the 4 weeks ending at the end of today.
func (w Window) Range(now time.Time) *store.Range {
	startOfToday := startOfDay(now)
	endOfToday := startOfToday.AddDate(0, 0, 1)

	switch w {
	case WindowToday:
		return &store.Range{Start: startOfToday, End: endOfToday}
	case WindowWeek:
		return &store.Range{Start: endOfToday.AddDate(0, 0, -7), End: endOfToday}
	case WindowMonth:
		return &store.Range{Start: endOfToday.AddDate(0, 0, -28), End: endOfToday}
	default:
		return nil
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
