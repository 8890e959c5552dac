package report

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/appusage/internal/store"
)

// Reporter answers the aggregate questions the CLI and the daemon's summary
// endpoint ask of the store.
type Reporter struct {
	store store.Store
	now   func() time.Time
}

// NewReporter creates a reporter. The now function may be nil (time.Now).
func NewReporter(s store.Store, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{store: s, now: now}
}

// TopApps returns per-app totals for the window, most used first.
func (r *Reporter) TopApps(ctx context.Context, w Window) ([]store.AppTotal, error) {
	return r.store.TopApps(ctx, w.Range(r.now()))
}

// Total returns the overall usage for the window.
func (r *Reporter) Total(ctx context.Context, w Window) (time.Duration, error) {
	return r.store.Total(ctx, w.Range(r.now()))
}

// AppSummary is the per-application detail view.
type AppSummary struct {
	App     string
	Today   time.Duration
	Week    time.Duration
	AllTime time.Duration
}

// AppSummary returns today / past-week / all-time totals for one application.
func (r *Reporter) AppSummary(ctx context.Context, app string) (AppSummary, error) {
	now := r.now()
	summary := AppSummary{App: app}

	var err error
	if summary.Today, err = r.store.TotalForApp(ctx, app, WindowToday.Range(now)); err != nil {
		return summary, fmt.Errorf("usage today: %w", err)
	}
	if summary.Week, err = r.store.TotalForApp(ctx, app, WindowWeek.Range(now)); err != nil {
		return summary, fmt.Errorf("usage this week: %w", err)
	}
	if summary.AllTime, err = r.store.TotalForApp(ctx, app, nil); err != nil {
		return summary, fmt.Errorf("usage all time: %w", err)
	}
	return summary, nil
}

// Days returns one total per calendar day for the past n days, oldest first.
// The last entry is today.
func (r *Reporter) Days(ctx context.Context, n int) ([]store.DayTotal, error) {
	if n <= 0 {
		n = 7
	}
	today := startOfDay(r.now())

	days := make([]store.DayTotal, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		total, err := r.store.Total(ctx, &store.Range{Start: day, End: day.AddDate(0, 0, 1)})
		if err != nil {
			return nil, fmt.Errorf("usage for %s: %w", day.Format("2006-01-02"), err)
		}
		days = append(days, store.DayTotal{Day: day, Total: total})
	}
	return days, nil
}
