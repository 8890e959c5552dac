// Package tracker turns focus and idle transitions into closed usage
// intervals. It is the accounting core of the daemon: the compositor listener
// feeds it events, and it writes records through its sink.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/appusage/internal/logfields"
	"git.home.luguber.info/inful/appusage/internal/store"
)

// Sink receives closed usage intervals. The daemon wires this to the store
// (plus metrics and the event bus).
type Sink interface {
	Write(ctx context.Context, rec store.Record) error
}

// Config holds tracker construction parameters.
type Config struct {
	// SessionID is stamped on every record written by this daemon run.
	SessionID string
	// MinDuration discards intervals shorter than this.
	MinDuration time.Duration
	// Rules is the initial normalization rule set.
	Rules Rules
	// Now is the clock; nil means time.Now. Tests inject a fake.
	Now func() time.Time
}

// Tracker tracks which window holds focus and for how long.
//
// Invariants: at most one interval is open at any time, and while idle no
// interval is open. An interval is open exactly when since is non-zero.
type Tracker struct {
	mu          sync.Mutex
	now         func() time.Time
	sink        Sink
	session     string
	minDuration time.Duration
	rules       Rules

	currentID  int64
	currentApp string
	since      time.Time
	idle       bool
}

// New creates a tracker writing closed intervals to sink.
func New(sink Sink, cfg Config) *Tracker {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now:         now,
		sink:        sink,
		session:     cfg.SessionID,
		minDuration: cfg.MinDuration,
		rules:       cfg.Rules,
	}
}

// SetRules swaps the normalization rules. Applies to intervals closed from
// now on; the open interval keeps its raw app id until it closes.
func (t *Tracker) SetRules(rules Rules) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = rules
}

// FocusChanged records that the window windowID of application app took
// focus. Any open interval is closed first.
func (t *Tracker) FocusChanged(ctx context.Context, windowID int64, app string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if windowID == t.currentID && !t.since.IsZero() {
		// Refocus of the window already being timed.
		return
	}

	now := t.now()
	t.closeInterval(ctx, now)

	t.currentID = windowID
	t.currentApp = app
	if !t.idle {
		t.since = now
	}
}

// WindowClosed records that windowID was closed. Only the window being timed
// matters; closes of background windows are ignored.
func (t *Tracker) WindowClosed(ctx context.Context, windowID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if windowID != t.currentID {
		return
	}

	t.closeInterval(ctx, t.now())
	t.currentID = 0
	t.currentApp = ""
}

// Idle closes the open interval and stops timing until Resume. The current
// window is remembered so Resume can pick it back up.
func (t *Tracker) Idle(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.idle {
		return
	}
	t.closeInterval(ctx, t.now())
	t.idle = true
}

// Resume restarts timing of the current window after an idle period.
func (t *Tracker) Resume(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.idle {
		return
	}
	t.idle = false
	if t.currentID != 0 {
		t.since = t.now()
	}
}

// Checkpoint persists the open interval and restarts it, so a crash loses at
// most one checkpoint period.
func (t *Tracker) Checkpoint(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.since.IsZero() {
		return
	}
	now := t.now()
	t.closeInterval(ctx, now)
	t.since = now
}

// Flush persists the open interval and stops timing. Shutdown path.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeInterval(ctx, t.now())
}

// Current reports what is being tracked right now, for the status endpoint.
func (t *Tracker) Current() (app string, since time.Time, idle bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentApp, t.since, t.idle
}

// closeInterval writes the open interval, if any, ending at end. Must be
// called with t.mu held; always clears since.
func (t *Tracker) closeInterval(ctx context.Context, end time.Time) {
	since := t.since
	t.since = time.Time{}
	if since.IsZero() || t.currentApp == "" {
		return
	}

	duration := end.Sub(since)
	if duration < t.minDuration {
		return
	}

	app, ok := t.rules.normalize(t.currentApp)
	if !ok {
		return
	}

	rec := store.Record{
		App:       app,
		Start:     since,
		End:       end,
		Duration:  duration,
		SessionID: t.session,
	}
	if err := t.sink.Write(ctx, rec); err != nil {
		slog.Warn("Failed to write usage record", logfields.App(app), logfields.Error(err))
	}
}
