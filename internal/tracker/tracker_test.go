package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/appusage/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 29, 10, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type captureSink struct {
	mu      sync.Mutex
	records []store.Record
}

func (s *captureSink) Write(_ context.Context, rec store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *captureSink) all() []store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Record(nil), s.records...)
}

func newTestTracker(cfg Config) (*Tracker, *captureSink, *fakeClock) {
	clock := newFakeClock()
	sink := &captureSink{}
	cfg.Now = clock.Now
	if cfg.SessionID == "" {
		cfg.SessionID = "session-1"
	}
	return New(sink, cfg), sink, clock
}

func TestFocusChangeClosesPreviousInterval(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(10 * time.Minute)
	tr.FocusChanged(ctx, 2, "kitty")

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, "firefox", records[0].App)
	assert.Equal(t, 10*time.Minute, records[0].Duration)
	assert.Equal(t, records[0].End.Sub(records[0].Start), records[0].Duration)
	assert.Equal(t, "session-1", records[0].SessionID)
}

func TestRefocusSameWindowDoesNotSplitInterval(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(time.Minute)
	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(time.Minute)
	tr.FocusChanged(ctx, 2, "kitty")

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, 2*time.Minute, records[0].Duration)
}

func TestWindowClosedEndsInterval(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(5 * time.Minute)
	tr.WindowClosed(ctx, 1)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, 5*time.Minute, records[0].Duration)

	// Nothing being timed afterwards.
	clock.Advance(time.Hour)
	tr.Flush(ctx)
	assert.Len(t, sink.all(), 1)
}

func TestBackgroundWindowCloseIgnored(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(time.Minute)
	tr.WindowClosed(ctx, 99)

	assert.Empty(t, sink.all())

	tr.Flush(ctx)
	require.Len(t, sink.all(), 1)
	assert.Equal(t, "firefox", sink.all()[0].App)
}

func TestIdleAndResume(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(10 * time.Minute)
	tr.Idle(ctx)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, 10*time.Minute, records[0].Duration)

	// Idle time is not accounted.
	clock.Advance(time.Hour)
	tr.Resume(ctx)
	clock.Advance(3 * time.Minute)
	tr.Flush(ctx)

	records = sink.all()
	require.Len(t, records, 2)
	assert.Equal(t, "firefox", records[1].App)
	assert.Equal(t, 3*time.Minute, records[1].Duration)
}

func TestFocusChangeWhileIdleStartsNothing(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(time.Minute)
	tr.Idle(ctx)
	tr.FocusChanged(ctx, 2, "kitty")
	clock.Advance(time.Hour)
	tr.Resume(ctx)
	clock.Advance(2 * time.Minute)
	tr.Flush(ctx)

	records := sink.all()
	require.Len(t, records, 2)
	assert.Equal(t, "kitty", records[1].App)
	assert.Equal(t, 2*time.Minute, records[1].Duration)
}

func TestDoubleIdleIsNoop(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(time.Minute)
	tr.Idle(ctx)
	tr.Idle(ctx)
	tr.Resume(ctx)
	tr.Resume(ctx)

	assert.Len(t, sink.all(), 1)
}

func TestCheckpointSplitsWithoutLosingTime(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(time.Minute)
	tr.Checkpoint(ctx)
	clock.Advance(time.Minute)
	tr.Checkpoint(ctx)
	clock.Advance(time.Minute)
	tr.Flush(ctx)

	records := sink.all()
	require.Len(t, records, 3)
	var total time.Duration
	for i, rec := range records {
		assert.Equal(t, "firefox", rec.App, "record %d", i)
		total += rec.Duration
	}
	assert.Equal(t, 3*time.Minute, total)
	// Contiguous: each interval starts where the previous ended.
	assert.Equal(t, records[0].End, records[1].Start)
	assert.Equal(t, records[1].End, records[2].Start)
}

func TestCheckpointWithoutOpenIntervalIsNoop(t *testing.T) {
	tr, sink, _ := newTestTracker(Config{})
	tr.Checkpoint(t.Context())
	assert.Empty(t, sink.all())
}

func TestMinDurationDiscardsShortIntervals(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{MinDuration: time.Second})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(300 * time.Millisecond)
	tr.FocusChanged(ctx, 2, "kitty")
	clock.Advance(2 * time.Second)
	tr.Flush(ctx)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, "kitty", records[0].App)
}

func TestIgnoreAndRenameRules(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{Rules: Rules{
		Ignore: []string{"org.kde.spectacle"},
		Rename: map[string]string{"org.mozilla.firefox": "Firefox"},
	}})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "org.kde.spectacle")
	clock.Advance(time.Minute)
	tr.FocusChanged(ctx, 2, "org.mozilla.firefox")
	clock.Advance(time.Minute)
	tr.Flush(ctx)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, "Firefox", records[0].App)
}

func TestSetRulesAppliesToLaterIntervals(t *testing.T) {
	tr, sink, clock := newTestTracker(Config{})
	ctx := t.Context()

	tr.FocusChanged(ctx, 1, "firefox")
	clock.Advance(time.Minute)
	tr.Checkpoint(ctx)

	tr.SetRules(Rules{Ignore: []string{"firefox"}})
	clock.Advance(time.Minute)
	tr.Flush(ctx)

	records := sink.all()
	require.Len(t, records, 1)
}

func TestCurrent(t *testing.T) {
	tr, _, clock := newTestTracker(Config{})
	ctx := t.Context()

	app, since, idle := tr.Current()
	assert.Empty(t, app)
	assert.True(t, since.IsZero())
	assert.False(t, idle)

	tr.FocusChanged(ctx, 1, "kitty")
	app, since, idle = tr.Current()
	assert.Equal(t, "kitty", app)
	assert.Equal(t, clock.Now(), since)
	assert.False(t, idle)

	tr.Idle(ctx)
	_, since, idle = tr.Current()
	assert.True(t, since.IsZero())
	assert.True(t, idle)
}
