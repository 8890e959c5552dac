// Package daemon wires the compositor listener, the focus tracker, the store,
// and the supporting services (HTTP status endpoint, schedules, config watcher,
// optional NATS publisher) into one long-running process.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/appusage/internal/config"
	"git.home.luguber.info/inful/appusage/internal/daemon/events"
	"git.home.luguber.info/inful/appusage/internal/logfields"
	"git.home.luguber.info/inful/appusage/internal/metrics"
	"git.home.luguber.info/inful/appusage/internal/publish"
	"git.home.luguber.info/inful/appusage/internal/report"
	"git.home.luguber.info/inful/appusage/internal/store"
	"git.home.luguber.info/inful/appusage/internal/tracker"
)

// Daemon is the main daemon service.
type Daemon struct {
	configFilePath string
	status         atomic.Value // Status
	startTime      time.Time
	sessionID      string
	stopChan       chan struct{}
	stopOnce       sync.Once
	wg             sync.WaitGroup

	mu  sync.RWMutex
	cfg *config.Config

	// Core components
	bus           *events.Bus
	store         store.Store
	tracker       *tracker.Tracker
	reporter      *report.Reporter
	metrics       *metrics.Recorder
	httpServer    *HTTPServer
	scheduler     *Scheduler
	configWatcher *ConfigWatcher
	publisher     *publish.Publisher

	recordsWritten atomic.Int64
}

// New creates a daemon instance. configFilePath may be empty; config watching
// is then disabled.
func New(cfg *config.Config, configFilePath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	d := &Daemon{
		configFilePath: configFilePath,
		cfg:            cfg,
		sessionID:      uuid.NewString(),
		stopChan:       make(chan struct{}),
		bus:            events.NewBus(),
		metrics:        metrics.NewRecorder(nil),
	}
	d.status.Store(StatusStopped)
	return d, nil
}

// Start brings up all components and begins tracking. It does not block;
// errors after startup surface through logs and metrics.
func (d *Daemon) Start(ctx context.Context) error {
	d.status.Store(StatusStarting)
	d.startTime = time.Now()
	cfg := d.GetConfig()

	slog.Info("Starting appusage daemon",
		logfields.SessionID(d.sessionID),
		"database", cfg.Database.Path)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		d.status.Store(StatusError)
		return fmt.Errorf("open store: %w", err)
	}
	d.store = st
	d.reporter = report.NewReporter(st, nil)

	d.tracker = tracker.New(d, tracker.Config{
		SessionID:   d.sessionID,
		MinDuration: cfg.Tracker.MinDuration.Std(),
		Rules: tracker.Rules{
			Ignore: cfg.Tracker.Ignore,
			Rename: cfg.Tracker.Rename,
		},
	})

	if cfg.Publish.Enabled {
		pub, err := publish.NewPublisher(cfg.Publish)
		if err != nil {
			d.status.Store(StatusError)
			return fmt.Errorf("initialize publisher: %w", err)
		}
		d.publisher = pub
	}

	if cfg.Server.Enabled {
		d.httpServer = NewHTTPServer(cfg.Server.Listen, d)
		d.httpServer.Start()
	}

	scheduler, err := NewScheduler()
	if err != nil {
		d.status.Store(StatusError)
		return fmt.Errorf("create scheduler: %w", err)
	}
	d.scheduler = scheduler

	if _, err := scheduler.ScheduleCheckpoint(cfg.Tracker.FlushInterval.Std(), func() {
		checkpointCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		d.tracker.Checkpoint(checkpointCtx)
	}); err != nil {
		d.status.Store(StatusError)
		return fmt.Errorf("schedule checkpoint: %w", err)
	}

	if cfg.Retention.KeepDays > 0 {
		if _, err := scheduler.ScheduleDailyPrune(func() {
			d.runPrune(cfg.Retention.KeepDays)
		}); err != nil {
			d.status.Store(StatusError)
			return fmt.Errorf("schedule prune: %w", err)
		}
	}
	scheduler.Start()

	if d.configFilePath != "" {
		watcher, err := NewConfigWatcher(d.configFilePath, d)
		if err != nil {
			slog.Warn("Config watching disabled", logfields.Error(err))
		} else {
			d.configWatcher = watcher
			if err := watcher.Start(ctx); err != nil {
				slog.Warn("Config watching disabled", logfields.Error(err))
				d.configWatcher = nil
			}
		}
	}

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		d.runEventLoop(ctx)
	}()
	go func() {
		defer d.wg.Done()
		d.runListener(ctx)
	}()

	if d.publisher != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runPublisher(ctx)
		}()
	}

	d.status.Store(StatusRunning)
	slog.Info("Daemon started", logfields.SessionID(d.sessionID))
	return nil
}

// Stop shuts the daemon down gracefully, flushing the open interval.
func (d *Daemon) Stop(ctx context.Context) error {
	d.status.Store(StatusStopping)
	slog.Info("Stopping daemon")

	d.stopOnce.Do(func() { close(d.stopChan) })

	if d.configWatcher != nil {
		if err := d.configWatcher.Stop(ctx); err != nil {
			slog.Warn("Failed to stop config watcher", logfields.Error(err))
		}
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			slog.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			slog.Warn("Failed to stop HTTP server", logfields.Error(err))
		}
	}

	// Wait for the loops so the final flush is the last write.
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Timed out waiting for daemon loops")
	}

	if d.tracker != nil {
		d.tracker.Flush(ctx)
	}
	if d.publisher != nil {
		d.publisher.Close()
	}
	d.bus.Close()
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			slog.Warn("Failed to close store", logfields.Error(err))
		}
	}

	d.status.Store(StatusStopped)
	slog.Info("Daemon stopped", logfields.Records(d.recordsWritten.Load()))
	return nil
}

// Write implements tracker.Sink: persist the record, account for it, and
// notify bus subscribers.
func (d *Daemon) Write(ctx context.Context, rec store.Record) error {
	if err := d.store.Insert(ctx, rec); err != nil {
		d.metrics.StoreError()
		return err
	}
	d.recordsWritten.Add(1)
	d.metrics.RecordWritten(rec.Duration)
	slog.Debug("Usage record written",
		logfields.App(rec.App),
		logfields.DurationMS(rec.Duration.Milliseconds()))

	if err := d.bus.Publish(ctx, events.RecordWritten{Record: rec}); err != nil {
		slog.Debug("Record event not delivered", logfields.Error(err))
	}
	return nil
}

// runEventLoop consumes compositor events from the bus and drives the tracker.
func (d *Daemon) runEventLoop(ctx context.Context) {
	focusCh, unsubFocus := events.Subscribe[events.WindowFocused](d.bus, 64)
	defer unsubFocus()
	closedCh, unsubClosed := events.Subscribe[events.WindowClosed](d.bus, 64)
	defer unsubClosed()
	idleCh, unsubIdle := events.Subscribe[events.IdleStateChanged](d.bus, 16)
	defer unsubIdle()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopChan:
			return
		case ev, ok := <-focusCh:
			if !ok {
				return
			}
			d.metrics.FocusChange()
			slog.Debug("Focus changed", logfields.WindowID(ev.WindowID), logfields.App(ev.App))
			d.tracker.FocusChanged(ctx, ev.WindowID, ev.App)
		case ev, ok := <-closedCh:
			if !ok {
				return
			}
			d.tracker.WindowClosed(ctx, ev.WindowID)
		case ev, ok := <-idleCh:
			if !ok {
				return
			}
			d.metrics.IdleTransition(ev.Idle)
			if ev.Idle {
				slog.Info("Seat went idle")
				d.tracker.Idle(ctx)
			} else {
				slog.Info("Seat resumed")
				d.tracker.Resume(ctx)
			}
		}
	}
}

// runPublisher forwards persisted records to NATS.
func (d *Daemon) runPublisher(ctx context.Context) {
	recordCh, unsub := events.Subscribe[events.RecordWritten](d.bus, 64)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopChan:
			return
		case ev, ok := <-recordCh:
			if !ok {
				return
			}
			if err := d.publisher.Publish(ctx, ev.Record); err != nil {
				d.metrics.PublishError()
				slog.Warn("Failed to publish usage record",
					logfields.App(ev.Record.App), logfields.Error(err))
			}
		}
	}
}

func (d *Daemon) runPrune(keepDays int) {
	pruneCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -keepDays)
	deleted, err := d.store.Prune(pruneCtx, cutoff)
	if err != nil {
		slog.Error("Retention prune failed", logfields.Error(err))
		return
	}
	slog.Info("Retention prune completed", logfields.Records(deleted), "cutoff", cutoff.Format("2006-01-02"))
}

// ReloadConfig applies a changed configuration. Only the normalization rules
// are hot-swappable; everything else needs a restart.
func (d *Daemon) ReloadConfig(newCfg *config.Config) error {
	if newCfg == nil {
		return fmt.Errorf("configuration is required")
	}

	d.mu.Lock()
	d.cfg = newCfg
	d.mu.Unlock()

	d.tracker.SetRules(tracker.Rules{
		Ignore: newCfg.Tracker.Ignore,
		Rename: newCfg.Tracker.Rename,
	})
	slog.Info("Configuration reloaded",
		"ignored_apps", len(newCfg.Tracker.Ignore),
		"renames", len(newCfg.Tracker.Rename))
	return nil
}

// GetConfig returns the current configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// GetStatus returns the daemon lifecycle status.
func (d *Daemon) GetStatus() Status {
	return d.status.Load().(Status)
}

// GetStartTime returns when Start was called.
func (d *Daemon) GetStartTime() time.Time { return d.startTime }

// SessionID returns the id stamped on this run's records.
func (d *Daemon) SessionID() string { return d.sessionID }

// RecordsWritten returns the number of records persisted this run.
func (d *Daemon) RecordsWritten() int64 { return d.recordsWritten.Load() }
