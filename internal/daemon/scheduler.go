package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Prune runs once a day in the quiet early morning.
const pruneHour, pruneMinute = 3, 30

// Scheduler wraps gocron for the daemon's periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s}, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleCheckpoint runs fn on a fixed interval to persist the open
// interval. Returns the job id.
func (s *Scheduler) ScheduleCheckpoint(interval time.Duration, fn func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName("tracker-checkpoint"),
	)
	if err != nil {
		return "", fmt.Errorf("create checkpoint job: %w", err)
	}
	return job.ID().String(), nil
}

// ScheduleDailyPrune runs fn once a day for retention pruning.
func (s *Scheduler) ScheduleDailyPrune(fn func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(pruneHour, pruneMinute, 0))),
		gocron.NewTask(fn),
		gocron.WithName("retention-prune"),
	)
	if err != nil {
		return "", fmt.Errorf("create prune job: %w", err)
	}
	return job.ID().String(), nil
}
