package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Rescanner runs a task periodically. Runs never overlap; a run that is
// still busy when the next one is due pushes it back.
type Rescanner struct {
	scheduler gocron.Scheduler
	interval  time.Duration
}

// NewRescanner schedules task every interval. Nothing runs until Start.
func NewRescanner(interval time.Duration, task func()) (*Rescanner, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("rescan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("creating rescan job: %w", err)
	}
	return &Rescanner{scheduler: s, interval: interval}, nil
}

// Start begins the periodic runs.
func (r *Rescanner) Start() {
	slog.Info("Starting rescanner", slog.Duration("interval", r.interval))
	r.scheduler.Start()
}

// Stop shuts the scheduler down and waits for a running task to finish.
func (r *Rescanner) Stop() error {
	slog.Info("Stopping rescanner")
	return r.scheduler.Shutdown()
}
