// Package maintenance drives periodic expired-entry sweeps against the
// coordinator on a cron schedule. The coordinator itself never schedules
// its own cleanup.
package maintenance

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweeper is the subset of the coordinator the scheduler drives.
type Sweeper interface {
	Cleanup() (int, error)
}

// Scheduler runs Cleanup on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *slog.Logger
}

// NewScheduler creates a stopped scheduler around sweeper.
func NewScheduler(sweeper Sweeper, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start registers the sweep under the given cron spec (standard 5-field
// syntax or descriptors like "@every 10m") and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}

	s.cron.Start()
	s.logger.Info("Cleanup scheduler started", "schedule", spec)
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cleanup scheduler stopped")
}

func (s *Scheduler) sweep() {
	removed, err := s.sweeper.Cleanup()
	if err != nil {
		s.logger.Error("Scheduled cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("Scheduled cleanup removed expired entries", "removed", removed)
	}
}
