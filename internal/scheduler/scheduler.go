// Package scheduler drives the periodic follow-up reminder scan.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/techversity/crm-api/internal/service"
)

// Scheduler owns the cron engine behind the reminder scanner.
type Scheduler struct {
	engine    *cron.Cron
	reminders service.ReminderService
	cronSpec  string
	logger    zerolog.Logger
}

// New builds a scheduler that runs the reminder scan on the given cron spec.
// Overlapping ticks are skipped so a slow scan never runs twice concurrently.
func New(reminders service.ReminderService, cronSpec string, logger zerolog.Logger) *Scheduler {
	scoped := logger.With().Str("component", "scheduler").Logger()

	return &Scheduler{
		engine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		reminders: reminders,
		cronSpec:  cronSpec,
		logger:    scoped,
	}
}

// Start registers the reminder job and launches the cron engine.
func (s *Scheduler) Start() error {
	_, err := s.engine.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()

		if err := s.reminders.ProcessDueFollowUps(ctx); err != nil {
			s.logger.Error().Err(err).Msg("reminder scan failed")
		}
	})
	if err != nil {
		return err
	}

	s.engine.Start()
	s.logger.Info().Str("cron_spec", s.cronSpec).Msg("reminder scheduler started")

	return nil
}

// Stop halts the engine and waits for any in-flight scan to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.engine.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("shutdown deadline reached before reminder scan finished")
	}
	s.logger.Info().Msg("reminder scheduler stopped")
}
