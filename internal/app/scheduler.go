/**
 * @description
 * Cron scheduler for the portal's background jobs: the advisory rate-limiter
 * purge sweep and the monthly plan credit grant.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/middleware"
)

// Job schedules. The purge sweep is best-effort and never affects
// correctness; the grant runs on the first of each month.
const (
	purgeSchedule        = "*/5 * * * *"
	monthlyGrantSchedule = "0 0 1 * *"
)

// Scheduler manages the portal's cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	limiters []*middleware.RateLimiter
	logger   *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(service *Service, limiters []*middleware.RateLimiter, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		service:  service,
		limiters: limiters,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(purgeSchedule, s.purgeLimiters); err != nil {
		s.logger.Error("failed to schedule rate-limiter purge", "error", err)
	} else {
		s.logger.Info("scheduled rate-limiter purge", "schedule", purgeSchedule)
	}

	if _, err := s.cron.AddFunc(monthlyGrantSchedule, s.grantMonthlyCredits); err != nil {
		s.logger.Error("failed to schedule monthly credit grant", "error", err)
	} else {
		s.logger.Info("scheduled monthly credit grant", "schedule", monthlyGrantSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) purgeLimiters() {
	for _, rl := range s.limiters {
		rl.Purge()
	}
}

func (s *Scheduler) grantMonthlyCredits() {
	if err := s.service.GrantMonthlyCredits(context.Background()); err != nil {
		s.logger.Error("monthly credit grant failed", "error", err)
	}
}
