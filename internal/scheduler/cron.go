package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/scorarr/scorarr/internal/config"
	"github.com/scorarr/scorarr/internal/controllers"
	"github.com/scorarr/scorarr/internal/models"
	"github.com/sirupsen/logrus"
)

// Scheduler runs periodic batch sweeps and remembers the last run's summary
// for the status endpoint. Each sweep gets a fresh orchestrator so completed
// items from earlier sweeps never leak into later summaries.
type Scheduler struct {
	cron     *cron.Cron
	catalog  controllers.CatalogClient
	notifier controllers.Notifier
	cfg      *config.Config
	logger   *logrus.Logger

	mu        sync.Mutex
	lastRun   *models.RunSummary
	lastRunAt time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(catalog controllers.CatalogClient, notifier controllers.Notifier, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		catalog:  catalog,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the sweep on the configured cron expression and kicks off
// an initial sweep immediately.
func (s *Scheduler) Start() error {
	s.logger.WithField("cron", s.cfg.ScheduleCron).Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.cfg.ScheduleCron, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	s.cron.Start()

	go s.runSweep()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// LastRun returns the most recent sweep summary, if any
func (s *Scheduler) LastRun() (*models.RunSummary, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastRunAt
}

// runSweep executes one batch reconciliation sweep
func (s *Scheduler) runSweep() {
	s.logger.Info("Running scheduled reconciliation sweep")
	ctx := context.Background()

	resolver := controllers.NewResolver(s.catalog, s.notifier, s.cfg, s.logger)
	orch := controllers.NewOrchestrator(s.catalog, resolver, s.cfg, s.logger)

	count, err := orch.LoadEligibleItems(ctx, s.cfg.Limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load eligible movies")
		return
	}
	if count == 0 {
		s.logger.Debug("No eligible movies to reconcile")
		s.record(&models.RunSummary{StartedAt: time.Now(), FinishedAt: time.Now()})
		return
	}

	summary := orch.Run(ctx)
	if summary != nil {
		s.record(summary)
	}
}

func (s *Scheduler) record(summary *models.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = summary
	s.lastRunAt = time.Now()
}
