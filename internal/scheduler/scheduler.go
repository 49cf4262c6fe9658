package scheduler

import (
	"context"
	"fmt"

	"github.com/anirank/anirank/internal/catalog"
	"github.com/anirank/anirank/internal/models"
	"github.com/anirank/anirank/internal/tierlist"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const trendingWarmLimit = 20

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron    *cron.Cron
	gateway *catalog.Gateway
	db      *models.Database
	logger  *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(gateway *catalog.Gateway, db *models.Database, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		gateway: gateway,
		db:      db,
		logger:  logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 30 minutes: keep the trending page warm so the most common
	// request never pays the upstream latency
	_, err := s.cron.AddFunc("*/30 * * * *", func() {
		s.runCacheWarm()
	})
	if err != nil {
		return fmt.Errorf("failed to add cache warm job: %w", err)
	}

	// Every hour: repair stored lists that are public without a share token
	_, err = s.cron.AddFunc("0 * * * *", func() {
		s.runShareAudit()
	})
	if err != nil {
		return fmt.Errorf("failed to add share audit job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Warm the cache immediately on boot
	go s.runCacheWarm()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runCacheWarm fetches the first trending page into the request cache
func (s *Scheduler) runCacheWarm() {
	s.logger.Debug("Running trending cache warm")

	list, err := s.gateway.Top(context.Background(), trendingWarmLimit, 1)
	if err != nil {
		s.logger.WithError(err).Warn("Cache warm failed")
		return
	}
	s.logger.WithField("count", len(list.Items)).Debug("Trending cache warmed")
}

// runShareAudit scans every stored list and restores the invariant that
// a public list carries a share token.
func (s *Scheduler) runShareAudit() {
	s.logger.Debug("Running share token audit")

	lists, err := s.db.AllTierLists()
	if err != nil {
		s.logger.WithError(err).Error("Share audit failed to list tier lists")
		return
	}

	repaired := 0
	for _, list := range lists {
		if !list.IsPublic || list.ShareID != "" {
			continue
		}

		list.ShareID = tierlist.NewShareID()
		if err := s.db.SaveTierList(list); err != nil {
			s.logger.WithError(err).WithField("list_id", list.ID).Error("Failed to repair shared list")
			continue
		}
		s.logger.WithField("list_id", list.ID).Warn("Repaired public list without share token")
		repaired++
	}

	if repaired > 0 {
		s.logger.WithField("repaired", repaired).Info("Share token audit completed")
	}
}
