package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
)

// CartCleanupScheduler purges carts nobody has touched for the configured
// idle window. A stale cart would otherwise check out at yesterday's prices.
type CartCleanupScheduler struct {
	cron       *cron.Cron
	cartRepo   repository.CartRepository
	idleExpiry time.Duration
}

func NewCartCleanupScheduler(cartRepo repository.CartRepository, idleExpiry time.Duration) *CartCleanupScheduler {
	return &CartCleanupScheduler{
		cron:       cron.New(),
		cartRepo:   cartRepo,
		idleExpiry: idleExpiry,
	}
}

// Start schedules the cleanup at the top of every hour.
func (s *CartCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		cutoff := time.Now().Add(-s.idleExpiry)
		logger.Info("Starting idle cart cleanup", map[string]interface{}{
			"cutoff": cutoff.Format(time.RFC3339),
		})

		purged, err := s.cartRepo.DeleteIdleBefore(cutoff)
		if err != nil {
			logger.Error("Idle cart cleanup failed", err, nil)
			return
		}

		logger.Info("Idle cart cleanup finished", map[string]interface{}{
			"purged": purged,
		})
	})

	if err != nil {
		logger.Error("Failed to schedule idle cart cleanup", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Cart cleanup scheduler started (hourly)", map[string]interface{}{
		"idle_expiry": s.idleExpiry.String(),
	})

	return nil
}

func (s *CartCleanupScheduler) Stop() {
	logger.Info("Stopping cart cleanup scheduler", nil)
	s.cron.Stop()
}
