package scheduler

import (
	"github.com/hyeonlab/accounts-backend/internal/app/service"
	"github.com/hyeonlab/accounts-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ResetCleanupScheduler purges expired password-reset records on a schedule.
// Expired records are also deleted lazily at redemption time; the job keeps
// the table from accumulating rows for links nobody clicks.
type ResetCleanupScheduler struct {
	cron         *cron.Cron
	resetService service.PasswordResetService
}

func NewResetCleanupScheduler(resetService service.PasswordResetService) *ResetCleanupScheduler {
	return &ResetCleanupScheduler{
		cron:         cron.New(),
		resetService: resetService,
	}
}

// Start registers the hourly purge job
func (s *ResetCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		purged, err := s.resetService.PurgeExpired()
		if err != nil {
			logger.Error("Failed to purge expired password reset records", err)
			return
		}
		if purged > 0 {
			logger.Info("Purged expired password reset records", map[string]interface{}{
				"count": purged,
			})
		}
	})

	if err != nil {
		logger.Error("Failed to add cron job for reset record cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Password reset cleanup scheduler started (hourly)", nil)

	return nil
}

func (s *ResetCleanupScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Password reset cleanup scheduler stopped", nil)
}
