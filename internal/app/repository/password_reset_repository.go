package repository

import (
	"time"

	"github.com/hyeonlab/accounts-backend/internal/app/model"
	"github.com/hyeonlab/accounts-backend/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(reset *model.PasswordReset) error
	FindLatestByEmail(email string) (*model.PasswordReset, error)
	DeleteByEmail(email string) error
	DeleteByID(id uint) error
	DeleteExpired(olderThan time.Duration) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(reset *model.PasswordReset) error {
	logger.Debug("Creating password reset in database", map[string]interface{}{
		"email": reset.Email,
	})

	if err := r.db.Create(reset).Error; err != nil {
		logger.Error("Failed to create password reset in database", err, map[string]interface{}{
			"email": reset.Email,
		})
		return err
	}
	return nil
}

// FindLatestByEmail returns the newest reset record for an email. Older
// records exist only transiently and are never redeemable.
func (r *passwordResetRepository) FindLatestByEmail(email string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.Where("email = ?", email).Order("created_at DESC").First(&reset).Error
	if err != nil {
		logger.Debug("Failed to find password reset by email in database", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) DeleteByEmail(email string) error {
	result := r.db.Where("email = ?", email).Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete password resets for email from database", result.Error, map[string]interface{}{
			"email": email,
		})
		return result.Error
	}

	logger.Debug("Password resets deleted for email", map[string]interface{}{
		"email": email,
		"count": result.RowsAffected,
	})
	return nil
}

func (r *passwordResetRepository) DeleteByID(id uint) error {
	if err := r.db.Delete(&model.PasswordReset{}, id).Error; err != nil {
		logger.Error("Failed to delete password reset from database", err, map[string]interface{}{
			"id": id,
		})
		return err
	}
	return nil
}

// DeleteExpired removes records older than the given lifetime
func (r *passwordResetRepository) DeleteExpired(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result := r.db.Where("created_at < ?", cutoff).Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password resets from database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Expired password resets deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
