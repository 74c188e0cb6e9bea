package service

import (
	"errors"
	"time"

	"github.com/hyeonlab/accounts-backend/internal/app/model"
	"github.com/hyeonlab/accounts-backend/internal/app/repository"
	"github.com/hyeonlab/accounts-backend/internal/mailer"
	"github.com/hyeonlab/accounts-backend/pkg/logger"
	"github.com/hyeonlab/accounts-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid password reset token")
	ErrResetTokenExpired = errors.New("password reset token expired")
)

type PasswordResetService interface {
	RequestReset(email string) (string, error)
	ResetPassword(token, email, newPassword string) error
	PurgeExpired() (int64, error)
}

type passwordResetService struct {
	userRepo    repository.UserRepository
	resetRepo   repository.PasswordResetRepository
	mail        mailer.Mailer
	resetExpiry time.Duration
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	mail mailer.Mailer,
	resetExpiry time.Duration,
) PasswordResetService {
	return &passwordResetService{
		userRepo:    userRepo,
		resetRepo:   resetRepo,
		mail:        mail,
		resetExpiry: resetExpiry,
	}
}

// RequestReset issues a fresh reset secret for the given email. Only the
// bcrypt hash of the secret is persisted; the raw secret travels in the
// email link. Issuing a new secret invalidates any earlier one for the
// same email.
func (s *passwordResetService) RequestReset(email string) (string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return "", ErrUserNotFound
		}
		return "", err
	}

	secret, err := util.GenerateResetSecret()
	if err != nil {
		logger.Error("Failed to generate reset secret", err, nil)
		return "", err
	}

	hashedSecret, err := util.HashPasswordCost(secret, util.DefaultHashCost)
	if err != nil {
		return "", err
	}

	// One live reset record per email
	if err := s.resetRepo.DeleteByEmail(email); err != nil {
		return "", err
	}

	reset := &model.PasswordReset{
		Email: email,
		Token: hashedSecret,
	}
	if err := s.resetRepo.Create(reset); err != nil {
		logger.Error("Failed to persist password reset record", err, map[string]interface{}{
			"email": email,
		})
		return "", err
	}

	if err := s.mail.SendPasswordResetEmail(user.Name, user.Email, secret); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return "", err
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id": user.ID,
	})
	return secret, nil
}

// ResetPassword redeems a reset secret. Expired records are deleted on
// sight; a successful reset deletes every reset record for the email.
func (s *passwordResetService) ResetPassword(token, email, newPassword string) error {
	reset, err := s.resetRepo.FindLatestByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset failed: no record for email", map[string]interface{}{
				"email": email,
			})
			return ErrInvalidResetToken
		}
		return err
	}

	if time.Since(reset.CreatedAt) > s.resetExpiry {
		if err := s.resetRepo.DeleteByID(reset.ID); err != nil {
			return err
		}
		logger.Warn("Password reset failed: token expired", map[string]interface{}{
			"email": email,
		})
		return ErrResetTokenExpired
	}

	if !util.VerifyPassword(reset.Token, token) {
		logger.Warn("Password reset failed: token mismatch", map[string]interface{}{
			"email": email,
		})
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update password after reset", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.resetRepo.DeleteByEmail(email); err != nil {
		return err
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// PurgeExpired removes reset records older than the configured expiry.
// Called from the scheduler.
func (s *passwordResetService) PurgeExpired() (int64, error) {
	return s.resetRepo.DeleteExpired(s.resetExpiry)
}
