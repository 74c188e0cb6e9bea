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
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification link")
	ErrAlreadyVerified          = errors.New("email already verified")
	ErrInvalidOldPassword       = errors.New("invalid old password")
)

type AuthService interface {
	Register(name, email, password string) (*model.User, error)
	Login(email, password string) (string, error)
	VerifyEmail(token string) error
	ResendVerification(userID uint) error
	ChangePassword(userID uint, oldPassword, newPassword string) error
	GetUserByID(id uint) (*model.User, error)
	EmailTaken(email string, excludeID uint) (bool, error)
}

type authService struct {
	userRepo      repository.UserRepository
	mail          mailer.Mailer
	jwtSecret     string
	sessionExpiry time.Duration
	verifyExpiry  time.Duration
	resendExpiry  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	jwtSecret string,
	sessionExpiry, verifyExpiry, resendExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		mail:          mail,
		jwtSecret:     jwtSecret,
		sessionExpiry: sessionExpiry,
		verifyExpiry:  verifyExpiry,
		resendExpiry:  resendExpiry,
	}
}

// Register creates an unverified user and emails a verification link. A mail
// failure after the user row exists does not roll anything back; the user can
// request a resend.
func (s *authService) Register(name, email, password string) (*model.User, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	taken, err := s.userRepo.EmailTaken(email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Status:       model.StatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}

	verifyToken, err := util.GenerateToken(user.ID, util.PurposeRegister, s.jwtSecret, s.verifyExpiry)
	if err != nil {
		logger.Error("Failed to generate verification token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	if err := s.mail.SendVerificationEmail(user.Name, user.Email, verifyToken); err != nil {
		// User record stays; a resend can recover from here
		logger.Warn("Failed to send verification email", map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
			"error":   err.Error(),
		})
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, nil
}

// Login returns a session token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *authService) Login(email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, util.PurposeLogin, s.jwtSecret, s.sessionExpiry)
	if err != nil {
		logger.Error("Failed to generate session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, nil
}

// VerifyEmail redeems a registration token. The token is single-use by virtue
// of the verified flag: a second redemption fails with ErrAlreadyVerified.
func (s *authService) VerifyEmail(token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		logger.Warn("Email verification failed: bad token", map[string]interface{}{
			"error": err.Error(),
		})
		return ErrInvalidVerificationToken
	}
	if claims.Purpose != util.PurposeRegister {
		logger.Warn("Email verification failed: purpose mismatch", map[string]interface{}{
			"purpose": claims.Purpose,
		})
		return ErrInvalidVerificationToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Verified() {
		return ErrAlreadyVerified
	}

	now := time.Now()
	user.EmailVerifiedAt = &now
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to mark email as verified", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Email verified successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ResendVerification mints a fresh short-lived verification token for an
// authenticated, still-unverified user.
func (s *authService) ResendVerification(userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Verified() {
		return ErrAlreadyVerified
	}

	verifyToken, err := util.GenerateToken(user.ID, util.PurposeRegister, s.jwtSecret, s.resendExpiry)
	if err != nil {
		return err
	}

	if err := s.mail.SendVerificationEmail(user.Name, user.Email, verifyToken); err != nil {
		logger.Error("Failed to resend verification email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Verification email resent", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ChangePassword rotates the password after checking the old one. A wrong old
// password leaves the stored hash untouched.
func (s *authService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, oldPassword) {
		logger.Warn("Change password failed: old password mismatch", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrInvalidOldPassword
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Password changed successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) EmailTaken(email string, excludeID uint) (bool, error) {
	return s.userRepo.EmailTaken(email, excludeID)
}
