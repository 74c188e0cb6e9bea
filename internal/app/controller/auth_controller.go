package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyeonlab/accounts-backend/internal/app/service"
	apperrors "github.com/hyeonlab/accounts-backend/internal/errors"
	"github.com/hyeonlab/accounts-backend/internal/middleware"
	"github.com/hyeonlab/accounts-backend/internal/validation"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

// Register handles user registration
// POST /api/v1/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req validation.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Malformed registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	errs, err := validation.Run(&req,
		validation.UniqueEmail(ctrl.authService.EmailTaken, req.Email, 0),
	)
	if err != nil {
		log.Error("Registration validation failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	if errs.Any() {
		apperrors.RespondWithValidationError(c, errs)
		return
	}

	user, err := ctrl.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		// The uniqueness refinement is racy; the datastore constraint is the
		// backstop
		if errors.Is(err, service.ErrEmailAlreadyExists) || apperrors.IsUniqueViolation(err, "email") {
			apperrors.RespondWithValidationError(c, map[string]string{
				"email": "Email is already taken",
			})
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

// Login handles user login
// POST /api/v1/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req validation.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Malformed login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	errs, err := validation.Run(&req)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	if errs.Any() {
		apperrors.RespondWithValidationError(c, errs)
		return
	}

	token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid credentials")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
	})
}

// VerifyEmail redeems a verification link
// GET /api/v1/email/verify/:hash
func (ctrl *AuthController) VerifyEmail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token := c.Param("hash")

	if err := ctrl.authService.VerifyEmail(token); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVerified):
			apperrors.BadRequest(c, apperrors.AuthAlreadyVerified, "Email already verified")
		case errors.Is(err, service.ErrInvalidVerificationToken), errors.Is(err, service.ErrUserNotFound):
			// Uniform message regardless of which check failed
			apperrors.BadRequest(c, apperrors.AuthTokenInvalid, "Invalid or expired verification link")
		default:
			log.Error("Email verification failed", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email verified successfully",
	})
}

// ResendVerification mails a fresh verification link to the caller
// POST /api/v1/email/resend
func (ctrl *AuthController) ResendVerification(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "No token provided")
		return
	}

	if err := ctrl.authService.ResendVerification(userID); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVerified):
			apperrors.BadRequest(c, apperrors.AuthAlreadyVerified, "Email already verified")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		default:
			log.Error("Failed to resend verification email", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Verification email resent",
	})
}

// ForgotPassword issues a password reset link
// POST /api/v1/password/email
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req validation.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	errs, err := validation.Run(&req)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	if errs.Any() {
		apperrors.RespondWithValidationError(c, errs)
		return
	}

	resetToken, err := ctrl.passwordResetService.RequestReset(req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to process password reset request", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Password reset email sent",
		"resetToken": resetToken,
	})
}

// ResetPassword redeems a reset token
// POST /api/v1/password/reset
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req validation.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	errs, err := validation.Run(&req)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	if errs.Any() {
		apperrors.RespondWithValidationError(c, errs)
		return
	}

	if err := ctrl.passwordResetService.ResetPassword(req.Token, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken),
			errors.Is(err, service.ErrResetTokenExpired),
			errors.Is(err, service.ErrUserNotFound):
			apperrors.BadRequest(c, apperrors.AuthTokenInvalid, "Invalid or expired token")
		default:
			log.Error("Failed to reset password", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successfully",
	})
}

// GetMe returns the authenticated user
// GET /api/v1/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	user, exists := middleware.GetUser(c)
	if !exists {
		apperrors.Unauthorized(c, "No token provided")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":                user.ID,
			"email":             user.Email,
			"name":              user.Name,
			"status":            user.Status,
			"email_verified_at": user.EmailVerifiedAt,
		},
	})
}

// ChangePassword rotates the authenticated user's password
// POST /api/v1/change-password
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "No token provided")
		return
	}

	var req validation.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	errs, err := validation.Run(&req)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	if errs.Any() {
		apperrors.RespondWithValidationError(c, errs)
		return
	}

	if err := ctrl.authService.ChangePassword(userID, req.OldPassword, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOldPassword):
			apperrors.BadRequest(c, apperrors.AuthInvalidOldPassword, "Invalid old password")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		default:
			log.Error("Failed to change password", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password changed successfully",
	})
}

// Logout acknowledges a logout. Session tokens are stateless, so there is
// nothing to revoke server-side; clients discard the token.
// POST /api/v1/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if userID, exists := middleware.GetUserID(c); exists {
		log.Info("User logged out", map[string]interface{}{
			"user_id": userID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}
