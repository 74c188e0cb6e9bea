package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hyeonlab/accounts-backend/internal/app/model"
	"github.com/hyeonlab/accounts-backend/internal/app/repository"
	"github.com/hyeonlab/accounts-backend/internal/errors"
	"github.com/hyeonlab/accounts-backend/pkg/util"
)

// Context keys for the authenticated identity
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

type AuthMiddleware struct {
	jwtSecret string
	userRepo  repository.UserRepository
}

func NewAuthMiddleware(jwtSecret string, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		userRepo:  userRepo,
	}
}

// Authenticate validates the bearer token and loads its user. Only
// session tokens pass; verification tokens are rejected even when
// otherwise valid.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "No token provided")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Invalid or expired token")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid or expired token")
			}
			c.Abort()
			return
		}

		if claims.Purpose != util.PurposeLogin {
			log.Warn("Token purpose mismatch", map[string]interface{}{
				"path":    c.Request.URL.Path,
				"purpose": claims.Purpose,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(claims.UserID)
		if err != nil {
			// Token outlived its user
			log.Warn("Token user no longer exists", map[string]interface{}{
				"path":    c.Request.URL.Path,
				"user_id": claims.UserID,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
		})

		c.Next()
	}
}

// RequireVerified rejects users who have not verified their email.
// Must run after Authenticate.
func (m *AuthMiddleware) RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		user, ok := GetUser(c)
		if !ok {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "No token provided")
			c.Abort()
			return
		}

		if !user.Verified() {
			log.Warn("Unverified user blocked", map[string]interface{}{
				"user_id": user.ID,
				"path":    c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthEmailNotVerified, "Email not verified")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUser extracts the authenticated user from context
func GetUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	return user.(*model.User), true
}
