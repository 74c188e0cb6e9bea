package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo is a parsed datastore/runtime error
type ErrorInfo struct {
	Code    string
	Message string
}

// IsUniqueViolation reports whether err is a unique-constraint violation on the
// named column. Postgres surfaces these as pq.Error 23505; the sqlite driver
// used in tests reports a "UNIQUE constraint failed" string.
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return strings.Contains(pqErr.Constraint, column) || strings.Contains(pqErr.Detail, column)
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "duplicate key") {
		return strings.Contains(errStr, column)
	}
	return false
}

// ParseError converts a low-level error into a user-safe code and message.
// context names the operation for the fallback message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An unexpected error occurred",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Resource not found",
		}
	}

	if IsUniqueViolation(err, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Email is already taken",
		}
	}

	errStrLower := strings.ToLower(err.Error())
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Failed to " + context,
	}
}

// ParseAndRespond parses err and writes the envelope with the given status
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, statusCode, info.Code, info.Message)
}
