package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error envelope. Message is a string for most
// failures and a field→message map for validation failures.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message interface{} `json:"message"`
}

// RespondWithError writes the error envelope with the given status, code and message
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// Shorthand helpers for the common cases

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Forbidden"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "An unexpected error occurred. Please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithValidationError writes a 400 whose message is the field→error map
func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	RespondWithError(c, http.StatusBadRequest, ValidationInvalidInput, fields)
}
