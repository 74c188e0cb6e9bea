package errors

// Error code constants, CATEGORY_SPECIFIC_DETAIL. Clients map these to their
// own copy; the message field stays human-readable.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // bad token
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthEmailNotVerified   = "AUTH_EMAIL_NOT_VERIFIED"  // unverified email
	AuthAlreadyVerified    = "AUTH_ALREADY_VERIFIED"    // already verified
	AuthInvalidOldPassword = "AUTH_INVALID_OLD_PASSWORD"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN" // no access

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
