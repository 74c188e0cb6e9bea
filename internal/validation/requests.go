package validation

// Request schemas for every mutating endpoint. Field order matters: each field
// keeps its first violation, and rules fire in declaration order.

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,max=255,email"`
	Password             string `json:"password" validate:"required,min=8,max=16"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,max=255,email"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token" validate:"required"`
	Email                string `json:"email" validate:"required,max=255,email"`
	Password             string `json:"password" validate:"required,min=8,max=16"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type ChangePasswordRequest struct {
	OldPassword          string `json:"old_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8,max=16"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"required,min=8,max=16"`
}

// UpdateUserRequest leaves the password optional: an absent password means
// "keep the current one".
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=16"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
}
