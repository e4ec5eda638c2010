package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidSession     = errors.New("invalid or expired session")

	ErrResetTokenRequired = errors.New("reset token is required")
	ErrResetTokenUnknown  = errors.New("no user holds this reset token")
	ErrResetLinkInvalid   = errors.New("invalid or expired reset link")

	ErrVerifyTokenRequired = errors.New("verification token is required")
	ErrVerifyTokenUnknown  = errors.New("no user holds this verification token")
	ErrVerifyLinkInvalid   = errors.New("invalid or expired verification link")
	ErrAlreadyVerified     = errors.New("user already verified")
	ErrVerifyLinkExpired   = errors.New("verification link has expired")
)

// ValidationError carries a user-correctable message meant for the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
