package repositories

import "errors"

var (
	// ErrNotFound is returned when no user matches, including a conditional
	// update whose token no longer matches.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an insert collides with an existing email.
	ErrEmailTaken = errors.New("email already registered")
)
