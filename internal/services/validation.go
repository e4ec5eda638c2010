package services

import (
	"regexp"
	"strings"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer input
	maxPasswordBytes = 72
)

const msgPasswordTooLong = "Password must be at most 72 bytes"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}
