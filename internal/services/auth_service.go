package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) error
	IssueSessionToken(userID uuid.UUID) (string, time.Time, error)
	// ParseSessionToken checks signature and expiry and returns the user id.
	ParseSessionToken(token string) (uuid.UUID, error)
}

// SessionClaims is the payload of the accessToken cookie.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type authService struct {
	secret     []byte
	sessionTTL time.Duration
	cost       int
}

// NewAuthService signs sessions with secret (HS256). A zero bcryptCost uses
// bcrypt.DefaultCost.
func NewAuthService(secret string, sessionTTL time.Duration, bcryptCost int) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		cost:       bcryptCost,
	}
}

func (s *authService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", invalid(msgPasswordTooLong)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *authService) ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *authService) IssueSessionToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.sessionTTL)
	claims := &SessionClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

func (s *authService) ParseSessionToken(tokenStr string) (uuid.UUID, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		// HMAC only
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return id, nil
}
