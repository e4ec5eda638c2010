package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_HashAndCompare(t *testing.T) {
	s := newTestAuth()

	hash, err := s.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, s.ComparePassword(hash, "secret1"))
	assert.Error(t, s.ComparePassword(hash, "secret2"))

	other, err := s.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}

func TestAuthService_IssueSessionToken(t *testing.T) {
	s := NewAuthService("k", 24*time.Hour, 0)
	id := uuid.New()

	signed, exp, err := s.IssueSessionToken(id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte("k"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, id.String(), claims.UserID)

	_, err = jwt.ParseWithClaims(signed, &SessionClaims{}, func(*jwt.Token) (any, error) {
		return []byte("wrong"), nil
	})
	assert.Error(t, err)
}

func TestAuthService_ParseSessionToken(t *testing.T) {
	s := NewAuthService("k", time.Hour, bcrypt.MinCost)
	id := uuid.New()

	signed, _, err := s.IssueSessionToken(id)
	require.NoError(t, err)

	got, err := s.ParseSessionToken(signed)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = NewAuthService("other", time.Hour, bcrypt.MinCost).ParseSessionToken(signed)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.ParseSessionToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	expired, _, err := NewAuthService("k", -time.Minute, bcrypt.MinCost).IssueSessionToken(id)
	require.NoError(t, err)
	_, err = s.ParseSessionToken(expired)
	assert.ErrorIs(t, err, ErrInvalidSession)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{UserID: id.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.ParseSessionToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthService_HashPasswordTooLong(t *testing.T) {
	_, err := newTestAuth().HashPassword(strings.Repeat("a", 73))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Password must be at most 72 bytes", ve.Message)
}
