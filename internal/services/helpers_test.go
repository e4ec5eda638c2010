package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"accountflow/internal/models"
	"accountflow/internal/repositories"
)

type dispatched struct {
	kind  NotificationKind
	email string
	token string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []dispatched
}

func (n *fakeNotifier) Dispatch(kind NotificationKind, email, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, dispatched{kind: kind, email: email, token: token})
}

func (n *fakeNotifier) all() []dispatched {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dispatched(nil), n.sent...)
}

// stubRepo overrides selected repository calls.
type stubRepo struct {
	repositories.UserRepository
	getByEmail func(ctx context.Context, email string) (*models.User, error)
	create     func(ctx context.Context, u *models.User) error
}

func (r *stubRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.getByEmail != nil {
		return r.getByEmail(ctx, email)
	}
	return r.UserRepository.GetByEmail(ctx, email)
}

func (r *stubRepo) Create(ctx context.Context, u *models.User) error {
	if r.create != nil {
		return r.create(ctx, u)
	}
	return r.UserRepository.Create(ctx, u)
}

func newTestAuth() AuthService {
	return NewAuthService("test-secret", 24*time.Hour, bcrypt.MinCost)
}

// seedUser stores a user directly, bypassing signup.
func seedUser(t *testing.T, repo repositories.UserRepository, email, password string, mutate func(*models.User)) *models.User {
	t.Helper()
	hash, err := newTestAuth().HashPassword(password)
	require.NoError(t, err)

	u := &models.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        email,
		PasswordHash: hash,
	}
	if mutate != nil {
		mutate(u)
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
