package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"accountflow/internal/models"
)

// memoryUserRepository keeps users in process memory. It backs the "memory"
// database driver used for local runs and tests.
type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memoryUserRepository) GetByVerificationToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return equalPtr(u.VerificationToken, token) })
}

func (r *memoryUserRepository) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return equalPtr(u.ResetToken, token) })
}

func (r *memoryUserRepository) SetResetToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return r.update(userID, func(u *models.User) bool {
		u.ResetToken = &token
		u.ResetTokenExpiry = &expiresAt
		return true
	})
}

func (r *memoryUserRepository) MarkVerified(_ context.Context, userID uuid.UUID, token string) error {
	return r.update(userID, func(u *models.User) bool {
		if !equalPtr(u.VerificationToken, token) {
			return false
		}
		u.IsVerified = true
		u.VerificationToken = nil
		u.VerificationTokenExpiry = nil
		return true
	})
}

func (r *memoryUserRepository) ResetPassword(_ context.Context, userID uuid.UUID, token, passwordHash string) error {
	return r.update(userID, func(u *models.User) bool {
		if !equalPtr(u.ResetToken, token) {
			return false
		}
		u.PasswordHash = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpiry = nil
		return true
	})
}

func (r *memoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) update(id uuid.UUID, apply func(*models.User) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	next := cloneUser(u)
	if !apply(next) {
		return ErrNotFound
	}
	next.UpdatedAt = time.Now()
	r.byID[id] = next
	return nil
}

func equalPtr(p *string, v string) bool {
	return p != nil && *p == v
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	if u.VerificationToken != nil {
		s := *u.VerificationToken
		cp.VerificationToken = &s
	}
	if u.VerificationTokenExpiry != nil {
		t := *u.VerificationTokenExpiry
		cp.VerificationTokenExpiry = &t
	}
	if u.ResetToken != nil {
		s := *u.ResetToken
		cp.ResetToken = &s
	}
	if u.ResetTokenExpiry != nil {
		t := *u.ResetTokenExpiry
		cp.ResetTokenExpiry = &t
	}
	return &cp
}
