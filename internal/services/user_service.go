package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"accountflow/internal/metrics"
	"accountflow/internal/models"
	"accountflow/internal/repositories"
	"accountflow/internal/utils"
)

type UserService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	// Login returns the user and a signed session token. Unknown email and
	// wrong password both yield ErrInvalidCredentials.
	Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	repo      repositories.UserRepository
	auth      AuthService
	notifier  Notifier
	metrics   metrics.Recorder
	verifyTTL time.Duration
}

func NewUserService(repo repositories.UserRepository, auth AuthService, notifier Notifier, rec metrics.Recorder, verifyTTL time.Duration) UserService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &userService{
		repo:      repo,
		auth:      auth,
		notifier:  notifier,
		metrics:   rec,
		verifyTTL: verifyTTL,
	}
}

func (s *userService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" {
		s.metrics.RecordSignup(metrics.OutcomeRejected)
		return nil, invalid("All fields (name, email, password) are required")
	}
	if !validEmail(email) {
		s.metrics.RecordSignup(metrics.OutcomeRejected)
		return nil, invalid("Invalid email format")
	}
	if len(req.Password) < minPasswordLength {
		s.metrics.RecordSignup(metrics.OutcomeRejected)
		return nil, invalid("Password must be at least 6 characters")
	}
	if len(req.Password) > maxPasswordBytes {
		s.metrics.RecordSignup(metrics.OutcomeRejected)
		return nil, invalid(msgPasswordTooLong)
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.RecordSignup(metrics.OutcomeRejected)
		return nil, ErrUserExists
	case !errors.Is(err, repositories.ErrNotFound):
		s.metrics.RecordSignup(metrics.OutcomeError)
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.metrics.RecordSignup(metrics.OutcomeError)
		return nil, err
	}
	token, err := utils.NewOpaqueToken(utils.DefaultTokenBytes)
	if err != nil {
		s.metrics.RecordSignup(metrics.OutcomeError)
		return nil, fmt.Errorf("issue verification token: %w", err)
	}
	expires := time.Now().Add(s.verifyTTL)

	user := &models.User{
		ID:                      uuid.New(),
		Name:                    name,
		Email:                   email,
		PasswordHash:            hash,
		IsVerified:              false,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expires,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			s.metrics.RecordSignup(metrics.OutcomeRejected)
			return nil, ErrEmailTaken
		}
		s.metrics.RecordSignup(metrics.OutcomeError)
		return nil, err
	}

	s.metrics.RecordSignup(metrics.OutcomeSuccess)
	s.metrics.RecordTokenIssued(string(NotifyVerify))
	slog.Info("[user][signup] created", "user_id", user.ID)

	s.notifier.Dispatch(NotifyVerify, user.Email, token)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)

	if email == "" || req.Password == "" {
		s.metrics.RecordLogin(metrics.OutcomeRejected)
		return nil, "", invalid("Both email and password are required")
	}
	if !validEmail(email) {
		s.metrics.RecordLogin(metrics.OutcomeRejected)
		return nil, "", invalid("Invalid email format")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			slog.Info("[auth][login] unknown email")
			s.metrics.RecordLogin(metrics.OutcomeRejected)
			return nil, "", ErrInvalidCredentials
		}
		s.metrics.RecordLogin(metrics.OutcomeError)
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}

	if err := s.auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		slog.Info("[auth][login] password mismatch", "user_id", user.ID)
		s.metrics.RecordLogin(metrics.OutcomeRejected)
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.auth.IssueSessionToken(user.ID)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeError)
		return nil, "", err
	}

	s.metrics.RecordLogin(metrics.OutcomeSuccess)
	slog.Info("[auth][login] success", "user_id", user.ID, "verified", user.IsVerified)
	return user, token, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrInvalidUserID
	}
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
