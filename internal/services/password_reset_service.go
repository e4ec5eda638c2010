package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"accountflow/internal/metrics"
	"accountflow/internal/repositories"
	"accountflow/internal/utils"
)

type PasswordResetService interface {
	// RequestReset succeeds for unknown emails too, without writing anything.
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	repo     repositories.UserRepository
	auth     AuthService
	notifier Notifier
	metrics  metrics.Recorder
	ttl      time.Duration
}

func NewPasswordResetService(repo repositories.UserRepository, auth AuthService, notifier Notifier, rec metrics.Recorder, ttl time.Duration) PasswordResetService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &passwordResetService{
		repo:     repo,
		auth:     auth,
		notifier: notifier,
		metrics:  rec,
		ttl:      ttl,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return invalid("Email is required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// don't leak existence
			slog.Info("[password-reset] request for unknown email")
			return nil
		}
		return fmt.Errorf("lookup email: %w", err)
	}

	token, err := utils.NewOpaqueToken(utils.DefaultTokenBytes)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	expires := time.Now().Add(s.ttl)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	s.metrics.RecordTokenIssued(string(NotifyReset))
	slog.Info("[password-reset] token issued", "user_id", user.ID, "expires_at", expires.Format(time.RFC3339))

	s.notifier.Dispatch(NotifyReset, user.Email, token)
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	err := s.reset(ctx, token, newPassword)
	switch {
	case err == nil:
		s.metrics.RecordTokenConsumed(string(NotifyReset), metrics.OutcomeSuccess)
	case isTokenRejection(err):
		s.metrics.RecordTokenConsumed(string(NotifyReset), metrics.OutcomeRejected)
	default:
		s.metrics.RecordTokenConsumed(string(NotifyReset), metrics.OutcomeError)
	}
	return err
}

func (s *passwordResetService) reset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrResetTokenRequired
	}

	user, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrResetTokenUnknown
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	if user.ResetToken == nil || subtle.ConstantTimeCompare([]byte(token), []byte(*user.ResetToken)) != 1 {
		slog.Warn("[password-reset] token mismatch", "user_id", user.ID)
		return ErrResetLinkInvalid
	}
	if user.ResetTokenExpiry != nil && user.ResetTokenExpiry.Before(time.Now()) {
		return ErrResetLinkInvalid
	}
	if len(newPassword) < minPasswordLength {
		return invalid("Password must be at least 6 characters")
	}
	if len(newPassword) > maxPasswordBytes {
		return invalid(msgPasswordTooLong)
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.ResetPassword(ctx, user.ID, token, hash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// consumed concurrently
			return ErrResetLinkInvalid
		}
		return fmt.Errorf("store new password: %w", err)
	}

	slog.Info("[password-reset] password changed", "user_id", user.ID)
	return nil
}
