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
)

type VerificationService interface {
	// VerifyEmail redeems a verification token. It needs no session.
	VerifyEmail(ctx context.Context, token string) error
}

type verificationService struct {
	repo    repositories.UserRepository
	metrics metrics.Recorder
}

func NewVerificationService(repo repositories.UserRepository, rec metrics.Recorder) VerificationService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &verificationService{repo: repo, metrics: rec}
}

func (s *verificationService) VerifyEmail(ctx context.Context, token string) error {
	err := s.verify(ctx, token)
	switch {
	case err == nil:
		s.metrics.RecordTokenConsumed(string(NotifyVerify), metrics.OutcomeSuccess)
	case isTokenRejection(err):
		s.metrics.RecordTokenConsumed(string(NotifyVerify), metrics.OutcomeRejected)
	default:
		s.metrics.RecordTokenConsumed(string(NotifyVerify), metrics.OutcomeError)
	}
	return err
}

func (s *verificationService) verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrVerifyTokenRequired
	}

	user, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrVerifyTokenUnknown
		}
		return fmt.Errorf("lookup verification token: %w", err)
	}

	if user.VerificationToken == nil || subtle.ConstantTimeCompare([]byte(token), []byte(*user.VerificationToken)) != 1 {
		return ErrVerifyLinkInvalid
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	if user.VerificationTokenExpiry != nil && user.VerificationTokenExpiry.Before(time.Now()) {
		return ErrVerifyLinkExpired
	}

	if err := s.repo.MarkVerified(ctx, user.ID, token); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// consumed concurrently
			return ErrVerifyTokenUnknown
		}
		return fmt.Errorf("mark verified: %w", err)
	}

	slog.Info("[verify] email verified", "user_id", user.ID)
	return nil
}

func isTokenRejection(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrVerifyTokenRequired) ||
		errors.Is(err, ErrVerifyTokenUnknown) ||
		errors.Is(err, ErrVerifyLinkInvalid) ||
		errors.Is(err, ErrAlreadyVerified) ||
		errors.Is(err, ErrVerifyLinkExpired) ||
		errors.Is(err, ErrResetTokenRequired) ||
		errors.Is(err, ErrResetTokenUnknown) ||
		errors.Is(err, ErrResetLinkInvalid)
}
