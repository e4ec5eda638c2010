package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"accountflow/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)

	// SetResetToken overwrites any pending reset token (last write wins).
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// MarkVerified sets is_verified and clears the verification pair, but only
	// while the stored token still equals token.
	MarkVerified(ctx context.Context, userID uuid.UUID, token string) error
	// ResetPassword stores the new hash and clears the reset pair, but only
	// while the stored token still equals token.
	ResetPassword(ctx context.Context, userID uuid.UUID, token, passwordHash string) error
}

const (
	pqUniqueViolation = "23505"
	emailUniqueIndex  = "users_email_key"
)

const userColumns = `
	id, name, email, password_hash, is_verified,
	verification_token, verification_token_expiry,
	reset_token, reset_token_expiry,
	created_at, updated_at
`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (
			id, name, email, password_hash, is_verified,
			verification_token, verification_token_expiry
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.VerificationToken,
		user.VerificationTokenExpiry,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == emailUniqueIndex {
			return ErrEmailTaken
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, "verification_token", token)
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, "reset_token", token)
}

// getOne is only called with the fixed column names above.
func (r *userRepository) getOne(ctx context.Context, column string, arg any) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user get by %s: %w", column, err)
	}
	return u, nil
}

func (r *userRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET reset_token = $2, reset_token_expiry = $3, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, q, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("user set reset token: %w", err)
	}
	return requireOneRow(res, "user set reset token")
}

func (r *userRepository) MarkVerified(ctx context.Context, userID uuid.UUID, token string) error {
	const q = `
		UPDATE users
		SET is_verified = TRUE,
			verification_token = NULL,
			verification_token_expiry = NULL,
			updated_at = NOW()
		WHERE id = $1 AND verification_token = $2
	`
	res, err := r.DB.ExecContext(ctx, q, userID, token)
	if err != nil {
		return fmt.Errorf("user mark verified: %w", err)
	}
	return requireOneRow(res, "user mark verified")
}

func (r *userRepository) ResetPassword(ctx context.Context, userID uuid.UUID, token, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $3,
			reset_token = NULL,
			reset_token_expiry = NULL,
			updated_at = NOW()
		WHERE id = $1 AND reset_token = $2
	`
	res, err := r.DB.ExecContext(ctx, q, userID, token, passwordHash)
	if err != nil {
		return fmt.Errorf("user reset password: %w", err)
	}
	return requireOneRow(res, "user reset password")
}

func requireOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		vt  sql.NullString
		vte sql.NullTime
		rt  sql.NullString
		rte sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsVerified,
		&vt, &vte,
		&rt, &rte,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if vt.Valid {
		s := vt.String
		u.VerificationToken = &s
	}
	if vte.Valid {
		t := vte.Time
		u.VerificationTokenExpiry = &t
	}
	if rt.Valid {
		s := rt.String
		u.ResetToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.ResetTokenExpiry = &t
	}
	return u, nil
}
