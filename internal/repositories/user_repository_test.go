package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountflow/internal/models"
)

var userRowColumns = []string{
	"id", "name", "email", "password_hash", "is_verified",
	"verification_token", "verification_token_expiry",
	"reset_token", "reset_token_expiry",
	"created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewUserRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	tok := "verify-token"
	exp := time.Now().Add(24 * time.Hour)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users.*RETURNING\s+created_at,\s*updated_at`).
		WithArgs(id.String(), "Alice", "a@x.com", "hash", false, tok, exp).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	u := &models.User{
		ID:                      id,
		Name:                    "Alice",
		Email:                   "a@x.com",
		PasswordHash:            "hash",
		VerificationToken:       &tok,
		VerificationTokenExpiry: &exp,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, created, u.CreatedAt)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users`).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: emailUniqueIndex})

	err := repo.Create(context.Background(), &models.User{ID: uuid.New(), Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreate_OtherUniqueViolationIsWrapped(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	pqErr := &pq.Error{Code: pqUniqueViolation, Constraint: "users_verification_token_key"}
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users`).WillReturnError(pqErr)

	err := repo.Create(context.Background(), &models.User{ID: uuid.New(), Email: "a@x.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.Contains(t, err.Error(), "user create")
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	now := time.Now().UTC()
	reset := now.Add(time.Hour)
	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "Alice", "a@x.com", "hash", true, nil, nil, "rt", reset, now, now))

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.True(t, u.IsVerified)
	assert.Nil(t, u.VerificationToken)
	assert.Nil(t, u.VerificationTokenExpiry)
	require.NotNil(t, u.ResetToken)
	assert.Equal(t, "rt", *u.ResetToken)
	require.NotNil(t, u.ResetTokenExpiry)
	assert.True(t, reset.Equal(*u.ResetTokenExpiry))
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(id.String()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByVerificationToken_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+verification_token\s*=\s*\$1`).
		WithArgs("tok").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByVerificationToken(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetByResetToken_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+reset_token\s*=\s*\$1`).
		WithArgs("rt").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(uuid.NewString(), "Bob", "b@x.com", "hash", false, "vt", now, "rt", now, now, now))

	u, err := repo.GetByResetToken(context.Background(), "rt")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)
	require.NotNil(t, u.VerificationToken)
	assert.Equal(t, "vt", *u.VerificationToken)
}

func TestSetResetToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	exp := time.Now().Add(time.Hour)
	mock.ExpectExec(`(?s)UPDATE\s+users\s+SET\s+reset_token\s*=\s*\$2,\s*reset_token_expiry\s*=\s*\$3`).
		WithArgs(id.String(), "rt", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetResetToken(context.Background(), id, "rt", exp))
}

func TestSetResetToken_MissingUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)UPDATE\s+users`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetResetToken(context.Background(), uuid.New(), "rt", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkVerified(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	mock.ExpectExec(`(?s)SET\s+is_verified\s*=\s*TRUE.*WHERE\s+id\s*=\s*\$1\s+AND\s+verification_token\s*=\s*\$2`).
		WithArgs(id.String(), "vt").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkVerified(context.Background(), id, "vt"))
}

func TestMarkVerified_TokenAlreadyConsumed(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)SET\s+is_verified`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkVerified(context.Background(), uuid.New(), "vt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	id := uuid.New()
	mock.ExpectExec(`(?s)SET\s+password_hash\s*=\s*\$3.*reset_token\s*=\s*NULL.*WHERE\s+id\s*=\s*\$1\s+AND\s+reset_token\s*=\s*\$2`).
		WithArgs(id.String(), "rt", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetPassword(context.Background(), id, "rt", "newhash"))
}

func TestResetPassword_ExecError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)SET\s+password_hash`).WillReturnError(errors.New("boom"))

	err := repo.ResetPassword(context.Background(), uuid.New(), "rt", "h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user reset password")
}
