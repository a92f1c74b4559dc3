package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-api/internal/domain"
	"account-api/internal/repository"
)

func newTestRepository(t *testing.T) repository.UserRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	user := &domain.User{
		Email:        "a@b.com",
		PasswordHash: "hash",
		Profile:      domain.Profile{Name: "Ada"},
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", byID.Email)
	assert.Equal(t, "Ada", byID.Profile.Name)
	assert.Nil(t, byID.PasswordResetExpires)

	byEmail, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "a@b.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &domain.User{Email: "a@b.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	other := &domain.User{Email: "c@d.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, other))
	other.Email = "a@b.com"
	assert.ErrorIs(t, repo.Update(ctx, other), repository.ErrDuplicateEmail)
}

func TestUserRepository_ResetToken(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	now := time.Now()
	expires := now.Add(time.Hour)
	user := &domain.User{Email: "a@b.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	user.PasswordResetToken = "tok"
	user.PasswordResetExpires = &expires
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.GetByResetToken(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	require.NotNil(t, found.PasswordResetExpires)
	assert.True(t, found.PasswordResetExpires.Equal(expires))

	_, err = repo.GetByResetToken(ctx, "tok", expires)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.GetByResetToken(ctx, "other", now)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	found.ClearPasswordReset()
	require.NoError(t, repo.Update(ctx, found))
	_, err = repo.GetByResetToken(ctx, "tok", now)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	repo := newTestRepository(t)
	err := repo.Update(context.Background(), &domain.User{ID: "nope", Email: "x@y.com"})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	user := &domain.User{Email: "a@b.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	n, err := repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
