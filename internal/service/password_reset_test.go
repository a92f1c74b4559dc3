package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"account-api/internal/domain"
)

type resetFixture struct {
	svc     PasswordResetService
	users   *memoryUsers
	mailer  *recordingMailer
	revoker *recordingRevoker
	now     time.Time
	user    *domain.User
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	f := &resetFixture{
		users:   newMemoryUsers(),
		mailer:  &recordingMailer{},
		revoker: &recordingRevoker{},
		now:     time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}

	hash, err := hashPassword("Abcd1234", bcrypt.MinCost)
	require.NoError(t, err)
	f.user = &domain.User{Email: "a@b.com", PasswordHash: hash}
	require.NoError(t, f.users.Create(context.Background(), f.user))

	f.svc = NewPasswordResetService(f.users, f.mailer, f.revoker, ResetConfig{
		TokenTTL: time.Hour,
		BaseURL:  "https://accounts.example.com/",
		HashCost: bcrypt.MinCost,
		Now:      func() time.Time { return f.now },
	})
	return f
}

func (f *resetFixture) stored(t *testing.T) *domain.User {
	t.Helper()
	u, err := f.users.GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	return u
}

func TestForgotPassword(t *testing.T) {
	f := newResetFixture(t)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "A@b.com"}))

	u := f.stored(t)
	require.Len(t, u.PasswordResetToken, 64)
	require.NotNil(t, u.PasswordResetExpires)
	assert.Equal(t, f.now.Add(time.Hour), *u.PasswordResetExpires)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "a@b.com", f.mailer.sent[0].To)
	assert.Contains(t, f.mailer.sent[0].Body, "https://accounts.example.com/user/reset/password/"+u.PasswordResetToken)
}

func TestForgotPassword_Errors(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "nope"})
	assert.True(t, fieldErrors(t, err).Has("email"))

	err = f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "missing@b.com"})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	f.mailer.err = errors.New("smtp down")
	err = f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrMailDeliveryFailed)
	assert.NotEmpty(t, f.stored(t).PasswordResetToken, "token is stored before delivery")
}

func TestResetPassword(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "a@b.com"}))
	resetToken := f.stored(t).PasswordResetToken

	f.now = f.now.Add(30 * time.Minute)
	err := f.svc.ResetPassword(context.Background(), resetToken, PasswordInput{Password: "brand-new", ConfirmPassword: "brand-new"})
	require.NoError(t, err)

	u := f.stored(t)
	assert.True(t, comparePassword(u.PasswordHash, "brand-new"))
	assert.Empty(t, u.PasswordResetToken)
	assert.Nil(t, u.PasswordResetExpires)
	assert.Equal(t, []string{u.ID}, f.revoker.revoked)

	require.Len(t, f.mailer.sent, 2)
	assert.True(t, strings.Contains(f.mailer.sent[1].Subject, "changed"))

	err = f.svc.ResetPassword(context.Background(), resetToken, PasswordInput{Password: "again", ConfirmPassword: "again"})
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired, "a reset token is single use")
}

func TestResetPassword_Expired(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "a@b.com"}))
	resetToken := f.stored(t).PasswordResetToken

	f.now = f.now.Add(time.Hour)
	err := f.svc.ResetPassword(context.Background(), resetToken, PasswordInput{Password: "brand-new", ConfirmPassword: "brand-new"})
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)

	err = f.svc.ResetPassword(context.Background(), "unknown", PasswordInput{Password: "brand-new", ConfirmPassword: "brand-new"})
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestResetPassword_ValidatesBeforeLookup(t *testing.T) {
	f := newResetFixture(t)

	err := f.svc.ResetPassword(context.Background(), "unknown", PasswordInput{Password: "ab", ConfirmPassword: "cd"})
	fields := fieldErrors(t, err)
	assert.True(t, fields.Has("password"))
	assert.True(t, fields.Has("confirmPassword"))
}

func TestResetPassword_MailFailureKeepsChange(t *testing.T) {
	f := newResetFixture(t)
	require.NoError(t, f.svc.ForgotPassword(context.Background(), ForgotPasswordInput{Email: "a@b.com"}))
	resetToken := f.stored(t).PasswordResetToken

	f.mailer.err = errors.New("smtp down")
	err := f.svc.ResetPassword(context.Background(), resetToken, PasswordInput{Password: "brand-new", ConfirmPassword: "brand-new"})
	assert.ErrorIs(t, err, ErrMailDeliveryFailed)
	assert.True(t, comparePassword(f.stored(t).PasswordHash, "brand-new"))
}
