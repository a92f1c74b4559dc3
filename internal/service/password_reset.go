package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"account-api/internal/mail"
	"account-api/internal/repository"
	"account-api/internal/validation"
)

// ResetConfig tunes the password reset flow.
type ResetConfig struct {
	// TokenTTL is how long a reset link stays valid.
	TokenTTL time.Duration
	// BaseURL prefixes the reset link sent by email.
	BaseURL  string
	HashCost int
	Logger   *logrus.Logger
	Now      func() time.Time
}

func (c *ResetConfig) defaults() {
	if c.TokenTTL <= 0 {
		c.TokenTTL = time.Hour
	}
	if c.HashCost == 0 {
		c.HashCost = bcrypt.DefaultCost
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// PasswordResetService runs the forgot/reset password flow.
type PasswordResetService interface {
	ForgotPassword(ctx context.Context, in ForgotPasswordInput) error
	// ResetPassword changes the password of the holder of resetToken. The
	// change is kept even when the confirmation mail fails, in which case
	// ErrMailDeliveryFailed is returned.
	ResetPassword(ctx context.Context, resetToken string, in PasswordInput) error
}

type passwordResetService struct {
	users   repository.UserRepository
	mailer  mail.Sender
	revoker Revoker
	cfg     ResetConfig
}

func NewPasswordResetService(users repository.UserRepository, mailer mail.Sender, revoker Revoker, cfg ResetConfig) PasswordResetService {
	cfg.defaults()
	return &passwordResetService{
		users:   users,
		mailer:  mailer,
		revoker: revoker,
		cfg:     cfg,
	}
}

func (s *passwordResetService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	resetToken, err := newResetToken()
	if err != nil {
		return err
	}
	expires := s.cfg.Now().Add(s.cfg.TokenTTL)
	user.PasswordResetToken = resetToken
	user.PasswordResetExpires = &expires

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Reset your password",
		Body: "You are receiving this email because you (or someone else) have requested the reset of the password for your account.\n\n" +
			"Please click on the following link, or paste it into your browser to complete the process:\n\n" +
			s.cfg.BaseURL + "/user/reset/password/" + resetToken + "\n\n" +
			"If you did not request this, please ignore this email and your password will remain unchanged.\n",
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.cfg.Logger.WithError(err).WithField("user_id", user.ID).Error("send reset email")
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, resetToken string, in PasswordInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, err := s.users.GetByResetToken(ctx, resetToken, s.cfg.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return err
	}

	hash, err := hashPassword(in.Password, s.cfg.HashCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ClearPasswordReset()

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}
	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, user.ID, s.cfg.Now()); err != nil {
			s.cfg.Logger.WithError(err).WithField("user_id", user.ID).Warn("revoke tokens")
		}
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Your password has been changed",
		Body:    "This is a confirmation that the password for your account " + user.Email + " has just been changed.\n",
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.cfg.Logger.WithError(err).WithField("user_id", user.ID).Error("send reset confirmation email")
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}
	return nil
}
