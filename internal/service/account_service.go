package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"account-api/internal/domain"
	"account-api/internal/repository"
	"account-api/internal/validation"
)

// Signer mints signed tokens carrying claims for ttl.
type Signer interface {
	Sign(claims map[string]any, ttl time.Duration) (string, error)
}

// Revoker invalidates every token issued to a user before at.
type Revoker interface {
	Revoke(ctx context.Context, userID string, at time.Time) error
}

// Config tunes token lifetimes and signup rules.
type Config struct {
	// LoginTTL is the lifetime of tokens minted by Login.
	LoginTTL time.Duration
	// SessionTTL is the lifetime of tokens minted after profile and password updates.
	SessionTTL  time.Duration
	RequireName bool
	HashCost    int
	Logger      *logrus.Logger
	Now         func() time.Time
}

func (c *Config) defaults() {
	if c.LoginTTL <= 0 {
		c.LoginTTL = 3 * time.Minute
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Hour
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
}

// AccountService describes the account lifecycle operations.
type AccountService interface {
	Signup(ctx context.Context, in SignupInput) (domain.UserView, error)
	Login(ctx context.Context, in LoginInput) (string, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (string, error)
	UpdatePassword(ctx context.Context, userID string, in PasswordInput) (string, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type accountService struct {
	users   repository.UserRepository
	signer  Signer
	revoker Revoker
	cfg     Config
}

func NewAccountService(users repository.UserRepository, signer Signer, revoker Revoker, cfg Config) AccountService {
	cfg.defaults()
	return &accountService{
		users:   users,
		signer:  signer,
		revoker: revoker,
		cfg:     cfg,
	}
}

func (s *accountService) Signup(ctx context.Context, in SignupInput) (domain.UserView, error) {
	if err := in.Validate(s.cfg.RequireName); err != nil {
		return domain.UserView{}, err
	}
	email := validation.NormalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.UserView{}, ErrDuplicateAccount
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.UserView{}, err
	}

	hash, err := hashPassword(in.Password, s.cfg.HashCost)
	if err != nil {
		return domain.UserView{}, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Profile:      in.ProfileFields.toDomain(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.UserView{}, ErrDuplicateAccount
		}
		return domain.UserView{}, err
	}

	s.cfg.Logger.WithField("user_id", user.ID).Info("account created")
	return user.View(), nil
}

func (s *accountService) Login(ctx context.Context, in LoginInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrAccessDenied
		}
		return "", err
	}
	if !comparePassword(user.PasswordHash, in.Password) {
		return "", ErrAccessDenied
	}

	return s.mint(user, s.cfg.LoginTTL)
}

func (s *accountService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}

	user.Email = validation.NormalizeEmail(in.Email)
	user.Profile = in.ProfileFields.toDomain()

	if err := s.users.Update(ctx, user); err != nil {
		return "", s.updateError(err)
	}
	return s.mint(user, s.cfg.SessionTTL)
}

func (s *accountService) UpdatePassword(ctx context.Context, userID string, in PasswordInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}

	hash, err := hashPassword(in.Password, s.cfg.HashCost)
	if err != nil {
		return "", err
	}
	user.PasswordHash = hash

	if err := s.users.Update(ctx, user); err != nil {
		return "", s.updateError(err)
	}
	s.revoke(ctx, user.ID)
	return s.mint(user, s.cfg.SessionTTL)
}

func (s *accountService) DeleteAccount(ctx context.Context, userID string) error {
	n, err := s.users.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrDeleteFailed
	}
	s.revoke(ctx, userID)
	s.cfg.Logger.WithField("user_id", userID).Info("account deleted")
	return nil
}

func (s *accountService) load(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) updateError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	}
	return err
}

func (s *accountService) revoke(ctx context.Context, userID string) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.Revoke(ctx, userID, s.cfg.Now()); err != nil {
		s.cfg.Logger.WithError(err).WithField("user_id", userID).Warn("revoke tokens")
	}
}

func (s *accountService) mint(user *domain.User, ttl time.Duration) (string, error) {
	tok, err := s.signer.Sign(user.View().Claims(), ttl)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}
