package repository

import (
	"context"
	"errors"
	"time"

	"account-api/internal/domain"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a write would violate email uniqueness.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByResetToken returns the user holding token whose expiry is after now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user and reports how many records were removed.
	Delete(ctx context.Context, id string) (int64, error)
}
