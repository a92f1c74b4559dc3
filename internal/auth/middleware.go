// Package auth gates protected routes behind a bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"account-api/internal/token"
)

var (
	// ErrNoToken is returned when the Authorization header is absent.
	ErrNoToken = errors.New("no token provided")
	// ErrRevoked is returned for tokens issued before the user's revocation instant.
	ErrRevoked = errors.New("jwt revoked")
)

// Verifier verifies a signed token and returns its claims.
type Verifier interface {
	Verify(tokenString string) (token.Claims, error)
}

// Middleware authenticates requests from their Authorization header.
type Middleware struct {
	verifier Verifier
	revoker  Revoker
	logger   *logrus.Logger
}

func NewMiddleware(verifier Verifier, revoker Revoker, logger *logrus.Logger) *Middleware {
	if revoker == nil {
		revoker = NopRevoker{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Middleware{
		verifier: verifier,
		revoker:  revoker,
		logger:   logger,
	}
}

// Authenticate resolves the caller from an Authorization header value.
func (m *Middleware) Authenticate(ctx context.Context, header string) (Identity, error) {
	if header == "" {
		return Identity{}, ErrNoToken
	}

	var raw string
	if parts := strings.Fields(header); len(parts) > 1 {
		raw = parts[1]
	}

	claims, err := m.verifier.Verify(raw)
	if err != nil {
		return Identity{}, err
	}

	identity, err := IdentityFromClaims(claims)
	if err != nil {
		return Identity{}, err
	}

	revokedAt, ok, err := m.revoker.RevokedAt(ctx, identity.ID)
	if err != nil {
		return Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	// Both instants have whole-second precision, so a token issued in the
	// revocation second stays valid. That includes the token handed back by
	// the call that revoked.
	if ok && identity.IssuedAt.Before(revokedAt) {
		return Identity{}, ErrRevoked
	}
	return identity, nil
}

// Protect wraps next so it only runs for authenticated requests, receiving
// the caller's identity as an argument.
func (m *Middleware) Protect(next func(*gin.Context, Identity)) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := m.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			m.reject(c, err)
			return
		}
		next(c, identity)
	}
}

func (m *Middleware) reject(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoToken):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case isVerificationError(err):
		m.logger.WithField("path", c.Request.URL.Path).Debugf("reject token: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		m.logger.WithError(err).Error("authenticate request")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

func isVerificationError(err error) bool {
	for _, target := range []error{
		token.ErrMissing,
		token.ErrMalformed,
		token.ErrInvalidSignature,
		token.ErrExpired,
		token.ErrInvalid,
		ErrRevoked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
