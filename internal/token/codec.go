// Package token signs and verifies the compact HS256 tokens handed out to
// authenticated callers.
package token

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissing is returned for an empty token string.
	ErrMissing = errors.New("jwt must be provided")
	// ErrMalformed is returned when the token is not made of three segments.
	ErrMalformed = errors.New("jwt malformed")
	// ErrInvalidSignature is returned when the signature does not match.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrExpired is returned once the encoded expiry has passed.
	ErrExpired = errors.New("jwt expired")
	// ErrInvalid covers every other verification failure.
	ErrInvalid = errors.New("invalid token")
)

const (
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

// Claims is the decoded claim set of a verified token.
type Claims map[string]any

// IssuedAt returns the iat claim.
func (c Claims) IssuedAt() time.Time {
	return c.numericDate(claimIssuedAt)
}

// ExpiresAt returns the exp claim.
func (c Claims) ExpiresAt() time.Time {
	return c.numericDate(claimExpiresAt)
}

// String returns the claim under key when it is a string.
func (c Claims) String(key string) string {
	s, _ := c[key].(string)
	return s
}

func (c Claims) numericDate(key string) time.Time {
	switch v := c[key].(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case int64:
		return time.Unix(v, 0)
	case int:
		return time.Unix(int64(v), 0)
	}
	return time.Time{}
}

// Codec signs and verifies tokens with a shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec builds a Codec. The secret must not be empty.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	c := &Codec{
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	return c, nil
}

// Sign encodes claims plus iat and exp (now + ttl). Caller claims named iat
// or exp are overwritten.
func (c *Codec) Sign(claims map[string]any, ttl time.Duration) (string, error) {
	now := c.now()
	mc := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		mc[k] = v
	}
	mc[claimIssuedAt] = now.Unix()
	mc[claimExpiresAt] = now.Add(ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. Failures are one of ErrMissing, ErrMalformed, ErrInvalidSignature,
// ErrExpired or ErrInvalid.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	if tokenString == "" {
		return nil, ErrMissing
	}
	if strings.Count(tokenString, ".") != 2 {
		return nil, ErrMalformed
	}

	claims := jwt.MapClaims{}
	if _, err := c.parser.ParseWithClaims(tokenString, claims, c.key); err != nil {
		return nil, c.classify(tokenString, err)
	}
	return Claims(claims), nil
}

func (c *Codec) key(*jwt.Token) (any, error) {
	return c.secret, nil
}

func (c *Codec) classify(tokenString string, err error) error {
	parts := strings.Split(tokenString, ".")
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		// header and payload decode fine, so the signature segment is broken
		if c.validSegment(parts[0]) && c.validSegment(parts[1]) {
			return ErrInvalidSignature
		}
		return ErrInvalid
	default:
		return ErrInvalid
	}
}

func (c *Codec) validSegment(seg string) bool {
	raw, err := c.parser.DecodeSegment(seg)
	return err == nil && json.Valid(raw)
}
