package auth

import (
	"time"

	"account-api/internal/domain"
	"account-api/internal/token"
)

// Identity is the verified caller of a request. It is decoded from the token
// claims and never persisted.
type Identity struct {
	ID        string
	Email     string
	Profile   domain.Profile
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IdentityFromClaims decodes the claim snapshot written by domain.UserView.Claims.
func IdentityFromClaims(claims token.Claims) (Identity, error) {
	id := claims.String("id")
	if id == "" {
		return Identity{}, token.ErrInvalid
	}

	identity := Identity{
		ID:        id,
		Email:     claims.String("email"),
		IssuedAt:  claims.IssuedAt(),
		ExpiresAt: claims.ExpiresAt(),
	}
	if profile, ok := claims["profile"].(map[string]any); ok {
		identity.Profile = domain.Profile{
			Name:     stringField(profile, "name"),
			Gender:   stringField(profile, "gender"),
			Location: stringField(profile, "location"),
			Website:  stringField(profile, "website"),
		}
	}
	return identity, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
