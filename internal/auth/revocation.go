package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker records the instant after which a user's earlier tokens stop being
// accepted.
type Revoker interface {
	Revoke(ctx context.Context, userID string, at time.Time) error
	// RevokedAt returns the recorded instant, if any.
	RevokedAt(ctx context.Context, userID string) (time.Time, bool, error)
}

// NopRevoker never revokes; tokens stay valid until they expire.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (NopRevoker) RevokedAt(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

// RedisRevoker keeps one revocation timestamp per user in Redis. Entries
// expire after ttl, by which point every token issued before them has expired too.
type RedisRevoker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRevoker(rdb *redis.Client, ttl time.Duration) *RedisRevoker {
	return &RedisRevoker{rdb: rdb, ttl: ttl}
}

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, userID string, at time.Time) error {
	if err := r.rdb.Set(ctx, revocationKey(userID), at.Unix(), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set revocation: %w", err)
	}
	return nil
}

func (r *RedisRevoker) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	val, err := r.rdb.Get(ctx, revocationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get revocation: %w", err)
	}
	secs, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse revocation %q: %w", val, err)
	}
	return time.Unix(secs, 0), true, nil
}

func revocationKey(userID string) string {
	return "revoked:" + userID
}

var (
	_ Revoker = NopRevoker{}
	_ Revoker = (*RedisRevoker)(nil)
)
