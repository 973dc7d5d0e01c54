package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound is returned when a verification token is unknown,
// expired or already consumed.
var ErrTokenNotFound = errors.New("verification token not found")

const verificationKeyPrefix = "verify:"

// VerificationTokenRepository stores single-use email verification tokens.
type VerificationTokenRepository interface {
	Store(ctx context.Context, token, userID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

type verificationTokenRepository struct {
	client *redis.Client
}

// NewVerificationTokenRepository returns a Redis-backed implementation.
// Tokens expire on their own through the key TTL.
func NewVerificationTokenRepository(client *redis.Client) VerificationTokenRepository {
	return &verificationTokenRepository{client: client}
}

func (r *verificationTokenRepository) Store(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, verificationKeyPrefix+token, userID, ttl).Err()
}

// Consume atomically fetches and deletes the token so it cannot be replayed.
func (r *verificationTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, verificationKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
