package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which reservation a client-supplied
// Idempotency-Key produced, so duplicate submissions replay instead of
// booking twice. Key format: reservation:idem:<key>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Lookup returns the reservation id recorded for key, or "" when unseen.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (string, error) {
	id, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, nil
}

// Remember records the reservation created for key (expires after idempotencyTTL).
func (s *IdempotencyStore) Remember(ctx context.Context, key, reservationID string) error {
	return s.client.Set(ctx, s.key(key), reservationID, idempotencyTTL).Err()
}

func (s *IdempotencyStore) key(key string) string {
	return "reservation:idem:" + key
}
