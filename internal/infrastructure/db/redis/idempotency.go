package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spacehub/coworking-api/internal/core/ports"
)

// IdempotencyStore maps a user's Idempotency-Key to the booking it created.
// Key format: idem:<user_id>:<sha256(key)>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// Lookup returns the booking previously created under key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID int64, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, idempotencyKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt value %q", val)
	}
	return id, true, nil
}

// Remember records bookingID under key. An existing entry wins, so a retry
// racing the original request cannot repoint the key.
func (s *IdempotencyStore) Remember(ctx context.Context, userID int64, key string, bookingID int64, ttl time.Duration) error {
	err := s.client.SetArgs(ctx, idempotencyKey(userID, key), bookingID, redis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

// idempotencyKey hashes the client key so arbitrary header values map to a
// fixed-length Redis key scoped to one user.
func idempotencyKey(userID int64, key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("idem:%d:%s", userID, hex.EncodeToString(sum[:]))
}
