package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRequestLock attempts to claim a request during match formation.
// Returns true if the lock was acquired, false if already held. The
// database transaction remains the correctness gate; the lock only
// shortens the window in which two formations race on the same request.
func (s *LockStore) AcquireRequestLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:request:%s", requestID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseRequestLock releases the lock for the given request.
func (s *LockStore) ReleaseRequestLock(ctx context.Context, requestID string) error {
	key := fmt.Sprintf("lock:request:%s", requestID)

	return s.client.Del(ctx, key).Err()
}
