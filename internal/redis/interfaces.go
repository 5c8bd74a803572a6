package redis

import (
	"context"
	"time"
)

// OriginIndexInterface defines the interface for the request origin geo index.
type OriginIndexInterface interface {
	Add(ctx context.Context, requestID string, lat, lng float64) error
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]RequestOrigin, error)
	Remove(ctx context.Context, requestID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireRequestLock(ctx context.Context, requestID string, ttl time.Duration) (bool, error)
	ReleaseRequestLock(ctx context.Context, requestID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ OriginIndexInterface = (*OriginIndex)(nil)
	_ LockStoreInterface   = (*LockStore)(nil)
)
