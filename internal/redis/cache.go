package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// UserCacheTTL bounds staleness of cached profiles. Profiles change rarely,
// and matches snapshot them at formation time anyway.
const UserCacheTTL = 5 * time.Minute

const userCachePrefix = "cache:user:"

// CachedUser represents a cached rider profile.
type CachedUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	Department string `json:"department"`
	Verified   bool   `json:"verified"`
	PushToken  string `json:"push_token"`
}

// GetUser retrieves a user from cache. A nil result with nil error is a miss.
func (s *CacheStore) GetUser(ctx context.Context, userID string) (*CachedUser, error) {
	data, err := s.client.Get(ctx, userCachePrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var user CachedUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetUser stores a user in cache.
func (s *CacheStore) SetUser(ctx context.Context, user *CachedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, userCachePrefix+user.ID, data, UserCacheTTL).Err()
}

// GetUsersBatch retrieves several users from cache in one MGET. Returns the
// hits keyed by id and the ids that missed.
func (s *CacheStore) GetUsersBatch(ctx context.Context, userIDs []string) (map[string]*CachedUser, []string, error) {
	if len(userIDs) == 0 {
		return map[string]*CachedUser{}, nil, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = userCachePrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, userIDs, err
	}

	hits := make(map[string]*CachedUser)
	var misses []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			misses = append(misses, userIDs[i])
			continue
		}
		var user CachedUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			misses = append(misses, userIDs[i])
			continue
		}
		hits[user.ID] = &user
	}
	return hits, misses, nil
}

// InvalidateUser drops a user from cache.
func (s *CacheStore) InvalidateUser(ctx context.Context, userID string) error {
	return s.client.Del(ctx, userCachePrefix+userID).Err()
}
