package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const requestOriginKey = "requests:origins"

// RequestOrigin represents a searching request's origin position.
type RequestOrigin struct {
	RequestID string
	Lat       float64
	Lng       float64
}

// OriginIndex maintains a geo index of searching request origins, used to
// pre-filter the candidate pool before exact pairwise scoring.
type OriginIndex struct {
	client *redis.Client
}

// NewOriginIndex creates a new OriginIndex.
func NewOriginIndex(client *redis.Client) *OriginIndex {
	return &OriginIndex{client: client}
}

// Add indexes a request's origin using GEOADD.
func (s *OriginIndex) Add(ctx context.Context, requestID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, requestOriginKey, &redis.GeoLocation{
		Name:      requestID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearby returns request ids within the given radius (in kilometers),
// closest first.
func (s *OriginIndex) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]RequestOrigin, error) {
	results, err := s.client.GeoRadius(ctx, requestOriginKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	origins := make([]RequestOrigin, 0, len(results))
	for _, r := range results {
		origins = append(origins, RequestOrigin{
			RequestID: r.Name,
			Lat:       r.Latitude,
			Lng:       r.Longitude,
		})
	}
	return origins, nil
}

// Remove drops a request from the geo index.
func (s *OriginIndex) Remove(ctx context.Context, requestID string) error {
	return s.client.ZRem(ctx, requestOriginKey, requestID).Err()
}
