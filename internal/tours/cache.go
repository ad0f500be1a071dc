package tours

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ViewCache caches the tour-request views that listing and settings screens
// refetch after a submission or cancellation. Lookups that miss or hit a
// redis outage degrade to the database; the cache never fails a request.
type ViewCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewViewCache creates a cache over the given client. A zero ttl means
// entries never expire and rely on invalidation alone.
func NewViewCache(redisClient *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{redis: redisClient, ttl: ttl}
}

func (c *ViewCache) userKey(userID string) string {
	return fmt.Sprintf("tours:user:%s", userID)
}

func (c *ViewCache) listingKey(listingID string) string {
	return fmt.Sprintf("tours:listing:%s", listingID)
}

// GetUserTours returns the cached view for a user. ok is false on a miss.
func (c *ViewCache) GetUserTours(ctx context.Context, userID string) (requests []*TourRequest, ok bool, err error) {
	data, err := c.redis.Get(ctx, c.userKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("tours: cache get: %w", err)
	}
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, false, fmt.Errorf("tours: cache decode: %w", err)
	}
	return requests, true, nil
}

// SetUserTours stores the view for a user.
func (c *ViewCache) SetUserTours(ctx context.Context, userID string, requests []*TourRequest) error {
	data, err := json.Marshal(requests)
	if err != nil {
		return fmt.Errorf("tours: cache encode: %w", err)
	}
	if err := c.redis.Set(ctx, c.userKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("tours: cache set: %w", err)
	}
	return nil
}

// GetListingTour returns the cached active request for a listing.
func (c *ViewCache) GetListingTour(ctx context.Context, listingID string) (req *TourRequest, ok bool, err error) {
	data, err := c.redis.Get(ctx, c.listingKey(listingID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("tours: cache get: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, false, fmt.Errorf("tours: cache decode: %w", err)
	}
	return req, true, nil
}

// SetListingTour stores the active request view for a listing.
func (c *ViewCache) SetListingTour(ctx context.Context, listingID string, req *TourRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("tours: cache encode: %w", err)
	}
	if err := c.redis.Set(ctx, c.listingKey(listingID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("tours: cache set: %w", err)
	}
	return nil
}

// InvalidateUser drops the cached view for a user.
func (c *ViewCache) InvalidateUser(ctx context.Context, userID string) error {
	if err := c.redis.Del(ctx, c.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("tours: cache invalidate user: %w", err)
	}
	return nil
}

// InvalidateListings drops the cached views for the given listings.
func (c *ViewCache) InvalidateListings(ctx context.Context, listingIDs []string) error {
	if len(listingIDs) == 0 {
		return nil
	}
	keys := make([]string, len(listingIDs))
	for i, id := range listingIDs {
		keys[i] = c.listingKey(id)
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("tours: cache invalidate listings: %w", err)
	}
	return nil
}
