package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

var _ domain.GroupRepository = (*CachedGroupRepository)(nil)

const memberCacheTTL = 10 * time.Minute

// CachedGroupRepository caches active-member lists in Redis. Membership is
// owned by an upstream service, so there is no write path to invalidate on;
// a short TTL bounds how stale a sweep can see the roster.
type CachedGroupRepository struct {
	next  domain.GroupRepository
	cache *redis.Client
}

func NewCachedGroupRepository(next domain.GroupRepository, cache *redis.Client) *CachedGroupRepository {
	return &CachedGroupRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedGroupRepository) cacheKey(groupID string) string {
	return fmt.Sprintf("recap:members:%s", groupID)
}

func (r *CachedGroupRepository) ListActiveMembers(ctx context.Context, groupID string) ([]*domain.Member, error) {
	key := r.cacheKey(groupID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var members []*domain.Member
		if err := json.Unmarshal([]byte(val), &members); err == nil {
			return members, nil
		}

		log.Printf("[CACHE] Corrupted member list for group %s, cleaning up key", groupID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	members, err := r.next.ListActiveMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(members); err == nil {
		if setErr := r.cache.Set(ctx, key, data, memberCacheTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return members, nil
}

func (r *CachedGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedGroupRepository) ListActive(ctx context.Context) ([]*domain.Group, error) {
	return r.next.ListActive(ctx)
}

func (r *CachedGroupRepository) ListJoinedBetween(ctx context.Context, groupID string, from, to time.Time) ([]*domain.Member, error) {
	return r.next.ListJoinedBetween(ctx, groupID, from, to)
}
