package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mapda-dev/mapda-api/internal/repository"
	"github.com/mapda-dev/mapda-api/pkg/database"
	"go.uber.org/zap"
)

// SearchService answers place-name searches with a redis cache in front of
// the database. Cache keys are scoped per campus, so two universities never
// see each other's results. A cache failure degrades to a plain DB query.
type SearchService struct {
	redis     *database.Redis
	placeRepo repository.PlaceRepository
	logger    *zap.Logger
	ttl       time.Duration
}

// NewSearchService creates the search service
func NewSearchService(redis *database.Redis, placeRepo repository.PlaceRepository, logger *zap.Logger, ttl time.Duration) *SearchService {
	return &SearchService{
		redis:     redis,
		placeRepo: placeRepo,
		logger:    logger,
		ttl:       ttl,
	}
}

// PlaceResult is a single search hit.
type PlaceResult struct {
	PlaceName string `json:"place_name"`
}

// SearchPlaces returns up to limit place names on the campus matching the
// keyword, cache-aside with the configured TTL.
func (s *SearchService) SearchPlaces(ctx context.Context, university, keyword string, limit int) ([]PlaceResult, error) {
	key := fmt.Sprintf("place_search:%s:%s", university, keyword)

	cached, err := s.redis.Client.Get(ctx, key).Result()
	if err == nil {
		var results []PlaceResult
		if err := json.Unmarshal([]byte(cached), &results); err == nil {
			return results, nil
		}
		s.logger.Warn("discarding unreadable search cache entry", zap.String("key", key))
	}

	names, err := s.placeRepo.SearchNames(ctx, university, keyword, limit)
	if err != nil {
		return nil, err
	}

	results := make([]PlaceResult, 0, len(names))
	for _, name := range names {
		results = append(results, PlaceResult{PlaceName: name})
	}

	payload, err := json.Marshal(results)
	if err == nil {
		if err := s.redis.Client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			// Redis being down must not fail the search.
			s.logger.Warn("failed to cache search results", zap.String("key", key), zap.Error(err))
		}
	}

	return results, nil
}
