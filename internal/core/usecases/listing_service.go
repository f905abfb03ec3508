package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/ports"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// listingTTLSeconds bounds staleness of cached listings; saves and
// deletes invalidate eagerly anyway.
const listingTTLSeconds = 300

func listingCacheKey(userRowID int64) string {
	return fmt.Sprintf("journeys:user:%d", userRowID)
}

// ListingService serves a user's saved journeys, read-through cached.
type ListingService struct {
	users        ports.UserRepository
	userJourneys ports.UserJourneyRepository
	cache        ports.CacheService
}

// NewListingService creates a new ListingService. cache may be nil.
func NewListingService(users ports.UserRepository, userJourneys ports.UserJourneyRepository, cache ports.CacheService) *ListingService {
	return &ListingService{users: users, userJourneys: userJourneys, cache: cache}
}

// ListByUserID returns all journeys of the user with the external chat
// id, newest first.
func (s *ListingService) ListByUserID(ctx context.Context, userID string) ([]domain.JourneySummary, error) {
	user, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, user)
}

// ListByUsername returns all journeys of the user holding a display
// name. Unknown names surface as domain.ErrUserNotFound; repository
// failures pass through so callers do not mistake an outage for an
// empty account.
func (s *ListingService) ListByUsername(ctx context.Context, username string) ([]domain.JourneySummary, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", username, err)
	}
	return s.list(ctx, user)
}

func (s *ListingService) list(ctx context.Context, user *domain.User) ([]domain.JourneySummary, error) {
	key := listingCacheKey(user.ID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var summaries []domain.JourneySummary
			if err := json.Unmarshal(data, &summaries); err == nil {
				metrics.CacheHits.WithLabelValues("listing").Inc()
				return summaries, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("listing").Inc()
	}

	summaries, err := s.userJourneys.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(summaries); err == nil {
			_ = s.cache.Set(ctx, key, data, listingTTLSeconds)
		}
	}

	return summaries, nil
}
