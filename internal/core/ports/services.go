package ports

import (
	"context"
	"time"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
)

// JourneyProvider is the external journey-search service. It is an
// opaque oracle: its ranking of location candidates decides station
// resolution (first candidate wins).
type JourneyProvider interface {
	Locations(ctx context.Context, query string, limit int) ([]domain.ProviderStop, error)
	// Journeys returns candidate journeys departing at or near the
	// given time, constrained to at most maxTransfers changes.
	Journeys(ctx context.Context, fromEVA, toEVA string, departure time.Time, maxTransfers int) ([]domain.ProviderJourney, error)
}

// EventPublisher publishes journey events to a message broker.
type EventPublisher interface {
	PublishJourneySaved(ctx context.Context, ev *domain.JourneyEvent) error
	PublishJourneyDeleted(ctx context.Context, ev *domain.JourneyEvent) error
}

// CacheService provides read-through caching for listings.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
