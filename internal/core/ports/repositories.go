package ports

import (
	"context"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
)

// StationRepository persists stations. GetOrCreate takes the natural
// key (EVA) plus creation-time defaults in st and returns the row that
// ends up existing, whether this call created it or not.
type StationRepository interface {
	GetOrCreate(ctx context.Context, st *domain.Station) (*domain.Station, error)
	GetByEVA(ctx context.Context, eva string) (*domain.Station, error)
}

// SegmentRepository persists segments and their stopover links.
// Creation writes the segment row and the ordered stopover rows in one
// transaction.
type SegmentRepository interface {
	GetOrCreate(ctx context.Context, seg *domain.Segment) (*domain.Segment, error)
	GetBySegmentID(ctx context.Context, segmentID string) (*domain.Segment, error)
}

// JourneyRepository persists journeys and their ordered segment links.
type JourneyRepository interface {
	GetOrCreate(ctx context.Context, j *domain.Journey) (*domain.Journey, error)
	GetByJourneyID(ctx context.Context, journeyID string) (*domain.Journey, error)
	// GetByID resolves a journey from its row id, as stored on a
	// user-journey binding.
	GetByID(ctx context.Context, id int64) (*domain.Journey, error)
}

// UserRepository persists users.
type UserRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.User, error)
	// GetByUsername returns domain.ErrUserNotFound when the name is
	// unclaimed; any other error is an infrastructure failure.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdateUsername returns domain.ErrUsernameTaken when the name is
	// already held by another user.
	UpdateUsername(ctx context.Context, id int64, username string) error
}

// TagRepository persists category and purpose tags, keyed by kind and
// lowercased name.
type TagRepository interface {
	GetOrCreate(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
}

// UserJourneyRepository persists user-journey bindings. GetOrCreate is
// the dedup anchor: on a concurrent or earlier insert for the same
// (user, journey) pair it returns the original row, whose message id
// differs from the caller's.
type UserJourneyRepository interface {
	GetOrCreate(ctx context.Context, uj *domain.UserJourney) (*domain.UserJourney, error)
	// FindByUserAndMessage locates the row a reply-scoped command
	// targets. Returns domain.ErrJourneyNotFound when absent.
	FindByUserAndMessage(ctx context.Context, userID, messageID int64) (*domain.UserJourney, error)
	Delete(ctx context.Context, userID, journeyID int64) error
	SetPrice(ctx context.Context, userID, journeyID int64, priceCents *int64) error
	SetCategory(ctx context.Context, userID, journeyID int64, tagID *int64) error
	SetPurpose(ctx context.Context, userID, journeyID int64, tagID *int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.JourneySummary, error)
}
