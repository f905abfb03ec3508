package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/itinerary"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/ports"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// journeyKeySeparator joins ordered segment ids into the journey
// natural key. Order matters: the same legs in a different order are a
// different journey.
const journeyKeySeparator = "#"

// SubmissionService runs the full itinerary pipeline: parse, resolve
// every leg, compose the journey identity and persist it idempotently
// for the submitting user.
type SubmissionService struct {
	stations     *StationService
	segments     *SegmentService
	users        ports.UserRepository
	journeys     ports.JourneyRepository
	userJourneys ports.UserJourneyRepository
	events       ports.EventPublisher
	cache        ports.CacheService
	tz           *time.Location
}

// NewSubmissionService creates a new SubmissionService. events and
// cache may be nil; the pipeline then skips publishing and
// invalidation.
func NewSubmissionService(
	stations *StationService,
	segments *SegmentService,
	users ports.UserRepository,
	journeys ports.JourneyRepository,
	userJourneys ports.UserJourneyRepository,
	events ports.EventPublisher,
	cache ports.CacheService,
	tz *time.Location,
) *SubmissionService {
	return &SubmissionService{
		stations:     stations,
		segments:     segments,
		users:        users,
		journeys:     journeys,
		userJourneys: userJourneys,
		events:       events,
		cache:        cache,
		tz:           tz,
	}
}

// Submit processes one pasted itinerary. Any failure in any leg aborts
// the whole submission; already-persisted stations and segments are
// harmless because they are idempotent shared entities. A second
// submission of the same journey by the same user comes back as a
// Duplicate result naming the original message, never as a second row.
func (s *SubmissionService) Submit(ctx context.Context, userID string, messageID int64, text string) (*domain.SubmissionResult, error) {
	start := time.Now()
	defer func() {
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	}()

	it, err := itinerary.Parse(text, s.tz)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	segments := make([]domain.Segment, 0, len(it.Legs))
	for _, leg := range it.Legs {
		origin, err := s.stations.ResolveByName(ctx, leg.OriginName)
		if err != nil {
			metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		destination, err := s.stations.ResolveByName(ctx, leg.DestinationName)
		if err != nil {
			metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
			return nil, err
		}

		seg, err := s.segments.ResolveLeg(ctx, origin, destination, leg.DepartureScheduled, leg.ArrivalScheduled)
		if err != nil {
			metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		segments = append(segments, *seg)
	}

	ids := make([]string, len(segments))
	for i, seg := range segments {
		ids[i] = seg.SegmentID
	}
	journeyKey := strings.Join(ids, journeyKeySeparator)

	user, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	journey, err := s.journeys.GetOrCreate(ctx, &domain.Journey{
		JourneyID: journeyKey,
		Segments:  segments,
	})
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("resolve journey: %w", err)
	}

	uj, err := s.userJourneys.GetOrCreate(ctx, &domain.UserJourney{
		UserID:    user.ID,
		JourneyID: journey.ID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("bind journey to user: %w", err)
	}

	result := &domain.SubmissionResult{Journey: journey, UserJourney: uj}
	if uj.MessageID != messageID {
		// An earlier message already recorded this journey for this
		// user; report the original and touch nothing.
		result.Status = domain.SubmissionDuplicate
		result.OriginalMessageID = uj.MessageID
		metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		slog.Info("duplicate journey submission",
			"user", userID, "journey", journeyKey, "original_message", uj.MessageID)
		return result, nil
	}

	result.Status = domain.SubmissionSaved
	metrics.SubmissionsTotal.WithLabelValues("saved").Inc()
	slog.Info("journey saved", "user", userID, "journey", journeyKey, "segments", len(segments))

	s.invalidateListing(ctx, user.ID)
	if s.events != nil {
		ev := &domain.JourneyEvent{
			UserID:     user.UserID,
			Username:   user.Username,
			JourneyKey: journeyKey,
			MessageID:  messageID,
			Segments:   len(segments),
			Time:       time.Now(),
		}
		if err := s.events.PublishJourneySaved(ctx, ev); err != nil {
			slog.Warn("publish journey saved failed", "error", err)
		}
	}

	return result, nil
}

func (s *SubmissionService) invalidateListing(ctx context.Context, userRowID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listingCacheKey(userRowID)); err != nil {
		slog.Debug("listing cache invalidation failed", "error", err)
	}
}
