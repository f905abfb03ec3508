package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/ports"
)

var (
	priceRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	colorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
)

// clearKeyword clears a price or tag instead of setting one.
const clearKeyword = "none"

// AnnotationService mutates a user's journey bindings via reply-scoped
// commands: price, category, purpose, delete. Each command locates its
// target by (submitting user, replied-to message).
type AnnotationService struct {
	users        ports.UserRepository
	userJourneys ports.UserJourneyRepository
	journeys     ports.JourneyRepository
	tags         ports.TagRepository
	events       ports.EventPublisher
	cache        ports.CacheService
}

// NewAnnotationService creates a new AnnotationService. events and
// cache may be nil.
func NewAnnotationService(
	users ports.UserRepository,
	userJourneys ports.UserJourneyRepository,
	journeys ports.JourneyRepository,
	tags ports.TagRepository,
	events ports.EventPublisher,
	cache ports.CacheService,
) *AnnotationService {
	return &AnnotationService{
		users:        users,
		userJourneys: userJourneys,
		journeys:     journeys,
		tags:         tags,
		events:       events,
		cache:        cache,
	}
}

// target locates the UserJourney a reply-scoped command refers to.
func (s *AnnotationService) target(ctx context.Context, userID string, repliedMessageID int64) (*domain.User, *domain.UserJourney, error) {
	user, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve user: %w", err)
	}
	uj, err := s.userJourneys.FindByUserAndMessage(ctx, user.ID, repliedMessageID)
	if err != nil {
		return nil, nil, err
	}
	return user, uj, nil
}

// SetPrice sets or clears the price of a journey. raw accepts a
// decimal with comma or dot separator, stored as cents; "none" clears.
func (s *AnnotationService) SetPrice(ctx context.Context, userID string, repliedMessageID int64, raw string) error {
	user, uj, err := s.target(ctx, userID, repliedMessageID)
	if err != nil {
		return err
	}

	if strings.EqualFold(raw, clearKeyword) {
		return s.userJourneys.SetPrice(ctx, user.ID, uj.JourneyID, nil)
	}

	normalized := strings.ReplaceAll(raw, ",", ".")
	if !priceRe.MatchString(normalized) {
		return fmt.Errorf("%w: price %q is not a number", domain.ErrValidation, raw)
	}
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return fmt.Errorf("%w: price %q is not a number", domain.ErrValidation, raw)
	}

	cents := int64(math.Round(value * 100))
	return s.userJourneys.SetPrice(ctx, user.ID, uj.JourneyID, &cents)
}

// SetTag sets or clears a category or purpose tag. Names are
// lowercased before use; color is optional and must be #rgb or
// #rrggbb.
func (s *AnnotationService) SetTag(ctx context.Context, userID string, repliedMessageID int64, kind domain.TagKind, name, color string) error {
	user, uj, err := s.target(ctx, userID, repliedMessageID)
	if err != nil {
		return err
	}

	set := s.userJourneys.SetCategory
	if kind == domain.TagPurpose {
		set = s.userJourneys.SetPurpose
	}

	name = strings.ToLower(name)
	if name == clearKeyword {
		return set(ctx, user.ID, uj.JourneyID, nil)
	}

	tag := &domain.Tag{Kind: kind, Name: name}
	if color != "" {
		if !colorRe.MatchString(color) {
			return fmt.Errorf("%w: color %q must be #rgb or #rrggbb", domain.ErrValidation, color)
		}
		tag.Color = &color
	}

	created, err := s.tags.GetOrCreate(ctx, tag)
	if err != nil {
		return err
	}
	return set(ctx, user.ID, uj.JourneyID, &created.ID)
}

// Delete removes a user's journey binding. The shared journey itself
// survives for other users.
func (s *AnnotationService) Delete(ctx context.Context, userID string, repliedMessageID int64) error {
	user, uj, err := s.target(ctx, userID, repliedMessageID)
	if err != nil {
		return err
	}

	if err := s.userJourneys.Delete(ctx, user.ID, uj.JourneyID); err != nil {
		return err
	}
	slog.Info("journey deleted", "user", userID, "message", repliedMessageID)

	if s.cache != nil {
		_ = s.cache.Delete(ctx, listingCacheKey(user.ID))
	}
	if s.events != nil {
		ev := &domain.JourneyEvent{
			UserID:    user.UserID,
			Username:  user.Username,
			MessageID: uj.MessageID,
			Time:      time.Now(),
		}
		// The journey row outlives the binding, so consumers get the
		// same key and segment count the saved event carried.
		if journey, jerr := s.journeys.GetByID(ctx, uj.JourneyID); jerr == nil && journey != nil {
			ev.JourneyKey = journey.JourneyID
			ev.Segments = len(journey.Segments)
		} else if jerr != nil {
			slog.Warn("resolve deleted journey failed", "error", jerr)
		}
		if err := s.events.PublishJourneyDeleted(ctx, ev); err != nil {
			slog.Warn("publish journey deleted failed", "error", err)
		}
	}
	return nil
}
