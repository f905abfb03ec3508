package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/usecases"
)

func newAnnotationService(userJourneys *mockUserJourneyRepo, tags *mockTagRepo) *usecases.AnnotationService {
	return usecases.NewAnnotationService(
		&mockUserRepo{}, userJourneys, &mockJourneyRepo{}, tags, nil, nil,
	)
}

func boundJourney() *mockUserJourneyRepo {
	return &mockUserJourneyRepo{
		findFn: func(ctx context.Context, userID, messageID int64) (*domain.UserJourney, error) {
			return &domain.UserJourney{UserID: userID, JourneyID: 9, MessageID: messageID}, nil
		},
	}
}

func TestAnnotationService_SetPrice_CommaDecimal(t *testing.T) {
	repo := boundJourney()
	var got *int64
	repo.setPriceFn = func(ctx context.Context, userID, journeyID int64, priceCents *int64) error {
		got = priceCents
		return nil
	}

	svc := newAnnotationService(repo, &mockTagRepo{})

	if err := svc.SetPrice(context.Background(), "42", 100, "12,50"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != 1250 {
		t.Fatalf("expected 1250 cents, got %v", got)
	}
}

func TestAnnotationService_SetPrice_NoneClears(t *testing.T) {
	repo := boundJourney()
	called := false
	repo.setPriceFn = func(ctx context.Context, userID, journeyID int64, priceCents *int64) error {
		called = true
		if priceCents != nil {
			t.Errorf("expected nil price, got %d", *priceCents)
		}
		return nil
	}

	svc := newAnnotationService(repo, &mockTagRepo{})

	if err := svc.SetPrice(context.Background(), "42", 100, "None"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("repo was not called")
	}
}

func TestAnnotationService_SetPrice_Invalid(t *testing.T) {
	svc := newAnnotationService(boundJourney(), &mockTagRepo{})

	for _, raw := range []string{"abc", "12,50,00", "-3", "12.", ""} {
		if err := svc.SetPrice(context.Background(), "42", 100, raw); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("price %q: expected ErrValidation, got %v", raw, err)
		}
	}
}

func TestAnnotationService_SetPrice_NoTarget(t *testing.T) {
	svc := newAnnotationService(&mockUserJourneyRepo{}, &mockTagRepo{})

	err := svc.SetPrice(context.Background(), "42", 100, "12.50")
	if !errors.Is(err, domain.ErrJourneyNotFound) {
		t.Fatalf("expected ErrJourneyNotFound, got %v", err)
	}
}

func TestAnnotationService_SetTag_LowercasesAndPersists(t *testing.T) {
	repo := boundJourney()
	var setID *int64
	repo.setCategoryFn = func(ctx context.Context, userID, journeyID int64, tagID *int64) error {
		setID = tagID
		return nil
	}

	tags := &mockTagRepo{
		getOrCreateFn: func(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
			if tag.Name != "commute" {
				t.Errorf("expected lowercased name, got %q", tag.Name)
			}
			if tag.Kind != domain.TagCategory {
				t.Errorf("expected category kind, got %s", tag.Kind)
			}
			if tag.Color == nil || *tag.Color != "#ff0000" {
				t.Errorf("color not carried over: %v", tag.Color)
			}
			created := *tag
			created.ID = 3
			return &created, nil
		},
	}

	svc := newAnnotationService(repo, tags)

	if err := svc.SetTag(context.Background(), "42", 100, domain.TagCategory, "Commute", "#ff0000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setID == nil || *setID != 3 {
		t.Fatalf("expected tag id 3, got %v", setID)
	}
}

func TestAnnotationService_SetTag_NoneClears(t *testing.T) {
	repo := boundJourney()
	called := false
	repo.setPurposeFn = func(ctx context.Context, userID, journeyID int64, tagID *int64) error {
		called = true
		if tagID != nil {
			t.Errorf("expected nil tag id, got %d", *tagID)
		}
		return nil
	}

	svc := newAnnotationService(repo, &mockTagRepo{})

	if err := svc.SetTag(context.Background(), "42", 100, domain.TagPurpose, "NONE", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("repo was not called")
	}
}

func TestAnnotationService_SetTag_BadColor(t *testing.T) {
	svc := newAnnotationService(boundJourney(), &mockTagRepo{})

	for _, color := range []string{"red", "#ff00", "#gggggg", "ff0000"} {
		err := svc.SetTag(context.Background(), "42", 100, domain.TagCategory, "commute", color)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("color %q: expected ErrValidation, got %v", color, err)
		}
	}
}

func TestAnnotationService_Delete(t *testing.T) {
	repo := boundJourney()
	deleted := false
	repo.deleteFn = func(ctx context.Context, userID, journeyID int64) error {
		deleted = true
		if journeyID != 9 {
			t.Errorf("expected journey 9, got %d", journeyID)
		}
		return nil
	}

	svc := newAnnotationService(repo, &mockTagRepo{})

	if err := svc.Delete(context.Background(), "42", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("binding was not deleted")
	}
}

func TestAnnotationService_Delete_EventCarriesJourneyDetails(t *testing.T) {
	journeys := &mockJourneyRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Journey, error) {
			if id != 9 {
				t.Errorf("expected journey row 9, got %d", id)
			}
			return &domain.Journey{
				ID:        9,
				JourneyID: "trip-1#trip-2",
				Segments:  make([]domain.Segment, 2),
			}, nil
		},
	}
	var published *domain.JourneyEvent
	events := &mockPublisher{
		deletedFn: func(ctx context.Context, ev *domain.JourneyEvent) error {
			published = ev
			return nil
		},
	}

	svc := usecases.NewAnnotationService(
		&mockUserRepo{}, boundJourney(), journeys, &mockTagRepo{}, events, nil,
	)

	if err := svc.Delete(context.Background(), "42", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if published == nil {
		t.Fatal("no delete event published")
	}
	if published.JourneyKey != "trip-1#trip-2" {
		t.Errorf("journey key = %q, want trip-1#trip-2", published.JourneyKey)
	}
	if published.Segments != 2 {
		t.Errorf("segments = %d, want 2", published.Segments)
	}
	if published.MessageID != 100 {
		t.Errorf("message id = %d, want 100", published.MessageID)
	}
}

func TestAnnotationService_Delete_NoTarget(t *testing.T) {
	svc := newAnnotationService(&mockUserJourneyRepo{}, &mockTagRepo{})

	err := svc.Delete(context.Background(), "42", 100)
	if !errors.Is(err, domain.ErrJourneyNotFound) {
		t.Fatalf("expected ErrJourneyNotFound, got %v", err)
	}
}
