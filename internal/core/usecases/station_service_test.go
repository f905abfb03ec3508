package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/usecases"
)

func TestStationService_ResolveByName_FirstCandidateWins(t *testing.T) {
	provider := &mockProvider{
		locationsFn: func(ctx context.Context, query string, limit int) ([]domain.ProviderStop, error) {
			if query != "Berlin" {
				t.Errorf("expected query 'Berlin', got %q", query)
			}
			return []domain.ProviderStop{
				{EVA: "8011160", Name: "Berlin Hbf", Latitude: 52.525, Longitude: 13.369},
				{EVA: "8089021", Name: "Berlin Ostkreuz"},
			}, nil
		},
	}
	repo := &mockStationRepo{
		getOrCreateFn: func(ctx context.Context, st *domain.Station) (*domain.Station, error) {
			created := *st
			created.ID = 7
			return &created, nil
		},
	}

	svc := usecases.NewStationService(repo, provider)

	st, err := svc.ResolveByName(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.EVA != "8011160" {
		t.Errorf("expected top candidate 8011160, got %s", st.EVA)
	}
	if st.Name != "Berlin Hbf" {
		t.Errorf("expected Berlin Hbf, got %s", st.Name)
	}
	if st.ID != 7 {
		t.Errorf("expected persisted id 7, got %d", st.ID)
	}
}

func TestStationService_ResolveByName_NoCandidate(t *testing.T) {
	provider := &mockProvider{
		locationsFn: func(ctx context.Context, query string, limit int) ([]domain.ProviderStop, error) {
			return nil, nil
		},
	}

	svc := usecases.NewStationService(&mockStationRepo{}, provider)

	_, err := svc.ResolveByName(context.Background(), "Nowhere")
	if !errors.Is(err, domain.ErrStationNotFound) {
		t.Fatalf("expected ErrStationNotFound, got %v", err)
	}
}

func TestStationService_ResolveByName_ProviderError(t *testing.T) {
	provider := &mockProvider{
		locationsFn: func(ctx context.Context, query string, limit int) ([]domain.ProviderStop, error) {
			return nil, errors.New("upstream down")
		},
	}

	svc := usecases.NewStationService(&mockStationRepo{}, provider)

	_, err := svc.ResolveByName(context.Background(), "Berlin")
	if err == nil {
		t.Fatal("expected error when provider fails")
	}
	if errors.Is(err, domain.ErrStationNotFound) {
		t.Error("provider failure must not look like a missing station")
	}
}
