package usecases

import (
	"context"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/ports"
)

// locationCandidates caps how many candidates one provider lookup
// asks for; only the first is ever used.
const locationCandidates = 5

// StationService resolves free-text station names and provider stop
// records into canonical Station rows.
type StationService struct {
	stations ports.StationRepository
	provider ports.JourneyProvider
}

// NewStationService creates a new StationService.
func NewStationService(stations ports.StationRepository, provider ports.JourneyProvider) *StationService {
	return &StationService{stations: stations, provider: provider}
}

// ResolveByName maps a free-text station name to a canonical Station.
// The provider's top-ranked candidate wins; the station row is keyed
// by the candidate's EVA id, so different aliases of the same station
// converge on one row.
func (s *StationService) ResolveByName(ctx context.Context, name string) (*domain.Station, error) {
	candidates, err := s.provider.Locations(ctx, name, locationCandidates)
	if err != nil {
		return nil, fmt.Errorf("resolve station %q: %w", name, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate for %q", domain.ErrStationNotFound, name)
	}

	return s.ResolveStop(ctx, candidates[0])
}

// ResolveStop gets or creates the Station for a provider stop record,
// keyed by its EVA id. Used for leg endpoints and stopovers, where the
// provider already supplied the id.
func (s *StationService) ResolveStop(ctx context.Context, stop domain.ProviderStop) (*domain.Station, error) {
	return s.stations.GetOrCreate(ctx, &domain.Station{
		EVA:       stop.EVA,
		Name:      stop.Name,
		Latitude:  stop.Latitude,
		Longitude: stop.Longitude,
	})
}
