package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/ports"
)

// SegmentService resolves a parsed leg spec against the journey
// provider and persists the matching segment.
type SegmentService struct {
	segments ports.SegmentRepository
	stations *StationService
	provider ports.JourneyProvider
}

// NewSegmentService creates a new SegmentService.
func NewSegmentService(segments ports.SegmentRepository, stations *StationService, provider ports.JourneyProvider) *SegmentService {
	return &SegmentService{segments: segments, stations: stations, provider: provider}
}

// ResolveLeg finds the one zero-transfer connection between origin and
// destination whose planned departure and arrival exactly equal the
// parsed timestamps, and gets or creates its Segment. Zero matches and
// more than one match both fail: the resolver never guesses among
// duplicates.
func (s *SegmentService) ResolveLeg(ctx context.Context, origin, destination *domain.Station, departureScheduled, arrivalScheduled time.Time) (*domain.Segment, error) {
	candidates, err := s.provider.Journeys(ctx, origin.EVA, destination.EVA, departureScheduled, 0)
	if err != nil {
		return nil, fmt.Errorf("journeys %s -> %s: %w", origin.Name, destination.Name, err)
	}

	var matches []domain.ProviderLeg
	for _, j := range candidates {
		if len(j.Legs) != 1 {
			continue
		}
		leg := j.Legs[0]
		if leg.PlannedDeparture.Equal(departureScheduled) && leg.PlannedArrival.Equal(arrivalScheduled) {
			matches = append(matches, leg)
		}
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("%w: %d exact matches for %s -> %s at %s",
			domain.ErrNoSuitableConnection, len(matches),
			origin.Name, destination.Name, departureScheduled.Format("15:04"))
	}
	leg := matches[0]

	legOrigin, err := s.stations.ResolveStop(ctx, leg.Origin)
	if err != nil {
		return nil, err
	}
	legDestination, err := s.stations.ResolveStop(ctx, leg.Destination)
	if err != nil {
		return nil, err
	}

	stopovers := make([]domain.Station, 0, len(leg.Stopovers))
	for _, stop := range leg.Stopovers {
		st, err := s.stations.ResolveStop(ctx, stop)
		if err != nil {
			return nil, err
		}
		stopovers = append(stopovers, *st)
	}

	return s.segments.GetOrCreate(ctx, &domain.Segment{
		SegmentID:          leg.ID,
		TrainName:          leg.TrainName,
		TrainNumber:        leg.TrainNumber,
		TrainType:          leg.TrainType,
		Direction:          leg.Direction,
		DepartureScheduled: leg.PlannedDeparture,
		DepartureActual:    leg.Departure,
		DepartureDelay:     leg.DepartureDelay,
		ArrivalScheduled:   leg.PlannedArrival,
		ArrivalActual:      leg.Arrival,
		ArrivalDelay:       leg.ArrivalDelay,
		Origin:             legOrigin,
		Destination:        legDestination,
		Stopovers:          stopovers,
	})
}
