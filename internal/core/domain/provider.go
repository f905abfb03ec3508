package domain

import "time"

// ProviderStop is a location candidate returned by the journey
// provider's search endpoints.
type ProviderStop struct {
	EVA       string  `json:"eva"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ProviderJourney is one journey option returned by the provider. The
// leg resolver only ever accepts journeys with exactly one leg.
type ProviderJourney struct {
	Legs []ProviderLeg `json:"legs"`
}

// ProviderLeg is a single leg of a provider journey.
type ProviderLeg struct {
	ID          string `json:"id"`
	TrainName   string `json:"train_name"`
	TrainNumber string `json:"train_number"`
	TrainType   string `json:"train_type"`
	Direction   string `json:"direction"`

	PlannedDeparture time.Time  `json:"planned_departure"`
	Departure        *time.Time `json:"departure,omitempty"`
	DepartureDelay   *int       `json:"departure_delay,omitempty"`
	PlannedArrival   time.Time  `json:"planned_arrival"`
	Arrival          *time.Time `json:"arrival,omitempty"`
	ArrivalDelay     *int       `json:"arrival_delay,omitempty"`

	Origin      ProviderStop   `json:"origin"`
	Destination ProviderStop   `json:"destination"`
	Stopovers   []ProviderStop `json:"stopovers,omitempty"`
}
