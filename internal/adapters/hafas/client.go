// Package hafas implements ports.JourneyProvider against a
// db-rest-style HAFAS REST API (e.g. v6.db.transport.rest).
package hafas

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// Client talks to the journey provider.
type Client struct {
	http    *resty.Client
	results int
	tracer  trace.Tracer
}

// New creates a provider client. results caps how many journey
// candidates one query asks for.
func New(baseURL string, timeout time.Duration, results int) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "RailwayHistoryTelegramBot/1.0")

	return &Client{
		http:    httpClient,
		results: results,
		tracer:  otel.Tracer("hafas"),
	}
}

// location is the wire shape of a db-rest location candidate.
type location struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

func (l location) toStop() domain.ProviderStop {
	return domain.ProviderStop{
		EVA:       l.ID,
		Name:      l.Name,
		Latitude:  l.Location.Latitude,
		Longitude: l.Location.Longitude,
	}
}

type stopoverWire struct {
	Stop location `json:"stop"`
}

type legWire struct {
	TripID    string `json:"tripId"`
	Direction string `json:"direction"`
	Walking   bool   `json:"walking"`
	Line      struct {
		Name        string `json:"name"`
		FahrtNr     string `json:"fahrtNr"`
		ProductName string `json:"productName"`
	} `json:"line"`
	Origin           location       `json:"origin"`
	Destination      location       `json:"destination"`
	Departure        *time.Time     `json:"departure"`
	PlannedDeparture time.Time      `json:"plannedDeparture"`
	DepartureDelay   *int           `json:"departureDelay"`
	Arrival          *time.Time     `json:"arrival"`
	PlannedArrival   time.Time      `json:"plannedArrival"`
	ArrivalDelay     *int           `json:"arrivalDelay"`
	Stopovers        []stopoverWire `json:"stopovers"`
}

type journeysResponse struct {
	Journeys []struct {
		Legs []legWire `json:"legs"`
	} `json:"journeys"`
}

// Locations returns location candidates for a free-text query, in
// provider ranking order.
func (c *Client) Locations(ctx context.Context, query string, limit int) ([]domain.ProviderStop, error) {
	ctx, span := c.tracer.Start(ctx, "hafas.locations",
		trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	var candidates []location
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":     query,
			"results":   strconv.Itoa(limit),
			"stops":     "true",
			"addresses": "false",
			"poi":       "false",
		}).
		SetResult(&candidates).
		Get("/locations")
	c.observe("locations", start, resp, err)
	if err != nil {
		return nil, fmt.Errorf("locations %q: %w", query, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("locations %q: provider returned %s", query, resp.Status())
	}

	stops := make([]domain.ProviderStop, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ID == "" {
			continue
		}
		stops = append(stops, cand.toStop())
	}
	return stops, nil
}

// Journeys returns candidate journeys between two stations departing
// at or near the given time, with stopovers included.
func (c *Client) Journeys(ctx context.Context, fromEVA, toEVA string, departure time.Time, maxTransfers int) ([]domain.ProviderJourney, error) {
	ctx, span := c.tracer.Start(ctx, "hafas.journeys",
		trace.WithAttributes(
			attribute.String("from", fromEVA),
			attribute.String("to", toEVA),
		))
	defer span.End()

	var body journeysResponse
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"from":      fromEVA,
			"to":        toEVA,
			"departure": departure.Format(time.RFC3339),
			"transfers": strconv.Itoa(maxTransfers),
			"stopovers": "true",
			"results":   strconv.Itoa(c.results),
		}).
		SetResult(&body).
		Get("/journeys")
	c.observe("journeys", start, resp, err)
	if err != nil {
		return nil, fmt.Errorf("journeys %s -> %s: %w", fromEVA, toEVA, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("journeys %s -> %s: provider returned %s", fromEVA, toEVA, resp.Status())
	}

	journeys := make([]domain.ProviderJourney, 0, len(body.Journeys))
	for _, j := range body.Journeys {
		var pj domain.ProviderJourney
		for _, leg := range j.Legs {
			pj.Legs = append(pj.Legs, toProviderLeg(leg))
		}
		journeys = append(journeys, pj)
	}
	return journeys, nil
}

func toProviderLeg(leg legWire) domain.ProviderLeg {
	out := domain.ProviderLeg{
		ID:               leg.TripID,
		TrainName:        leg.Line.Name,
		TrainNumber:      leg.Line.FahrtNr,
		TrainType:        leg.Line.ProductName,
		Direction:        leg.Direction,
		PlannedDeparture: leg.PlannedDeparture,
		Departure:        leg.Departure,
		DepartureDelay:   leg.DepartureDelay,
		PlannedArrival:   leg.PlannedArrival,
		Arrival:          leg.Arrival,
		ArrivalDelay:     leg.ArrivalDelay,
		Origin:           leg.Origin.toStop(),
		Destination:      leg.Destination.toStop(),
	}
	for _, so := range leg.Stopovers {
		out.Stopovers = append(out.Stopovers, so.Stop.toStop())
	}
	return out
}

func (c *Client) observe(op string, start time.Time, resp *resty.Response, err error) {
	metrics.ProviderRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case resp != nil && resp.IsError():
		status = strconv.Itoa(resp.StatusCode())
	}
	metrics.ProviderRequests.WithLabelValues(op, status).Inc()
}
