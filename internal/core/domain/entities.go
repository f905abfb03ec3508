package domain

import (
	"time"
)

// Station is a canonical railway station, keyed by the journey
// provider's stable EVA location id. Created lazily on first
// resolution and never mutated afterwards.
type Station struct {
	ID        int64     `json:"id"`
	EVA       string    `json:"eva"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// Segment is a single resolved train leg between two stations, keyed
// by the provider's stable leg (trip) identifier. A segment is
// create-once: observed times and delays are captured at resolution
// time and not refreshed later.
type Segment struct {
	ID        int64  `json:"id"`
	SegmentID string `json:"segment_id"`

	TrainName   string `json:"train_name"`
	TrainNumber string `json:"train_number,omitempty"`
	TrainType   string `json:"train_type,omitempty"`
	Direction   string `json:"direction,omitempty"`

	DepartureScheduled time.Time  `json:"departure_scheduled"`
	DepartureActual    *time.Time `json:"departure_actual,omitempty"`
	DepartureDelay     *int       `json:"departure_delay,omitempty"` // seconds
	ArrivalScheduled   time.Time  `json:"arrival_scheduled"`
	ArrivalActual      *time.Time `json:"arrival_actual,omitempty"`
	ArrivalDelay       *int       `json:"arrival_delay,omitempty"` // seconds

	Origin      *Station  `json:"origin"`
	Destination *Station  `json:"destination"`
	Stopovers   []Station `json:"stopovers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Journey is one logical trip, keyed by the ordered segment ids joined
// with "#". Identical leg sequences always map to the same row.
type Journey struct {
	ID        int64     `json:"id"`
	JourneyID string    `json:"journey_id"`
	Segments  []Segment `json:"segments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a bot user, keyed by the chat platform's external id. The
// username is user-settable and globally unique.
type User struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// TagKind selects which tag table a Tag lives in.
type TagKind string

const (
	TagCategory TagKind = "category"
	TagPurpose  TagKind = "purpose"
)

// Tag is a free-text category or purpose label with an optional color.
type Tag struct {
	ID    int64   `json:"id"`
	Kind  TagKind `json:"kind"`
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
}

// UserJourney binds a user to a journey together with the submission
// metadata. The message id of the first successful submission is kept
// as the anchor for duplicate reporting and reply-scoped edits.
type UserJourney struct {
	UserID    int64 `json:"user_id"`
	JourneyID int64 `json:"journey_id"`

	MessageID  int64  `json:"message_id"`
	Text       string `json:"text,omitempty"`
	PriceCents *int64 `json:"price_cents,omitempty"`

	Category *Tag `json:"category,omitempty"`
	Purpose  *Tag `json:"purpose,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SubmissionStatus tags the outcome of one itinerary submission.
type SubmissionStatus string

const (
	SubmissionSaved     SubmissionStatus = "saved"
	SubmissionDuplicate SubmissionStatus = "duplicate"
)

// SubmissionResult is the outcome of a submission pipeline run that
// made it through resolution. Callers branch on Status instead of
// unwinding errors: a duplicate is a regular outcome, not a failure.
type SubmissionResult struct {
	Status      SubmissionStatus `json:"status"`
	Journey     *Journey         `json:"journey"`
	UserJourney *UserJourney     `json:"user_journey"`

	// OriginalMessageID is set on the duplicate path and names the
	// message that first recorded this (user, journey) pair.
	OriginalMessageID int64 `json:"original_message_id,omitempty"`
}

// JourneySummary is a read-model row for listings and export.
type JourneySummary struct {
	MessageID          int64     `json:"message_id"`
	JourneyKey         string    `json:"journey_key"`
	Origin             string    `json:"origin"`
	Destination        string    `json:"destination"`
	DepartureScheduled time.Time `json:"departure_scheduled"`
	ArrivalScheduled   time.Time `json:"arrival_scheduled"`
	Segments           int       `json:"segments"`
	DistanceKM         float64   `json:"distance_km"`
	PriceCents         *int64    `json:"price_cents,omitempty"`
	Category           *string   `json:"category,omitempty"`
	Purpose            *string   `json:"purpose,omitempty"`
	SubmittedAt        time.Time `json:"submitted_at"`
}
