package domain

import "time"

// JourneyEvent is published to the message broker when a user saves
// or deletes a journey.
type JourneyEvent struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	JourneyKey string    `json:"journey_key"`
	MessageID  int64     `json:"message_id"`
	Segments   int       `json:"segments"`
	Time       time.Time `json:"time"`
}
