package postgres

import (
	"context"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/geospatial"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// UserJourneyRepo implements ports.UserJourneyRepository with pgx.
type UserJourneyRepo struct {
	db *DB
}

// NewUserJourneyRepo creates a new UserJourneyRepo.
func NewUserJourneyRepo(db *DB) *UserJourneyRepo {
	return &UserJourneyRepo{db: db}
}

// GetOrCreate returns the binding for (uj.UserID, uj.JourneyID),
// creating it with uj's message id and raw text when missing. When an
// earlier or concurrent submission already holds the pair, the
// original row with the original message id comes back, which is how
// the caller detects a duplicate.
func (r *UserJourneyRepo) GetOrCreate(ctx context.Context, uj *domain.UserJourney) (*domain.UserJourney, error) {
	existing, err := r.get(ctx, uj.UserID, uj.JourneyID)
	if err == nil {
		return existing, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	var created domain.UserJourney
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO user_journeys (user_id, journey_id, message_id, text)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, journey_id, message_id, text, price_cents, created_at
	`, uj.UserID, uj.JourneyID, uj.MessageID, uj.Text).Scan(
		&created.UserID, &created.JourneyID, &created.MessageID,
		&created.Text, &created.PriceCents, &created.CreatedAt,
	)
	if err == nil {
		return &created, nil
	}
	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("insert user journey: %w", err)
	}

	metrics.GetOrCreateConflicts.WithLabelValues("user_journey").Inc()
	existing, err = r.get(ctx, uj.UserID, uj.JourneyID)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: user journey (%d,%d)", domain.ErrConflictUnresolved, uj.UserID, uj.JourneyID)
	}
	return existing, err
}

func (r *UserJourneyRepo) get(ctx context.Context, userID, journeyID int64) (*domain.UserJourney, error) {
	return r.scanOne(ctx, `
		WHERE uj.user_id = $1 AND uj.journey_id = $2
	`, userID, journeyID)
}

// FindByUserAndMessage locates the journey a reply-scoped command
// targets, by the submitting user and the replied-to message.
func (r *UserJourneyRepo) FindByUserAndMessage(ctx context.Context, userID, messageID int64) (*domain.UserJourney, error) {
	uj, err := r.scanOne(ctx, `
		WHERE uj.user_id = $1 AND uj.message_id = $2
	`, userID, messageID)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: no journey for message %d", domain.ErrJourneyNotFound, messageID)
	}
	return uj, err
}

func (r *UserJourneyRepo) scanOne(ctx context.Context, where string, args ...any) (*domain.UserJourney, error) {
	var (
		uj domain.UserJourney

		catID, purID       *int64
		catName, purName   *string
		catColor, purColor *string
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT uj.user_id, uj.journey_id, uj.message_id, uj.text, uj.price_cents, uj.created_at,
		       c.id, c.name, c.color,
		       p.id, p.name, p.color
		FROM user_journeys uj
		LEFT JOIN categories c ON c.id = uj.category_id
		LEFT JOIN purposes p ON p.id = uj.purpose_id
	`+where, args...).Scan(
		&uj.UserID, &uj.JourneyID, &uj.MessageID, &uj.Text, &uj.PriceCents, &uj.CreatedAt,
		&catID, &catName, &catColor,
		&purID, &purName, &purColor,
	)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		uj.Category = &domain.Tag{ID: *catID, Kind: domain.TagCategory, Name: *catName, Color: catColor}
	}
	if purID != nil {
		uj.Purpose = &domain.Tag{ID: *purID, Kind: domain.TagPurpose, Name: *purName, Color: purColor}
	}
	return &uj, nil
}

// Delete removes a user's journey binding. The shared journey and
// segment rows stay behind for other users.
func (r *UserJourneyRepo) Delete(ctx context.Context, userID, journeyID int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM user_journeys WHERE user_id = $1 AND journey_id = $2
	`, userID, journeyID)
	return err
}

// SetPrice updates the price; nil clears it.
func (r *UserJourneyRepo) SetPrice(ctx context.Context, userID, journeyID int64, priceCents *int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE user_journeys SET price_cents = $1 WHERE user_id = $2 AND journey_id = $3
	`, priceCents, userID, journeyID)
	return err
}

// SetCategory updates the category tag reference; nil clears it.
func (r *UserJourneyRepo) SetCategory(ctx context.Context, userID, journeyID int64, tagID *int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE user_journeys SET category_id = $1 WHERE user_id = $2 AND journey_id = $3
	`, tagID, userID, journeyID)
	return err
}

// SetPurpose updates the purpose tag reference; nil clears it.
func (r *UserJourneyRepo) SetPurpose(ctx context.Context, userID, journeyID int64, tagID *int64) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE user_journeys SET purpose_id = $1 WHERE user_id = $2 AND journey_id = $3
	`, tagID, userID, journeyID)
	return err
}

// ListByUser returns one summary row per saved journey, newest first.
// Origin and destination come from the first and last segment of the
// journey; distance is the great-circle length between those two
// endpoints, not the summed leg lengths, so detours read shorter.
func (r *UserJourneyRepo) ListByUser(ctx context.Context, userID int64) ([]domain.JourneySummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT uj.message_id, j.journey_id, uj.price_cents, c.name, p.name, uj.created_at,
		       fo.name, fo.latitude, fo.longitude,
		       ld.name, ld.latitude, ld.longitude,
		       fs.departure_scheduled, ls.arrival_scheduled,
		       (SELECT count(*) FROM journey_segments WHERE journey_id = j.id)
		FROM user_journeys uj
		JOIN journeys j ON j.id = uj.journey_id
		JOIN journey_segments jsf ON jsf.journey_id = j.id
		    AND jsf.position = 0
		JOIN journey_segments jsl ON jsl.journey_id = j.id
		    AND jsl.position = (SELECT max(position) FROM journey_segments WHERE journey_id = j.id)
		JOIN segments fs ON fs.id = jsf.segment_id
		JOIN segments ls ON ls.id = jsl.segment_id
		JOIN stations fo ON fo.id = fs.origin_id
		JOIN stations ld ON ld.id = ls.destination_id
		LEFT JOIN categories c ON c.id = uj.category_id
		LEFT JOIN purposes p ON p.id = uj.purpose_id
		WHERE uj.user_id = $1
		ORDER BY uj.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.JourneySummary
	for rows.Next() {
		var s domain.JourneySummary
		var oLat, oLon, dLat, dLon float64
		if err := rows.Scan(
			&s.MessageID, &s.JourneyKey, &s.PriceCents, &s.Category, &s.Purpose, &s.SubmittedAt,
			&s.Origin, &oLat, &oLon,
			&s.Destination, &dLat, &dLon,
			&s.DepartureScheduled, &s.ArrivalScheduled,
			&s.Segments,
		); err != nil {
			return nil, err
		}
		s.DistanceKM = geospatial.DistanceKM(oLat, oLon, dLat, dLon)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
