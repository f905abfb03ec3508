package postgres

import (
	"context"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// JourneyRepo implements ports.JourneyRepository with pgx.
type JourneyRepo struct {
	db *DB
}

// NewJourneyRepo creates a new JourneyRepo.
func NewJourneyRepo(db *DB) *JourneyRepo {
	return &JourneyRepo{db: db}
}

// GetOrCreate returns the journey with j.JourneyID, creating it and
// its ordered segment links in one transaction when missing. The
// segment list is a creation-time default only: an existing journey is
// returned as stored, never relinked.
func (r *JourneyRepo) GetOrCreate(ctx context.Context, j *domain.Journey) (*domain.Journey, error) {
	existing, err := r.GetByJourneyID(ctx, j.JourneyID)
	if err == nil {
		return existing, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	err = r.insert(ctx, j)
	if err == nil {
		return r.GetByJourneyID(ctx, j.JourneyID)
	}
	if !isUniqueViolation(err) {
		return nil, err
	}

	metrics.GetOrCreateConflicts.WithLabelValues("journey").Inc()
	existing, err = r.GetByJourneyID(ctx, j.JourneyID)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: journey id=%s", domain.ErrConflictUnresolved, j.JourneyID)
	}
	return existing, err
}

func (r *JourneyRepo) insert(ctx context.Context, j *domain.Journey) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO journeys (journey_id) VALUES ($1) RETURNING id
	`, j.JourneyID).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert journey: %w", err)
	}

	for pos, seg := range j.Segments {
		if _, err := tx.Exec(ctx, `
			INSERT INTO journey_segments (journey_id, segment_id, position)
			VALUES ($1, $2, $3)
		`, id, seg.ID, pos); err != nil {
			return fmt.Errorf("insert journey segment: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByJourneyID returns the journey with the given composite key and
// its ordered segments (stations not populated; use SegmentRepo for
// full segment detail).
func (r *JourneyRepo) GetByJourneyID(ctx context.Context, journeyID string) (*domain.Journey, error) {
	var j domain.Journey
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, journey_id, created_at FROM journeys WHERE journey_id = $1
	`, journeyID).Scan(&j.ID, &j.JourneyID, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.loadSegments(ctx, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// GetByID returns the journey with the given row id, as referenced by
// user-journey bindings.
func (r *JourneyRepo) GetByID(ctx context.Context, id int64) (*domain.Journey, error) {
	var j domain.Journey
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, journey_id, created_at FROM journeys WHERE id = $1
	`, id).Scan(&j.ID, &j.JourneyID, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.loadSegments(ctx, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JourneyRepo) loadSegments(ctx context.Context, j *domain.Journey) error {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT s.id, s.segment_id, s.train_name,
		       s.departure_scheduled, s.arrival_scheduled
		FROM journey_segments js
		JOIN segments s ON s.id = js.segment_id
		WHERE js.journey_id = $1
		ORDER BY js.position
	`, j.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Segment
		if err := rows.Scan(&s.ID, &s.SegmentID, &s.TrainName,
			&s.DepartureScheduled, &s.ArrivalScheduled); err != nil {
			return err
		}
		j.Segments = append(j.Segments, s)
	}
	return rows.Err()
}
