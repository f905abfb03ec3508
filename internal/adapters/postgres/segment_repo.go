package postgres

import (
	"context"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// SegmentRepo implements ports.SegmentRepository with pgx.
type SegmentRepo struct {
	db *DB
}

// NewSegmentRepo creates a new SegmentRepo.
func NewSegmentRepo(db *DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

// GetOrCreate returns the segment with seg.SegmentID, creating it
// together with its ordered stopover links in one transaction when
// missing. seg.Origin, seg.Destination and seg.Stopovers must already
// be persisted stations.
func (r *SegmentRepo) GetOrCreate(ctx context.Context, seg *domain.Segment) (*domain.Segment, error) {
	existing, err := r.GetBySegmentID(ctx, seg.SegmentID)
	if err == nil {
		return existing, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	err = r.insert(ctx, seg)
	if err == nil {
		return r.GetBySegmentID(ctx, seg.SegmentID)
	}
	if !isUniqueViolation(err) {
		return nil, err
	}

	// A concurrent writer won the race; its row must be visible now.
	metrics.GetOrCreateConflicts.WithLabelValues("segment").Inc()
	existing, err = r.GetBySegmentID(ctx, seg.SegmentID)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: segment id=%s", domain.ErrConflictUnresolved, seg.SegmentID)
	}
	return existing, err
}

func (r *SegmentRepo) insert(ctx context.Context, seg *domain.Segment) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO segments (
			segment_id, train_name, train_number, train_type, direction,
			departure_scheduled, departure_actual, departure_delay,
			arrival_scheduled, arrival_actual, arrival_delay,
			origin_id, destination_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, seg.SegmentID, seg.TrainName, seg.TrainNumber, seg.TrainType, seg.Direction,
		seg.DepartureScheduled, seg.DepartureActual, seg.DepartureDelay,
		seg.ArrivalScheduled, seg.ArrivalActual, seg.ArrivalDelay,
		seg.Origin.ID, seg.Destination.ID).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert segment: %w", err)
	}

	for pos, stop := range seg.Stopovers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO stopovers (segment_id, station_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (segment_id, station_id) DO NOTHING
		`, id, stop.ID, pos); err != nil {
			return fmt.Errorf("insert stopover: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetBySegmentID returns the segment with the given provider leg id,
// including its stations and ordered stopovers.
func (r *SegmentRepo) GetBySegmentID(ctx context.Context, segmentID string) (*domain.Segment, error) {
	var (
		s           domain.Segment
		origin      domain.Station
		destination domain.Station
	)
	err := r.db.Pool.QueryRow(ctx, `
		SELECT s.id, s.segment_id, s.train_name, s.train_number, s.train_type, s.direction,
		       s.departure_scheduled, s.departure_actual, s.departure_delay,
		       s.arrival_scheduled, s.arrival_actual, s.arrival_delay,
		       s.created_at,
		       o.id, o.eva, o.name, o.latitude, o.longitude, o.created_at,
		       d.id, d.eva, d.name, d.latitude, d.longitude, d.created_at
		FROM segments s
		JOIN stations o ON o.id = s.origin_id
		JOIN stations d ON d.id = s.destination_id
		WHERE s.segment_id = $1
	`, segmentID).Scan(
		&s.ID, &s.SegmentID, &s.TrainName, &s.TrainNumber, &s.TrainType, &s.Direction,
		&s.DepartureScheduled, &s.DepartureActual, &s.DepartureDelay,
		&s.ArrivalScheduled, &s.ArrivalActual, &s.ArrivalDelay,
		&s.CreatedAt,
		&origin.ID, &origin.EVA, &origin.Name, &origin.Latitude, &origin.Longitude, &origin.CreatedAt,
		&destination.ID, &destination.EVA, &destination.Name, &destination.Latitude, &destination.Longitude, &destination.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Origin = &origin
	s.Destination = &destination

	rows, err := r.db.Pool.Query(ctx, `
		SELECT st.id, st.eva, st.name, st.latitude, st.longitude, st.created_at
		FROM stopovers sp
		JOIN stations st ON st.id = sp.station_id
		WHERE sp.segment_id = $1
		ORDER BY sp.position
	`, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var st domain.Station
		if err := rows.Scan(&st.ID, &st.EVA, &st.Name, &st.Latitude, &st.Longitude, &st.CreatedAt); err != nil {
			return nil, err
		}
		s.Stopovers = append(s.Stopovers, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}
