package postgres

import (
	"context"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// StationRepo implements ports.StationRepository with pgx.
type StationRepo struct {
	db *DB
}

// NewStationRepo creates a new StationRepo.
func NewStationRepo(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

// GetOrCreate returns the station with st.EVA, creating it from st's
// fields when missing. A concurrent insert of the same EVA is resolved
// by one re-read; if that still finds nothing the conflict is
// unexplainable and reported as domain.ErrConflictUnresolved.
func (r *StationRepo) GetOrCreate(ctx context.Context, st *domain.Station) (*domain.Station, error) {
	existing, err := r.GetByEVA(ctx, st.EVA)
	if err == nil {
		return existing, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	var created domain.Station
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO stations (eva, name, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		RETURNING id, eva, name, latitude, longitude, created_at
	`, st.EVA, st.Name, st.Latitude, st.Longitude).Scan(
		&created.ID, &created.EVA, &created.Name,
		&created.Latitude, &created.Longitude, &created.CreatedAt,
	)
	if err == nil {
		return &created, nil
	}
	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("insert station: %w", err)
	}

	metrics.GetOrCreateConflicts.WithLabelValues("station").Inc()
	existing, err = r.GetByEVA(ctx, st.EVA)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: station eva=%s", domain.ErrConflictUnresolved, st.EVA)
	}
	return existing, err
}

// GetByEVA returns the station with the given provider id.
func (r *StationRepo) GetByEVA(ctx context.Context, eva string) (*domain.Station, error) {
	var s domain.Station
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, eva, name, latitude, longitude, created_at
		FROM stations WHERE eva = $1
	`, eva).Scan(&s.ID, &s.EVA, &s.Name, &s.Latitude, &s.Longitude, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
