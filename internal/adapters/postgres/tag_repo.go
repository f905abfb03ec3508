package postgres

import (
	"context"
	"fmt"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
	"github.com/tiuub/RailwayHistoryTelegramBot/internal/pkg/metrics"
)

// TagRepo implements ports.TagRepository over the category and purpose
// tables.
type TagRepo struct {
	db *DB
}

// NewTagRepo creates a new TagRepo.
func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{db: db}
}

func tagTable(kind domain.TagKind) (string, error) {
	switch kind {
	case domain.TagCategory:
		return "categories", nil
	case domain.TagPurpose:
		return "purposes", nil
	default:
		return "", fmt.Errorf("unknown tag kind %q", kind)
	}
}

// GetOrCreate returns the tag with tag.Kind and tag.Name, creating it
// with tag.Color when missing. Color is a creation-time default only.
func (r *TagRepo) GetOrCreate(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	table, err := tagTable(tag.Kind)
	if err != nil {
		return nil, err
	}

	existing, err := r.getByName(ctx, table, tag.Kind, tag.Name)
	if err == nil {
		return existing, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	created := domain.Tag{Kind: tag.Kind}
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO `+table+` (name, color) VALUES ($1, $2) RETURNING id, name, color`,
		tag.Name, tag.Color,
	).Scan(&created.ID, &created.Name, &created.Color)
	if err == nil {
		return &created, nil
	}
	if !isUniqueViolation(err) {
		return nil, fmt.Errorf("insert %s: %w", tag.Kind, err)
	}

	metrics.GetOrCreateConflicts.WithLabelValues(string(tag.Kind)).Inc()
	existing, err = r.getByName(ctx, table, tag.Kind, tag.Name)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s %q", domain.ErrConflictUnresolved, tag.Kind, tag.Name)
	}
	return existing, err
}

func (r *TagRepo) getByName(ctx context.Context, table string, kind domain.TagKind, name string) (*domain.Tag, error) {
	t := domain.Tag{Kind: kind}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, color FROM `+table+` WHERE name = $1`,
		name,
	).Scan(&t.ID, &t.Name, &t.Color)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
