package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
)

type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Location, error) {
	query := `
	SELECT id, name, daily_capacity, active
	FROM locations
	WHERE id = $1
	`

	var loc domain.Location
	err := r.db.QueryRowContext(ctx, query, id).Scan(&loc.ID, &loc.Name, &loc.DailyCapacity, &loc.Active)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrLocationNotFound
		}
		return nil, err
	}

	return &loc, nil
}

func (r *LocationRepository) ListActive(ctx context.Context) ([]domain.Location, error) {
	query := `
	SELECT id, name, daily_capacity, active
	FROM locations
	WHERE active = TRUE
	ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.DailyCapacity, &loc.Active); err != nil {
			return nil, err
		}

		locations = append(locations, loc)
	}

	return locations, rows.Err()
}
