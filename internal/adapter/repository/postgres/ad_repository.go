package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
)

type AdRepository struct {
	db *sql.DB
}

func NewAdRepository(db *sql.DB) *AdRepository {
	return &AdRepository{db: db}
}

func (r *AdRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error) {
	query := `
	SELECT id, name, description, video_url, duration, status
	FROM ads
	WHERE id = $1
	`

	var ad domain.Ad
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ad.ID,
		&ad.Name,
		&ad.Description,
		&ad.VideoURL,
		&ad.Duration,
		&ad.Status,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAdNotFound
		}
		return nil, err
	}

	return &ad, nil
}
