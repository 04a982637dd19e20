package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
)

type PlaylistRepository struct {
	db *sql.DB
}

func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// UnassignedEntries builds the composition candidate pool: confirmed day
// entries for (location, day) whose ad is not already placed into a
// playlist for that day. Ordered by entry id so repeated fetches walk the
// pool in the same order.
func (r *PlaylistRepository) UnassignedEntries(ctx context.Context, locationID uuid.UUID, day time.Time) ([]domain.CandidateAd, error) {
	query := `
	SELECT e.id, a.id, a.name, a.video_url, e.duration
	FROM reservation_day_entries e
	JOIN reservations res ON res.id = e.reservation_id
	JOIN ads a ON a.id = res.ad_id
	WHERE e.location_id = $1
	  AND e.date = $2
	  AND res.status = 'CONFIRMED'
	  AND NOT EXISTS (
		SELECT 1
		FROM playlist_ad_entries pae
		JOIN playlists p ON p.id = pae.playlist_id
		WHERE pae.ad_id = a.id AND p.location_id = $1 AND p.date = $2
	  )
	ORDER BY e.id
	`

	rows, err := r.db.QueryContext(ctx, query, locationID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate pool: %w", err)
	}

	defer rows.Close()

	var pool []domain.CandidateAd
	for rows.Next() {
		var cand domain.CandidateAd
		if err := rows.Scan(&cand.EntryID, &cand.AdID, &cand.Name, &cand.VideoURL, &cand.Duration); err != nil {
			return nil, err
		}
		pool = append(pool, cand)
	}

	return pool, rows.Err()
}

// CreatePlaylist writes the playlist header and its ordered ad entries in
// one transaction; either everything lands or nothing does.
func (r *PlaylistRepository) CreatePlaylist(ctx context.Context, pl *domain.Playlist) error {
	if len(pl.Entries) == 0 {
		return errors.New("refusing to persist playlist with no entries")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryHeader := `
	INSERT INTO playlists (id, location_id, date, slot, name, target_duration, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, queryHeader, pl.ID, pl.LocationID, pl.Date, pl.Slot, pl.Name, pl.TargetDuration, pl.Status, pl.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert playlist header: %w", err)
	}

	queryEntry := `
	INSERT INTO playlist_ad_entries (playlist_id, ad_id, position, duration)
	VALUES ($1, $2, $3, $4)
	`

	stmt, err := tx.PrepareContext(ctx, queryEntry)
	if err != nil {
		return fmt.Errorf("failed to prepare entry statement: %w", err)
	}

	defer stmt.Close()

	for _, entry := range pl.Entries {
		_, err := stmt.ExecContext(ctx, entry.PlaylistID, entry.AdID, entry.Position, entry.Duration)
		if err != nil {
			return fmt.Errorf("failed to insert playlist entry ad %s: %w", entry.AdID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *PlaylistRepository) PlaylistsForDay(ctx context.Context, locationID uuid.UUID, day time.Time) ([]domain.Playlist, error) {
	query := `
	SELECT id, location_id, date, slot, name, target_duration, status, output_ref, created_at
	FROM playlists
	WHERE location_id = $1 AND date = $2
	ORDER BY slot
	`

	rows, err := r.db.QueryContext(ctx, query, locationID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	defer rows.Close()

	var playlists []domain.Playlist
	for rows.Next() {
		var pl domain.Playlist
		var outputRef sql.NullString
		if err := rows.Scan(
			&pl.ID,
			&pl.LocationID,
			&pl.Date,
			&pl.Slot,
			&pl.Name,
			&pl.TargetDuration,
			&pl.Status,
			&outputRef,
			&pl.CreatedAt,
		); err != nil {
			return nil, err
		}

		if outputRef.Valid {
			ref := outputRef.String
			pl.OutputRef = &ref
		}

		entries, err := r.entriesFor(ctx, pl.ID)
		if err != nil {
			return nil, err
		}
		pl.Entries = entries

		playlists = append(playlists, pl)
	}

	return playlists, rows.Err()
}

func (r *PlaylistRepository) entriesFor(ctx context.Context, playlistID uuid.UUID) ([]domain.PlaylistAdEntry, error) {
	query := `
	SELECT pae.playlist_id, pae.ad_id, pae.position, pae.duration, a.video_url
	FROM playlist_ad_entries pae
	JOIN ads a ON a.id = pae.ad_id
	WHERE pae.playlist_id = $1
	ORDER BY pae.position
	`

	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var entries []domain.PlaylistAdEntry
	for rows.Next() {
		var entry domain.PlaylistAdEntry
		if err := rows.Scan(&entry.PlaylistID, &entry.AdID, &entry.Position, &entry.Duration, &entry.VideoURL); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *PlaylistRepository) AttachOutputRef(ctx context.Context, id uuid.UUID, ref string) error {
	query := `
	UPDATE playlists
	SET output_ref = $1
	WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, ref, id)

	return err
}
