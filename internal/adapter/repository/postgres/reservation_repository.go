package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
	"github.com/adpoint/ad-scheduler/internal/core/ports"
)

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// ReservedDuration sums the ledger for one (location, day). PENDING rows
// count: a booking awaiting payment holds its capacity until it confirms,
// cancels or the sweep expires it.
func (r *ReservationRepository) ReservedDuration(ctx context.Context, locationID uuid.UUID, day time.Time) (int, error) {
	query := `
	SELECT COALESCE(SUM(e.duration), 0)
	FROM reservation_day_entries e
	JOIN reservations res ON res.id = e.reservation_id
	WHERE e.location_id = $1 AND e.date = $2 AND res.status IN ('PENDING', 'CONFIRMED')
	`

	var total int
	if err := r.db.QueryRowContext(ctx, query, locationID, day).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum reserved duration: %w", err)
	}

	return total, nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	queryHeader := `
	INSERT INTO reservations (id, ad_id, location_id, start_date, end_date, total_duration, status, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.ExecContext(ctx, queryHeader, res.ID, res.AdID, res.LocationID, res.StartDate, res.EndDate, res.TotalDuration, res.Status, res.CreatedAt, res.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert reservation header: %w", err)
	}

	queryEntry := `
	INSERT INTO reservation_day_entries (id, reservation_id, location_id, date, duration)
	VALUES ($1, $2, $3, $4, $5)
	`

	stmt, err := tx.PrepareContext(ctx, queryEntry)
	if err != nil {
		return fmt.Errorf("failed to prepare day entry statement: %w", err)
	}

	defer stmt.Close()

	for _, entry := range res.Days {
		_, err := stmt.ExecContext(ctx, entry.ID, entry.ReservationID, entry.LocationID, entry.Date, entry.Duration)
		if err != nil {
			return fmt.Errorf("failed to insert day entry for %s: %w", entry.Date.Format("2006-01-02"), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	query := `
	SELECT id, ad_id, location_id, start_date, end_date, total_duration, status, created_at, expires_at, confirmed_at
	FROM reservations
	WHERE id = $1
	`

	var res domain.Reservation
	var confirmedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID,
		&res.AdID,
		&res.LocationID,
		&res.StartDate,
		&res.EndDate,
		&res.TotalDuration,
		&res.Status,
		&res.CreatedAt,
		&res.ExpiresAt,
		&confirmedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	if confirmedAt.Valid {
		res.ConfirmedAt = &confirmedAt.Time
	}

	entries, err := r.dayEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	res.Days = entries

	return &res, nil
}

func (r *ReservationRepository) dayEntries(ctx context.Context, reservationID uuid.UUID) ([]domain.ReservationDayEntry, error) {
	query := `
	SELECT id, reservation_id, location_id, date, duration
	FROM reservation_day_entries
	WHERE reservation_id = $1
	ORDER BY date
	`

	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var entries []domain.ReservationDayEntry
	for rows.Next() {
		var entry domain.ReservationDayEntry
		if err := rows.Scan(&entry.ID, &entry.ReservationID, &entry.LocationID, &entry.Date, &entry.Duration); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// List translates a validated ReservationFilter into SQL. Only enumerated
// fields ever reach the query text; values go through placeholders.
func (r *ReservationRepository) List(ctx context.Context, filter ports.ReservationFilter) ([]domain.Reservation, error) {
	query := `
	SELECT id, ad_id, location_id, start_date, end_date, total_duration, status, created_at, expires_at
	FROM reservations
	WHERE 1=1`

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.LocationID != nil {
		query += " AND location_id = " + arg(*filter.LocationID)
	}
	if filter.AdID != nil {
		query += " AND ad_id = " + arg(*filter.AdID)
	}
	if filter.Status != nil {
		query += " AND status = " + arg(*filter.Status)
	}
	if filter.StartFrom != nil {
		query += " AND start_date >= " + arg(*filter.StartFrom)
	}
	if filter.EndTo != nil {
		query += " AND end_date <= " + arg(*filter.EndTo)
	}

	query += fmt.Sprintf(" ORDER BY %s %s", filter.SortField, filter.SortDir)
	query += " LIMIT " + arg(filter.Limit)
	query += " OFFSET " + arg((filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.AdID,
			&res.LocationID,
			&res.StartDate,
			&res.EndDate,
			&res.TotalDuration,
			&res.Status,
			&res.CreatedAt,
			&res.ExpiresAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}

	return out, rows.Err()
}

func (r *ReservationRepository) ConfirmReservation(ctx context.Context, id uuid.UUID) error {
	query := `
	UPDATE reservations
	SET status = 'CONFIRMED', confirmed_at = $1
	WHERE id = $2 AND status = 'PENDING'
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrReservationNotFound
	}

	return nil
}

func (r *ReservationRepository) CancelReservation(ctx context.Context, id uuid.UUID) error {
	query := `
	UPDATE reservations
	SET status = 'CANCELLED'
	WHERE id = $1 AND status IN ('PENDING', 'CONFIRMED')
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrReservationNotFound
	}

	return nil
}

func (r *ReservationRepository) ExpiredPendingIDs(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `
	SELECT id FROM reservations
	WHERE status = 'PENDING' AND created_at <= $1
	LIMIT 100
	`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *ReservationRepository) ExpireReservation(ctx context.Context, id uuid.UUID) error {
	query := `
	UPDATE reservations
	SET status = 'EXPIRED'
	WHERE id = $1 AND status = 'PENDING'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrReservationNotFound
	}

	return nil
}
