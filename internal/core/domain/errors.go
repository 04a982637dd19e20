package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoAvailableAds means no confirmed, unassigned day entries exist
	// for the requested (date, location); composition is skipped.
	ErrNoAvailableAds = errors.New("no available ads for this date")

	// ErrLockNotAcquired means the per-location reservation lock could not
	// be taken within the retry budget.
	ErrLockNotAcquired = errors.New("capacity lock not acquired")

	ErrReservationNotFound = errors.New("reservation not found")
	ErrAdNotFound          = errors.New("ad not found")
	ErrLocationNotFound    = errors.New("location not found")
	ErrLocationInactive    = errors.New("location is not active")
)

// CapacityExceededError rejects a whole reservation attempt because one day
// in the requested range cannot absorb the requested duration.
type CapacityExceededError struct {
	LocationID uuid.UUID
	Date       time.Time
	Requested  int
	Available  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("no available slots on %s: requested %d, available %d",
		e.Date.Format("2006-01-02"), e.Requested, e.Available)
}

// PlaylistPersistError wraps a storage failure while writing one playlist
// and its entries. The failed playlist is rolled back as a unit; playlists
// already written for earlier slots stand.
type PlaylistPersistError struct {
	Slot int
	Err  error
}

func (e *PlaylistPersistError) Error() string {
	return fmt.Sprintf("failed to persist playlist slot %d: %v", e.Slot, e.Err)
}

func (e *PlaylistPersistError) Unwrap() error { return e.Err }
