package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// PendingTTL is how long a PENDING reservation keeps its capacity before
// the expiry sweep reclaims it.
const PendingTTL = 30 * time.Minute

// Reservation books one ad onto one location for every calendar day in
// [StartDate, EndDate]. Capacity accounting happens through the per-day
// Days entries, never through the header row.
type Reservation struct {
	ID            uuid.UUID
	AdID          uuid.UUID
	LocationID    uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	TotalDuration int
	Status        ReservationStatus
	CreatedAt     time.Time
	ExpiresAt     time.Time
	ConfirmedAt   *time.Time
	Days          []ReservationDayEntry
}

// ReservationDayEntry is the capacity-ledger line item: the duration this
// reservation occupies on one location for one calendar day. LocationID is
// denormalized so ledger sums do not need the header row.
type ReservationDayEntry struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	LocationID    uuid.UUID
	Date          time.Time
	Duration      int
}

// CountsForCapacity reports whether a reservation in this status still
// occupies ledger capacity. PENDING counts so that a booking awaiting
// payment cannot be double-sold before it confirms or expires.
func (s ReservationStatus) CountsForCapacity() bool {
	return s == ReservationPending || s == ReservationConfirmed
}
