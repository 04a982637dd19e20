package domain

import "github.com/google/uuid"

type AdStatus string

const (
	AdActive   AdStatus = "ACTIVE"
	AdInactive AdStatus = "INACTIVE"
)

// Sold ad durations. The swap pass in playlist composition relies on the
// leftover budget being exactly one of these values.
const (
	AdDurationShort = 15
	AdDurationLong  = 30
)

// Ad is a piece of creative content. Duration is fixed once the ad is
// referenced by a confirmed reservation.
type Ad struct {
	ID          uuid.UUID
	Name        string
	Description string
	VideoURL    string
	Duration    int
	Status      AdStatus
}
