package domain

import "github.com/google/uuid"

// DefaultDailyCapacity is the aggregate ad duration a location can host per
// calendar day. Every deployed location currently uses the same value; it is
// still stored per location so a site with shorter operating hours can be
// capped lower without a schema change.
const DefaultDailyCapacity = 540

// Location is a physical display site ads are booked onto.
type Location struct {
	ID            uuid.UUID
	Name          string
	DailyCapacity int
	Active        bool
}
