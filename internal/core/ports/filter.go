package ports

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
)

// ReservationSortField enumerates the reservation columns listing may sort
// by. Anything outside this set is rejected before query translation.
type ReservationSortField string

const (
	SortByCreatedAt ReservationSortField = "created_at"
	SortByStartDate ReservationSortField = "start_date"
	SortByEndDate   ReservationSortField = "end_date"
	SortByStatus    ReservationSortField = "status"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ReservationFilter describes a reservation listing query. Every
// filterable field is a typed, optional member, so no caller can smuggle
// arbitrary column expressions into the storage layer.
type ReservationFilter struct {
	LocationID *uuid.UUID
	AdID       *uuid.UUID
	Status     *domain.ReservationStatus
	StartFrom  *time.Time
	EndTo      *time.Time
	SortField  ReservationSortField
	SortDir    SortDirection
	Page       int
	Limit      int
}

// Validate normalizes paging defaults and rejects unknown sort options
// before the filter reaches the repository.
func (f *ReservationFilter) Validate() error {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 100
	}
	if f.SortField == "" {
		f.SortField = SortByCreatedAt
	}
	if f.SortDir == "" {
		f.SortDir = SortDesc
	}
	switch f.SortField {
	case SortByCreatedAt, SortByStartDate, SortByEndDate, SortByStatus:
	default:
		return fmt.Errorf("invalid sort field %q", f.SortField)
	}
	switch f.SortDir {
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("invalid sort direction %q", f.SortDir)
	}
	if f.Status != nil {
		switch *f.Status {
		case domain.ReservationPending, domain.ReservationConfirmed,
			domain.ReservationExpired, domain.ReservationCancelled:
		default:
			return fmt.Errorf("invalid status %q", *f.Status)
		}
	}
	return nil
}
