package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
	"github.com/adpoint/ad-scheduler/internal/core/ports"
	"github.com/adpoint/ad-scheduler/internal/metrics"
)

// DayAvailability is one per-day line of an availability result. Available
// is only populated in probe mode; commit mode persists the entries and the
// remaining headroom is nobody's business but the ledger's.
type DayAvailability struct {
	Date      time.Time `json:"date"`
	Duration  int       `json:"duration"`
	Available int       `json:"available,omitempty"`
}

type AvailabilityResult struct {
	TotalDuration int               `json:"total_duration"`
	Days          []DayAvailability `json:"days"`
}

type CreateReservationRequest struct {
	AdID        string `json:"ad_id"`
	LocationID  string `json:"location_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	AutoConfirm bool   `json:"auto_confirm"`
}

type CreateReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	TotalDuration int    `json:"total_duration"`
	Status        string `json:"status"`
	ExpiresAt     string `json:"expires_at"`
}

// AvailabilityService answers "is there room" questions and turns
// successful checks into persisted reservations. The check-then-reserve
// sequence always runs under the location's capacity lock so concurrent
// attempts for the same location are strictly ordered.
type AvailabilityService struct {
	reservations ports.ReservationRepository
	ads          ports.AdRepository
	locations    ports.LocationRepository
	locker       ports.CapacityLocker
	tz           *time.Location
	log          *logrus.Logger
}

func NewAvailabilityService(
	reservations ports.ReservationRepository,
	ads ports.AdRepository,
	locations ports.LocationRepository,
	locker ports.CapacityLocker,
	tz *time.Location,
	log *logrus.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		reservations: reservations,
		ads:          ads,
		locations:    locations,
		locker:       locker,
		tz:           tz,
		log:          log,
	}
}

// DayStart truncates t to the start of its calendar day in the reference
// timezone. All ledger dates pass through here, so "a day" means the same
// thing on every code path.
func DayStart(t time.Time, tz *time.Location) time.Time {
	lt := t.In(tz)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, tz)
}

// CheckAvailability is the read-only probe: it walks the range day by day
// and reports the requested duration plus remaining headroom per day, or
// fails with *domain.CapacityExceededError on the first day that cannot
// absorb the duration. Nothing is persisted.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, locationID uuid.UUID, start, end time.Time, duration int) (*AvailabilityResult, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", duration)
	}

	loc, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}

	return s.checkRange(ctx, loc, start, end, duration, true)
}

// CreateReservation is the commit path: it resolves the ad's duration, then
// takes the location's capacity lock, re-checks every day in the range and
// persists the PENDING reservation together with its day entries. The whole
// range is all-or-nothing; a single full day rejects the attempt with
// *domain.CapacityExceededError and creates no rows.
func (s *AvailabilityService) CreateReservation(ctx context.Context, req CreateReservationRequest) (*CreateReservationResponse, error) {
	adID, err := uuid.Parse(req.AdID)
	if err != nil {
		return nil, fmt.Errorf("invalid ad id")
	}

	locationID, err := uuid.Parse(req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("invalid location id")
	}

	start, err := time.ParseInLocation("2006-01-02", req.StartDate, s.tz)
	if err != nil {
		return nil, fmt.Errorf("invalid start date")
	}

	end, err := time.ParseInLocation("2006-01-02", req.EndDate, s.tz)
	if err != nil {
		return nil, fmt.Errorf("invalid end date")
	}

	if end.Before(start) {
		return nil, fmt.Errorf("end date is before start date")
	}

	loc, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !loc.Active {
		return nil, domain.ErrLocationInactive
	}

	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, "capacity:"+locationID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.checkRange(ctx, loc, start, end, ad.Duration, false)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := domain.ReservationPending
	if req.AutoConfirm {
		status = domain.ReservationConfirmed
	}

	res := &domain.Reservation{
		ID:            uuid.New(),
		AdID:          adID,
		LocationID:    locationID,
		StartDate:     DayStart(start, s.tz),
		EndDate:       DayStart(end, s.tz),
		TotalDuration: result.TotalDuration,
		Status:        status,
		CreatedAt:     now,
		ExpiresAt:     now.Add(domain.PendingTTL),
	}

	for _, day := range result.Days {
		res.Days = append(res.Days, domain.ReservationDayEntry{
			ID:            uuid.New(),
			ReservationID: res.ID,
			LocationID:    locationID,
			Date:          day.Date,
			Duration:      day.Duration,
		})
	}

	if err := s.reservations.CreateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	metrics.ReservationsCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"location_id":    locationID,
		"days":           len(res.Days),
		"total_duration": res.TotalDuration,
	}).Info("reservation created")

	return &CreateReservationResponse{
		ReservationID: res.ID.String(),
		TotalDuration: res.TotalDuration,
		Status:        string(res.Status),
		ExpiresAt:     res.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// ConfirmReservation marks a pending reservation paid. The sweep may have
// expired it in the meantime; that surfaces as ErrReservationNotFound.
func (s *AvailabilityService) ConfirmReservation(ctx context.Context, id uuid.UUID) error {
	return s.reservations.ConfirmReservation(ctx, id)
}

func (s *AvailabilityService) CancelReservation(ctx context.Context, id uuid.UUID) error {
	return s.reservations.CancelReservation(ctx, id)
}

func (s *AvailabilityService) ListReservations(ctx context.Context, filter ports.ReservationFilter) ([]domain.Reservation, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.reservations.List(ctx, filter)
}

// checkRange walks [start, end] inclusive, one calendar day at a time in
// the reference timezone, and accumulates one per-day line per day. A
// start == end range yields exactly one line.
func (s *AvailabilityService) checkRange(ctx context.Context, loc *domain.Location, start, end time.Time, duration int, probe bool) (*AvailabilityResult, error) {
	first := DayStart(start, s.tz)
	last := DayStart(end, s.tz)

	result := &AvailabilityResult{}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		reserved, err := s.reservations.ReservedDuration(ctx, loc.ID, d)
		if err != nil {
			return nil, fmt.Errorf("failed to read reserved duration for %s: %w", d.Format("2006-01-02"), err)
		}

		available := loc.DailyCapacity - reserved
		if available < duration {
			metrics.CapacityRejections.Inc()
			return nil, &domain.CapacityExceededError{
				LocationID: loc.ID,
				Date:       d,
				Requested:  duration,
				Available:  available,
			}
		}

		result.TotalDuration += duration
		day := DayAvailability{Date: d, Duration: duration}
		if probe {
			day.Available = available
		}
		result.Days = append(result.Days, day)
	}

	return result, nil
}
