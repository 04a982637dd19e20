package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
	"github.com/adpoint/ad-scheduler/internal/core/ports"
	"github.com/adpoint/ad-scheduler/internal/core/ports/mocks"
	"github.com/adpoint/ad-scheduler/internal/core/services"
)

func activeLocation(id uuid.UUID) *domain.Location {
	return &domain.Location{
		ID:            id,
		Name:          "Mall Entrance",
		DailyCapacity: domain.DefaultDailyCapacity,
		Active:        true,
	}
}

func grantingLocker(t *testing.T) *mocks.CapacityLocker {
	locker := mocks.NewCapacityLocker(t)
	locker.On("Acquire", mock.Anything, mock.AnythingOfType("string")).Return(func() {}, nil).Maybe()
	return locker
}

func TestCreateReservation_Success(t *testing.T) {
	mockReservations := mocks.NewReservationRepository(t)
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)

	svc := services.NewAvailabilityService(mockReservations, mockAds, mockLocations, grantingLocker(t), time.UTC, testLogger())

	ctx := context.Background()
	adID := uuid.New()
	locationID := uuid.New()

	mockLocations.On("GetByID", ctx, locationID).Return(activeLocation(locationID), nil)
	mockAds.On("GetByID", ctx, adID).Return(&domain.Ad{ID: adID, Duration: 30, Status: domain.AdActive}, nil)
	mockReservations.On("ReservedDuration", ctx, locationID, mock.AnythingOfType("time.Time")).Return(100, nil)
	mockReservations.On("CreateReservation", ctx, mock.AnythingOfType("*domain.Reservation")).
		Run(func(args mock.Arguments) {
			res := args.Get(1).(*domain.Reservation)
			assert.Equal(t, domain.ReservationPending, res.Status)
			assert.Len(t, res.Days, 3)
			assert.Equal(t, 90, res.TotalDuration)
			for _, entry := range res.Days {
				assert.Equal(t, 30, entry.Duration)
				assert.Equal(t, res.ID, entry.ReservationID)
			}
		}).
		Return(nil)

	resp, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
		AdID:       adID.String(),
		LocationID: locationID.String(),
		StartDate:  "2026-04-01",
		EndDate:    "2026-04-03",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, 90, resp.TotalDuration)
		assert.Equal(t, string(domain.ReservationPending), resp.Status)
	}
}

func TestCreateReservation_SingleDayRange(t *testing.T) {
	mockReservations := mocks.NewReservationRepository(t)
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)

	svc := services.NewAvailabilityService(mockReservations, mockAds, mockLocations, grantingLocker(t), time.UTC, testLogger())

	ctx := context.Background()
	adID := uuid.New()
	locationID := uuid.New()

	mockLocations.On("GetByID", ctx, locationID).Return(activeLocation(locationID), nil)
	mockAds.On("GetByID", ctx, adID).Return(&domain.Ad{ID: adID, Duration: 15}, nil)
	mockReservations.On("ReservedDuration", ctx, locationID, mock.AnythingOfType("time.Time")).Return(0, nil).Once()
	mockReservations.On("CreateReservation", ctx, mock.AnythingOfType("*domain.Reservation")).
		Run(func(args mock.Arguments) {
			res := args.Get(1).(*domain.Reservation)
			assert.Len(t, res.Days, 1)
		}).
		Return(nil)

	resp, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
		AdID:       adID.String(),
		LocationID: locationID.String(),
		StartDate:  "2026-04-01",
		EndDate:    "2026-04-01",
	})

	assert.NoError(t, err)
	assert.Equal(t, 15, resp.TotalDuration)
}

func TestCreateReservation_RejectsWholeRangeWhenOneDayIsFull(t *testing.T) {
	mockReservations := mocks.NewReservationRepository(t)
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)

	svc := services.NewAvailabilityService(mockReservations, mockAds, mockLocations, grantingLocker(t), time.UTC, testLogger())

	ctx := context.Background()
	adID := uuid.New()
	locationID := uuid.New()
	fullDay := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	mockLocations.On("GetByID", ctx, locationID).Return(activeLocation(locationID), nil)
	mockAds.On("GetByID", ctx, adID).Return(&domain.Ad{ID: adID, Duration: 30}, nil)
	mockReservations.On("ReservedDuration", ctx, locationID, mock.AnythingOfType("time.Time")).
		Return(func(ctx context.Context, locID uuid.UUID, day time.Time) int {
			if day.Equal(fullDay) {
				return 520
			}
			return 0
		}, nil)

	resp, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
		AdID:       adID.String(),
		LocationID: locationID.String(),
		StartDate:  "2026-04-01",
		EndDate:    "2026-04-03",
	})

	assert.Nil(t, resp)

	var capErr *domain.CapacityExceededError
	if assert.ErrorAs(t, err, &capErr) {
		assert.Equal(t, fullDay, capErr.Date)
		assert.Equal(t, 30, capErr.Requested)
		assert.Equal(t, 20, capErr.Available)
	}

	mockReservations.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
}

func TestCreateReservation_ExactRemainingCapacityFits(t *testing.T) {
	mockReservations := mocks.NewReservationRepository(t)
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)

	svc := services.NewAvailabilityService(mockReservations, mockAds, mockLocations, grantingLocker(t), time.UTC, testLogger())

	ctx := context.Background()
	adID := uuid.New()
	locationID := uuid.New()

	// 520 of 540 taken: a 20-unit ad lands exactly on the cap.
	mockLocations.On("GetByID", ctx, locationID).Return(activeLocation(locationID), nil)
	mockAds.On("GetByID", ctx, adID).Return(&domain.Ad{ID: adID, Duration: 20}, nil)
	mockReservations.On("ReservedDuration", ctx, locationID, mock.AnythingOfType("time.Time")).Return(520, nil).Once()
	mockReservations.On("CreateReservation", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil)

	resp, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
		AdID:       adID.String(),
		LocationID: locationID.String(),
		StartDate:  "2026-04-02",
		EndDate:    "2026-04-02",
	})

	assert.NoError(t, err)
	assert.Equal(t, 20, resp.TotalDuration)
}

func TestCheckAvailability_ProbeReportsHeadroom(t *testing.T) {
	mockReservations := mocks.NewReservationRepository(t)
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)

	svc := services.NewAvailabilityService(mockReservations, mockAds, mockLocations, mocks.NewCapacityLocker(t), time.UTC, testLogger())

	ctx := context.Background()
	locationID := uuid.New()

	mockLocations.On("GetByID", ctx, locationID).Return(activeLocation(locationID), nil)
	mockReservations.On("ReservedDuration", ctx, locationID, mock.AnythingOfType("time.Time")).Return(200, nil)

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	result, err := svc.CheckAvailability(ctx, locationID, start, end, 30)

	assert.NoError(t, err)
	if assert.Len(t, result.Days, 2) {
		assert.Equal(t, 60, result.TotalDuration)
		for _, day := range result.Days {
			assert.Equal(t, 30, day.Duration)
			assert.Equal(t, 340, day.Available)
		}
	}

	mockReservations.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
}

func TestCreateReservation_InactiveLocation(t *testing.T) {
	mockReservations := mocks.NewReservationRepository(t)
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)

	svc := services.NewAvailabilityService(mockReservations, mockAds, mockLocations, mocks.NewCapacityLocker(t), time.UTC, testLogger())

	ctx := context.Background()
	locationID := uuid.New()

	loc := activeLocation(locationID)
	loc.Active = false
	mockLocations.On("GetByID", ctx, locationID).Return(loc, nil)

	resp, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
		AdID:       uuid.New().String(),
		LocationID: locationID.String(),
		StartDate:  "2026-04-01",
		EndDate:    "2026-04-01",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrLocationInactive)
}

func TestCreateReservation_LockNotAcquired(t *testing.T) {
	mockReservations := mocks.NewReservationRepository(t)
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)
	locker := mocks.NewCapacityLocker(t)

	svc := services.NewAvailabilityService(mockReservations, mockAds, mockLocations, locker, time.UTC, testLogger())

	ctx := context.Background()
	adID := uuid.New()
	locationID := uuid.New()

	mockLocations.On("GetByID", ctx, locationID).Return(activeLocation(locationID), nil)
	mockAds.On("GetByID", ctx, adID).Return(&domain.Ad{ID: adID, Duration: 30}, nil)
	locker.On("Acquire", mock.Anything, "capacity:"+locationID.String()).Return(nil, domain.ErrLockNotAcquired)

	resp, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
		AdID:       adID.String(),
		LocationID: locationID.String(),
		StartDate:  "2026-04-01",
		EndDate:    "2026-04-01",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrLockNotAcquired)
	mockReservations.AssertNotCalled(t, "ReservedDuration", mock.Anything, mock.Anything, mock.Anything)
}

// fakeLedger is an in-memory ReservationRepository for the race test: it
// records day entries and sums them exactly like the SQL ledger would.
type fakeLedger struct {
	mu      sync.Mutex
	totals  map[string]int
	created int
}

func ledgerKey(locationID uuid.UUID, day time.Time) string {
	return locationID.String() + ":" + day.Format("2006-01-02")
}

func (f *fakeLedger) ReservedDuration(ctx context.Context, locationID uuid.UUID, day time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals[ledgerKey(locationID, day)], nil
}

func (f *fakeLedger) CreateReservation(ctx context.Context, res *domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range res.Days {
		f.totals[ledgerKey(entry.LocationID, entry.Date)] += entry.Duration
	}
	f.created++
	return nil
}

func (f *fakeLedger) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	return nil, domain.ErrReservationNotFound
}

func (f *fakeLedger) List(ctx context.Context, filter ports.ReservationFilter) ([]domain.Reservation, error) {
	return nil, nil
}

func (f *fakeLedger) ConfirmReservation(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeLedger) CancelReservation(ctx context.Context, id uuid.UUID) error  { return nil }
func (f *fakeLedger) ExpiredPendingIDs(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	return nil, nil
}
func (f *fakeLedger) ExpireReservation(ctx context.Context, id uuid.UUID) error { return nil }

// mutexLocker serializes Acquire with a plain mutex, standing in for the
// redis lock.
type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

func TestCreateReservation_ConcurrentAttemptsNeverExceedCapacity(t *testing.T) {
	mockAds := mocks.NewAdRepository(t)
	mockLocations := mocks.NewLocationRepository(t)

	ledger := &fakeLedger{totals: make(map[string]int)}

	svc := services.NewAvailabilityService(ledger, mockAds, mockLocations, &mutexLocker{}, time.UTC, testLogger())

	ctx := context.Background()
	adID := uuid.New()
	locationID := uuid.New()

	// Capacity 90 fits exactly three 30-unit bookings; the other attempts
	// must lose the race cleanly.
	loc := activeLocation(locationID)
	loc.DailyCapacity = 90

	mockLocations.On("GetByID", mock.Anything, locationID).Return(loc, nil)
	mockAds.On("GetByID", mock.Anything, adID).Return(&domain.Ad{ID: adID, Duration: 30}, nil)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateReservation(ctx, services.CreateReservationRequest{
				AdID:       adID.String(),
				LocationID: locationID.String(),
				StartDate:  "2026-04-01",
				EndDate:    "2026-04-01",
			})
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var capErr *domain.CapacityExceededError
		assert.ErrorAs(t, err, &capErr)
		rejected++
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, attempts-3, rejected)

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	total, _ := ledger.ReservedDuration(ctx, locationID, day)
	assert.LessOrEqual(t, total, loc.DailyCapacity)
}
