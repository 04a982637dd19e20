package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
	"github.com/adpoint/ad-scheduler/internal/core/ports/mocks"
	"github.com/adpoint/ad-scheduler/internal/core/services"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func candidates(durations ...int) []domain.CandidateAd {
	pool := make([]domain.CandidateAd, 0, len(durations))
	for _, d := range durations {
		pool = append(pool, domain.CandidateAd{
			EntryID:  uuid.New(),
			AdID:     uuid.New(),
			Name:     "ad",
			VideoURL: "ad.mp4",
			Duration: d,
		})
	}
	return pool
}

func totalDuration(entries []domain.PlaylistAdEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Duration
	}
	return total
}

func TestComposeDailyPlaylists_ExactFill(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	pool := candidates(30, 30, 30, 30, 30, 30)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Once()

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	if assert.Len(t, playlists, 1) {
		assert.Len(t, playlists[0].Entries, 6)
		assert.Equal(t, 180, totalDuration(playlists[0].Entries))
		assert.Equal(t, 1, playlists[0].Slot)
		assert.Equal(t, domain.PlaylistActive, playlists[0].Status)
	}
}

func TestComposeDailyPlaylists_UnderfilledPool(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	// 150 total against a 180 budget: greedy takes everything, the top-up
	// and swap passes have no unused ads to work with.
	pool := candidates(30, 30, 30, 30, 15, 15)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Once()

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	if assert.Len(t, playlists, 1) {
		assert.Len(t, playlists[0].Entries, 6)
		assert.Equal(t, 150, totalDuration(playlists[0].Entries))
	}
}

func TestComposeDailyPlaylists_SwapReducesRemainder(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	// Greedy packs 30*5+15 = 165 and the 45 no longer fits, leaving 15.
	// Swapping one selected 30 for the unused 45 fills the slot exactly.
	pool := candidates(30, 30, 30, 30, 30, 15, 45)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Once()

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	if assert.Len(t, playlists, 1) {
		assert.Equal(t, 180, totalDuration(playlists[0].Entries))
		assert.Len(t, playlists[0].Entries, 6)
	}
}

func TestComposeDailyPlaylists_MultiplePlaylistsNoDoubleAssignment(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	// Twelve 30s: two full playlists of six, pool exhausted before slot 3.
	pool := candidates(30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Twice()

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	assert.Len(t, playlists, 2)

	seen := make(map[uuid.UUID]bool)
	for _, pl := range playlists {
		assert.LessOrEqual(t, totalDuration(pl.Entries), domain.PlaylistTargetDuration)
		for _, entry := range pl.Entries {
			assert.False(t, seen[entry.AdID], "ad assigned to two playlists")
			seen[entry.AdID] = true
		}
	}
}

func TestComposeDailyPlaylists_SwapTradesOneForTwo(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	// Greedy packs 100+65 = 165, leaving 15. No single unused ad fills the
	// freed 80 budget, but trading the 65 for the two 40s does, and the
	// swapped-out 65 must come back for the next slot.
	pool := candidates(100, 65, 40, 40)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Twice()

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	if assert.Len(t, playlists, 2) {
		assert.Equal(t, 180, totalDuration(playlists[0].Entries))
		assert.Len(t, playlists[0].Entries, 3)

		if assert.Len(t, playlists[1].Entries, 1) {
			assert.Equal(t, pool[1].AdID, playlists[1].Entries[0].AdID)
			assert.Equal(t, 65, playlists[1].Entries[0].Duration)
		}
	}
}

func TestComposeDailyPlaylists_SameAdBookedTwicePlaysOnce(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	// Two reservation entries for the same creative on one day. Only one
	// may reach a screen, so the second must not spill into another slot.
	shared := uuid.New()
	pool := []domain.CandidateAd{
		{EntryID: uuid.New(), AdID: shared, Name: "ad", VideoURL: "ad.mp4", Duration: 180},
		{EntryID: uuid.New(), AdID: shared, Name: "ad", VideoURL: "ad.mp4", Duration: 180},
	}

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Once()

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	if assert.Len(t, playlists, 1) {
		assert.Len(t, playlists[0].Entries, 1)
		assert.Equal(t, shared, playlists[0].Entries[0].AdID)
	}
}

func TestComposeDailyPlaylists_SlotCapLeavesExcessUnscheduled(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	// 24 ads of 30 would fill four playlists; the cap stops at three.
	durations := make([]int, 24)
	for i := range durations {
		durations[i] = 30
	}
	pool := candidates(durations...)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Times(3)

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	assert.Len(t, playlists, domain.MaxPlaylistsPerDay)
}

func TestComposeDailyPlaylists_EmptyPool(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return([]domain.CandidateAd{}, nil)

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.ErrorIs(t, err, domain.ErrNoAvailableAds)
	assert.Nil(t, playlists)
}

func TestComposeDailyPlaylists_PersistFailure(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	pool := candidates(30, 30, 30)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(errors.New("disk on fire"))

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.Nil(t, playlists)

	var persistErr *domain.PlaylistPersistError
	if assert.ErrorAs(t, err, &persistErr) {
		assert.Equal(t, 1, persistErr.Slot)
	}
}

func TestComposeDailyPlaylists_EntryOrderFollowsSelection(t *testing.T) {
	mockRepo := mocks.NewPlaylistRepository(t)
	svc := services.NewComposerService(mockRepo, testLogger())

	ctx := context.Background()
	locationID := uuid.New()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	pool := candidates(15, 30, 15, 30)

	mockRepo.On("UnassignedEntries", ctx, locationID, day).Return(pool, nil)
	mockRepo.On("CreatePlaylist", ctx, mock.AnythingOfType("*domain.Playlist")).Return(nil).Once()

	playlists, err := svc.ComposeDailyPlaylists(ctx, day, locationID)

	assert.NoError(t, err)
	if assert.Len(t, playlists, 1) {
		for i, entry := range playlists[0].Entries {
			assert.Equal(t, i, entry.Position)
			assert.Equal(t, pool[i].AdID, entry.AdID)
		}
	}
}
