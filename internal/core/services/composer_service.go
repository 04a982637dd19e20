package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
	"github.com/adpoint/ad-scheduler/internal/core/ports"
	"github.com/adpoint/ad-scheduler/internal/metrics"
)

// ComposerService partitions a day's confirmed, unassigned reservation
// entries into at most domain.MaxPlaylistsPerDay playlists of
// domain.PlaylistTargetDuration each. Callers must guarantee at-most-once
// invocation per (date, location) per cycle; re-running creates duplicates.
type ComposerService struct {
	playlists ports.PlaylistRepository
	log       *logrus.Logger
}

func NewComposerService(playlists ports.PlaylistRepository, log *logrus.Logger) *ComposerService {
	return &ComposerService{playlists: playlists, log: log}
}

// ComposeDailyPlaylists fills playback slots for (day, location) until the
// candidate pool runs out or the slot cap is reached. An empty initial pool
// fails with domain.ErrNoAvailableAds and persists nothing; a playlist that
// fails to persist surfaces as *domain.PlaylistPersistError and leaves the
// already-written slots in place.
func (s *ComposerService) ComposeDailyPlaylists(ctx context.Context, day time.Time, locationID uuid.UUID) ([]domain.Playlist, error) {
	pool, err := s.playlists.UnassignedEntries(ctx, locationID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate pool: %w", err)
	}

	if len(pool) == 0 {
		return nil, domain.ErrNoAvailableAds
	}

	// The persisted uniqueness unit is the ad, not the reservation entry:
	// two entries booking the same creative for one (date, location) must
	// not put it on screen twice.
	pool = dedupeByAd(pool)

	var composed []domain.Playlist

	for slot := 1; slot <= domain.MaxPlaylistsPerDay; slot++ {
		if len(pool) == 0 {
			break
		}

		selected, remainder := selectAds(pool, domain.PlaylistTargetDuration)
		if len(selected) == 0 {
			// Every remaining candidate is longer than a slot budget.
			break
		}

		pl := domain.Playlist{
			ID:             uuid.New(),
			LocationID:     locationID,
			Date:           day,
			Slot:           slot,
			Name:           domain.PlaylistName(day, locationID, slot),
			TargetDuration: domain.PlaylistTargetDuration,
			Status:         domain.PlaylistActive,
			CreatedAt:      time.Now(),
		}
		for i, cand := range selected {
			pl.Entries = append(pl.Entries, domain.PlaylistAdEntry{
				PlaylistID: pl.ID,
				AdID:       cand.AdID,
				Position:   i,
				VideoURL:   cand.VideoURL,
				Duration:   cand.Duration,
			})
		}

		if err := s.playlists.CreatePlaylist(ctx, &pl); err != nil {
			return nil, &domain.PlaylistPersistError{Slot: slot, Err: err}
		}

		metrics.PlaylistsComposed.Inc()
		metrics.PlaylistRemainder.Observe(float64(remainder))
		s.log.WithFields(logrus.Fields{
			"playlist":  pl.Name,
			"ads":       len(selected),
			"remainder": remainder,
		}).Info("playlist composed")

		composed = append(composed, pl)
		pool = removeSelected(pool, selected)
	}

	return composed, nil
}

// selectAds packs one playlist: greedy fill in pool order, then a single
// scan for an ad exactly filling the leftover, then at most one swap when
// the leftover equals one of the sold ad durations. Returns the selection
// in playback order and the final unused budget.
func selectAds(pool []domain.CandidateAd, target int) ([]domain.CandidateAd, int) {
	remaining := target
	var selected []domain.CandidateAd
	used := make(map[uuid.UUID]bool, len(pool))

	for _, cand := range pool {
		if cand.Duration <= remaining {
			selected = append(selected, cand)
			used[cand.EntryID] = true
			remaining -= cand.Duration
		}
		if remaining == 0 {
			break
		}
	}

	if remaining > 0 {
		for _, cand := range pool {
			if !used[cand.EntryID] && cand.Duration == remaining {
				selected = append(selected, cand)
				used[cand.EntryID] = true
				remaining = 0
				break
			}
		}
	}

	// The swap pass only fires when the leftover is exactly one ad unit;
	// other remainders were never reachable with the sold duration set and
	// stay untouched.
	if remaining == domain.AdDurationShort || remaining == domain.AdDurationLong {
		swaps := findPotentialSwaps(selected, pool, used, remaining)
		if len(swaps) > 0 {
			best := swaps[0]
			if idx := indexOfEntry(selected, best.removeEntryID); idx >= 0 {
				selected = append(selected[:idx], selected[idx+1:]...)
				selected = append(selected, best.addAds...)
				remaining = best.remainder
			}
		}
	}

	return selected, remaining
}

// candidateSwap trades one selected ad for one or two unused ads whose
// combined duration fits the freed budget and strictly shrinks the
// remainder.
type candidateSwap struct {
	removeEntryID uuid.UUID
	addAds        []domain.CandidateAd
	remainder     int
}

func findPotentialSwaps(selected, pool []domain.CandidateAd, used map[uuid.UUID]bool, remaining int) []candidateSwap {
	var swaps []candidateSwap

	for _, sel := range selected {
		budget := sel.Duration + remaining

		var unused []domain.CandidateAd
		for _, cand := range pool {
			if !used[cand.EntryID] {
				unused = append(unused, cand)
			}
		}

		for i, first := range unused {
			if first.Duration == budget {
				swaps = append(swaps, candidateSwap{
					removeEntryID: sel.EntryID,
					addAds:        []domain.CandidateAd{first},
					remainder:     0,
				})
				continue
			}

			for j := i + 1; j < len(unused); j++ {
				second := unused[j]
				combined := first.Duration + second.Duration
				if combined <= budget && budget-combined < remaining {
					swaps = append(swaps, candidateSwap{
						removeEntryID: sel.EntryID,
						addAds:        []domain.CandidateAd{first, second},
						remainder:     budget - combined,
					})
				}
			}
		}
	}

	// Smallest remainder wins; the stable sort keeps pool order as the
	// tie-break so results are deterministic.
	sort.SliceStable(swaps, func(i, j int) bool {
		return swaps[i].remainder < swaps[j].remainder
	})

	return swaps
}

func indexOfEntry(ads []domain.CandidateAd, entryID uuid.UUID) int {
	for i, cand := range ads {
		if cand.EntryID == entryID {
			return i
		}
	}
	return -1
}

// dedupeByAd keeps the first entry per ad id, preserving pool order.
func dedupeByAd(pool []domain.CandidateAd) []domain.CandidateAd {
	seen := make(map[uuid.UUID]bool, len(pool))
	deduped := pool[:0]
	for _, cand := range pool {
		if !seen[cand.AdID] {
			seen[cand.AdID] = true
			deduped = append(deduped, cand)
		}
	}
	return deduped
}

// removeSelected drops placed candidates from the pool, keyed by ad id so an
// ad lands in at most one playlist per day.
func removeSelected(pool, selected []domain.CandidateAd) []domain.CandidateAd {
	placed := make(map[uuid.UUID]bool, len(selected))
	for _, cand := range selected {
		placed[cand.AdID] = true
	}

	remaining := pool[:0]
	for _, cand := range pool {
		if !placed[cand.AdID] {
			remaining = append(remaining, cand)
		}
	}
	return remaining
}
