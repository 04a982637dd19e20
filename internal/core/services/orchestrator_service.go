package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
	"github.com/adpoint/ad-scheduler/internal/core/ports"
	"github.com/adpoint/ad-scheduler/internal/metrics"
)

// OrchestratorService drives the scheduled work: the nightly composition
// run over every active location and the recurring sweep that reclaims
// capacity from stale PENDING reservations.
type OrchestratorService struct {
	locations    ports.LocationRepository
	reservations ports.ReservationRepository
	playlists    ports.PlaylistRepository
	composer     *ComposerService
	compositor   ports.Compositor
	notifier     ports.Notifier
	rdb          *redis.Client
	tz           *time.Location
	workers      int
	log          *logrus.Logger
}

func NewOrchestratorService(
	locations ports.LocationRepository,
	reservations ports.ReservationRepository,
	playlists ports.PlaylistRepository,
	composer *ComposerService,
	compositor ports.Compositor,
	notifier ports.Notifier,
	rdb *redis.Client,
	tz *time.Location,
	workers int,
	log *logrus.Logger,
) *OrchestratorService {
	if workers < 1 {
		workers = 1
	}
	return &OrchestratorService{
		locations:    locations,
		reservations: reservations,
		playlists:    playlists,
		composer:     composer,
		compositor:   compositor,
		notifier:     notifier,
		rdb:          rdb,
		tz:           tz,
		workers:      workers,
		log:          log,
	}
}

// RunDailyComposition composes tomorrow's playlists for every active
// location. Locations are processed by a bounded worker pool; a failure for
// one location is logged and reported to the operator channel and never
// aborts the others.
func (o *OrchestratorService) RunDailyComposition(ctx context.Context) error {
	target := DayStart(time.Now().In(o.tz).AddDate(0, 0, 1), o.tz)
	return o.ComposeForDate(ctx, target)
}

// ComposeForDate is RunDailyComposition with an explicit target day.
func (o *OrchestratorService) ComposeForDate(ctx context.Context, day time.Time) error {
	locations, err := o.locations.ListActive(ctx)
	if err != nil {
		o.notifyOperator(ctx, "Critical playlist system error",
			fmt.Sprintf("Failed to list active locations for %s: %v", day.Format("2006-01-02"), err))
		return fmt.Errorf("failed to list active locations: %w", err)
	}

	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for _, loc := range locations {
		wg.Add(1)
		sem <- struct{}{}
		go func(loc domain.Location) {
			defer wg.Done()
			defer func() { <-sem }()
			o.composeLocation(ctx, day, loc)
		}(loc)
	}

	wg.Wait()
	return nil
}

// composeLocation handles one location end to end: dedup, composition,
// then handing each playlist to the video compositor.
func (o *OrchestratorService) composeLocation(ctx context.Context, day time.Time, loc domain.Location) {
	if !o.claimRun(ctx, day, loc.ID.String()) {
		o.log.WithFields(logrus.Fields{
			"location_id": loc.ID,
			"date":        day.Format("2006-01-02"),
		}).Info("composition already claimed, skipping")
		return
	}

	playlists, err := o.composer.ComposeDailyPlaylists(ctx, day, loc.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNoAvailableAds) {
			o.log.WithField("location_id", loc.ID).Info("no ads to schedule")
			return
		}

		metrics.CompositionFailures.WithLabelValues("compose").Inc()
		o.log.WithError(err).WithField("location_id", loc.ID).Error("playlist composition failed")
		o.notifyOperator(ctx, "Playlist creation error",
			fmt.Sprintf("Location %s, date %s: %v", loc.ID, day.Format("2006-01-02"), err))
		return
	}

	for _, pl := range playlists {
		if err := o.dispatchToCompositor(ctx, pl); err != nil {
			metrics.CompositionFailures.WithLabelValues("compositor").Inc()
			o.log.WithError(err).WithField("playlist", pl.Name).Error("compositor dispatch failed")
			o.notifyOperator(ctx, "Playlist video generation failed",
				fmt.Sprintf("Playlist %s: %v", pl.Name, err))
			continue
		}

		if err := o.playlists.AttachOutputRef(ctx, pl.ID, pl.Name+".mp4"); err != nil {
			o.log.WithError(err).WithField("playlist", pl.Name).Warn("failed to record output reference")
		}
	}
}

func (o *OrchestratorService) dispatchToCompositor(ctx context.Context, pl domain.Playlist) error {
	job := domain.CompositionJob{
		PlaylistID: pl.ID,
		OutputName: pl.Name + ".mp4",
	}
	for _, entry := range pl.Entries {
		job.Media = append(job.Media, domain.MediaSegment{
			AdID:     entry.AdID,
			VideoURL: entry.VideoURL,
			Duration: entry.Duration,
		})
	}
	return o.compositor.Compose(ctx, job)
}

// claimRun enforces at-most-once composition per (date, location) per
// cycle via a redis SETNX claim. If redis is unreachable the run proceeds;
// double composition is less harmful than none at all.
func (o *OrchestratorService) claimRun(ctx context.Context, day time.Time, locationID string) bool {
	if o.rdb == nil {
		return true
	}

	key := fmt.Sprintf("compose:%s:%s", locationID, day.Format("2006-01-02"))
	ok, err := o.rdb.SetNX(ctx, key, 1, 24*time.Hour).Result()
	if err != nil {
		o.log.WithError(err).Warn("compose dedup check failed, proceeding")
		return true
	}
	return ok
}

// RunExpirySweep reclaims capacity from PENDING reservations older than
// domain.PendingTTL by transitioning them to EXPIRED. It runs alongside new
// reservation traffic; the status transition is a single conditional UPDATE
// so a reservation confirmed mid-sweep stays confirmed.
func (o *OrchestratorService) RunExpirySweep(ctx context.Context) {
	cutoff := time.Now().Add(-domain.PendingTTL)

	ids, err := o.reservations.ExpiredPendingIDs(ctx, cutoff)
	if err != nil {
		o.log.WithError(err).Error("failed to fetch expired reservations")
		return
	}

	if len(ids) == 0 {
		return
	}

	o.log.WithField("count", len(ids)).Info("expiring stale pending reservations")

	for _, id := range ids {
		if err := o.reservations.ExpireReservation(ctx, id); err != nil {
			if errors.Is(err, domain.ErrReservationNotFound) {
				// Confirmed or cancelled between the scan and the update.
				o.log.WithField("reservation_id", id).Debug("reservation no longer pending, skipping")
				continue
			}
			o.log.WithError(err).WithField("reservation_id", id).Error("failed to expire reservation")
			continue
		}
		metrics.ReservationsExpired.Inc()
	}
}

func (o *OrchestratorService) notifyOperator(ctx context.Context, subject, body string) {
	if err := o.notifier.Notify(ctx, subject, body); err != nil {
		o.log.WithError(err).Warn("operator notification failed")
	}
}
