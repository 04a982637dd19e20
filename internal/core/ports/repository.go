package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adpoint/ad-scheduler/internal/core/domain"
)

// ReservationRepository is the capacity ledger plus reservation lifecycle
// storage. ReservedDuration and CreateReservation together form the
// check-then-reserve sequence; callers must hold the location's capacity
// lock across both.
type ReservationRepository interface {
	// ReservedDuration sums day-entry durations for (location, day) over
	// reservations whose status still counts for capacity.
	ReservedDuration(ctx context.Context, locationID uuid.UUID, day time.Time) (int, error)

	// CreateReservation inserts the reservation header and all of its day
	// entries in one transaction.
	CreateReservation(ctx context.Context, res *domain.Reservation) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, error)

	// ConfirmReservation transitions PENDING -> CONFIRMED. It returns
	// domain.ErrReservationNotFound if the reservation is no longer
	// PENDING (e.g. already expired by the sweep).
	ConfirmReservation(ctx context.Context, id uuid.UUID) error

	// CancelReservation transitions PENDING or CONFIRMED -> CANCELLED,
	// releasing the reservation's ledger capacity.
	CancelReservation(ctx context.Context, id uuid.UUID) error

	// ExpiredPendingIDs lists PENDING reservations created before the
	// cutoff, for the expiry sweep.
	ExpiredPendingIDs(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)

	// ExpireReservation transitions PENDING -> EXPIRED.
	ExpireReservation(ctx context.Context, id uuid.UUID) error
}

type AdRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ad, error)
}

type LocationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Location, error)
	ListActive(ctx context.Context) ([]domain.Location, error)
}

// PlaylistRepository stores composed playlists and serves the composition
// candidate pool.
type PlaylistRepository interface {
	// UnassignedEntries returns, in stable fetch order, the confirmed day
	// entries for (location, day) whose ads are not yet placed into any
	// playlist for that day.
	UnassignedEntries(ctx context.Context, locationID uuid.UUID, day time.Time) ([]domain.CandidateAd, error)

	// CreatePlaylist inserts the playlist and its ordered ad entries in one
	// transaction; a zero-entry playlist is a caller bug and is rejected.
	CreatePlaylist(ctx context.Context, pl *domain.Playlist) error

	PlaylistsForDay(ctx context.Context, locationID uuid.UUID, day time.Time) ([]domain.Playlist, error)

	// AttachOutputRef records the compositor's produced asset on an
	// existing playlist.
	AttachOutputRef(ctx context.Context, id uuid.UUID, ref string) error
}

// Compositor is the external video collaborator: it receives an ordered
// list of media references and produces a single playable asset.
type Compositor interface {
	Compose(ctx context.Context, job domain.CompositionJob) error
}

// Notifier delivers operator alerts. Failures are logged by callers and
// never abort the surrounding run.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// CapacityLocker serializes check-then-reserve per location. Acquire
// retries for a bounded window and returns domain.ErrLockNotAcquired when
// the lock cannot be taken; the returned release function is safe to call
// exactly once.
type CapacityLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
