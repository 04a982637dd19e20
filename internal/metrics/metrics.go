package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ad_reservations_created_total",
			Help: "Total number of reservations created",
		},
	)

	CapacityRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ad_capacity_rejections_total",
			Help: "Total number of reservation attempts rejected for lack of daily capacity",
		},
	)

	ReservationsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ad_reservations_expired_total",
			Help: "Total number of pending reservations reclaimed by the expiry sweep",
		},
	)

	PlaylistsComposed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playlists_composed_total",
			Help: "Total number of playlists composed",
		},
	)

	PlaylistRemainder = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playlist_remainder_duration",
			Help:    "Unused duration left in a playlist after composition",
			Buckets: []float64{0, 15, 30, 45, 60, 90, 180},
		},
	)

	CompositionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "composition_failures_total",
			Help: "Total number of per-location composition or compositor failures",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(ReservationsCreated)
	prometheus.MustRegister(CapacityRejections)
	prometheus.MustRegister(ReservationsExpired)
	prometheus.MustRegister(PlaylistsComposed)
	prometheus.MustRegister(PlaylistRemainder)
	prometheus.MustRegister(CompositionFailures)
}
