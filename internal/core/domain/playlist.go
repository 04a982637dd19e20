package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PlaylistStatus string

const (
	PlaylistActive   PlaylistStatus = "ACTIVE"
	PlaylistDisabled PlaylistStatus = "DISABLED"
)

const (
	// MaxPlaylistsPerDay bounds how many playback slots one location fills
	// per calendar day.
	MaxPlaylistsPerDay = 3
	// PlaylistTargetDuration is the fixed budget of one playback slot.
	PlaylistTargetDuration = 180
)

// Playlist is one composed playback slot: an ordered ad sequence for a
// single location and day. OutputRef is set after the video compositor has
// produced the playable asset.
type Playlist struct {
	ID             uuid.UUID
	LocationID     uuid.UUID
	Date           time.Time
	Slot           int
	Name           string
	TargetDuration int
	Status         PlaylistStatus
	OutputRef      *string
	CreatedAt      time.Time
	Entries        []PlaylistAdEntry
}

// PlaylistAdEntry pins one ad at one position inside a playlist. Position
// follows selection order, not duration. VideoURL and Duration are carried
// along so the compositor hand-off does not refetch every ad.
type PlaylistAdEntry struct {
	PlaylistID uuid.UUID
	AdID       uuid.UUID
	Position   int
	VideoURL   string
	Duration   int
}

// CandidateAd is a pool item for composition: a confirmed reservation day
// entry not yet assigned to any playlist, carrying its ad's media details.
// EntryID keys pool membership so the same creative booked twice on one day
// still occupies two distinct pool slots.
type CandidateAd struct {
	EntryID  uuid.UUID
	AdID     uuid.UUID
	Name     string
	VideoURL string
	Duration int
}

// PlaylistName builds the device-facing slot name, e.g.
// "2026-03-14-6f1c…-2". Devices query their current playlists by this
// date+location prefix.
func PlaylistName(day time.Time, locationID uuid.UUID, slot int) string {
	return fmt.Sprintf("%s-%s-%d", day.Format("2006-01-02"), locationID, slot)
}

// CompositionJob is what gets handed to the external video compositor: the
// output identifier plus the ordered media references to concatenate.
type CompositionJob struct {
	PlaylistID uuid.UUID      `json:"playlist_id"`
	OutputName string         `json:"output_name"`
	Media      []MediaSegment `json:"media"`
}

type MediaSegment struct {
	AdID     uuid.UUID `json:"ad_id"`
	VideoURL string    `json:"video_url"`
	Duration int       `json:"duration"`
}
