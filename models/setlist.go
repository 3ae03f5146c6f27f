package models

import "time"

// SongStatus governs public visibility of a setlist song.
type SongStatus string

const (
	StatusApproved SongStatus = "approved"
	StatusPending  SongStatus = "pending"
	StatusRejected SongStatus = "rejected"
)

// Confidence classifies how trustworthy a reconciled catalog match is.
type Confidence string

const (
	ConfidenceExact    Confidence = "exact"
	ConfidencePartial  Confidence = "partial"
	ConfidenceNotFound Confidence = "not_found"
)

// Concert is the owning entity for a setlist.
type Concert struct {
	ID         int64     `json:"id"`
	ArtistName string    `json:"artistName"`
	Venue      string    `json:"venue"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SetlistSong is one persisted row of a concert's setlist. Position is
// 1-based and unique within a concert.
type SetlistSong struct {
	ID               int64      `json:"id"`
	ConcertID        int64      `json:"concertId"`
	Position         int        `json:"position"`
	SongName         string     `json:"songName"`
	ArtistName       *string    `json:"artistName,omitempty"`
	DurationSeconds  *int64     `json:"durationSeconds,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	ExternalTrackID  *string    `json:"externalTrackId,omitempty"`
	ExternalTrackURL *string    `json:"externalTrackUrl,omitempty"`
	Status           SongStatus `json:"status"`
	IsOfficial       bool       `json:"isOfficial"`
	SourceSetlistID  *string    `json:"sourceSetlistId,omitempty"`
	SourceSongName   *string    `json:"sourceSongName,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// RawSong is one scraped song before reconciliation.
type RawSong struct {
	Name        string `json:"name"`
	Notes       string `json:"notes,omitempty"`
	IsTape      bool   `json:"isTape,omitempty"`
	CoverArtist string `json:"coverArtist,omitempty"`
}

// ScrapedSetlist is what the scrape provider returns for one source URL.
type ScrapedSetlist struct {
	SetlistID  string    `json:"setlistId"`
	SourceURL  string    `json:"sourceUrl"`
	ArtistName string    `json:"artistName,omitempty"`
	RawSongs   []RawSong `json:"rawSongs"`
}

// SourceMeta is the provenance carried from scrape to commit.
type SourceMeta struct {
	SetlistID string `json:"setlistId"`
	SourceURL string `json:"sourceUrl"`
}

// CatalogTrack is one ranked candidate from the search oracle.
type CatalogTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArtistName  string `json:"artistName"`
	DurationMs  int64  `json:"durationMs"`
	ExternalURL string `json:"externalUrl"`
}

// EnrichedSong is the transient result of reconciling one RawSong.
// Position is the source-assigned scrape order, used as the stable
// selection key during an import session, not the stored position.
type EnrichedSong struct {
	Position         int        `json:"position"`
	SourceSongName   string     `json:"sourceSongName"`
	Notes            string     `json:"notes,omitempty"`
	IsTape           bool       `json:"isTape,omitempty"`
	SongName         string     `json:"songName"`
	ArtistName       *string    `json:"artistName,omitempty"`
	ExternalTrackID  *string    `json:"externalTrackId,omitempty"`
	ExternalTrackURL *string    `json:"externalTrackUrl,omitempty"`
	DurationSeconds  *int64     `json:"durationSeconds,omitempty"`
	Confidence       Confidence `json:"confidence"`
}

// ImportStats summarizes reconciliation quality for one import session.
type ImportStats struct {
	Exact    int `json:"exact"`
	Partial  int `json:"partial"`
	NotFound int `json:"notFound"`
}

// CountStats derives ImportStats from a reconciled sequence.
func CountStats(songs []EnrichedSong) ImportStats {
	var stats ImportStats
	for _, s := range songs {
		switch s.Confidence {
		case ConfidenceExact:
			stats.Exact++
		case ConfidencePartial:
			stats.Partial++
		default:
			stats.NotFound++
		}
	}
	return stats
}
