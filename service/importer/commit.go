package importer

import (
	"context"
	"log"
	"os"

	"github.com/encore-fm/backstage/models"
)

// Writer commits a curated song list as a concert's official setlist. The
// record store exposes no transactions, so the delete and the inserts are
// independent statements; a failure between them leaves the concert with a
// partial setlist, which the caller surfaces as a CommitError.
type Writer struct {
	store  SetlistStore
	logger *log.Logger
}

func NewWriter(store SetlistStore) *Writer {
	return &Writer{
		store:  store,
		logger: log.New(os.Stdout, "commit: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// Commit replaces the concert's setlist with the selected songs and
// returns the number of rows written. Positions are renumbered densely
// from 1 in selection order, whatever the source positions were.
func (w *Writer) Commit(ctx context.Context, concertID int64, selectedSongs []models.EnrichedSong, meta models.SourceMeta) (int, error) {
	rows := make([]models.SetlistSong, 0, len(selectedSongs))
	for i, song := range selectedSongs {
		rows = append(rows, toSetlistSong(concertID, i+1, song, meta))
	}

	deleted, err := w.store.DeleteSetlistSongs(concertID)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		w.logger.Printf("Replaced %d existing songs for concert %d", deleted, concertID)
	}

	inserted, err := w.store.InsertSetlistSongs(rows)
	if err != nil {
		return len(inserted), err
	}

	return len(inserted), nil
}

// toSetlistSong maps one curated song onto a persisted row. Imported songs
// are always official and approved, and carry their provenance.
func toSetlistSong(concertID int64, position int, song models.EnrichedSong, meta models.SourceMeta) models.SetlistSong {
	row := models.SetlistSong{
		ConcertID:        concertID,
		Position:         position,
		SongName:         song.SongName,
		ArtistName:       song.ArtistName,
		DurationSeconds:  song.DurationSeconds,
		ExternalTrackID:  song.ExternalTrackID,
		ExternalTrackURL: song.ExternalTrackURL,
		Status:           models.StatusApproved,
		IsOfficial:       true,
	}

	if song.Notes != "" {
		row.Notes = &song.Notes
	}
	if meta.SetlistID != "" {
		setlistID := meta.SetlistID
		row.SourceSetlistID = &setlistID
	}
	sourceName := song.SourceSongName
	row.SourceSongName = &sourceName

	return row
}
