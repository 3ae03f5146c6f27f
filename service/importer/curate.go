package importer

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/encore-fm/backstage/models"
)

// Curation covers the manual edits a curator makes outside an import
// session: reordering songs and adding a single song by hand.
type Curation struct {
	store      SetlistStore
	reconciler Reconciler
	logger     *log.Logger
}

func NewCuration(store SetlistStore, reconciler Reconciler) *Curation {
	return &Curation{
		store:      store,
		reconciler: reconciler,
		logger:     log.New(os.Stdout, "curate: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// SwapPositions exchanges the stored positions of two setlist rows. The
// two updates are independent statements, so a crash between them can
// briefly leave both rows on one position; the admin UI re-reads the
// setlist after every edit, which heals the view.
func (c *Curation) SwapPositions(concertID, songID, otherSongID int64) error {
	songs, err := c.store.ListSetlistSongs(concertID)
	if err != nil {
		return fmt.Errorf("list setlist: %w", err)
	}

	var first, second *models.SetlistSong
	for i := range songs {
		switch songs[i].ID {
		case songID:
			first = &songs[i]
		case otherSongID:
			second = &songs[i]
		}
	}
	if first == nil || second == nil {
		return fmt.Errorf("songs %d and %d are not both part of concert %d", songID, otherSongID, concertID)
	}

	if err := c.store.UpdateSetlistSongPosition(first.ID, second.Position); err != nil {
		return fmt.Errorf("update position of song %d: %w", first.ID, err)
	}
	if err := c.store.UpdateSetlistSongPosition(second.ID, first.Position); err != nil {
		return fmt.Errorf("update position of song %d: %w", second.ID, err)
	}

	return nil
}

// AddSong resolves a single song against the catalog and appends it to the
// end of the concert's setlist. It never touches an import session.
func (c *Curation) AddSong(ctx context.Context, concertID int64, name, artistHint string) (*models.SetlistSong, error) {
	if name == "" {
		return nil, fmt.Errorf("song name must not be empty")
	}

	enriched := c.reconciler.ReconcileOne(ctx, 0, models.RawSong{Name: name}, artistHint)

	maxPosition, err := c.store.MaxSetlistPosition(concertID)
	if err != nil {
		return nil, fmt.Errorf("find last position: %w", err)
	}

	row := toSetlistSong(concertID, maxPosition+1, enriched, models.SourceMeta{})

	id, err := c.store.InsertSetlistSong(&row)
	if err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}
	row.ID = id

	c.logger.Printf("Added %q to concert %d at position %d (%s)", row.SongName, concertID, row.Position, enriched.Confidence)
	return &row, nil
}
