package importer

import (
	"context"
	"testing"

	"github.com/encore-fm/backstage/models"
)

func enrichedAt(position int, name string) models.EnrichedSong {
	id := "cat-" + name
	url := "https://open.spotify.com/track/" + name
	return models.EnrichedSong{
		Position:         position,
		SourceSongName:   name + " (scraped)",
		SongName:         name,
		ExternalTrackID:  &id,
		ExternalTrackURL: &url,
		Confidence:       models.ConfidenceExact,
	}
}

func TestCommitRenumbersDensely(t *testing.T) {
	store := newFakeStore()
	writer := NewWriter(store)

	// arbitrary non-contiguous source positions
	selected := []models.EnrichedSong{
		enrichedAt(2, "Tie Your Mother Down"),
		enrichedAt(5, "Under Pressure"),
		enrichedAt(7, "Hammer to Fall"),
	}

	count, err := writer.Commit(context.Background(), 7, selected, models.SourceMeta{SetlistID: "63de4613"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	rows := store.concertRows(7)
	if len(rows) != 3 {
		t.Fatalf("store has %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Position != i+1 {
			t.Errorf("row %d position = %d, want %d", i, row.Position, i+1)
		}
	}
	if rows[1].SongName != "Under Pressure" {
		t.Errorf("relative order not preserved: row 1 is %q", rows[1].SongName)
	}
}

func TestCommitReplacesExistingSetlist(t *testing.T) {
	store := newFakeStore()
	seedSetlist(t, store, 7, 3)
	// another concert's setlist must not be touched
	seedSetlist(t, store, 8, 2)

	writer := NewWriter(store)

	selected := []models.EnrichedSong{
		enrichedAt(1, "One Vision"),
		enrichedAt(2, "Tie Your Mother Down"),
		enrichedAt(3, "Under Pressure"),
		enrichedAt(4, "Hammer to Fall"),
		enrichedAt(5, "We Are the Champions"),
	}

	count, err := writer.Commit(context.Background(), 7, selected, models.SourceMeta{})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}

	if got := len(store.concertRows(7)); got != 5 {
		t.Errorf("concert 7 has %d rows, want exactly the 5 imported ones", got)
	}
	if got := len(store.concertRows(8)); got != 2 {
		t.Errorf("concert 8 has %d rows, want its 2 untouched", got)
	}
}

func TestToSetlistSongMapping(t *testing.T) {
	artist := "Queen & David Bowie"
	seconds := int64(245)
	song := models.EnrichedSong{
		Position:        5,
		SourceSongName:  "Under Pressure (live)",
		Notes:           "with David Bowie on tape",
		SongName:        "Under Pressure",
		ArtistName:      &artist,
		DurationSeconds: &seconds,
		Confidence:      models.ConfidencePartial,
	}

	row := toSetlistSong(7, 2, song, models.SourceMeta{SetlistID: "63de4613"})

	if row.ConcertID != 7 || row.Position != 2 {
		t.Errorf("row keyed %d/%d, want concert 7 position 2", row.ConcertID, row.Position)
	}
	if row.SongName != "Under Pressure" {
		t.Errorf("SongName = %q, want the resolved name", row.SongName)
	}
	if row.Status != models.StatusApproved || !row.IsOfficial {
		t.Error("imported rows must be approved and official")
	}
	if row.SourceSongName == nil || *row.SourceSongName != "Under Pressure (live)" {
		t.Errorf("SourceSongName = %v, want the scraped name kept for audit", row.SourceSongName)
	}
	if row.SourceSetlistID == nil || *row.SourceSetlistID != "63de4613" {
		t.Errorf("SourceSetlistID = %v, want provenance carried", row.SourceSetlistID)
	}
	if row.Notes == nil || *row.Notes != "with David Bowie on tape" {
		t.Errorf("Notes = %v, want scrape notes carried", row.Notes)
	}
	if row.DurationSeconds == nil || *row.DurationSeconds != 245 {
		t.Errorf("DurationSeconds = %v, want 245", row.DurationSeconds)
	}
}

func TestSwapPositions(t *testing.T) {
	store := newFakeStore()
	seedSetlist(t, store, 7, 3)
	rows := store.concertRows(7)

	curation := NewCuration(store, mixedReconciler())
	if err := curation.SwapPositions(7, rows[0].ID, rows[1].ID); err != nil {
		t.Fatalf("SwapPositions failed: %v", err)
	}

	after := store.concertRows(7)
	byID := make(map[int64]int)
	for _, r := range after {
		byID[r.ID] = r.Position
	}
	if byID[rows[0].ID] != 2 || byID[rows[1].ID] != 1 {
		t.Errorf("positions after swap = %v, want rows exchanged", byID)
	}
	if byID[rows[2].ID] != 3 {
		t.Errorf("third row moved to %d, want untouched", byID[rows[2].ID])
	}
}

func TestSwapPositionsUnknownSong(t *testing.T) {
	store := newFakeStore()
	seedSetlist(t, store, 7, 2)
	rows := store.concertRows(7)

	curation := NewCuration(store, mixedReconciler())
	if err := curation.SwapPositions(7, rows[0].ID, 999); err == nil {
		t.Fatal("expected error for a song outside the concert")
	}
}

func TestAddSongAppendsAtEnd(t *testing.T) {
	store := newFakeStore()
	seedSetlist(t, store, 7, 2)

	curation := NewCuration(store, mixedReconciler())
	row, err := curation.AddSong(context.Background(), 7, "One Vision", "Queen")
	if err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}

	if row.Position != 3 {
		t.Errorf("Position = %d, want max+1 = 3", row.Position)
	}
	if row.Status != models.StatusApproved || !row.IsOfficial {
		t.Error("curator-added songs must be approved and official")
	}
	if row.ExternalTrackID == nil {
		t.Error("resolved song must carry its external identifiers")
	}
	if len(store.concertRows(7)) != 3 {
		t.Errorf("store has %d rows, want 3", len(store.concertRows(7)))
	}
}

func TestAddSongEmptyName(t *testing.T) {
	curation := NewCuration(newFakeStore(), mixedReconciler())
	if _, err := curation.AddSong(context.Background(), 7, "", "Queen"); err == nil {
		t.Fatal("expected error for empty song name")
	}
}
