package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/encore-fm/backstage/models"
)

// mockSearcher implements CatalogSearcher with canned per-name results.
type mockSearcher struct {
	mu      sync.Mutex
	calls   []string
	hints   map[string]string
	results map[string][]models.CatalogTrack
	errs    map[string]error
	delays  map[string]time.Duration
}

func newMockSearcher() *mockSearcher {
	return &mockSearcher{
		hints:   make(map[string]string),
		results: make(map[string][]models.CatalogTrack),
		errs:    make(map[string]error),
		delays:  make(map[string]time.Duration),
	}
}

func (m *mockSearcher) Search(ctx context.Context, track, artist string) ([]models.CatalogTrack, error) {
	m.mu.Lock()
	m.calls = append(m.calls, track)
	m.hints[track] = artist
	delay := m.delays[track]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if err := m.errs[track]; err != nil {
		return nil, err
	}
	return m.results[track], nil
}

func (m *mockSearcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func exactTrack(name string) []models.CatalogTrack {
	return []models.CatalogTrack{{
		ID:          "id-" + name,
		Name:        name,
		ArtistName:  "Queen",
		DurationMs:  180000,
		ExternalURL: "https://open.spotify.com/track/id-" + name,
	}}
}

func TestReconcilePreservesOrder(t *testing.T) {
	searcher := newMockSearcher()

	var raw []models.RawSong
	for i := 1; i <= 8; i++ {
		name := fmt.Sprintf("Song %d", i)
		raw = append(raw, models.RawSong{Name: name})
		searcher.results[name] = exactTrack(name)
		// earlier songs answer slower than later ones
		searcher.delays[name] = time.Duration(8-i) * 5 * time.Millisecond
	}

	svc := NewService(searcher, 4)
	enriched := svc.Reconcile(context.Background(), raw, "Queen")

	if len(enriched) != len(raw) {
		t.Fatalf("got %d enriched songs, want %d", len(enriched), len(raw))
	}
	for i, song := range enriched {
		if song.Position != i+1 {
			t.Errorf("song %d has position %d, want %d", i, song.Position, i+1)
		}
		if song.SourceSongName != raw[i].Name {
			t.Errorf("song %d is %q, want %q", i, song.SourceSongName, raw[i].Name)
		}
		if song.Confidence != models.ConfidenceExact {
			t.Errorf("song %d confidence = %v, want exact", i, song.Confidence)
		}
	}
}

func TestReconcileSkipsTape(t *testing.T) {
	searcher := newMockSearcher()
	searcher.results["Tie Your Mother Down"] = exactTrack("Tie Your Mother Down")

	raw := []models.RawSong{
		{Name: "One Vision", IsTape: true},
		{Name: "Tie Your Mother Down"},
	}

	svc := NewService(searcher, 2)
	enriched := svc.Reconcile(context.Background(), raw, "Queen")

	tape := enriched[0]
	if tape.Confidence != models.ConfidenceNotFound {
		t.Errorf("tape confidence = %v, want not_found", tape.Confidence)
	}
	if tape.SongName != "One Vision" {
		t.Errorf("tape SongName = %q, want the scraped name", tape.SongName)
	}
	if tape.ExternalTrackID != nil || tape.ExternalTrackURL != nil {
		t.Error("tape song must carry no external identifiers")
	}

	if searcher.callCount() != 1 {
		t.Errorf("oracle called %d times, want 1 (tape skipped)", searcher.callCount())
	}
}

func TestReconcileAbsorbsLookupFailure(t *testing.T) {
	searcher := newMockSearcher()
	searcher.errs["Flaky Song"] = errors.New("connection reset")
	searcher.results["Solid Song"] = exactTrack("Solid Song")

	raw := []models.RawSong{
		{Name: "Flaky Song"},
		{Name: "Solid Song"},
	}

	svc := NewService(searcher, 2)
	enriched := svc.Reconcile(context.Background(), raw, "")

	if enriched[0].Confidence != models.ConfidenceNotFound {
		t.Errorf("failed lookup confidence = %v, want not_found", enriched[0].Confidence)
	}
	if enriched[0].SongName != "Flaky Song" {
		t.Errorf("failed lookup SongName = %q, want source name fallback", enriched[0].SongName)
	}
	if enriched[1].Confidence != models.ConfidenceExact {
		t.Errorf("healthy lookup confidence = %v, want exact", enriched[1].Confidence)
	}
}

func TestReconcileResolvedFields(t *testing.T) {
	searcher := newMockSearcher()
	searcher.results["Under Pressure (live)"] = []models.CatalogTrack{{
		ID:          "track-123",
		Name:        "Under Pressure",
		ArtistName:  "Queen & David Bowie",
		DurationMs:  245000,
		ExternalURL: "https://open.spotify.com/track/track-123",
	}}

	svc := NewService(searcher, 1)
	enriched := svc.Reconcile(context.Background(), []models.RawSong{{Name: "Under Pressure (live)"}}, "Queen")

	song := enriched[0]
	if song.Confidence != models.ConfidencePartial {
		t.Fatalf("confidence = %v, want partial", song.Confidence)
	}
	if song.SongName != "Under Pressure" {
		t.Errorf("SongName = %q, want resolved catalog name", song.SongName)
	}
	if song.SourceSongName != "Under Pressure (live)" {
		t.Errorf("SourceSongName = %q, want original scraped name", song.SourceSongName)
	}
	if song.ArtistName == nil || *song.ArtistName != "Queen & David Bowie" {
		t.Errorf("ArtistName = %v, want resolved artist", song.ArtistName)
	}
	if song.ExternalTrackID == nil || *song.ExternalTrackID != "track-123" {
		t.Errorf("ExternalTrackID = %v, want track-123", song.ExternalTrackID)
	}
	if song.ExternalTrackURL == nil || *song.ExternalTrackURL == "" {
		t.Error("ExternalTrackURL missing")
	}
	if song.DurationSeconds == nil || *song.DurationSeconds != 245 {
		t.Errorf("DurationSeconds = %v, want 245", song.DurationSeconds)
	}
}

func TestReconcileCoverArtistHint(t *testing.T) {
	searcher := newMockSearcher()
	searcher.results["Under Pressure"] = exactTrack("Under Pressure")

	raw := []models.RawSong{{Name: "Under Pressure", CoverArtist: "Queen & David Bowie"}}

	svc := NewService(searcher, 1)
	svc.Reconcile(context.Background(), raw, "Queen")

	if hint := searcher.hints["Under Pressure"]; hint != "Queen & David Bowie" {
		t.Errorf("oracle hint = %q, want the cover credit, not the headliner", hint)
	}
}

func TestCountStats(t *testing.T) {
	songs := []models.EnrichedSong{
		{Confidence: models.ConfidenceExact},
		{Confidence: models.ConfidencePartial},
		{Confidence: models.ConfidenceNotFound},
		{Confidence: models.ConfidenceExact},
	}

	stats := models.CountStats(songs)
	if stats.Exact != 2 || stats.Partial != 1 || stats.NotFound != 1 {
		t.Errorf("CountStats = %+v, want {Exact:2 Partial:1 NotFound:1}", stats)
	}
}
