// Package importer drives the setlist import workflow: fetch a scraped
// setlist, reconcile it against the catalog, let a curator pick songs in
// preview, and commit the curated list as the concert's official setlist.
//
// One session exists per service instance; the admin workflow is
// single-curator. All mutations of the session happen under one mutex, so
// the four phases form a strict state machine:
//
//	idle -> loading -> preview -> importing -> idle
//
// with preview -> idle on cancel and importing -> preview when the write
// fails, so curated state survives a failed commit.
package importer

import (
	"context"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/encore-fm/backstage/models"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhasePreview   Phase = "preview"
	PhaseImporting Phase = "importing"
)

// Scraper is the scrape provider collaborator.
type Scraper interface {
	Fetch(ctx context.Context, sourceURL string) (*models.ScrapedSetlist, error)
}

// Reconciler is the slice of the reconcile service the importer needs.
type Reconciler interface {
	Reconcile(ctx context.Context, rawSongs []models.RawSong, artistHint string) []models.EnrichedSong
	ReconcileOne(ctx context.Context, position int, raw models.RawSong, artistHint string) models.EnrichedSong
}

// SetlistStore is the record-store surface the importer writes through.
// Every call is independently committed; no transactions are available.
type SetlistStore interface {
	ListSetlistSongs(concertID int64) ([]models.SetlistSong, error)
	CountSetlistSongs(concertID int64) (int, error)
	InsertSetlistSong(s *models.SetlistSong) (int64, error)
	InsertSetlistSongs(songs []models.SetlistSong) ([]models.SetlistSong, error)
	DeleteSetlistSongs(concertID int64) (int64, error)
	UpdateSetlistSongPosition(id int64, position int) error
	MaxSetlistPosition(concertID int64) (int, error)
}

// session is the mutable state of one import attempt.
type session struct {
	phase      Phase
	concertID  int64
	sourceURL  string
	artistHint string
	songs      []models.EnrichedSong
	stats      models.ImportStats
	selected   map[int]bool
	meta       models.SourceMeta
	lastError  string
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	Phase      Phase                 `json:"phase"`
	ConcertID  int64                 `json:"concertId,omitempty"`
	SourceURL  string                `json:"sourceUrl,omitempty"`
	Songs      []models.EnrichedSong `json:"songs,omitempty"`
	Stats      models.ImportStats    `json:"stats"`
	Selected   []int                 `json:"selected,omitempty"`
	SourceMeta models.SourceMeta     `json:"sourceMeta"`
	LastError  string                `json:"lastError,omitempty"`
}

type Service struct {
	mu         sync.Mutex
	sess       session
	scraper    Scraper
	reconciler Reconciler
	writer     *Writer
	store      SetlistStore
	logger     *log.Logger
}

func NewService(scraper Scraper, reconciler Reconciler, store SetlistStore) *Service {
	logger := log.New(os.Stdout, "importer: ", log.LstdFlags|log.Lmsgprefix)
	return &Service{
		sess:       session{phase: PhaseIdle},
		scraper:    scraper,
		reconciler: reconciler,
		writer:     NewWriter(store),
		store:      store,
		logger:     logger,
	}
}

// StartImport fetches and reconciles the setlist behind sourceURL and
// moves the session to preview. When artistHint is empty the scraped
// headliner is used for catalog lookups.
func (s *Service) StartImport(ctx context.Context, concertID int64, sourceURL, artistHint string) (Snapshot, error) {
	if sourceURL == "" {
		return s.GetSessionSnapshot(), ErrEmptySourceURL
	}

	s.mu.Lock()
	if s.sess.phase != PhaseIdle {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrImportBusy
	}
	s.sess = session{
		phase:      PhaseLoading,
		concertID:  concertID,
		sourceURL:  sourceURL,
		artistHint: artistHint,
	}
	s.mu.Unlock()

	scraped, err := s.scraper.Fetch(ctx, sourceURL)
	if err != nil {
		scrapeErr := &ScrapeError{Err: err}
		s.mu.Lock()
		// back to idle; the source URL survives so the curator can retry
		s.sess = session{
			phase:      PhaseIdle,
			concertID:  concertID,
			sourceURL:  sourceURL,
			artistHint: artistHint,
			lastError:  scrapeErr.Error(),
		}
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, scrapeErr
	}

	hint := artistHint
	if hint == "" {
		hint = scraped.ArtistName
	}

	songs := s.reconciler.Reconcile(ctx, scraped.RawSongs, hint)

	// unresolved songs start unselected and need explicit curator opt-in
	selected := make(map[int]bool)
	for _, song := range songs {
		if song.Confidence != models.ConfidenceNotFound {
			selected[song.Position] = true
		}
	}

	s.mu.Lock()
	s.sess.phase = PhasePreview
	s.sess.songs = songs
	s.sess.stats = models.CountStats(songs)
	s.sess.selected = selected
	s.sess.meta = models.SourceMeta{SetlistID: scraped.SetlistID, SourceURL: scraped.SourceURL}
	s.sess.lastError = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Printf("Loaded setlist %s: %d songs (%d exact, %d partial, %d not found)",
		scraped.SetlistID, len(songs), snap.Stats.Exact, snap.Stats.Partial, snap.Stats.NotFound)
	return snap, nil
}

// ToggleSelection flips one song's selection membership. Unknown positions
// are a no-op.
func (s *Service) ToggleSelection(position int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess.phase != PhasePreview {
		return s.snapshotLocked(), ErrNoActiveImport
	}

	for _, song := range s.sess.songs {
		if song.Position == position {
			if s.sess.selected[position] {
				delete(s.sess.selected, position)
			} else {
				s.sess.selected[position] = true
			}
			break
		}
	}

	return s.snapshotLocked(), nil
}

// SelectAll marks every loaded song for import.
func (s *Service) SelectAll() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess.phase != PhasePreview {
		return s.snapshotLocked(), ErrNoActiveImport
	}

	for _, song := range s.sess.songs {
		s.sess.selected[song.Position] = true
	}
	return s.snapshotLocked(), nil
}

// DeselectAll clears the selection.
func (s *Service) DeselectAll() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess.phase != PhasePreview {
		return s.snapshotLocked(), ErrNoActiveImport
	}

	s.sess.selected = make(map[int]bool)
	return s.snapshotLocked(), nil
}

// ConfirmImport commits the selected songs as the concert's setlist. When
// the concert already has setlist rows the caller must pass
// replaceExisting=true, acknowledging the destructive replace; otherwise
// the call fails with ErrSetlistExists and the session stays in preview.
func (s *Service) ConfirmImport(ctx context.Context, replaceExisting bool) (Snapshot, error) {
	s.mu.Lock()

	if s.sess.phase != PhasePreview {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrNoActiveImport
	}

	if len(s.sess.selected) == 0 {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrEmptySelection
	}

	concertID := s.sess.concertID

	existing, err := s.store.CountSetlistSongs(concertID)
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, &CommitError{Err: err}
	}
	if existing > 0 && !replaceExisting {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrSetlistExists
	}

	selectedSongs := s.selectedSongsLocked()
	meta := s.sess.meta
	s.sess.phase = PhaseImporting
	s.mu.Unlock()

	// a commit in flight runs to completion even if the request is dropped
	count, err := s.writer.Commit(context.WithoutCancel(ctx), concertID, selectedSongs, meta)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		commitErr := &CommitError{Err: err}
		// back to preview: the curated selection survives a failed write
		s.sess.phase = PhasePreview
		s.sess.lastError = commitErr.Error()
		return s.snapshotLocked(), commitErr
	}

	s.logger.Printf("Imported %d songs into concert %d from setlist %s", count, concertID, meta.SetlistID)
	s.sess = session{phase: PhaseIdle}
	return s.snapshotLocked(), nil
}

// CancelImport discards the session. Cancellation is not permitted while
// loading or while the commit is being written.
func (s *Service) CancelImport() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.sess.phase {
	case PhaseLoading:
		return s.snapshotLocked(), ErrImportBusy
	case PhaseImporting:
		return s.snapshotLocked(), ErrImportInFlight
	}

	s.sess = session{phase: PhaseIdle}
	return s.snapshotLocked(), nil
}

// GetSessionSnapshot returns a read-only copy of the session for rendering.
func (s *Service) GetSessionSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// selectedSongsLocked returns the selected songs in loaded (scrape) order.
func (s *Service) selectedSongsLocked() []models.EnrichedSong {
	selected := make([]models.EnrichedSong, 0, len(s.sess.selected))
	for _, song := range s.sess.songs {
		if s.sess.selected[song.Position] {
			selected = append(selected, song)
		}
	}
	return selected
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:      s.sess.phase,
		ConcertID:  s.sess.concertID,
		SourceURL:  s.sess.sourceURL,
		Songs:      append([]models.EnrichedSong(nil), s.sess.songs...),
		Stats:      s.sess.stats,
		SourceMeta: s.sess.meta,
		LastError:  s.sess.lastError,
	}

	for position := range s.sess.selected {
		snap.Selected = append(snap.Selected, position)
	}
	sort.Ints(snap.Selected)

	return snap
}
