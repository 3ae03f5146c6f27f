package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/encore-fm/backstage/models"
	"github.com/encore-fm/backstage/service/importer"
)

// jsonResponse returns a JSON response
func jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// jsonError maps the importer error taxonomy onto HTTP statuses. The
// "kind" field tells the admin UI whether retrying is safe or whether the
// destination setlist needs checking first.
func jsonError(w http.ResponseWriter, err error) {
	var scrapeErr *importer.ScrapeError
	var commitErr *importer.CommitError

	switch {
	case errors.Is(err, importer.ErrEmptySourceURL), errors.Is(err, importer.ErrEmptySelection):
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "kind": "validation"})
	case errors.Is(err, importer.ErrImportBusy),
		errors.Is(err, importer.ErrNoActiveImport),
		errors.Is(err, importer.ErrImportInFlight),
		errors.Is(err, importer.ErrSetlistExists):
		jsonResponse(w, http.StatusConflict, map[string]string{"error": err.Error(), "kind": "session"})
	case errors.As(err, &scrapeErr):
		jsonResponse(w, http.StatusBadGateway, map[string]string{"error": err.Error(), "kind": "scrape_failed"})
	case errors.As(err, &commitErr):
		jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error(), "kind": "commit_failed"})
	default:
		jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func concertIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// ===== Concerts =====

func (app *application) handleCreateConcert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArtistName string    `json:"artistName"`
		Venue      string    `json:"venue"`
		Date       time.Time `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.ArtistName == "" {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "artistName is required"})
		return
	}

	concert := &models.Concert{ArtistName: req.ArtistName, Venue: req.Venue, Date: req.Date}
	id, err := app.database.CreateConcert(concert)
	if err != nil {
		jsonError(w, err)
		return
	}
	concert.ID = id

	jsonResponse(w, http.StatusCreated, concert)
}

func (app *application) handleListConcerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	concerts, err := app.database.ListConcerts(limit)
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, concerts)
}

func (app *application) handleGetConcert(w http.ResponseWriter, r *http.Request) {
	id, err := concertIDFromPath(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid concert id"})
		return
	}

	concert, err := app.database.GetConcert(id)
	if err != nil {
		jsonError(w, err)
		return
	}
	if concert == nil {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "concert not found"})
		return
	}
	jsonResponse(w, http.StatusOK, concert)
}

func (app *application) handleGetSetlist(w http.ResponseWriter, r *http.Request) {
	id, err := concertIDFromPath(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid concert id"})
		return
	}

	songs, err := app.database.ListSetlistSongs(id)
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, songs)
}

// ===== Import session =====

func (app *application) handleStartImport(w http.ResponseWriter, r *http.Request) {
	concertID, err := concertIDFromPath(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid concert id"})
		return
	}

	concert, err := app.database.GetConcert(concertID)
	if err != nil {
		jsonError(w, err)
		return
	}
	if concert == nil {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": "concert not found"})
		return
	}

	var req struct {
		SourceURL  string `json:"sourceUrl"`
		ArtistHint string `json:"artistHint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	hint := req.ArtistHint
	if hint == "" {
		hint = concert.ArtistName
	}

	snap, err := app.importerService.StartImport(r.Context(), concertID, req.SourceURL, hint)
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

func (app *application) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, app.importerService.GetSessionSnapshot())
}

func (app *application) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position int `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	snap, err := app.importerService.ToggleSelection(req.Position)
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

func (app *application) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	snap, err := app.importerService.SelectAll()
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

func (app *application) handleDeselectAll(w http.ResponseWriter, r *http.Request) {
	snap, err := app.importerService.DeselectAll()
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

func (app *application) handleConfirmImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReplaceExisting bool `json:"replaceExisting"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	snap, err := app.importerService.ConfirmImport(r.Context(), req.ReplaceExisting)
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

func (app *application) handleCancelImport(w http.ResponseWriter, r *http.Request) {
	snap, err := app.importerService.CancelImport()
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

// ===== Manual curation =====

func (app *application) handleReorderSetlist(w http.ResponseWriter, r *http.Request) {
	concertID, err := concertIDFromPath(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid concert id"})
		return
	}

	var req struct {
		SongID      int64 `json:"songId"`
		OtherSongID int64 `json:"otherSongId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if err := app.curationService.SwapPositions(concertID, req.SongID, req.OtherSongID); err != nil {
		jsonError(w, err)
		return
	}

	// re-read so the UI renders the store's actual state
	songs, err := app.database.ListSetlistSongs(concertID)
	if err != nil {
		jsonError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, songs)
}

func (app *application) handleAddSong(w http.ResponseWriter, r *http.Request) {
	concertID, err := concertIDFromPath(r)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid concert id"})
		return
	}

	var req struct {
		Name       string `json:"name"`
		ArtistHint string `json:"artistHint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	song, err := app.curationService.AddSong(r.Context(), concertID, req.Name, req.ArtistHint)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	jsonResponse(w, http.StatusCreated, song)
}

func (app *application) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	track := r.URL.Query().Get("track")
	if track == "" {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "track query parameter is required"})
		return
	}
	artist := r.URL.Query().Get("artist")

	tracks, err := app.catalogService.Search(r.Context(), track, artist)
	if err != nil {
		jsonResponse(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	jsonResponse(w, http.StatusOK, tracks)
}

func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
