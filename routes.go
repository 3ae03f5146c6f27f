package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", app.handleHealth)

	// Concert back-office
	mux.HandleFunc("POST /api/v1/concerts", app.handleCreateConcert)
	mux.HandleFunc("GET /api/v1/concerts", app.handleListConcerts)
	mux.HandleFunc("GET /api/v1/concerts/{id}", app.handleGetConcert)
	mux.HandleFunc("GET /api/v1/concerts/{id}/setlist", app.handleGetSetlist)

	// Import session workflow
	mux.HandleFunc("POST /api/v1/concerts/{id}/setlist/import", app.handleStartImport)
	mux.HandleFunc("GET /api/v1/setlist-import", app.handleImportSnapshot)
	mux.HandleFunc("POST /api/v1/setlist-import/toggle", app.handleToggleSelection)
	mux.HandleFunc("POST /api/v1/setlist-import/select-all", app.handleSelectAll)
	mux.HandleFunc("POST /api/v1/setlist-import/deselect-all", app.handleDeselectAll)
	mux.HandleFunc("POST /api/v1/setlist-import/confirm", app.handleConfirmImport)
	mux.HandleFunc("POST /api/v1/setlist-import/cancel", app.handleCancelImport)

	// Manual curation
	mux.HandleFunc("POST /api/v1/concerts/{id}/setlist/reorder", app.handleReorderSetlist)
	mux.HandleFunc("POST /api/v1/concerts/{id}/setlist/songs", app.handleAddSong)
	mux.HandleFunc("GET /api/v1/catalog/search", app.handleCatalogSearch)

	standard := alice.New(recoverPanic, logRequest)
	return standard.Then(mux)
}
