// Package reconcile matches scraped setlist songs against the music
// catalog. Lookups for distinct songs fan out concurrently under a small
// cap, and the result order always mirrors the scrape order.
package reconcile

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/encore-fm/backstage/models"
	"github.com/encore-fm/backstage/service/match"
)

// CatalogSearcher is the slice of the catalog service the reconciler needs.
type CatalogSearcher interface {
	Search(ctx context.Context, track, artist string) ([]models.CatalogTrack, error)
}

type Service struct {
	catalog     CatalogSearcher
	maxInFlight int
	logger      *log.Logger
}

func NewService(catalog CatalogSearcher, maxParallelLookups int) *Service {
	if maxParallelLookups < 1 {
		maxParallelLookups = 1
	}
	logger := log.New(os.Stdout, "reconcile: ", log.LstdFlags|log.Lmsgprefix)
	return &Service{
		catalog:     catalog,
		maxInFlight: maxParallelLookups,
		logger:      logger,
	}
}

// Reconcile enriches every raw song in scrape order. A failed lookup for
// one song degrades that song to not_found and never aborts the batch.
func (s *Service) Reconcile(ctx context.Context, rawSongs []models.RawSong, artistHint string) []models.EnrichedSong {
	enriched := make([]models.EnrichedSong, len(rawSongs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxInFlight)

	for i, raw := range rawSongs {
		// tape cues never hit the catalog
		if raw.IsTape {
			enriched[i] = unresolvedSong(i+1, raw)
			continue
		}

		wg.Add(1)
		go func(i int, raw models.RawSong) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			enriched[i] = s.ReconcileOne(ctx, i+1, raw, artistHint)
		}(i, raw)
	}

	wg.Wait()
	return enriched
}

// ReconcileOne resolves a single raw song. The position is preserved
// verbatim; it is the caller's stable key for the song.
func (s *Service) ReconcileOne(ctx context.Context, position int, raw models.RawSong, artistHint string) models.EnrichedSong {
	song := unresolvedSong(position, raw)
	if raw.IsTape {
		return song
	}

	hint := artistHint
	if raw.CoverArtist != "" {
		hint = raw.CoverArtist
	}

	candidates, err := s.catalog.Search(ctx, raw.Name, hint)
	if err != nil {
		// absorbed: a flaky lookup must not fail the import
		s.logger.Printf("Catalog lookup failed for %q: %v", raw.Name, err)
		return song
	}

	var top *models.CatalogTrack
	if len(candidates) > 0 {
		top = &candidates[0]
	}

	song.Confidence = match.Classify(raw.Name, top)
	if song.Confidence == models.ConfidenceNotFound {
		return song
	}

	song.SongName = top.Name
	if top.ArtistName != "" {
		song.ArtistName = &top.ArtistName
	}
	if top.ID != "" && top.ExternalURL != "" {
		song.ExternalTrackID = &top.ID
		song.ExternalTrackURL = &top.ExternalURL
	}
	if top.DurationMs > 0 {
		seconds := top.DurationMs / 1000
		song.DurationSeconds = &seconds
	}

	return song
}

// unresolvedSong is the not_found baseline: the scraped name stands in for
// the resolved one and no external identifiers are attached.
func unresolvedSong(position int, raw models.RawSong) models.EnrichedSong {
	return models.EnrichedSong{
		Position:       position,
		SourceSongName: raw.Name,
		Notes:          raw.Notes,
		IsTape:         raw.IsTape,
		SongName:       raw.Name,
		Confidence:     models.ConfidenceNotFound,
	}
}
