// Package catalog implements the music-catalog search oracle on top of the
// Spotify Web API. Searches are rate limited and cached in memory; scraped
// song names are cleaned before querying so live-recording qualifiers do
// not poison the search.
package catalog

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/encore-fm/backstage/models"
)

// cacheEntry holds cached search results and their expiration time.
type cacheEntry struct {
	tracks    []models.CatalogTrack
	expiresAt time.Time
}

type Service struct {
	client      *spotify.Client
	limiter     *rate.Limiter
	searchLimit int
	searchCache map[string]cacheEntry
	cacheMutex  sync.RWMutex
	cacheTTL    time.Duration
	cleaner     *QueryCleaner
	logger      *log.Logger
}

// NewSpotifyClient builds an app-level Spotify client using the
// client-credentials flow; no user login is involved.
func NewSpotifyClient(ctx context.Context, clientID, clientSecret, tokenURL string) *spotify.Client {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return spotify.New(config.Client(ctx))
}

// NewService creates a catalog search service with rate limiting and caching.
func NewService(client *spotify.Client, requestsPerSecond, searchLimit int, cacheTTL time.Duration) *Service {
	logger := log.New(os.Stdout, "catalog: ", log.LstdFlags|log.Lmsgprefix)
	return &Service{
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		searchLimit: searchLimit,
		searchCache: make(map[string]cacheEntry),
		cacheTTL:    cacheTTL,
		cleaner:     NewQueryCleaner(),
		logger:      logger,
	}
}

func buildSearchQuery(track, artist string) string {
	if artist == "" {
		return fmt.Sprintf("track:%s", track)
	}
	return fmt.Sprintf("track:%s artist:%s", track, artist)
}

func getCacheEntry(cache map[string]cacheEntry, cacheKey string) ([]models.CatalogTrack, bool) {
	entry, found := cache[cacheKey]
	if found && time.Now().UTC().Before(entry.expiresAt) {
		return entry.tracks, true
	}
	return nil, false
}

func setCacheEntry(cache map[string]cacheEntry, cacheKey string, tracks []models.CatalogTrack, ttl time.Duration) {
	cache[cacheKey] = cacheEntry{
		tracks:    tracks,
		expiresAt: time.Now().UTC().Add(ttl),
	}
}

// Search queries the catalog for a track, optionally narrowed by an artist
// hint, and returns ranked candidates. An empty result is not an error.
func (s *Service) Search(ctx context.Context, track, artist string) ([]models.CatalogTrack, error) {
	if track == "" {
		return nil, fmt.Errorf("track name must not be empty")
	}

	cleaned, changed := s.cleaner.CleanTitle(track)
	if changed {
		s.logger.Printf("Cleaned search title %q -> %q", track, cleaned)
	}

	query := buildSearchQuery(cleaned, artist)

	s.cacheMutex.RLock()
	if tracks, found := getCacheEntry(s.searchCache, query); found {
		s.cacheMutex.RUnlock()
		return tracks, nil
	}
	s.cacheMutex.RUnlock()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(s.searchLimit))
	if err != nil {
		return nil, fmt.Errorf("catalog search for %q: %w", query, err)
	}

	tracks := convertSearchResult(result)

	s.cacheMutex.Lock()
	setCacheEntry(s.searchCache, query, tracks, s.cacheTTL)
	s.cacheMutex.Unlock()

	return tracks, nil
}

// convertSearchResult maps the Spotify response onto CatalogTrack values,
// preserving the API's ranking order.
func convertSearchResult(result *spotify.SearchResult) []models.CatalogTrack {
	if result == nil || result.Tracks == nil {
		return nil
	}

	tracks := make([]models.CatalogTrack, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		track := models.CatalogTrack{
			ID:          string(ft.ID),
			Name:        ft.Name,
			DurationMs:  int64(ft.Duration),
			ExternalURL: ft.ExternalURLs["spotify"],
		}
		if len(ft.Artists) > 0 {
			track.ArtistName = ft.Artists[0].Name
		}
		tracks = append(tracks, track)
	}

	return tracks
}
