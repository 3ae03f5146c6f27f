// Package scrape fetches third-party setlists from the setlist.fm REST API
// and flattens them into ordered raw songs for reconciliation. It performs
// no matching itself.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"golang.org/x/time/rate"

	"github.com/encore-fm/backstage/models"
)

// setlistURLPattern matches the trailing hex identifier in a public
// setlist.fm URL, e.g. .../queen-wembley-63de4613.html
var setlistURLPattern = regexp.MustCompile(`-([0-9a-f]+)\.html$`)

var bareIDPattern = regexp.MustCompile(`^[0-9a-f]+$`)

// API response types
type apiArtist struct {
	MBID string `json:"mbid,omitempty"`
	Name string `json:"name"`
}

type apiCover struct {
	Name string `json:"name"`
}

type apiSong struct {
	Name  string    `json:"name"`
	Info  string    `json:"info,omitempty"`
	Tape  bool      `json:"tape,omitempty"`
	Cover *apiCover `json:"cover,omitempty"`
}

type apiSet struct {
	Name   string    `json:"name,omitempty"`
	Encore int       `json:"encore,omitempty"`
	Songs  []apiSong `json:"song"`
}

type apiSetlist struct {
	ID     string    `json:"id"`
	URL    string    `json:"url"`
	Artist apiArtist `json:"artist"`
	Sets   struct {
		Set []apiSet `json:"set"`
	} `json:"sets"`
}

type Service struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewService creates a setlist.fm client. The API allows a low request
// rate per key, so callers share one rate-limited instance.
func NewService(apiURL, apiKey string, requestsPerSecond int) *Service {
	logger := log.New(os.Stdout, "scrape: ", log.LstdFlags|log.Lmsgprefix)
	return &Service{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:  logger,
	}
}

// extractSetlistID pulls the setlist identifier out of a public setlist
// URL. A bare identifier is accepted as-is.
func extractSetlistID(sourceURL string) (string, error) {
	if m := setlistURLPattern.FindStringSubmatch(sourceURL); m != nil {
		return m[1], nil
	}
	if bareIDPattern.MatchString(sourceURL) {
		return sourceURL, nil
	}
	return "", fmt.Errorf("could not extract a setlist id from %q", sourceURL)
}

func (s *Service) executeRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("User-Agent", "backstage/0.1 ( https://github.com/encore-fm/backstage )")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("context error during request execution: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to execute request to %s: %w", endpoint, err)
	}
	return resp, nil
}

// Fetch retrieves and flattens the setlist behind a public setlist URL.
func (s *Service) Fetch(ctx context.Context, sourceURL string) (*models.ScrapedSetlist, error) {
	setlistID, err := extractSetlistID(sourceURL)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/setlist/%s", s.apiURL, setlistID)
	resp, err := s.executeRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("setlist %s not found", setlistID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("setlist.fm request to %s returned status %d", endpoint, resp.StatusCode)
	}

	var result apiSetlist
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}

	scraped := flattenSetlist(&result)
	if len(scraped.RawSongs) == 0 {
		return nil, fmt.Errorf("setlist %s contains no songs", setlistID)
	}

	s.logger.Printf("Fetched setlist %s: %d songs by %s", scraped.SetlistID, len(scraped.RawSongs), scraped.ArtistName)
	return scraped, nil
}

// flattenSetlist collapses the main set and encores into one ordered
// sequence, keeping tape cues and per-song cover credits.
func flattenSetlist(setlist *apiSetlist) *models.ScrapedSetlist {
	scraped := &models.ScrapedSetlist{
		SetlistID:  setlist.ID,
		SourceURL:  setlist.URL,
		ArtistName: setlist.Artist.Name,
	}

	for _, set := range setlist.Sets.Set {
		for _, song := range set.Songs {
			raw := models.RawSong{
				Name:   song.Name,
				Notes:  song.Info,
				IsTape: song.Tape,
			}
			if song.Cover != nil {
				raw.CoverArtist = song.Cover.Name
			}
			scraped.RawSongs = append(scraped.RawSongs, raw)
		}
	}

	return scraped
}
