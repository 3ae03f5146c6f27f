// Package match classifies how well a catalog candidate matches a scraped
// song name. Names are normalized (case folded, punctuation and diacritics
// stripped, whitespace collapsed) before comparison; equality after
// normalization is an exact match, containment in either direction or a
// Jaro-Winkler similarity of at least 0.85 is a partial match, anything
// else is treated as not found.
package match

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/encore-fm/backstage/models"
)

// partialThreshold is the minimum Jaro-Winkler similarity accepted as a
// partial match when neither name contains the other.
const partialThreshold = 0.85

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds case, strips diacritics and punctuation, and collapses
// whitespace so two spellings of the same song name compare equal.
func Normalize(name string) string {
	folded, _, err := transform.String(stripDiacritics, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// everything else is punctuation, dropped
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Classify scores a single candidate from the search oracle against the
// scraped song name. A nil candidate always classifies as not found.
func Classify(sourceName string, candidate *models.CatalogTrack) models.Confidence {
	if candidate == nil {
		return models.ConfidenceNotFound
	}

	source := Normalize(sourceName)
	cand := Normalize(candidate.Name)

	if source == "" || cand == "" {
		return models.ConfidenceNotFound
	}

	if source == cand {
		return models.ConfidenceExact
	}

	if strings.Contains(source, cand) || strings.Contains(cand, source) {
		return models.ConfidencePartial
	}

	if strutil.Similarity(source, cand, metrics.NewJaroWinkler()) >= partialThreshold {
		return models.ConfidencePartial
	}

	return models.ConfidenceNotFound
}
