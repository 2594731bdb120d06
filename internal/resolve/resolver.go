// Package resolve maps semantic roles ("title", "website") onto the
// actual columns of a file header using approximate name matching.
package resolve

import (
	"errors"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"website-cleaner/internal/domain"
)

// DefaultThreshold is the minimum acceptance score for a header/alias match.
const DefaultThreshold = 70

// ErrNoWebsiteColumn is returned when no header matches any website alias.
// The job must fail before any chunk is read.
var ErrNoWebsiteColumn = errors.New("no website column found in header")

// Mapping holds the resolved column indexes for one file.
// TitleIndex is nil when no title-like column was found; that is not an
// error, title is optional metadata.
type Mapping struct {
	TitleIndex   *int
	WebsiteIndex int
}

// Scorer rates how well a header name matches an alias, 0..100.
type Scorer interface {
	Score(header, alias string) int
}

// Resolver picks the best-scoring column per role from a header row.
type Resolver struct {
	scorer    Scorer
	threshold int
}

// NewResolver builds a resolver with the Levenshtein scorer and the
// default acceptance threshold.
func NewResolver() *Resolver {
	return &Resolver{scorer: LevenshteinScorer{}, threshold: DefaultThreshold}
}

// NewResolverWithScorer builds a resolver with an explicit strategy,
// e.g. SubstringScorer when approximate matching is not wanted.
func NewResolverWithScorer(s Scorer, threshold int) *Resolver {
	return &Resolver{scorer: s, threshold: threshold}
}

// Resolve maps the title and website roles onto header columns.
// Ties go to the lowest column index.
func (r *Resolver) Resolve(header []string, aliases domain.ColumnAliases) (Mapping, error) {
	webIdx, webOK := r.best(header, aliases.Website)
	if !webOK {
		return Mapping{}, ErrNoWebsiteColumn
	}

	m := Mapping{WebsiteIndex: webIdx}
	if titleIdx, ok := r.best(header, aliases.Title); ok {
		m.TitleIndex = &titleIdx
	}
	return m, nil
}

// best returns the index of the highest-scoring header above threshold.
func (r *Resolver) best(header []string, aliases []string) (int, bool) {
	bestIdx, bestScore := -1, 0
	for i, name := range header {
		for _, alias := range aliases {
			score := r.scorer.Score(name, alias)
			if score > bestScore && score >= r.threshold {
				bestIdx, bestScore = i, score
			}
		}
	}
	return bestIdx, bestIdx >= 0
}

// LevenshteinScorer rates similarity between normalized names.
// Containment in either direction scores 100, the partial-ratio
// behavior this heuristic was tuned against; otherwise the score is
// derived from the Levenshtein distance.
type LevenshteinScorer struct{}

// Score implements Scorer.
func (LevenshteinScorer) Score(header, alias string) int {
	h := normalizeName(header)
	a := normalizeName(alias)
	if h == "" || a == "" {
		return 0
	}
	if strings.Contains(h, a) || strings.Contains(a, h) {
		return 100
	}

	dist := fuzzy.LevenshteinDistance(h, a)
	longest := len([]rune(h))
	if l := len([]rune(a)); l > longest {
		longest = l
	}
	if dist >= longest {
		return 0
	}
	return 100 * (longest - dist) / longest
}

// SubstringScorer is the fallback strategy: case-insensitive containment
// only, no distance computation.
type SubstringScorer struct{}

// Score implements Scorer.
func (SubstringScorer) Score(header, alias string) int {
	h := normalizeName(header)
	a := normalizeName(alias)
	if h == "" || a == "" {
		return 0
	}
	if strings.Contains(h, a) || strings.Contains(a, h) {
		return 100
	}
	return 0
}

// normalizeName lower-cases a column name and strips everything that is
// not a letter or digit, so "Web Site" and "web_site" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
