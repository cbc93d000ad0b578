package search

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/overtalkerr/overtalkerr/internal/media"
)

const (
	// ThresholdDefault is the minimum fuzzy score a result needs to
	// survive the main pipeline.
	ThresholdDefault = 60

	// suggestionThreshold is the minimum plain-ratio score for a "did
	// you mean" candidate.
	suggestionThreshold = 40
)

// score measures query/title similarity as the best of four metrics; no
// single metric is robust to both typos and word reordering.
func score(query, title string) int {
	q := strings.ToLower(query)
	t := strings.ToLower(title)

	best := fuzzy.Ratio(q, t)
	if s := fuzzy.PartialRatio(q, t); s > best {
		best = s
	}
	if s := fuzzy.TokenSortRatio(q, t); s > best {
		best = s
	}
	if s := fuzzy.TokenSetRatio(q, t); s > best {
		best = s
	}
	return best
}

// Match scores every result's title against the query, drops results
// below threshold, and returns the survivors sorted by score descending.
// The sort is stable, so equal scores keep the backend's order, and the
// function is idempotent over its own output.
func Match(query string, results []media.SearchResult, threshold int) []media.SearchResult {
	if len(results) == 0 {
		return results
	}

	scored := make([]media.SearchResult, 0, len(results))
	for _, r := range results {
		s := score(query, r.Title)
		if s < threshold {
			continue
		}
		r.FuzzyScore = s
		scored = append(scored, r)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FuzzyScore > scored[j].FuzzyScore
	})
	return scored
}

// BestSuggestion picks the closest title from the raw result set for a
// "did you mean" prompt. Plain edit-distance ratio only: the looser
// metrics would suggest results that barely resemble what was said.
func BestSuggestion(query string, results []media.SearchResult) (media.SearchResult, bool) {
	var best media.SearchResult
	bestScore := 0

	q := strings.ToLower(query)
	for _, r := range results {
		if r.Title == "" {
			continue
		}
		if s := fuzzy.Ratio(q, strings.ToLower(r.Title)); s > bestScore {
			bestScore = s
			best = r
		}
	}

	if bestScore <= suggestionThreshold {
		return media.SearchResult{}, false
	}
	best.FuzzyScore = bestScore
	return best, true
}
