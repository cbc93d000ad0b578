package search

import (
	"math"
	"sort"
	"time"

	"github.com/overtalkerr/overtalkerr/internal/media"
)

// YearRange is an inclusive release-year filter.
type YearRange struct {
	Start int
	End   int
}

// Contains reports whether year falls inside the range.
func (yr YearRange) Contains(year int) bool {
	return year >= yr.Start && year <= yr.End
}

// PickBest orders candidates into presentation order.
//
// A year filter is strict: results without a parseable release year are
// dropped along with out-of-range ones. Survivors sort descending by
// (upcoming, fuzzy score, recency), where upcoming counts only when the
// caller asked for upcoming titles and the release date is strictly in
// the future. The sort is stable so ties keep their incoming order.
func PickBest(results []media.SearchResult, upcomingOnly bool, years *YearRange, now time.Time) []media.SearchResult {
	if years != nil {
		filtered := make([]media.SearchResult, 0, len(results))
		for _, r := range results {
			year, ok := r.ReleaseYear()
			if !ok || !years.Contains(year) {
				continue
			}
			filtered = append(filtered, r)
		}
		results = filtered
	}

	ranked := make([]media.SearchResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		ki, kj := rankKey(ranked[i], upcomingOnly, now), rankKey(ranked[j], upcomingOnly, now)
		if ki.upcoming != kj.upcoming {
			return ki.upcoming > kj.upcoming
		}
		if ki.quality != kj.quality {
			return ki.quality > kj.quality
		}
		return ki.recency > kj.recency
	})
	return ranked
}

type sortKey struct {
	upcoming int
	quality  int
	recency  int64
}

func rankKey(r media.SearchResult, upcomingOnly bool, now time.Time) sortKey {
	// A missing release date always ranks below any real one, including
	// pre-1970 dates whose Unix time is negative.
	key := sortKey{quality: r.FuzzyScore, recency: math.MinInt64}
	if t, ok := r.ReleaseTime(); ok {
		key.recency = t.Unix()
		if upcomingOnly && t.After(now) {
			key.upcoming = 1
		}
	}
	return key
}
