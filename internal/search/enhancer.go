// Package search turns raw spoken queries into something a media backend
// can answer: typo correction, cast/genre/temporal extraction, fuzzy
// re-scoring of results, and the final ranking that picks what to offer
// the user first.
package search

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Speech recognition mishearings worth correcting before they hit the
// backend search.
var typoSubstitutions = map[string]string{
	"jurrasic":  "jurassic",
	"jurasic":   "jurassic",
	"gardians":  "guardians",
	"the hobit": "the hobbit",
	"dr who":    "doctor who",
}

// Words that introduce an actor or director clause.
var castIndicators = []string{
	"with", "starring", "by", "directed by",
	"featuring", "actor", "actress", "director",
}

var genreKeywords = []struct {
	genre    string
	keywords []string
}{
	{"action", []string{"action", "adventure", "thriller"}},
	{"comedy", []string{"comedy", "funny", "humor"}},
	{"drama", []string{"drama", "dramatic"}},
	{"horror", []string{"horror", "scary", "frightening"}},
	{"scifi", []string{"sci-fi", "science fiction", "scifi", "sci fi"}},
	{"fantasy", []string{"fantasy", "magical"}},
	{"romance", []string{"romance", "romantic", "love story"}},
	{"documentary", []string{"documentary", "docuseries"}},
	{"animation", []string{"animated", "animation", "cartoon"}},
	{"crime", []string{"crime", "detective", "mystery"}},
	{"superhero", []string{"superhero", "marvel", "dc", "comic"}},
}

// Temporal keywords map to a relative day window (negative = future) or a
// named year. Ordered: first hit wins.
var temporalKeywords = []struct {
	keyword string
	days    int
	year    string // "current" or "last"; overrides days when set
}{
	{keyword: "coming soon", days: -60},
	{keyword: "upcoming", days: -90},
	{keyword: "recent", days: 90},
	{keyword: "latest", days: 90},
	{keyword: "new", days: 180},
	{keyword: "this year", year: "current"},
	{keyword: "last year", year: "last"},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	fromYearRe   = regexp.MustCompile(`(?i)from\s+(\d{4})`)
)

// TemporalFilter is an extracted time constraint on a query.
type TemporalFilter struct {
	// Year, when non-zero, restricts results to one release year.
	Year int
	// Days is a relative window when Year is zero: positive for the
	// recent past, negative for the near future.
	Days int
}

// ParsedQuery is the outcome of running a raw query through the full
// enhancement pipeline.
type ParsedQuery struct {
	Original string
	Cleaned  string
	Cast     string
	Genre    string
	Temporal *TemporalFilter
}

// Enhancer normalizes spoken queries before they reach the backend.
type Enhancer struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewEnhancer creates an Enhancer.
func NewEnhancer(logger zerolog.Logger) *Enhancer {
	return &Enhancer{
		logger: logger.With().Str("component", "enhancer").Logger(),
		now:    time.Now,
	}
}

// Parse runs the full pipeline: typo correction, then cast, genre, and
// temporal extraction, each stripping its matched span from the query.
func (e *Enhancer) Parse(query string) ParsedQuery {
	original := query

	query = e.CorrectTypos(query)
	query, cast := e.ExtractCast(query)
	query, genre := e.ExtractGenre(query)
	query, temporal := e.ExtractTemporal(query)

	query = strings.TrimSpace(whitespaceRe.ReplaceAllString(query, " "))

	parsed := ParsedQuery{
		Original: original,
		Cleaned:  query,
		Cast:     cast,
		Genre:    genre,
		Temporal: temporal,
	}
	e.logger.Debug().
		Str("original", original).
		Str("cleaned", parsed.Cleaned).
		Str("cast", cast).
		Str("genre", genre).
		Msg("parsed query")
	return parsed
}

// CorrectTypos rewrites known speech recognition errors.
func (e *Enhancer) CorrectTypos(query string) string {
	lower := strings.ToLower(query)
	for wrong, correct := range typoSubstitutions {
		if strings.Contains(lower, wrong) {
			re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(wrong))
			query = re.ReplaceAllString(query, correct)
			lower = strings.ToLower(query)
		}
	}
	return query
}

// ExtractCast pulls an actor or director name out of the query. The first
// matching indicator wins; its clause is removed from the returned query.
func (e *Enhancer) ExtractCast(query string) (cleaned, cast string) {
	for _, indicator := range castIndicators {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(indicator) + `\s+([a-zA-Z\s]+?)(?:\s|$)`)
		m := re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		cast = strings.TrimSpace(m[1])
		cleaned = strings.TrimSpace(re.ReplaceAllString(query, ""))
		e.logger.Debug().Str("cast", cast).Msg("extracted cast clause")
		return cleaned, cast
	}
	return query, ""
}

// ExtractGenre detects a genre keyword and strips it from the query.
func (e *Enhancer) ExtractGenre(query string) (cleaned, genre string) {
	lower := strings.ToLower(query)
	for _, g := range genreKeywords {
		for _, keyword := range g.keywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
			cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(re.ReplaceAllString(query, ""), " "))
			e.logger.Debug().Str("genre", g.genre).Str("keyword", keyword).Msg("extracted genre")
			return cleaned, g.genre
		}
	}
	return query, ""
}

// ExtractTemporal detects either a temporal keyword ("recent", "coming
// soon", "this year") or an explicit "from YYYY" year clause.
func (e *Enhancer) ExtractTemporal(query string) (cleaned string, filter *TemporalFilter) {
	lower := strings.ToLower(query)
	for _, tk := range temporalKeywords {
		if !strings.Contains(lower, tk.keyword) {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(tk.keyword) + `\b`)
		cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(re.ReplaceAllString(query, ""), " "))

		switch tk.year {
		case "current":
			filter = &TemporalFilter{Year: e.now().Year()}
		case "last":
			filter = &TemporalFilter{Year: e.now().Year() - 1}
		default:
			filter = &TemporalFilter{Days: tk.days}
		}
		return cleaned, filter
	}

	if m := fromYearRe.FindStringSubmatch(query); m != nil {
		year := 0
		for _, c := range m[1] {
			year = year*10 + int(c-'0')
		}
		cleaned = strings.TrimSpace(fromYearRe.ReplaceAllString(query, ""))
		return cleaned, &TemporalFilter{Year: year}
	}

	return query, nil
}
