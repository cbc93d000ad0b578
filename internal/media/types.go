// Package media defines the normalized data shapes shared by every
// media-request backend implementation. SearchResult is the only
// cross-backend coupling: each client maps its service-specific payloads
// into these types and the rest of the system never sees raw responses.
package media

import (
	"strconv"
	"strings"
	"time"
)

// MediaType identifies whether a title is a movie or a TV series.
type MediaType string

const (
	TypeMovie MediaType = "movie"
	TypeTV    MediaType = "tv"
)

// TypeFromText maps free-form spoken text ("the tv show", "a film") to a
// MediaType. Returns "" when the text names neither.
func TypeFromText(text string) MediaType {
	t := strings.ToLower(text)
	if strings.Contains(t, "tv") || strings.Contains(t, "show") || strings.Contains(t, "series") {
		return TypeTV
	}
	if strings.Contains(t, "movie") || strings.Contains(t, "film") {
		return TypeMovie
	}
	return ""
}

// Availability mirrors the Overseerr media status lifecycle. Ombi statuses
// are mapped onto the same scale during normalization.
type Availability int

const (
	StatusUnknown Availability = iota + 1
	StatusPending
	StatusProcessing
	StatusPartiallyAvailable
	StatusAvailable
	StatusDeleted
)

func (a Availability) String() string {
	switch a {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusPartiallyAvailable:
		return "partially_available"
	case StatusAvailable:
		return "available"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SearchResult is one normalized candidate title. Immutable once produced
// by a backend client; the fuzzy matcher returns re-scored copies rather
// than mutating in place.
type SearchResult struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	MediaType   MediaType    `json:"mediaType"`
	ReleaseDate string       `json:"releaseDate,omitempty"` // ISO date, may be empty
	Status      Availability `json:"status"`
	HasRequests bool         `json:"hasRequests,omitempty"`
	FuzzyScore  int          `json:"fuzzyScore,omitempty"` // 0-100, 0 = not computed

	// Episode counts for partially available TV shows, when the backend
	// reports them.
	AvailableEpisodes int `json:"availableEpisodes,omitempty"`
	TotalEpisodes     int `json:"totalEpisodes,omitempty"`
}

// ReleaseYear parses the year out of ReleaseDate.
func (r SearchResult) ReleaseYear() (int, bool) {
	if len(r.ReleaseDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(r.ReleaseDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ReleaseTime parses ReleaseDate as a date.
func (r SearchResult) ReleaseTime() (time.Time, bool) {
	if len(r.ReleaseDate) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", r.ReleaseDate[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Upcoming reports whether the release date is strictly in the future.
func (r SearchResult) Upcoming(now time.Time) bool {
	t, ok := r.ReleaseTime()
	return ok && t.After(now)
}

// TypeWord returns the spoken form of the media type.
func (r SearchResult) TypeWord() string {
	if r.MediaType == TypeTV {
		return "TV show"
	}
	return "movie"
}

// RequestOutcome is the result of creating a download request. A duplicate
// request is a distinguished outcome, not an error.
type RequestOutcome struct {
	RequestID        int    `json:"requestId,omitempty"`
	AlreadyRequested bool   `json:"alreadyRequested"`
	Message          string `json:"message,omitempty"`
}

// DetailInfo carries advisory cast/crew metadata. All fields are best
// effort; absence is normal.
type DetailInfo struct {
	Cast     []string `json:"cast,omitempty"`
	Director string   `json:"director,omitempty"`
	Genres   []string `json:"genres,omitempty"`
}
