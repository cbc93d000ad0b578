// Package session persists per-conversation dialogue state across
// otherwise-stateless webhook calls. State is an opaque JSON blob keyed
// by (userID, conversationID); stores only load and save it, the
// conversation engine owns its meaning.
package session

import (
	"github.com/overtalkerr/overtalkerr/internal/media"
)

// Awaiting names the pending sub-question, if any. At most one is set at
// a time.
type Awaiting string

const (
	AwaitingNothing           Awaiting = ""
	AwaitingYearRelax         Awaiting = "year_relax"
	AwaitingDidYouMean        Awaiting = "did_you_mean"
	AwaitingTypeClarification Awaiting = "type_clarification"
)

// State is one conversation's durable record: what was searched, the
// ranked candidates, which one is on offer, and any open sub-question.
type State struct {
	Query        string             `json:"query"`
	MediaType    media.MediaType    `json:"mediaType,omitempty"`
	Year         *int               `json:"year,omitempty"`
	UpcomingOnly bool               `json:"upcomingOnly,omitempty"`
	Season       *int               `json:"season,omitempty"`

	// Results in presentation order; Cursor indexes the candidate
	// currently on offer.
	Results []media.SearchResult `json:"results"`
	Cursor  int                  `json:"cursor"`

	Awaiting    Awaiting        `json:"awaiting,omitempty"`
	GuessedType media.MediaType `json:"guessedType,omitempty"`
}

// Current returns the candidate at the cursor, or false when the cursor
// has walked past the end.
func (s *State) Current() (media.SearchResult, bool) {
	if s == nil || s.Cursor < 0 || s.Cursor >= len(s.Results) {
		return media.SearchResult{}, false
	}
	return s.Results[s.Cursor], true
}

// Advance moves the cursor to the next candidate and reports whether one
// exists.
func (s *State) Advance() bool {
	s.Cursor++
	return s.Cursor < len(s.Results)
}

// ClearAwaiting resets the pending sub-question.
func (s *State) ClearAwaiting() {
	s.Awaiting = AwaitingNothing
	s.GuessedType = ""
}
