package conversation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/backend"
	"github.com/overtalkerr/overtalkerr/internal/media"
	"github.com/overtalkerr/overtalkerr/internal/metrics"
	"github.com/overtalkerr/overtalkerr/internal/search"
	"github.com/overtalkerr/overtalkerr/internal/session"
)

var upcomingWordRe = regexp.MustCompile(`(?i)\bupcoming\b`)

// Engine is the dialogue state machine. Each turn reads session state
// once, applies one transition, and writes state back at most once; all
// cross-turn memory lives in the store.
type Engine struct {
	backend  backend.Backend
	store    session.Store
	enhancer *search.Enhancer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(b backend.Backend, store session.Store, logger zerolog.Logger) *Engine {
	return &Engine{
		backend:  b,
		store:    store,
		enhancer: search.NewEnhancer(logger),
		logger:   logger.With().Str("component", "engine").Logger(),
		now:      time.Now,
	}
}

// Handle routes one neutral request through the state machine and
// produces the neutral response the adapter renders.
func (e *Engine) Handle(ctx context.Context, req VoiceRequest) VoiceResponse {
	intent := ClassifyIntent(req.IntentName)
	metrics.IntentsTotal.WithLabelValues(string(intent), string(req.Platform)).Inc()

	e.logger.Info().
		Str("intent", string(intent)).
		Str("platform", string(req.Platform)).
		Str("userId", req.UserID).
		Msg("handling intent")

	switch intent {
	case IntentLaunch:
		return VoiceResponse{
			Speech:    welcomeSpeech,
			Reprompt:  downloadReprompt,
			CardTitle: cardTitle,
			CardText:  welcomeSpeech,
		}
	case IntentDownload:
		return e.handleDownload(ctx, req)
	case IntentYes:
		return e.handleYes(ctx, req)
	case IntentNo:
		return e.handleNo(ctx, req)
	case IntentHelp:
		return VoiceResponse{
			Speech:    helpSpeech,
			Reprompt:  downloadReprompt,
			CardTitle: "Overtalkerr Help",
			CardText:  helpSpeech,
		}
	case IntentCancel:
		return VoiceResponse{Speech: "Goodbye!", ShouldEndSession: true}
	default:
		return VoiceResponse{Speech: fallbackSpeech, Reprompt: downloadReprompt}
	}
}

func (e *Engine) handleDownload(ctx context.Context, req VoiceRequest) VoiceResponse {
	title := req.Slot("MediaTitle", "title")
	if title == "" {
		return VoiceResponse{Speech: missingTitleSpeech, Reprompt: missingTitleSpeech}
	}

	parsed := e.enhancer.Parse(title)
	cleaned := parsed.Cleaned

	mediaType := media.TypeFromText(req.Slot("MediaType", "mediaType"))
	season := parseSeason(req.Slot("Season", "season"))
	year := parseYear(req.Slot("Year", "year"))

	upcomingOnly := isTruthy(req.Slot("Upcoming", "upcoming")) || upcomingWordRe.MatchString(title)
	if parsed.Temporal != nil {
		if parsed.Temporal.Days < 0 {
			upcomingOnly = true
		}
		if parsed.Temporal.Year != 0 && year == nil {
			y := parsed.Temporal.Year
			year = &y
		}
	}

	results, err := e.backend.Search(ctx, cleaned, mediaType)
	metrics.ObserveBackend(e.backend.Name(), "search", err)
	if err != nil {
		e.logger.Error().Err(err).Str("query", cleaned).Str("userId", req.UserID).Msg("backend search failed")
		return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
	}

	preFuzzy := results
	results = search.Match(cleaned, results, search.ThresholdDefault)

	var yearRange *search.YearRange
	if year != nil {
		yearRange = &search.YearRange{Start: *year, End: *year}
	}
	ranked := search.PickBest(results, upcomingOnly, yearRange, e.now())

	// Year filter emptied the list: offer the same results without it.
	if len(ranked) == 0 && yearRange != nil {
		relaxed := search.PickBest(results, upcomingOnly, nil, e.now())
		if len(relaxed) > 0 {
			state := &session.State{
				Query:        title,
				MediaType:    mediaType,
				UpcomingOnly: upcomingOnly,
				Season:       season,
				Results:      relaxed,
				Awaiting:     session.AwaitingYearRelax,
			}
			if err := e.saveState(ctx, req, state); err != nil {
				return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
			}

			speech := fmt.Sprintf(
				"I couldn't find '%s' from %d, but I found results from other years. Would you like to hear them?",
				title, *year)
			return VoiceResponse{
				Speech:    speech,
				Reprompt:  "Would you like to hear results from other years?",
				CardTitle: cardTitle,
				CardText:  speech,
			}
		}
	}

	// Nothing survived the fuzzy filter: suggest the closest raw title.
	if len(ranked) == 0 {
		if suggestion, ok := search.BestSuggestion(cleaned, preFuzzy); ok {
			state := &session.State{
				Query:        suggestion.Title,
				MediaType:    mediaType,
				Year:         year,
				UpcomingOnly: upcomingOnly,
				Season:       season,
				Results:      []media.SearchResult{suggestion},
				Awaiting:     session.AwaitingDidYouMean,
			}
			if err := e.saveState(ctx, req, state); err != nil {
				return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
			}

			speech := fmt.Sprintf("I couldn't find '%s'. Did you mean '%s'?", title, suggestion.Title)
			return VoiceResponse{
				Speech:    speech,
				Reprompt:  fmt.Sprintf("Did you mean '%s'?", suggestion.Title),
				CardTitle: cardTitle,
				CardText:  speech,
			}
		}

		speech := fmt.Sprintf("I couldn't find any matches for '%s'. Try rephrasing or being more specific.", title)
		return VoiceResponse{Speech: speech, ShouldEndSession: true}
	}

	state := &session.State{
		Query:        title,
		MediaType:    mediaType,
		Year:         year,
		UpcomingOnly: upcomingOnly,
		Season:       season,
		Results:      ranked,
	}

	// A movie/tv mix with no explicit type needs disambiguating before
	// anything is presented. Guess the most recent release's type.
	if mediaType == "" && mixesTypes(ranked) {
		state.Awaiting = session.AwaitingTypeClarification
		state.GuessedType = newestType(ranked)
		if err := e.saveState(ctx, req, state); err != nil {
			return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
		}

		word := "movie"
		if state.GuessedType == media.TypeTV {
			word = "TV show"
		}
		speech := fmt.Sprintf("I found both movies and TV shows matching '%s'. Were you looking for the %s?", title, word)
		return VoiceResponse{
			Speech:    speech,
			Reprompt:  fmt.Sprintf("Were you looking for the %s?", word),
			CardTitle: cardTitle,
			CardText:  speech,
		}
	}

	if err := e.saveState(ctx, req, state); err != nil {
		return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
	}
	return e.presentCurrent(ctx, state, "I found")
}

func (e *Engine) handleYes(ctx context.Context, req VoiceRequest) VoiceResponse {
	state := e.loadState(ctx, req)
	if state == nil {
		return VoiceResponse{Speech: noActiveSearchSpeech, Reprompt: downloadReprompt}
	}

	switch state.Awaiting {
	case session.AwaitingYearRelax, session.AwaitingDidYouMean:
		state.ClearAwaiting()
		if len(state.Results) == 0 {
			return VoiceResponse{Speech: "Sorry, I don't have that result anymore.", ShouldEndSession: true}
		}
		state.Cursor = 0
		if err := e.saveState(ctx, req, state); err != nil {
			return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
		}
		return e.presentCurrent(ctx, state, "I found")

	case session.AwaitingTypeClarification:
		return e.resolveTypeClarification(ctx, req, state, state.GuessedType)
	}

	current, ok := state.Current()
	if !ok {
		return VoiceResponse{Speech: exhaustedAlternativesText, ShouldEndSession: true}
	}

	// The available-item question is inverted ("were you thinking of a
	// different one?"), so Yes here moves on instead of requesting.
	if current.Status == media.StatusAvailable {
		return e.advance(ctx, req, state)
	}

	return e.fulfill(ctx, req, state, current)
}

func (e *Engine) handleNo(ctx context.Context, req VoiceRequest) VoiceResponse {
	state := e.loadState(ctx, req)
	if state == nil {
		return VoiceResponse{Speech: missingTitleSpeech, Reprompt: missingTitleSpeech}
	}

	switch state.Awaiting {
	case session.AwaitingYearRelax:
		return VoiceResponse{
			Speech:           "Okay. Try searching again with a different year or without the year.",
			ShouldEndSession: true,
		}
	case session.AwaitingDidYouMean:
		return VoiceResponse{
			Speech:           "Okay. Try searching again with a different title.",
			ShouldEndSession: true,
		}
	case session.AwaitingTypeClarification:
		return e.resolveTypeClarification(ctx, req, state, otherType(state.GuessedType))
	}

	// Inverted polarity: No on an available candidate affirms it.
	if current, ok := state.Current(); ok && current.Status == media.StatusAvailable {
		speech := fmt.Sprintf("Great! %s is already in your library. You can watch it now.", titleOrUnknown(current))
		return VoiceResponse{Speech: speech, ShouldEndSession: true}
	}

	return e.advance(ctx, req, state)
}

// fulfill runs the request flow for the chosen candidate, short-circuiting
// on availability states that make a new request pointless.
func (e *Engine) fulfill(ctx context.Context, req VoiceRequest, state *session.State, chosen media.SearchResult) VoiceResponse {
	title := titleOrUnknown(chosen)

	if chosen.ID == 0 {
		return VoiceResponse{Speech: missingIdentifierSpeech, ShouldEndSession: true}
	}

	mediaType := chosen.MediaType
	if mediaType == "" {
		mediaType = state.MediaType
	}
	if mediaType == "" {
		mediaType = media.TypeMovie
	}

	seasonOverride := mediaType == media.TypeTV && state.Season != nil

	switch chosen.Status {
	case media.StatusProcessing:
		return VoiceResponse{
			Speech:           fmt.Sprintf("%s is already being downloaded. It should be available soon!", title),
			ShouldEndSession: true,
		}
	case media.StatusPending:
		return VoiceResponse{
			Speech:           fmt.Sprintf("%s has already been requested and is waiting for approval.", title),
			ShouldEndSession: true,
		}
	case media.StatusPartiallyAvailable:
		if !seasonOverride {
			speech := fmt.Sprintf("%s is partially in your library. Some content may already be available.", title)
			if chosen.TotalEpisodes > 0 {
				speech = fmt.Sprintf("%s is partially in your library, with %d of %d episodes available.",
					title, chosen.AvailableEpisodes, chosen.TotalEpisodes)
			}
			return VoiceResponse{Speech: speech, ShouldEndSession: true}
		}
		// A specific season of a partially available show is still
		// worth requesting.
		e.logger.Info().Int("season", *state.Season).Str("title", title).Msg("requesting season of partially available show")
	}

	outcome, err := e.backend.RequestMedia(ctx, chosen.ID, mediaType, state.Season)
	metrics.ObserveBackend(e.backend.Name(), "request", err)
	if err != nil {
		e.logger.Error().Err(err).Int("mediaId", chosen.ID).Str("userId", req.UserID).Msg("request failed")
		return e.backendFailure(err, requestConnectionSpeech, requestErrorSpeech)
	}

	if outcome.AlreadyRequested {
		return VoiceResponse{
			Speech:           "That media has already been requested!",
			CardTitle:        "Request Created",
			CardText:         "That media has already been requested!",
			ShouldEndSession: true,
		}
	}

	availability := availabilityMessage(chosen, e.now())
	var speech string
	if state.Season != nil {
		speech = fmt.Sprintf("Okay! I've requested season %d of %s. %s", *state.Season, title, availability)
	} else {
		speech = fmt.Sprintf("Okay! I've requested %s. %s", title, availability)
	}

	return VoiceResponse{
		Speech:           speech,
		CardTitle:        "Request Created",
		CardText:         speech,
		ShouldEndSession: true,
	}
}

// advance moves to the next candidate or ends the conversation when none
// remain.
func (e *Engine) advance(ctx context.Context, req VoiceRequest, state *session.State) VoiceResponse {
	if !state.Advance() {
		return VoiceResponse{
			Speech:           "That's all I could find. Would you like to search for something else?",
			Reprompt:         downloadReprompt,
			ShouldEndSession: true,
		}
	}

	if err := e.saveState(ctx, req, state); err != nil {
		return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
	}

	next, _ := state.Current()
	speech := speechForNext(next)
	return VoiceResponse{
		Speech:    speech,
		Reprompt:  "Is that the one?",
		CardTitle: cardTitle,
		CardText:  speech,
	}
}

// resolveTypeClarification narrows the mixed result set to want and
// presents the first survivor.
func (e *Engine) resolveTypeClarification(ctx context.Context, req VoiceRequest, state *session.State, want media.MediaType) VoiceResponse {
	filtered := make([]media.SearchResult, 0, len(state.Results))
	for _, r := range state.Results {
		if r.MediaType == want {
			filtered = append(filtered, r)
		}
	}

	if len(filtered) == 0 {
		word := "movies"
		if want == media.TypeTV {
			word = "TV shows"
		}
		speech := fmt.Sprintf("Sorry, I didn't find any %s matching '%s'. Try a different search.", word, state.Query)
		return VoiceResponse{Speech: speech, ShouldEndSession: true}
	}

	state.ClearAwaiting()
	state.MediaType = want
	state.Results = filtered
	state.Cursor = 0
	if err := e.saveState(ctx, req, state); err != nil {
		return e.backendFailure(err, connectionErrorSpeech, searchErrorSpeech)
	}
	return e.presentCurrent(ctx, state, "I found")
}

// presentCurrent speaks the candidate at the cursor, enriching the card
// with advisory details when the backend has them.
func (e *Engine) presentCurrent(ctx context.Context, state *session.State, prefix string) VoiceResponse {
	current, ok := state.Current()
	if !ok {
		return VoiceResponse{Speech: "Sorry, I don't have any results to show.", ShouldEndSession: true}
	}

	speech := speechForItem(current, prefix, e.now())
	card := speech

	// Advisory only: a nil return costs nothing but the enrichment.
	if details := e.backend.GetDetails(ctx, current.ID, current.MediaType); details != nil {
		var extras []string
		if len(details.Cast) > 0 {
			extras = append(extras, "Starring "+strings.Join(details.Cast, ", "))
		}
		if details.Director != "" {
			extras = append(extras, "Directed by "+details.Director)
		}
		if len(details.Genres) > 0 {
			extras = append(extras, strings.Join(details.Genres, ", "))
		}
		if len(extras) > 0 {
			card = speech + "\n" + strings.Join(extras, ". ")
		}
	}

	reprompt := "Is that the one you want?"
	if current.Status == media.StatusAvailable {
		reprompt = "Were you thinking of a different one?"
	}

	return VoiceResponse{
		Speech:    speech,
		Reprompt:  reprompt,
		CardTitle: cardTitle,
		CardText:  card,
	}
}

func (e *Engine) backendFailure(err error, connectionSpeech, genericSpeech string) VoiceResponse {
	switch {
	case errors.Is(err, media.ErrConnection):
		return VoiceResponse{Speech: connectionSpeech, ShouldEndSession: true}
	case errors.Is(err, media.ErrAuth):
		return VoiceResponse{Speech: authErrorSpeech, ShouldEndSession: true}
	default:
		return VoiceResponse{Speech: genericSpeech, ShouldEndSession: true}
	}
}

func (e *Engine) loadState(ctx context.Context, req VoiceRequest) *session.State {
	state, err := e.store.Load(ctx, req.UserID, req.SessionID)
	if err != nil {
		e.logger.Error().Err(err).Str("userId", req.UserID).Msg("loading session state failed")
		return nil
	}
	return state
}

func (e *Engine) saveState(ctx context.Context, req VoiceRequest, state *session.State) error {
	return e.store.Save(ctx, req.UserID, req.SessionID, state)
}

func mixesTypes(results []media.SearchResult) bool {
	var sawMovie, sawTV bool
	for _, r := range results {
		switch r.MediaType {
		case media.TypeMovie:
			sawMovie = true
		case media.TypeTV:
			sawTV = true
		}
	}
	return sawMovie && sawTV
}

// newestType returns the media type of the most recently released
// candidate, defaulting to movie when no dates parse.
func newestType(results []media.SearchResult) media.MediaType {
	best := media.TypeMovie
	var bestTime time.Time
	found := false
	for _, r := range results {
		t, ok := r.ReleaseTime()
		if !ok {
			continue
		}
		if !found || t.After(bestTime) {
			best = r.MediaType
			bestTime = t
			found = true
		}
	}
	return best
}

func otherType(t media.MediaType) media.MediaType {
	if t == media.TypeTV {
		return media.TypeMovie
	}
	return media.TypeTV
}
