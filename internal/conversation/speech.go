package conversation

import (
	"fmt"
	"time"

	"github.com/overtalkerr/overtalkerr/internal/media"
)

const (
	cardTitle = "Overtalkerr"

	welcomeSpeech = "Welcome to Overtalkerr! You can say things like, " +
		"download the movie Jurassic World, or download the upcoming TV show Robin Hood. " +
		"You can also request specific seasons, like download season 2 of Breaking Bad. " +
		"What would you like to download?"

	helpSpeech = "You can say things like: download the movie Jurassic World from 2015, " +
		"or download the upcoming TV show Robin Hood. " +
		"You can also specify seasons for TV shows, like download season 2 of Breaking Bad. " +
		"What would you like to download?"

	fallbackSpeech = "Sorry, I didn't understand that. You can say things like, " +
		"download the movie Jurassic World from 2015. What would you like to download?"

	missingTitleSpeech = "Please tell me the title. For example, say download the movie Jurassic World from 2015."

	noActiveSearchSpeech = "I don't have an active search. Please say a title to start a new download request."

	downloadReprompt = "What would you like to download?"

	connectionErrorSpeech     = "Sorry, I couldn't connect to the media server. Please try again later."
	authErrorSpeech           = "Sorry, there's an authentication problem with the media server. Please contact the administrator."
	searchErrorSpeech         = "Sorry, I encountered an error searching for that title. Please try again."
	requestConnectionSpeech   = "Sorry, I couldn't connect to the media server. Your request wasn't submitted."
	requestErrorSpeech        = "Sorry, I couldn't create the request. Please try again later."
	missingIdentifierSpeech   = "Sorry, I couldn't determine the media ID. Please try a different title."
	exhaustedAlternativesText = "I've run out of alternatives. Please start a new search."
)

// speechForItem describes one candidate with its release year and
// availability, ending with the confirmation question the state machine
// expects an answer to. Available items get the inverted question: a
// subsequent No confirms the match.
func speechForItem(r media.SearchResult, prefix string, now time.Time) string {
	speech := prefix + " the " + r.TypeWord() + " " + titleOrUnknown(r)

	unreleased := r.Upcoming(now)
	if year, ok := r.ReleaseYear(); ok {
		if unreleased {
			speech = fmt.Sprintf("%s, releasing in %d", speech, year)
		} else {
			speech = fmt.Sprintf("%s, released in %d", speech, year)
		}
	}

	switch r.Status {
	case media.StatusAvailable:
		return speech + ". This is already in your library. Were you thinking of a different one?"
	case media.StatusPartiallyAvailable:
		speech += ". This is partially in your library"
	case media.StatusProcessing:
		speech += ". This is currently being downloaded"
	case media.StatusPending:
		speech += ". This has already been requested and is pending approval"
	default:
		if unreleased {
			speech += ". That hasn't been released yet"
		}
	}

	if unreleased && r.Status != media.StatusPending {
		return speech + ". Would you like to request it anyway?"
	}
	return speech + ". Is that the one you want?"
}

// speechForNext offers the next alternative.
func speechForNext(r media.SearchResult) string {
	if year, ok := r.ReleaseYear(); ok {
		return fmt.Sprintf("What about the %s %s, released in %d?", r.TypeWord(), titleOrUnknown(r), year)
	}
	return fmt.Sprintf("What about the %s %s?", r.TypeWord(), titleOrUnknown(r))
}

// availabilityMessage says when the requested title should turn up,
// speaking the release date for unreleased titles.
func availabilityMessage(r media.SearchResult, now time.Time) string {
	release, ok := r.ReleaseTime()
	if !ok || !release.After(now) {
		return "It should be available soon."
	}

	spoken := fmt.Sprintf("%s %d%s", release.Month().String(), release.Day(), ordinalSuffix(release.Day()))
	if release.Year() != now.Year() {
		spoken = fmt.Sprintf("%s, %d", spoken, release.Year())
	}
	return fmt.Sprintf("It'll be downloaded once it's released, which we're expecting to be on %s.", spoken)
}

func ordinalSuffix(day int) string {
	if day%100 >= 10 && day%100 <= 20 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func titleOrUnknown(r media.SearchResult) string {
	if r.Title == "" {
		return "Unknown title"
	}
	return r.Title
}
