package adapter

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/overtalkerr/overtalkerr/internal/conversation"
)

// haRequest is the payload Home Assistant's webhook conversation agent
// sends; it carries a free-form utterance, not a resolved intent.
type haRequest struct {
	ConversationID  string          `json:"conversation_id"`
	UserID          string          `json:"user_id"`
	Language        string          `json:"language"`
	AgentID         string          `json:"agent_id"`
	Query           string          `json:"query"`
	ExposedEntities json.RawMessage `json:"exposed_entities"`
}

// HomeAssistantAdapter handles Home Assistant Assist webhook payloads.
// Intent and slots are extracted from the raw query text.
type HomeAssistantAdapter struct{}

// NewHomeAssistantAdapter creates a HomeAssistantAdapter.
func NewHomeAssistantAdapter() *HomeAssistantAdapter {
	return &HomeAssistantAdapter{}
}

func (a *HomeAssistantAdapter) Platform() conversation.Platform {
	return conversation.PlatformHomeAssistant
}

// Detect checks for Home Assistant's webhook-conversation structure.
func (a *HomeAssistantAdapter) Detect(payload []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}
	if _, ok := probe["conversation_id"]; !ok {
		return false
	}
	if _, ok := probe["query"]; !ok {
		return false
	}
	_, hasEntities := probe["exposed_entities"]
	_, hasAgent := probe["agent_id"]
	return hasEntities || hasAgent
}

func (a *HomeAssistantAdapter) Parse(payload []byte) (conversation.VoiceRequest, error) {
	var raw haRequest
	if err := json.Unmarshal(payload, &raw); err != nil {
		return conversation.VoiceRequest{}, err
	}

	userID := raw.UserID
	if userID == "" {
		userID = "ha-user"
	}
	sessionID := raw.ConversationID
	if sessionID == "" {
		sessionID = "ha-" + userID
	}

	intentName, slots := classifyQuery(raw.Query)

	return conversation.VoiceRequest{
		Platform:   conversation.PlatformHomeAssistant,
		UserID:     userID,
		SessionID:  sessionID,
		IntentName: intentName,
		Slots:      slots,
	}, nil
}

// BuildResponse returns only the output field. The webhook conversation
// agent rejects extra fields in some Home Assistant versions.
func (a *HomeAssistantAdapter) BuildResponse(resp conversation.VoiceResponse) any {
	return map[string]string{"output": resp.Speech}
}

var (
	haLaunchPhrases = []string{"open overtalkerr", "start overtalkerr", "launch overtalkerr", "hey overtalkerr"}
	haYesPhrases    = []string{"yes", "yeah", "yep", "yup", "sure", "ok", "okay", "correct", "right", "that one"}
	haNoPhrases     = []string{"no", "nope", "nah", "not that one", "wrong", "next", "next one", "another", "different"}
	haCancelWords   = []string{"cancel", "stop", "exit", "quit", "nevermind", "never mind"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func equalsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if s == p {
			return true
		}
	}
	return false
}

// classifyQuery maps a raw utterance to an intent name and slots.
func classifyQuery(query string) (string, map[string]string) {
	lower := strings.ToLower(strings.TrimSpace(query))

	switch {
	case lower == "" || equalsAny(lower, haLaunchPhrases):
		return "LaunchIntent", nil
	case equalsAny(lower, haYesPhrases):
		return "YesIntent", nil
	case equalsAny(lower, haNoPhrases):
		return "NoIntent", nil
	case strings.Contains(lower, "help"):
		return "HelpIntent", nil
	case containsAny(lower, haCancelWords):
		return "CancelIntent", nil
	}
	return "DownloadIntent", ExtractSlots(query)
}

var (
	haQueryPrefixes = []string{
		"download ", "request ", "i want to download ", "i want to watch ",
		"i want to see ", "find ", "search for ", "get ", "add ",
		"can you download ", "can you find ", "can you get ",
		"please download ", "please find ", "please get ",
	}
	haTVWords    = []string{"the tv show", "the show", "the series", " show", " series", " tv ", " season", " episode"}
	haMovieWords = []string{"the movie", "the film", " movie", " film"}

	haSeasonRe      = regexp.MustCompile(`(?i)\s*season\s+(\d+)`)
	haYearRe        = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	haUpcomingRe    = regexp.MustCompile(`(?i)\b(upcoming|unreleased|not out yet|coming soon)\b`)
	haTypeCalledRe  = regexp.MustCompile(`(?i)\b(the|a|an)\s+(movie|film|tv\s+show|show|series)\s+(called|named|titled)\b`)
	haArticleTypeRe = regexp.MustCompile(`(?i)\b(the|a|an)\s+(movie|film|tv\s+show|show|series)\b`)
	haTypeWordRe    = regexp.MustCompile(`(?i)\b(movie|film|show|series|tv)\b`)
	haCalledRe      = regexp.MustCompile(`(?i)\b(called|named|titled)\b`)
	haFromRe        = regexp.MustCompile(`(?i)\bfrom\b`)
	haSpaceRe       = regexp.MustCompile(`\s+`)
)

// ExtractSlots pulls media type, season, year and upcoming markers out
// of a free-form utterance; whatever text survives the stripping becomes
// the title. Rules run in a fixed order, longest phrases first.
func ExtractSlots(query string) map[string]string {
	slots := map[string]string{}
	lower := strings.ToLower(query)

	cleaned := strings.TrimSpace(query)
	for _, p := range haQueryPrefixes {
		if strings.HasPrefix(lower, p) {
			cleaned = strings.TrimSpace(query[len(p):])
			break
		}
	}

	if containsAny(lower, haTVWords) {
		slots["MediaType"] = "tv"
	} else if containsAny(lower, haMovieWords) {
		slots["MediaType"] = "movie"
	}

	if m := haSeasonRe.FindStringSubmatch(cleaned); m != nil {
		slots["Season"] = m[1]
		cleaned = strings.TrimSpace(haSeasonRe.ReplaceAllString(cleaned, ""))
	}
	if m := haYearRe.FindStringSubmatch(cleaned); m != nil {
		slots["Year"] = m[1]
		cleaned = strings.TrimSpace(strings.Replace(cleaned, m[0], "", 1))
	}
	if haUpcomingRe.MatchString(lower) {
		slots["Upcoming"] = "true"
		cleaned = strings.TrimSpace(haUpcomingRe.ReplaceAllString(cleaned, ""))
	}

	cleaned = haTypeCalledRe.ReplaceAllString(cleaned, "")
	cleaned = haArticleTypeRe.ReplaceAllString(cleaned, "")
	cleaned = haTypeWordRe.ReplaceAllString(cleaned, "")
	cleaned = haCalledRe.ReplaceAllString(cleaned, "")
	cleaned = haFromRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(haSpaceRe.ReplaceAllString(cleaned, " "))

	if cleaned != "" {
		slots["MediaTitle"] = cleaned
	}
	return slots
}
