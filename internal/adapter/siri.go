package adapter

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/overtalkerr/overtalkerr/internal/conversation"
)

// siriRequest is the simple JSON a Siri Shortcut posts.
type siriRequest struct {
	Platform   string            `json:"platform"`
	Shortcut   string            `json:"shortcut"`
	UserID     string            `json:"userId"`
	SessionID  string            `json:"sessionId"`
	Action     string            `json:"action"`
	Intent     string            `json:"intent"`
	Parameters map[string]string `json:"parameters"`

	// Direct slot fields, used when no parameters map is sent.
	Title     string `json:"title"`
	Year      string `json:"year"`
	MediaType string `json:"mediaType"`
	Season    string `json:"season"`
	Upcoming  string `json:"upcoming"`
}

type siriResponse struct {
	Speech     string `json:"speech"`
	Text       string `json:"text"`
	Title      string `json:"title,omitempty"`
	Reprompt   string `json:"reprompt,omitempty"`
	EndSession bool   `json:"endSession"`
}

// SiriAdapter handles Siri Shortcuts webhook payloads.
type SiriAdapter struct{}

// NewSiriAdapter creates a SiriAdapter.
func NewSiriAdapter() *SiriAdapter {
	return &SiriAdapter{}
}

func (a *SiriAdapter) Platform() conversation.Platform {
	return conversation.PlatformSiri
}

// Detect checks for the explicit platform marker or a shortcut name.
func (a *SiriAdapter) Detect(payload []byte) bool {
	var raw siriRequest
	if err := json.Unmarshal(payload, &raw); err != nil {
		return false
	}
	return raw.Platform == "siri" || raw.Shortcut != ""
}

func (a *SiriAdapter) Parse(payload []byte) (conversation.VoiceRequest, error) {
	var raw siriRequest
	if err := json.Unmarshal(payload, &raw); err != nil {
		return conversation.VoiceRequest{}, err
	}

	userID := raw.UserID
	if userID == "" {
		userID = "siri-user"
	}
	sessionID := raw.SessionID
	if sessionID == "" {
		// Shortcuts rarely carry a session id. Derive a stable one from
		// the user so follow-up turns land on the same conversation;
		// mint a random id only when there is no user to key on either.
		if raw.UserID != "" {
			sessionID = "siri-" + raw.UserID
		} else {
			sessionID = "siri-" + uuid.NewString()
		}
	}

	intentName := raw.Action
	if intentName == "" {
		intentName = raw.Intent
	}
	if intentName == "" {
		intentName = "DownloadIntent"
	}

	slots := map[string]string{}
	for k, v := range raw.Parameters {
		if v != "" {
			slots[k] = v
		}
	}
	if len(slots) == 0 {
		for k, v := range map[string]string{
			"MediaTitle": raw.Title,
			"Year":       raw.Year,
			"MediaType":  raw.MediaType,
			"Season":     raw.Season,
			"Upcoming":   raw.Upcoming,
		} {
			if v != "" {
				slots[k] = v
			}
		}
	}

	return conversation.VoiceRequest{
		Platform:   conversation.PlatformSiri,
		UserID:     userID,
		SessionID:  sessionID,
		IntentName: intentName,
		Slots:      slots,
	}, nil
}

func (a *SiriAdapter) BuildResponse(resp conversation.VoiceResponse) any {
	return siriResponse{
		Speech:     resp.Speech,
		Text:       resp.Speech,
		Title:      resp.CardTitle,
		Reprompt:   resp.Reprompt,
		EndSession: resp.ShouldEndSession,
	}
}
