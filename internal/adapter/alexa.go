package adapter

import (
	"encoding/json"

	"github.com/overtalkerr/overtalkerr/internal/conversation"
)

// alexaRequest is the subset of the Alexa skill request envelope we read.
type alexaRequest struct {
	Version string `json:"version"`
	Session struct {
		SessionID string `json:"sessionId"`
		User      struct {
			UserID string `json:"userId"`
		} `json:"user"`
	} `json:"session"`
	Request struct {
		Type   string `json:"type"`
		Intent struct {
			Name  string `json:"name"`
			Slots map[string]struct {
				Value string `json:"value"`
			} `json:"slots"`
		} `json:"intent"`
	} `json:"request"`
}

type alexaOutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type alexaCard struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type alexaResponse struct {
	Version  string `json:"version"`
	Response struct {
		OutputSpeech alexaOutputSpeech `json:"outputSpeech"`
		Reprompt     *struct {
			OutputSpeech alexaOutputSpeech `json:"outputSpeech"`
		} `json:"reprompt,omitempty"`
		Card             *alexaCard `json:"card,omitempty"`
		ShouldEndSession bool       `json:"shouldEndSession"`
	} `json:"response"`
}

// AlexaAdapter handles the Amazon Alexa skill request envelope.
type AlexaAdapter struct{}

// NewAlexaAdapter creates an AlexaAdapter.
func NewAlexaAdapter() *AlexaAdapter {
	return &AlexaAdapter{}
}

func (a *AlexaAdapter) Platform() conversation.Platform {
	return conversation.PlatformAlexa
}

// Detect checks for Alexa's version/session/request envelope.
func (a *AlexaAdapter) Detect(payload []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}
	_, hasVersion := probe["version"]
	_, hasSession := probe["session"]
	_, hasRequest := probe["request"]
	return hasVersion && hasSession && hasRequest
}

func (a *AlexaAdapter) Parse(payload []byte) (conversation.VoiceRequest, error) {
	var raw alexaRequest
	if err := json.Unmarshal(payload, &raw); err != nil {
		return conversation.VoiceRequest{}, err
	}

	userID := raw.Session.User.UserID
	if userID == "" {
		userID = "unknown"
	}
	sessionID := raw.Session.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}

	req := conversation.VoiceRequest{
		Platform:  conversation.PlatformAlexa,
		UserID:    userID,
		SessionID: sessionID,
		Slots:     map[string]string{},
	}

	switch raw.Request.Type {
	case "LaunchRequest":
		req.IntentName = "LaunchIntent"
	case "IntentRequest":
		req.IntentName = raw.Request.Intent.Name
		for name, slot := range raw.Request.Intent.Slots {
			if slot.Value != "" {
				req.Slots[name] = slot.Value
			}
		}
	case "SessionEndedRequest":
		req.IntentName = "SessionEndedRequest"
	default:
		req.IntentName = "Unknown"
	}

	return req, nil
}

func (a *AlexaAdapter) BuildResponse(resp conversation.VoiceResponse) any {
	out := alexaResponse{Version: "1.0"}
	out.Response.OutputSpeech = alexaOutputSpeech{Type: "PlainText", Text: resp.Speech}
	out.Response.ShouldEndSession = resp.ShouldEndSession

	if resp.Reprompt != "" {
		out.Response.Reprompt = &struct {
			OutputSpeech alexaOutputSpeech `json:"outputSpeech"`
		}{OutputSpeech: alexaOutputSpeech{Type: "PlainText", Text: resp.Reprompt}}
	}

	if resp.CardTitle != "" && resp.CardText != "" {
		out.Response.Card = &alexaCard{
			Type:    "Simple",
			Title:   resp.CardTitle,
			Content: resp.CardText,
		}
	}

	return out
}
