// Package conversation implements the platform-agnostic dialogue engine:
// intent routing, the per-session state machine, and the templated
// responses every platform adapter renders.
package conversation

// Platform identifies the voice assistant a request arrived from.
type Platform string

const (
	PlatformAlexa         Platform = "alexa"
	PlatformSiri          Platform = "siri"
	PlatformHomeAssistant Platform = "homeassistant"
)

// VoiceRequest is the neutral shape every platform adapter parses into.
type VoiceRequest struct {
	Platform   Platform
	UserID     string
	SessionID  string
	IntentName string
	Slots      map[string]string
}

// Slot returns the first non-empty value among the given slot names.
// Platforms disagree on slot casing, so lookups try each spelling.
func (r VoiceRequest) Slot(names ...string) string {
	for _, name := range names {
		if v := r.Slots[name]; v != "" {
			return v
		}
	}
	return ""
}

// VoiceResponse is the neutral response every adapter renders back into
// its platform's wire format.
type VoiceResponse struct {
	Speech           string
	Reprompt         string
	CardTitle        string
	CardText         string
	ShouldEndSession bool
}
