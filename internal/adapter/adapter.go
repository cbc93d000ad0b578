// Package adapter translates platform wire formats to and from the
// neutral conversation request/response shapes. Each platform gets one
// Adapter; the Router probes them in a fixed order to find which one a
// payload belongs to.
package adapter

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/conversation"
)

// ErrUnknownPlatform is returned when no adapter recognizes a payload.
var ErrUnknownPlatform = errors.New("unrecognized voice assistant payload")

// Adapter parses one platform's wire format and renders responses back
// into it.
type Adapter interface {
	Platform() conversation.Platform

	// Detect reports whether this payload belongs to the platform.
	Detect(payload []byte) bool

	// Parse translates the payload into the neutral request.
	Parse(payload []byte) (conversation.VoiceRequest, error)

	// BuildResponse renders the neutral response as the platform's
	// wire shape, ready for JSON serialization.
	BuildResponse(resp conversation.VoiceResponse) any
}

// Router finds the adapter for an incoming payload. Probe order is
// fixed: Alexa's envelope is the most distinctive, Home Assistant's the
// least.
type Router struct {
	adapters []Adapter
	logger   zerolog.Logger
}

// NewRouter creates a Router over all supported platforms.
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{
		adapters: []Adapter{
			NewAlexaAdapter(),
			NewSiriAdapter(),
			NewHomeAssistantAdapter(),
		},
		logger: logger.With().Str("component", "adapter").Logger(),
	}
}

// Parse detects the platform and parses the payload in one step.
func (r *Router) Parse(payload []byte) (conversation.VoiceRequest, Adapter, error) {
	for _, a := range r.adapters {
		if !a.Detect(payload) {
			continue
		}
		req, err := a.Parse(payload)
		if err != nil {
			r.logger.Error().Err(err).Str("platform", string(a.Platform())).Msg("payload parse failed")
			return conversation.VoiceRequest{}, nil, err
		}
		r.logger.Debug().Str("platform", string(a.Platform())).Str("intent", req.IntentName).Msg("parsed request")
		return req, a, nil
	}

	r.logger.Warn().Msg("could not detect voice assistant platform")
	return conversation.VoiceRequest{}, nil, ErrUnknownPlatform
}
