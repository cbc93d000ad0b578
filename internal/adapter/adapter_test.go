package adapter

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/conversation"
)

func TestRouterParseDetectsPlatform(t *testing.T) {
	r := NewRouter(zerolog.Nop())

	tests := []struct {
		name    string
		payload string
		want    conversation.Platform
	}{
		{"alexa", alexaIntentPayload, conversation.PlatformAlexa},
		{"siri", `{"platform": "siri", "title": "dune"}`, conversation.PlatformSiri},
		{"home assistant", `{"conversation_id": "c1", "query": "download dune", "agent_id": "x"}`, conversation.PlatformHomeAssistant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, a, err := r.Parse([]byte(tt.payload))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if req.Platform != tt.want {
				t.Errorf("request platform = %q, want %q", req.Platform, tt.want)
			}
			if a.Platform() != tt.want {
				t.Errorf("adapter platform = %q, want %q", a.Platform(), tt.want)
			}
		})
	}
}

func TestRouterParseUnknownPayload(t *testing.T) {
	r := NewRouter(zerolog.Nop())

	_, _, err := r.Parse([]byte(`{"foo": "bar"}`))
	if !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("err = %v, want ErrUnknownPlatform", err)
	}
}
