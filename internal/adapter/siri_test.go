package adapter

import (
	"strings"
	"testing"

	"github.com/overtalkerr/overtalkerr/internal/conversation"
)

func TestSiriDetect(t *testing.T) {
	a := NewSiriAdapter()

	if !a.Detect([]byte(`{"platform": "siri", "title": "dune"}`)) {
		t.Error("platform marker should be detected")
	}
	if !a.Detect([]byte(`{"shortcut": "Request Media", "title": "dune"}`)) {
		t.Error("shortcut name should be detected")
	}
	if a.Detect([]byte(`{"version": "1.0", "session": {}, "request": {}}`)) {
		t.Error("detected Alexa envelope as Siri")
	}
}

func TestSiriParseParameters(t *testing.T) {
	a := NewSiriAdapter()

	payload := `{
		"platform": "siri",
		"userId": "user-1",
		"sessionId": "sess-1",
		"action": "DownloadIntent",
		"parameters": {"MediaTitle": "severance", "Season": "2", "Empty": ""}
	}`
	req, err := a.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.Platform != conversation.PlatformSiri {
		t.Errorf("Platform = %q", req.Platform)
	}
	if req.UserID != "user-1" || req.SessionID != "sess-1" {
		t.Errorf("identifiers = %q/%q", req.UserID, req.SessionID)
	}
	if req.IntentName != "DownloadIntent" {
		t.Errorf("IntentName = %q", req.IntentName)
	}
	if req.Slots["MediaTitle"] != "severance" || req.Slots["Season"] != "2" {
		t.Errorf("Slots = %v", req.Slots)
	}
	if _, ok := req.Slots["Empty"]; ok {
		t.Error("empty parameter should be dropped")
	}
}

func TestSiriParseDirectFields(t *testing.T) {
	a := NewSiriAdapter()

	payload := `{"platform": "siri", "title": "dune", "year": "2021", "mediaType": "movie"}`
	req, err := a.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.Slots["MediaTitle"] != "dune" || req.Slots["Year"] != "2021" || req.Slots["MediaType"] != "movie" {
		t.Errorf("Slots = %v", req.Slots)
	}
}

func TestSiriSessionStableAcrossTurns(t *testing.T) {
	a := NewSiriAdapter()

	first, err := a.Parse([]byte(`{"platform": "siri", "userId": "user-1", "action": "DownloadIntent", "title": "dune"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := a.Parse([]byte(`{"platform": "siri", "userId": "user-1", "action": "YesIntent"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if first.SessionID != "siri-user-1" {
		t.Errorf("SessionID = %q, want siri-user-1", first.SessionID)
	}
	if first.SessionID != second.SessionID {
		t.Errorf("follow-up turn got SessionID %q, want %q so the conversation continues", second.SessionID, first.SessionID)
	}
}

func TestSiriParseDefaults(t *testing.T) {
	a := NewSiriAdapter()

	req, err := a.Parse([]byte(`{"platform": "siri", "title": "dune"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if req.UserID != "siri-user" {
		t.Errorf("UserID = %q, want siri-user", req.UserID)
	}
	if !strings.HasPrefix(req.SessionID, "siri-") || len(req.SessionID) <= len("siri-") {
		t.Errorf("SessionID = %q, want generated siri- id", req.SessionID)
	}
	if req.IntentName != "DownloadIntent" {
		t.Errorf("IntentName = %q, want DownloadIntent", req.IntentName)
	}
}

func TestSiriBuildResponse(t *testing.T) {
	a := NewSiriAdapter()

	out, ok := a.BuildResponse(conversation.VoiceResponse{
		Speech:           "Okay! I've requested Dune.",
		CardTitle:        "Request Created",
		ShouldEndSession: true,
	}).(siriResponse)
	if !ok {
		t.Fatal("expected siriResponse")
	}
	if out.Speech != "Okay! I've requested Dune." || out.Text != out.Speech {
		t.Errorf("speech/text = %q/%q", out.Speech, out.Text)
	}
	if out.Title != "Request Created" {
		t.Errorf("title = %q", out.Title)
	}
	if !out.EndSession {
		t.Error("endSession should be true")
	}
}
