package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/adapter"
	"github.com/overtalkerr/overtalkerr/internal/config"
	"github.com/overtalkerr/overtalkerr/internal/conversation"
	"github.com/overtalkerr/overtalkerr/internal/media"
	"github.com/overtalkerr/overtalkerr/internal/session"
)

type stubBackend struct {
	results []media.SearchResult
}

func (b *stubBackend) Name() string                   { return "overseerr" }
func (b *stubBackend) Test(ctx context.Context) error { return nil }

func (b *stubBackend) Search(ctx context.Context, query string, mediaType media.MediaType) ([]media.SearchResult, error) {
	return b.results, nil
}

func (b *stubBackend) RequestMedia(ctx context.Context, id int, mediaType media.MediaType, season *int) (media.RequestOutcome, error) {
	return media.RequestOutcome{RequestID: 1}, nil
}

func (b *stubBackend) GetDetails(ctx context.Context, id int, mediaType media.MediaType) *media.DetailInfo {
	return nil
}

type memStore struct {
	mu   sync.Mutex
	data map[string]*session.State
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]*session.State)}
}

func (m *memStore) Load(ctx context.Context, userID, conversationID string) (*session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[userID+"/"+conversationID], nil
}

func (m *memStore) Save(ctx context.Context, userID, conversationID string, state *session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID+"/"+conversationID] = state
	return nil
}

func (m *memStore) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

func (m *memStore) Close() error { return nil }

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	if cfg == nil {
		cfg = &config.Config{}
	}
	logger := zerolog.Nop()
	backend := &stubBackend{results: []media.SearchResult{
		{ID: 27205, Title: "Inception", MediaType: media.TypeMovie, ReleaseDate: "2010-07-15"},
	}}
	engine := conversation.NewEngine(backend, newMemStore(), logger)
	return NewServer(engine, adapter.NewRouter(logger), cfg, logger)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected Prometheus exposition output")
	}
}

func TestWebhookAlexaLaunch(t *testing.T) {
	s := newTestServer(t, nil)

	payload := `{"version":"1.0","session":{"sessionId":"s1","user":{"userId":"u1"}},"request":{"type":"LaunchRequest"}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Version  string `json:"version"`
		Response struct {
			OutputSpeech struct {
				Text string `json:"text"`
			} `json:"outputSpeech"`
			ShouldEndSession bool `json:"shouldEndSession"`
		} `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Version != "1.0" {
		t.Errorf("version = %q", body.Version)
	}
	if body.Response.OutputSpeech.Text == "" {
		t.Error("expected welcome speech")
	}
	if body.Response.ShouldEndSession {
		t.Error("launch should keep the session open")
	}
}

func TestWebhookHomeAssistant(t *testing.T) {
	s := newTestServer(t, nil)

	payload := `{"conversation_id":"c1","agent_id":"conversation.overtalkerr","query":"download inception"}`
	req := httptest.NewRequest(http.MethodPost, "/voice", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.Contains(body["output"], "Inception") {
		t.Errorf("output = %q, want the found title", body["output"])
	}
}

func TestWebhookUnknownPayload(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/voice", strings.NewReader(`{"foo":"bar"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookBasicAuth(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.BasicUser = "admin"
	cfg.Auth.BasicPass = "secret"
	s := newTestServer(t, cfg)

	payload := `{"conversation_id":"c1","agent_id":"x","query":"help"}`

	req := httptest.NewRequest(http.MethodPost, "/voice", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/voice", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rec.Code)
	}

	// Health stays open for probes.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
