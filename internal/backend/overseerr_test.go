package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/config"
	"github.com/overtalkerr/overtalkerr/internal/media"
)

func newOverseerrTestClient(server *httptest.Server) *OverseerrClient {
	cfg := config.BackendConfig{
		URL:    server.URL,
		APIKey: "test-api-key",
	}
	return NewOverseerrClient(cfg, "", zerolog.Nop())
}

func TestOverseerrClient_Name(t *testing.T) {
	client := NewOverseerrClient(config.BackendConfig{}, "", zerolog.Nop())
	if client.Name() != "overseerr" {
		t.Errorf("Name() = %q, want %q", client.Name(), "overseerr")
	}

	client = NewOverseerrClient(config.BackendConfig{}, "jellyseerr", zerolog.Nop())
	if client.Name() != "jellyseerr" {
		t.Errorf("Name() = %q, want %q", client.Name(), "jellyseerr")
	}
}

func TestOverseerrClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-api-key" {
			t.Errorf("missing api key header")
		}
		if got := r.URL.Query().Get("query"); got != "the matrix" {
			t.Errorf("unexpected query: %q", got)
		}

		response := overseerrSearchResponse{
			Results: []overseerrResult{
				{
					ID:          603,
					MediaType:   "movie",
					Title:       "The Matrix",
					ReleaseDate: "1999-03-30",
					MediaInfo:   overseerrMediaInfo{Status: 5},
				},
				{
					ID:           1438,
					MediaType:    "tv",
					Name:         "The Matrix Defence",
					FirstAirDate: "2003-10-09",
				},
				// No media type at all; must be dropped.
				{ID: 99, Title: "Person Result"},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newOverseerrTestClient(server)
	results, err := client.Search(context.Background(), "the matrix", "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Title != "The Matrix" {
		t.Errorf("results[0].Title = %q, want %q", results[0].Title, "The Matrix")
	}
	if results[0].Status != media.StatusAvailable {
		t.Errorf("results[0].Status = %v, want available", results[0].Status)
	}
	if results[1].Title != "The Matrix Defence" {
		t.Errorf("results[1].Title = %q, want %q", results[1].Title, "The Matrix Defence")
	}
	if results[1].ReleaseDate != "2003-10-09" {
		t.Errorf("results[1].ReleaseDate = %q, want firstAirDate", results[1].ReleaseDate)
	}
}

func TestOverseerrClient_SearchTypeFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := overseerrSearchResponse{
			Results: []overseerrResult{
				{ID: 1, MediaType: "movie", Title: "Dune", ReleaseDate: "2021-09-15"},
				{ID: 2, MediaType: "tv", Name: "Dune: Prophecy", FirstAirDate: "2024-11-17"},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newOverseerrTestClient(server)
	results, err := client.Search(context.Background(), "dune", media.TypeTV)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].MediaType != media.TypeTV {
		t.Errorf("results[0].MediaType = %q, want tv", results[0].MediaType)
	}
}

func TestOverseerrClient_SearchAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newOverseerrTestClient(server)
	_, err := client.Search(context.Background(), "dune", "")
	if !errors.Is(err, media.ErrAuth) {
		t.Errorf("Search() error = %v, want ErrAuth", err)
	}
}

func TestOverseerrClient_RequestMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/request" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["mediaId"].(float64) != 603 {
			t.Errorf("mediaId = %v, want 603", payload["mediaId"])
		}
		if _, ok := payload["seasons"]; ok {
			t.Errorf("movie request must not carry seasons")
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 42})
	}))
	defer server.Close()

	client := newOverseerrTestClient(server)
	outcome, err := client.RequestMedia(context.Background(), 603, media.TypeMovie, nil)
	if err != nil {
		t.Fatalf("RequestMedia() error = %v", err)
	}
	if outcome.RequestID != 42 {
		t.Errorf("RequestID = %d, want 42", outcome.RequestID)
	}
	if outcome.AlreadyRequested {
		t.Errorf("AlreadyRequested = true, want false")
	}
}

func TestOverseerrClient_RequestMediaSeasons(t *testing.T) {
	tests := []struct {
		name        string
		season      *int
		wantSeasons any
	}{
		{"specific season", intPtr(2), []any{float64(2)}},
		{"all seasons", nil, "all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var payload map[string]any
				json.NewDecoder(r.Body).Decode(&payload)
				got = payload["seasons"]
				json.NewEncoder(w).Encode(map[string]any{"id": 7})
			}))
			defer server.Close()

			client := newOverseerrTestClient(server)
			if _, err := client.RequestMedia(context.Background(), 1438, media.TypeTV, tt.season); err != nil {
				t.Fatalf("RequestMedia() error = %v", err)
			}

			switch want := tt.wantSeasons.(type) {
			case string:
				if got != want {
					t.Errorf("seasons = %v, want %q", got, want)
				}
			case []any:
				gotList, ok := got.([]any)
				if !ok || len(gotList) != len(want) || gotList[0] != want[0] {
					t.Errorf("seasons = %v, want %v", got, want)
				}
			}
		})
	}
}

func TestOverseerrClient_RequestMediaConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := newOverseerrTestClient(server)
	outcome, err := client.RequestMedia(context.Background(), 603, media.TypeMovie, nil)
	if err != nil {
		t.Fatalf("RequestMedia() error = %v", err)
	}
	if !outcome.AlreadyRequested {
		t.Errorf("AlreadyRequested = false, want true on 409")
	}
}

func TestOverseerrClient_GetDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/movie/603" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"credits": map[string]any{
				"cast": []map[string]any{
					{"name": "Keanu Reeves"},
					{"name": "Laurence Fishburne"},
					{"name": "Carrie-Anne Moss"},
					{"name": "Hugo Weaving"},
				},
				"crew": []map[string]any{
					{"name": "Joel Silver", "job": "Producer"},
					{"name": "Lana Wachowski", "job": "Director"},
				},
			},
			"genres": []map[string]any{
				{"name": "Action"},
				{"name": "Science Fiction"},
			},
		})
	}))
	defer server.Close()

	client := newOverseerrTestClient(server)
	info := client.GetDetails(context.Background(), 603, media.TypeMovie)
	if info == nil {
		t.Fatal("GetDetails() = nil, want info")
	}

	if len(info.Cast) != 3 {
		t.Errorf("len(Cast) = %d, want top 3", len(info.Cast))
	}
	if info.Director != "Lana Wachowski" {
		t.Errorf("Director = %q, want %q", info.Director, "Lana Wachowski")
	}
	if len(info.Genres) != 2 {
		t.Errorf("len(Genres) = %d, want 2", len(info.Genres))
	}
}

func TestOverseerrClient_GetDetailsFailureReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newOverseerrTestClient(server)
	if info := client.GetDetails(context.Background(), 603, media.TypeMovie); info != nil {
		t.Errorf("GetDetails() = %+v, want nil on failure", info)
	}
}

func TestOverseerrNormalize_PartialTV(t *testing.T) {
	client := NewOverseerrClient(config.BackendConfig{}, "", zerolog.Nop())

	raw := overseerrResult{
		ID:           100,
		MediaType:    "tv",
		Name:         "Slow Horses",
		FirstAirDate: "2022-04-01T00:00:00.000Z",
		MediaInfo: overseerrMediaInfo{
			Status: 4,
			Seasons: []overseerrSeason{
				{SeasonNumber: 0, EpisodeCount: 2, EpisodeFileCount: 2},
				{SeasonNumber: 1, EpisodeCount: 6, EpisodeFileCount: 6},
				{SeasonNumber: 2, EpisodeCount: 6, EpisodeFileCount: 3},
			},
		},
	}

	r := client.normalize(raw)
	if r.ReleaseDate != "2022-04-01" {
		t.Errorf("ReleaseDate = %q, want trimmed date", r.ReleaseDate)
	}
	if r.Status != media.StatusPartiallyAvailable {
		t.Errorf("Status = %v, want partially available", r.Status)
	}
	if r.AvailableEpisodes != 9 || r.TotalEpisodes != 12 {
		t.Errorf("episodes = %d/%d, want 9/12 with season 0 skipped", r.AvailableEpisodes, r.TotalEpisodes)
	}
}

func intPtr(n int) *int { return &n }
