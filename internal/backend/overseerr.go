package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/config"
	"github.com/overtalkerr/overtalkerr/internal/media"
)

// OverseerrClient talks to Overseerr and Jellyseerr, which share one API.
type OverseerrClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	name       string
	logger     zerolog.Logger
}

// NewOverseerrClient creates a client for an Overseerr-compatible service.
// name distinguishes Overseerr from Jellyseerr in logs; the wire protocol
// is identical.
func NewOverseerrClient(cfg config.BackendConfig, name string, logger zerolog.Logger) *OverseerrClient {
	if name == "" {
		name = string(TypeOverseerr)
	}
	return &OverseerrClient{
		httpClient: newHTTPClient(logger),
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		name:       name,
		logger:     logger.With().Str("component", name).Logger(),
	}
}

// Name returns the backend family name.
func (c *OverseerrClient) Name() string {
	return c.name
}

func (c *OverseerrClient) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
}

// Test verifies connectivity and credentials via the status endpoint.
func (c *OverseerrClient) Test(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/status", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify("status", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return media.ErrAuth
	case resp.StatusCode >= 400:
		return &media.BackendError{Op: "status", Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return nil
}

// Search queries /api/v1/search and normalizes the mixed movie/tv results.
// mediaType "" keeps both kinds.
func (c *OverseerrClient) Search(ctx context.Context, query string, mediaType media.MediaType) ([]media.SearchResult, error) {
	// Encode spaces as %20 rather than +; some Overseerr builds are
	// strict about query encoding.
	encoded := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	reqURL := fmt.Sprintf("%s/api/v1/search?query=%s", c.baseURL, encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify("search", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, media.ErrAuth
	case resp.StatusCode >= 400:
		msg := readErrorMessage(resp)
		c.logger.Error().Int("status", resp.StatusCode).Str("message", msg).Str("query", query).Msg("search failed")
		return nil, &media.BackendError{Op: "search", Message: msg}
	}

	var body overseerrSearchResponse
	if err := decodeBody(resp, &body); err != nil {
		return nil, &media.BackendError{Op: "search", Err: err}
	}

	results := make([]media.SearchResult, 0, len(body.Results))
	for _, raw := range body.Results {
		r := c.normalize(raw)
		if r.MediaType == "" {
			continue
		}
		if mediaType != "" && r.MediaType != mediaType {
			continue
		}
		results = append(results, r)
	}

	c.logger.Info().Str("query", query).Int("results", len(results)).Msg("search completed")
	return results, nil
}

// RequestMedia creates a request via /api/v1/request. For TV shows a
// specific season is requested when given, otherwise all seasons. A 409
// means the media was already requested and is a distinguished outcome.
func (c *OverseerrClient) RequestMedia(ctx context.Context, id int, mediaType media.MediaType, season *int) (media.RequestOutcome, error) {
	payload := overseerrRequestPayload{
		MediaID:   id,
		MediaType: string(mediaType),
	}
	if mediaType == media.TypeTV {
		if season != nil {
			payload.Seasons = []int{*season}
		} else {
			payload.Seasons = "all"
		}
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return media.RequestOutcome{}, &media.BackendError{Op: "request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/request", bytes.NewReader(buf))
	if err != nil {
		return media.RequestOutcome{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return media.RequestOutcome{}, classify("request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return media.RequestOutcome{}, media.ErrAuth
	case resp.StatusCode == http.StatusConflict:
		c.logger.Info().Int("mediaId", id).Msg("media already requested")
		return media.RequestOutcome{AlreadyRequested: true, Message: "Media already requested"}, nil
	case resp.StatusCode >= 400:
		msg := readErrorMessage(resp)
		c.logger.Error().Int("status", resp.StatusCode).Int("mediaId", id).Str("message", msg).Msg("request failed")
		return media.RequestOutcome{}, &media.BackendError{Op: "request", Message: msg}
	}

	var body struct {
		ID      int    `json:"id"`
		Message string `json:"message"`
	}
	decodeBody(resp, &body)

	if strings.Contains(strings.ToLower(body.Message), "already requested") {
		return media.RequestOutcome{RequestID: body.ID, AlreadyRequested: true, Message: body.Message}, nil
	}

	c.logger.Info().Int("mediaId", id).Str("mediaType", string(mediaType)).Msg("request created")
	return media.RequestOutcome{RequestID: body.ID, Message: body.Message}, nil
}

// GetDetails fetches cast, director, and genres from the per-title detail
// endpoint. Advisory: every failure path returns nil.
func (c *OverseerrClient) GetDetails(ctx context.Context, id int, mediaType media.MediaType) *media.DetailInfo {
	reqURL := fmt.Sprintf("%s/api/v1/%s/%d", c.baseURL, mediaType, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Int("mediaId", id).Msg("details fetch failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Int("mediaId", id).Msg("details unavailable")
		return nil
	}

	var body overseerrDetailsResponse
	if err := decodeBody(resp, &body); err != nil {
		return nil
	}

	info := &media.DetailInfo{}
	for i, person := range body.Credits.Cast {
		if i >= 3 {
			break
		}
		if person.Name != "" {
			info.Cast = append(info.Cast, person.Name)
		}
	}
	for _, person := range body.Credits.Crew {
		if person.Job == "Director" {
			info.Director = person.Name
			break
		}
	}
	for _, g := range body.Genres {
		if g.Name != "" {
			info.Genres = append(info.Genres, g.Name)
		}
	}
	return info
}

// normalize maps a raw Overseerr search hit onto the shared result shape.
// Availability is first-class: the engine uses it to avoid re-requesting
// titles the library already has.
func (c *OverseerrClient) normalize(raw overseerrResult) media.SearchResult {
	mt := raw.MediaType
	if mt == "" {
		mt = raw.Type
	}

	title := raw.Title
	if title == "" {
		title = raw.Name
	}

	date := raw.ReleaseDate
	if date == "" {
		date = raw.FirstAirDate
	}

	status := media.Availability(raw.MediaInfo.Status)
	if status < media.StatusUnknown || status > media.StatusDeleted {
		status = media.StatusUnknown
	}

	r := media.SearchResult{
		ID:          raw.ID,
		Title:       title,
		MediaType:   media.MediaType(mt),
		ReleaseDate: normalizeDate(date),
		Status:      status,
		HasRequests: len(raw.MediaInfo.Requests) > 0,
	}

	// Partially available TV shows report per-season episode counts;
	// season 0 (specials) is skipped.
	if r.MediaType == media.TypeTV && status == media.StatusPartiallyAvailable {
		for _, s := range raw.MediaInfo.Seasons {
			if s.SeasonNumber == 0 {
				continue
			}
			r.AvailableEpisodes += s.EpisodeFileCount
			r.TotalEpisodes += s.EpisodeCount
		}
	}

	return r
}

func readErrorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeBody(resp, &body); err != nil {
		return ""
	}
	return body.Message
}
