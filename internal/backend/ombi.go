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

// OmbiClient talks to Ombi, which splits search by media type and keys
// requests on TVDB ids for television.
type OmbiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewOmbiClient creates a client for an Ombi service.
func NewOmbiClient(cfg config.BackendConfig, logger zerolog.Logger) *OmbiClient {
	return &OmbiClient{
		httpClient: newHTTPClient(logger),
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger.With().Str("component", "ombi").Logger(),
	}
}

// Name returns the backend family name.
func (c *OmbiClient) Name() string {
	return string(TypeOmbi)
}

func (c *OmbiClient) setHeaders(req *http.Request) {
	req.Header.Set("ApiKey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
}

// Test verifies connectivity and credentials via the status endpoint.
func (c *OmbiClient) Test(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/Status", nil)
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

// Search queries the movie and TV endpoints as the media type hint
// requires and merges the results. When only one of the two sub-searches
// fails its error is logged and the other's results are still returned;
// the error propagates only when nothing succeeded.
func (c *OmbiClient) Search(ctx context.Context, query string, mediaType media.MediaType) ([]media.SearchResult, error) {
	var results []media.SearchResult
	var firstErr error
	searched := 0

	if mediaType != media.TypeTV {
		searched++
		movies, err := c.searchOne(ctx, query, media.TypeMovie)
		if err != nil {
			c.logger.Error().Err(err).Str("query", query).Msg("movie search failed")
			firstErr = err
		} else {
			results = append(results, movies...)
		}
	}

	if mediaType != media.TypeMovie {
		searched++
		shows, err := c.searchOne(ctx, query, media.TypeTV)
		if err != nil {
			c.logger.Error().Err(err).Str("query", query).Msg("tv search failed")
			if firstErr == nil {
				firstErr = err
			}
		} else {
			results = append(results, shows...)
		}
	}

	if len(results) == 0 && firstErr != nil && searched > 0 {
		return nil, firstErr
	}

	c.logger.Info().Str("query", query).Int("results", len(results)).Msg("search completed")
	return results, nil
}

func (c *OmbiClient) searchOne(ctx context.Context, query string, mediaType media.MediaType) ([]media.SearchResult, error) {
	reqURL := fmt.Sprintf("%s/api/v1/Search/%s/%s", c.baseURL, mediaType, url.PathEscape(query))

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
		return nil, &media.BackendError{Op: "search", Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var raw []ombiResult
	if err := decodeBody(resp, &raw); err != nil {
		return nil, &media.BackendError{Op: "search", Err: err}
	}

	results := make([]media.SearchResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, c.normalize(r, mediaType))
	}
	return results, nil
}

// RequestMedia creates a request. Movies are keyed on the TMDB id
// directly; TV requests need a details pre-fetch to resolve the TVDB id
// Ombi keys on.
func (c *OmbiClient) RequestMedia(ctx context.Context, id int, mediaType media.MediaType, season *int) (media.RequestOutcome, error) {
	if mediaType == media.TypeMovie {
		return c.requestMovie(ctx, id)
	}
	return c.requestTV(ctx, id, season)
}

func (c *OmbiClient) requestMovie(ctx context.Context, id int) (media.RequestOutcome, error) {
	payload := struct {
		TheMovieDbID int `json:"theMovieDbId"`
	}{TheMovieDbID: id}

	outcome, err := c.postRequest(ctx, c.baseURL+"/api/v1/Request/movie", payload)
	if err != nil {
		return media.RequestOutcome{}, err
	}
	c.logger.Info().Int("mediaId", id).Msg("movie request created")
	return outcome, nil
}

func (c *OmbiClient) requestTV(ctx context.Context, id int, season *int) (media.RequestOutcome, error) {
	// Resolve the TVDB id Ombi uses for TV requests.
	showURL := fmt.Sprintf("%s/api/v1/Search/tv/moviedb/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, showURL, nil)
	if err != nil {
		return media.RequestOutcome{}, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return media.RequestOutcome{}, classify("request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return media.RequestOutcome{}, &media.BackendError{Op: "request", Message: fmt.Sprintf("show lookup: status %d", resp.StatusCode)}
	}

	var show struct {
		ID int `json:"id"`
	}
	if err := decodeBody(resp, &show); err != nil {
		return media.RequestOutcome{}, &media.BackendError{Op: "request", Err: err}
	}

	payload := ombiTVRequestPayload{
		TvDbID:     show.ID,
		RequestAll: season == nil,
	}
	if season != nil {
		payload.LatestSeason = false
		payload.RequestAll = false
		payload.Seasons = []ombiSeasonRequest{{SeasonNumber: *season, Episodes: []struct{}{}}}
	}

	outcome, err := c.postRequest(ctx, c.baseURL+"/api/v1/Request/tv", payload)
	if err != nil {
		return media.RequestOutcome{}, err
	}
	c.logger.Info().Int("mediaId", id).Interface("season", season).Msg("tv request created")
	return outcome, nil
}

func (c *OmbiClient) postRequest(ctx context.Context, url string, payload any) (media.RequestOutcome, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return media.RequestOutcome{}, &media.BackendError{Op: "request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
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
		return media.RequestOutcome{AlreadyRequested: true, Message: "Media already requested"}, nil
	case resp.StatusCode >= 400:
		return media.RequestOutcome{}, &media.BackendError{Op: "request", Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var body struct {
		RequestID    int    `json:"requestId"`
		Message      string `json:"message"`
		ErrorMessage string `json:"errorMessage"`
		IsError      bool   `json:"isError"`
	}
	decodeBody(resp, &body)

	// Ombi reports duplicates in-band instead of via 409.
	if body.IsError && strings.Contains(strings.ToLower(body.ErrorMessage), "already") {
		return media.RequestOutcome{AlreadyRequested: true, Message: body.ErrorMessage}, nil
	}
	return media.RequestOutcome{RequestID: body.RequestID, Message: body.Message}, nil
}

// GetDetails always returns nil: Ombi has no endpoint exposing cast
// information, and detail enrichment is advisory by contract.
func (c *OmbiClient) GetDetails(ctx context.Context, id int, mediaType media.MediaType) *media.DetailInfo {
	c.logger.Debug().Int("mediaId", id).Str("mediaType", string(mediaType)).Msg("details not supported")
	return nil
}

// normalize maps an Ombi result onto the shared shape. Ombi exposes
// availability as booleans; they map onto the Overseerr status scale with
// no partially-available state.
func (c *OmbiClient) normalize(raw ombiResult, mediaType media.MediaType) media.SearchResult {
	id := raw.ID
	if id == 0 {
		id = raw.TheMovieDbID
	}

	title := raw.Title
	if title == "" {
		title = raw.Name
	}

	date := raw.ReleaseDate
	if mediaType == media.TypeTV && raw.FirstAired != "" {
		date = raw.FirstAired
	}

	status := media.StatusUnknown
	switch {
	case raw.Available:
		status = media.StatusAvailable
	case raw.Approved:
		status = media.StatusProcessing
	case raw.Requested:
		status = media.StatusPending
	}

	return media.SearchResult{
		ID:          id,
		Title:       title,
		MediaType:   mediaType,
		ReleaseDate: normalizeDate(date),
		Status:      status,
		HasRequests: raw.Requested,
	}
}
