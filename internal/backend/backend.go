// Package backend implements the media-request backend clients. Overseerr
// and Jellyseerr share one client family; Ombi is its own. All of them
// normalize responses into media.SearchResult and classify failures into
// the shared error taxonomy, so callers never branch on a service family.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/config"
	"github.com/overtalkerr/overtalkerr/internal/media"
)

// Type names a supported backend family.
type Type string

const (
	TypeOverseerr  Type = "overseerr"
	TypeJellyseerr Type = "jellyseerr"
	TypeOmbi       Type = "ombi"
)

// Backend is the uniform contract over all media-request services.
type Backend interface {
	// Name returns the backend family name.
	Name() string

	// Test probes the backend's status endpoint with the configured
	// credentials.
	Test(ctx context.Context) error

	// Search issues one query against the downstream search endpoint.
	// mediaType "" searches both movies and TV.
	Search(ctx context.Context, query string, mediaType media.MediaType) ([]media.SearchResult, error)

	// RequestMedia creates a download request. A duplicate request is
	// reported via the outcome, not as an error.
	RequestMedia(ctx context.Context, id int, mediaType media.MediaType, season *int) (media.RequestOutcome, error)

	// GetDetails fetches cast/director/genre info. Best effort: any
	// failure returns nil, never an error.
	GetDetails(ctx context.Context, id int, mediaType media.MediaType) *media.DetailInfo
}

// New creates the backend selected by cfg. When cfg.Type is empty the
// family is auto-detected by probing status endpoints; detection failures
// fall back to Overseerr, the most common deployment, so the service stays
// usable with best-effort accuracy.
func New(cfg config.BackendConfig, logger zerolog.Logger) (Backend, error) {
	if cfg.URL == "" {
		return nil, errors.New("backend URL is not configured")
	}

	typ := Type(strings.ToLower(cfg.Type))
	if typ == "" {
		typ = Detect(context.Background(), cfg, logger)
	}

	switch typ {
	case TypeOverseerr, TypeJellyseerr:
		return NewOverseerrClient(cfg, string(typ), logger), nil
	case TypeOmbi:
		return NewOmbiClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}

// Detect probes known status endpoints in priority order: Overseerr and
// Jellyseerr answer /api/v1/status (Jellyseerr identifies itself in the
// version string), Ombi answers /api/v1/Status.
func Detect(ctx context.Context, cfg config.BackendConfig, logger zerolog.Logger) Type {
	client := &http.Client{Timeout: connectTimeout}
	base := strings.TrimRight(cfg.URL, "/")

	if version, ok := probeStatus(ctx, client, base+"/api/v1/status", "X-Api-Key", cfg.APIKey); ok {
		if strings.Contains(strings.ToLower(version), "jellyseerr") {
			logger.Info().Str("version", version).Msg("detected Jellyseerr backend")
			return TypeJellyseerr
		}
		logger.Info().Str("version", version).Msg("detected Overseerr backend")
		return TypeOverseerr
	}

	if _, ok := probeStatus(ctx, client, base+"/api/v1/Status", "ApiKey", cfg.APIKey); ok {
		logger.Info().Msg("detected Ombi backend")
		return TypeOmbi
	}

	logger.Warn().Str("url", cfg.URL).Msg("could not detect backend type, defaulting to Overseerr")
	return TypeOverseerr
}

func probeStatus(ctx context.Context, client *http.Client, url, authHeader, apiKey string) (version string, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set(authHeader, apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false
	}

	var status struct {
		Version string `json:"version"`
	}
	decodeBody(resp, &status)
	return status.Version, true
}

// classify maps a transport-level error to the shared taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", media.ErrConnection, err)
	}
	// url.Error wraps dial failures that don't implement net.Error.
	if strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "no such host") {
		return fmt.Errorf("%w: %v", media.ErrConnection, err)
	}
	return &media.BackendError{Op: op, Err: err}
}

// normalizeDate trims an ISO timestamp down to its date part.
func normalizeDate(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

func decodeBody(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
