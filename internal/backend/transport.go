package backend

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	connectTimeout = 5 * time.Second
	readTimeout    = 30 * time.Second

	maxRetries  = 3
	backoffBase = 1 * time.Second
)

// retryTransport retries transient failures with exponential backoff:
// network errors and 429/500/502/503/504 responses. Anything else is
// returned on the first attempt. POST bodies are replayed via GetBody,
// which net/http populates for the buffered body types we use.
type retryTransport struct {
	base    http.RoundTripper
	backoff time.Duration
	logger  zerolog.Logger
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if lastResp != nil {
				lastResp.Body.Close()
			}
			delay := t.backoff << (attempt - 1)
			t.logger.Warn().
				Str("url", req.URL.Redacted()).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("retrying backend request")

			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}

			if req.Body != nil {
				if req.GetBody == nil {
					// Cannot replay the body, give up with the last outcome.
					if lastErr != nil {
						return nil, lastErr
					}
					return lastResp, nil
				}
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				req.Body = body
			}
		}

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			lastResp, lastErr = nil, err
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		lastResp, lastErr = resp, nil
	}

	return lastResp, lastErr
}

// newHTTPClient builds the shared client used by all backend families:
// 5s connect timeout, 30s overall deadline, bounded retries.
func newHTTPClient(logger zerolog.Logger) *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	base := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSHandshakeTimeout:   connectTimeout,
		ResponseHeaderTimeout: readTimeout,
	}
	return &http.Client{
		Timeout:   readTimeout,
		Transport: &retryTransport{base: base, backoff: backoffBase, logger: logger},
	}
}
