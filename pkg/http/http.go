// Package http wraps the HTTP requests made against the dataset repository.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/glorpus-work/digipathos/pkg/errors"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "digipathos/1.0"

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// HTTPClient handles HTTP operations for the repository.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient creates a new HTTP client. A zero timeout leaves requests unbounded.
func NewHTTPClient(timeout time.Duration, userAgent string) *HTTPClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Timeout returns the per-request timeout.
func (hc *HTTPClient) Timeout() time.Duration {
	return hc.client.Timeout
}

// UserAgent returns the User-Agent header value sent with every request.
func (hc *HTTPClient) UserAgent() string {
	return hc.userAgent
}

// Get performs a single GET request and returns the full response body.
// accept is sent as the Accept header when not empty.
func (hc *HTTPClient) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("User-Agent", hc.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := hc.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return data, nil
}
