// Package signnow implements the SigningClient and TokenIssuer ports against
// the SignNow REST API.
package signnow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/signdispatch/internal/domain/port/driven"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.signnow.com"

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 4 << 10

// Compile-time interface satisfaction checks.
var (
	_ driven.SigningClient = (*Client)(nil)
	_ driven.TokenIssuer   = (*Client)(nil)
)

// Client talks to the SignNow API. It holds no credentials; every call takes
// the bearer token to use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter // nil when requests are not paced.
	logger     *slog.Logger
}

// NewClient creates a Client for baseURL with the given request timeout.
// When interval is positive, consecutive requests are spaced at least that far
// apart.
func NewClient(baseURL string, timeout, interval time.Duration, logger *slog.Logger) (*Client, error) {
	c, err := NewClientWithHTTPClient(&http.Client{Timeout: timeout}, baseURL, logger)
	if err != nil {
		return nil, err
	}
	if interval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return c, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(u.String(), "/"),
		logger:     logger,
	}, nil
}

// do sends req with bearer auth and returns the response body of a 2xx
// response. Any other outcome is reported as a *driven.RemoteError of kind.
func (c *Client) do(ctx context.Context, kind error, token string, req *http.Request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &driven.RemoteError{Kind: kind, Err: err}
		}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &driven.RemoteError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("signnow api call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &driven.RemoteError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &driven.RemoteError{Kind: kind, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	return body, nil
}

// newJSONRequest builds a request whose body is payload encoded as JSON.
func (c *Client) newJSONRequest(ctx context.Context, kind error, method, path string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &driven.RemoteError{Kind: kind, Err: fmt.Errorf("encoding payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &driven.RemoteError{Kind: kind, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func documentPath(documentID string) string {
	return "/document/" + url.PathEscape(documentID)
}
