// Package rest implements the gateway ports against the guild backend's
// REST boundary. Transport framing (status codes, headers) is translated
// here into the core's failure taxonomy; nothing above this package knows
// about HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guildworks/provision-client/internal/core/domain"
	"github.com/guildworks/provision-client/internal/metrics"
)

// TokenSource supplies the bearer credential for authenticated requests.
// An empty string means no session; the Authorization header is omitted.
type TokenSource func() string

// UnauthorizedHook fires once per 401 response, before the error is
// returned to the caller. Used to destroy the session and flush the cache.
type UnauthorizedHook func()

// apiError is the backend's error envelope.
type apiError struct {
	Error string `json:"error"`
}

// Client is the shared HTTP plumbing behind all gateways.
type Client struct {
	base           *url.URL
	http           *http.Client
	token          TokenSource
	onUnauthorized UnauthorizedHook
	log            zerolog.Logger
}

// NewClient builds a Client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, token TokenSource, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("rest: invalid base url %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  base,
		http:  &http.Client{Timeout: timeout},
		token: token,
		log:   log.With().Str("component", "rest").Logger(),
	}, nil
}

// SetUnauthorizedHook installs the 401 reaction. Wired after construction
// because the session service and the client reference each other.
func (c *Client) SetUnauthorizedHook(h UnauthorizedHook) {
	c.onUnauthorized = h
}

// do performs one round-trip. route is the logical route name used for the
// duration metric; path is appended to the base URL. body and out are JSON
// encoded/decoded when non-nil.
func (c *Client) do(ctx context.Context, method, route, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("rest: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("rest: decode %s %s: %w", method, path, err)
		}
		return nil
	}

	return c.statusError(method, path, resp)
}

// statusError maps a non-2xx response onto the core's failure taxonomy.
func (c *Client) statusError(method, path string, resp *http.Response) error {
	var envelope apiError
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	detail := envelope.Error
	if detail == "" {
		detail = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrSessionExpired)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrAccessDenied)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s %s: %w: %s", method, path, domain.ErrValidationRejected, detail)
	default:
		return fmt.Errorf("%s %s: %w: %s", method, path, domain.ErrBackendUnavailable, detail)
	}
}
