// Package upstream is the REST client for the portal backend. Every call is made
// on behalf of an actor whose bearer token is forwarded unchanged. There are no
// retries: a failed call is reported to the caller as is.
package upstream

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
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 10 << 20
)

// Config configures the upstream client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the upstream REST backend
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client for the backend at cfg.BaseURL
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(base.String(), "/"),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// messageBody is the part of every upstream body the gateway reads on failure
type messageBody struct {
	Message string `json:"message"`
}

// request describes one upstream call
type request struct {
	method  string
	path    string
	query   url.Values
	body    interface{}
	headers map[string]string
}

// clientFor returns an HTTP client that attaches the actor's bearer token
func (c *Client) clientFor(ctx context.Context, actor *models.Actor) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: actor.Token,
		TokenType:   "Bearer",
	}))
}

// do performs the call and decodes a 2xx body into out (when non-nil)
func (c *Client) do(ctx context.Context, actor *models.Actor, r request, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.clientFor(ctx, actor).Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", r.method).Str("path", r.path).Msg("Upstream request failed")
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrUpstreamUnavailable, r.method, r.path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %v", apperrors.ErrUpstreamUnavailable, r.method, r.path, err)
	}

	c.logger.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Upstream call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &apperrors.UpstreamError{
			Status: http.StatusBadGateway,
			Err:    fmt.Errorf("malformed %s %s response: %w", r.method, r.path, err),
		}
	}
	return nil
}

// statusError maps a non-2xx answer onto the error taxonomy, keeping the body's
// message verbatim
func statusError(status int, body []byte) error {
	var msg messageBody
	_ = json.Unmarshal(body, &msg)

	upstreamErr := &apperrors.UpstreamError{Status: status, Message: strings.TrimSpace(msg.Message)}
	switch status {
	case http.StatusUnauthorized:
		upstreamErr.Err = apperrors.ErrUnauthorized
	case http.StatusForbidden:
		upstreamErr.Err = apperrors.ErrPermissionDenied
	case http.StatusNotFound:
		upstreamErr.Err = apperrors.ErrResourceNotFound
	case http.StatusConflict:
		upstreamErr.Err = apperrors.ErrConflict
	}
	return upstreamErr
}

func resourcePath(collection string, id string, rest ...string) string {
	parts := append([]string{"", collection, url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/")
}
