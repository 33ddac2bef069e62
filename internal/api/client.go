// Package api wraps the personal-finance REST backend.
package api

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

	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/domain"
)

const maxResponseBytes = 150 << 20

// TokenSource yields the bearer token for outgoing requests; "" sends none.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// Client is the shared backend HTTP client. It injects the bearer token and maps
// every non-2xx answer to *domain.APIError and every transport failure to
// *domain.NetworkError.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(status int)
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.BackendTimeout},
		tokens:     tokens,
	}
}

// OnUnauthorized registers a hook called on 401 and 403 answers. No refresh or
// redirect happens by default.
func (c *Client) OnUnauthorized(fn func(status int)) {
	c.onUnauthorized = fn
}

// Do sends body as JSON (when non-nil) and decodes a 2xx answer into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.AccessToken(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	op := method + " " + path
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && c.onUnauthorized != nil {
			c.onUnauthorized(resp.StatusCode)
		}
		apiErr := &domain.APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
		slog.Debug("backend request failed", "op", op, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// errorMessage pulls the message out of a backend error body:
// {"message": "..."} or {"message": ["...", "..."]}, then "error", then the status text.
func errorMessage(raw []byte, status int) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		var single string
		if json.Unmarshal(body.Message, &single) == nil && single != "" {
			return single
		}
		var many []string
		if json.Unmarshal(body.Message, &many) == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
		if body.Error != "" {
			return body.Error
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 512 {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
