// Package remote fetches analysis payloads from the footprint analysis backend.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/source"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
)

var (
	// ErrUnauthorized indicates the API token is missing, expired or invalid.
	ErrUnauthorized = errors.New("remote: unauthorized (token missing or invalid)")
	// ErrNotFound indicates the backend has no analysis for the statement.
	ErrNotFound = errors.New("remote: statement not found")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("remote: rate limited")
	// ErrNoBaseURL is returned by NewClient when no backend URL is configured.
	ErrNoBaseURL = errors.New("remote: no base URL configured")
)

// Client fetches analysis payloads over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL. token may be empty.
func NewClient(baseURL, token string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("remote: invalid base URL %q: %w", baseURL, err)
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		http:    &http.Client{},
	}, nil
}

// Fetched is a payload together with the raw bytes it was decoded from.
type Fetched struct {
	Payload   model.Payload
	Raw       []byte
	FetchedAt time.Time
}

// FetchAnalysis downloads and decodes the analysis payload for a statement.
func (c *Client) FetchAnalysis(ctx context.Context, statementID string) (*Fetched, error) {
	statementID = strings.TrimSpace(statementID)
	if statementID == "" {
		return nil, errors.New("remote: empty statement id")
	}

	body, err := c.get(ctx, "/analysis/"+url.PathEscape(statementID))
	if err != nil {
		return nil, err
	}

	p, err := source.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("remote: parsing payload: %w", err)
	}
	if p.StatementID == "" {
		p.StatementID = statementID
	}

	return &Fetched{Payload: p, Raw: body, FetchedAt: time.Now()}, nil
}

// Ping checks that the backend is up.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.get(ctx, "/")
	if err != nil {
		return err
	}

	var health struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("remote: parsing health: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("remote: backend status %q", health.Status)
	}
	return nil
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/theirongolddev/footprint/1.0")

	resp, err := c.http.Do(req) //nolint:gosec // URL comes from user config
	if err != nil {
		return nil, fmt.Errorf("remote: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("remote: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("remote: reading response: %w", err)
	}
	return body, nil
}
