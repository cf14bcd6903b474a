// Package wiki implements domain.Describer against a Wikipedia-style
// page-summary REST endpoint.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/city-air-service/internal/domain"
)

// DefaultBaseURL is the public Wikipedia REST summary endpoint.
const DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1/page/summary"

// Client fetches page summaries over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a summary client. An empty baseURL selects the public
// Wikipedia endpoint.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Summary fetches the extract text for a page title. A 404 maps to
// domain.ErrNotFound; a page without an extract yields "" with a nil error.
func (c *Client) Summary(ctx context.Context, term string) (string, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("summary API error: status %d: %s", resp.StatusCode, body)
	}

	var sum summary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(sum.Extract), nil
}

// summary is the subset of the REST response the service consumes.
type summary struct {
	Extract string `json:"extract"`
}
