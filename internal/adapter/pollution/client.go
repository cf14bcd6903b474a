// Package pollution fetches raw city-pollution records from the upstream
// data API.
package pollution

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/city-air-service/internal/domain"
)

// Client reads raw records from the upstream pollution source.
// It implements pipeline.RawSource.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a pollution source client for the given endpoint URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves the full raw record set. Any response not shaped as
// {"results": [...]} is a fatal fetch error for the calling page request.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pollution source request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pollution source error: status %d: %s", resp.StatusCode, body)
	}

	var envelope struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode pollution response: %w", err)
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("pollution response missing results array")
	}

	// Non-object elements are malformed input, not a fatal response shape
	// problem: drop them individually and keep the rest of the batch.
	records := make([]domain.RawRecord, 0, len(envelope.Results))
	dropped := 0
	for _, raw := range envelope.Results {
		var rec domain.RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	if dropped > 0 {
		c.logger.Debug("dropped non-record results", "count", dropped)
	}

	return records, nil
}
