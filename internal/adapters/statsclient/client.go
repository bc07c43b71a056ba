// Package statsclient is the HTTP client of the stats service.
package statsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"eventboard/internal/domain"
)

type httpStatsClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a StatsClient that calls the stats service at baseURL.
func NewHTTPClient(baseURL string, client *http.Client) domain.StatsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpStatsClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *httpStatsClient) SaveHit(ctx context.Context, hit *domain.EndpointHit) error {
	body, err := json.Marshal(domain.NewHitPayload(hit))
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post hit: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *httpStatsClient) GetStats(ctx context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	params := url.Values{}
	params.Set("start", domain.FormatStatsTime(q.Start))
	params.Set("end", domain.FormatStatsTime(q.End))
	for _, uri := range q.URIs {
		params.Add("uris", uri)
	}
	params.Set("unique", strconv.FormatBool(q.Unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}

	var stats []*domain.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	if stats == nil {
		stats = []*domain.ViewStats{}
	}
	return stats, nil
}
