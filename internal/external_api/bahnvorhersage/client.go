// Package bahnvorhersage fetches the public station list of
// bahnvorhersage.de, used by the offline matcher as the EVA-number side of
// the join.
package bahnvorhersage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const _defaultBaseURL = "https://bahnvorhersage.de"

// HTTPDoer defines the http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	client  HTTPDoer
}

func NewClient(baseURL string, client HTTPDoer) *Client {
	if baseURL == "" {
		baseURL = _defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type Station struct {
	EVA   int64   `json:"eva"`
	DS100 string  `json:"ds100"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type stationsResponse struct {
	Stations []Station `json:"stations"`
}

func (c *Client) ListStations(ctx context.Context) ([]Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/stations.json", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bahnvorhersage: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data stationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	return data.Stations, nil
}
