// Package railwaystations talks to the railway-stations.org community photo
// API. Photo stations carry their own numeric identifier, distinct from the
// EVA number; lookups are keyed by country plus that identifier.
package railwaystations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bluele/gcache"
)

const (
	_defaultBaseURL      = "https://api.railway-stations.org"
	_defaultPhotoBaseURL = "https://api.railway-stations.org/photos/"

	_cacheSize = 2048
	_cacheTTL  = 15 * time.Minute
)

// HTTPDoer defines the http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	client  HTTPDoer
	cache   gcache.Cache
}

func NewClient(baseURL string, client HTTPDoer) *Client {
	if baseURL == "" {
		baseURL = _defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		cache:   gcache.New(_cacheSize).LRU().Expiration(_cacheTTL).Build(),
	}
}

type PhotoStation struct {
	Country   string  `json:"country"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	ShortCode string  `json:"shortCode"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Photos    []Photo `json:"photos"`
}

type Photo struct {
	ID           int64  `json:"id"`
	Photographer string `json:"photographer"`
	Path         string `json:"path"`
	License      string `json:"license"`
	CreatedAt    int64  `json:"createdAt"`
}

type photoResponse struct {
	PhotoBaseURL string         `json:"photoBaseUrl"`
	Stations     []PhotoStation `json:"stations"`
}

// PhotoSet is the photo list of a single station plus the base URL photo
// paths are relative to.
type PhotoSet struct {
	BaseURL string
	Photos  []Photo
}

// LatestURL returns the full URL of the station's most recent photo.
func (ps PhotoSet) LatestURL() (string, bool) {
	if len(ps.Photos) == 0 {
		return "", false
	}
	return ps.BaseURL + ps.Photos[0].Path, true
}

// StationPhotos fetches photo metadata for one station. Responses are cached
// so that enriching a page of search results does not hammer the API.
func (c *Client) StationPhotos(ctx context.Context, country string, stationID int64) (PhotoSet, error) {
	key := fmt.Sprintf("%s/%d", strings.ToLower(country), stationID)

	if cached, err := c.cache.Get(key); err == nil {
		if set, ok := cached.(PhotoSet); ok {
			return set, nil
		}
	}

	path := fmt.Sprintf("/photoStationById/%s/%d", strings.ToLower(country), stationID)

	var resp photoResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return PhotoSet{}, err
	}

	set := PhotoSet{BaseURL: resp.PhotoBaseURL}
	if set.BaseURL == "" {
		set.BaseURL = _defaultPhotoBaseURL
	}
	if len(resp.Stations) > 0 {
		set.Photos = resp.Stations[0].Photos
	}

	_ = c.cache.Set(key, set)

	return set, nil
}

// LatestPhotoURL is the search-result enrichment shortcut. A station without
// photos yields an empty URL, not an error.
func (c *Client) LatestPhotoURL(ctx context.Context, country string, stationID int64) (string, error) {
	set, err := c.StationPhotos(ctx, country, stationID)
	if err != nil {
		return "", err
	}

	url, ok := set.LatestURL()
	if !ok {
		return "", nil
	}

	return url, nil
}

// PhotosByCountry lists every photo station of a country, used by the
// offline matcher to join on the DS100 short code.
func (c *Client) PhotosByCountry(ctx context.Context, country string) ([]PhotoStation, error) {
	var resp photoResponse
	if err := c.get(ctx, "/photoStationsByCountry/"+strings.ToLower(country), &resp); err != nil {
		return nil, err
	}

	return resp.Stations, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("railwaystations: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// MapImageURL points to the community map rendering of a station.
func MapImageURL(stationID int64) string {
	return fmt.Sprintf("https://map.railway-stations.org/station.php?stationId=%d", stationID)
}
