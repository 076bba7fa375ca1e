// Package stada talks to the DB Station Data (StaDa) API, the national rail
// operator's station metadata service.
package stada

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const _defaultBaseURL = "https://apis.deutschebahn.com/db-api-marketplace/apis/station-data/v2"

// HTTPDoer defines the http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	baseURL  string
	clientID string
	apiKey   string
	client   HTTPDoer
}

func NewClient(baseURL, clientID, apiKey string, client HTTPDoer) *Client {
	if baseURL == "" {
		baseURL = _defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		apiKey:   apiKey,
		client:   client,
	}
}

type Station struct {
	Number   int64  `json:"number"`
	Name     string `json:"name"`
	Category int    `json:"category"`

	MailingAddress *MailingAddress `json:"mailingAddress"`
	EVANumbers     []EVANumber     `json:"evaNumbers"`
	Ril100IDs      []Ril100        `json:"ril100Identifiers"`

	DBInformation     *ServicePoint `json:"DBinformation"`
	LocalServiceStaff *ServicePoint `json:"localServiceStaff"`

	HasWiFi              bool   `json:"hasWiFi"`
	HasPublicFacilities  bool   `json:"hasPublicFacilities"`
	HasTravelCenter      bool   `json:"hasTravelCenter"`
	HasDBLounge          bool   `json:"hasDBLounge"`
	HasRailwayMission    bool   `json:"hasRailwayMission"`
	HasLostAndFound      bool   `json:"hasLostAndFound"`
	HasTravelNecessities bool   `json:"hasTravelNecessities"`
	HasLockerSystem      bool   `json:"hasLockerSystem"`
	HasTaxiRank          bool   `json:"hasTaxiRank"`
	HasCarRental         bool   `json:"hasCarRental"`
	HasParking           bool   `json:"hasParking"`
	HasBicycleParking    bool   `json:"hasBicycleParking"`
	HasSteplessAccess    string `json:"hasSteplessAccess"`
	HasMobilityService   string `json:"hasMobilityService"`
}

type MailingAddress struct {
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Street  string `json:"street"`
}

type EVANumber struct {
	Number                int64     `json:"number"`
	IsMain                bool      `json:"isMain"`
	GeographicCoordinates *GeoPoint `json:"geographicCoordinates"`
}

// GeoPoint carries GeoJSON-ordered coordinates: longitude first.
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (p *GeoPoint) LatLon() (lat, lon float64, ok bool) {
	if p == nil || len(p.Coordinates) < 2 {
		return 0, 0, false
	}
	return p.Coordinates[1], p.Coordinates[0], true
}

type Ril100 struct {
	RilIdentifier string `json:"rilIdentifier"`
}

type ServicePoint struct {
	Availability *Availability `json:"availability"`
}

type Availability struct {
	Monday    *OpeningTimes `json:"monday"`
	Tuesday   *OpeningTimes `json:"tuesday"`
	Wednesday *OpeningTimes `json:"wednesday"`
	Thursday  *OpeningTimes `json:"thursday"`
	Friday    *OpeningTimes `json:"friday"`
	Saturday  *OpeningTimes `json:"saturday"`
	Sunday    *OpeningTimes `json:"sunday"`
	Holiday   *OpeningTimes `json:"holiday"`
}

func (a *Availability) Weekdays() []*OpeningTimes {
	if a == nil {
		return nil
	}
	return []*OpeningTimes{a.Monday, a.Tuesday, a.Wednesday, a.Thursday, a.Friday, a.Saturday, a.Sunday}
}

type OpeningTimes struct {
	FromTime string `json:"fromTime"`
	ToTime   string `json:"toTime"`
}

// MainEVA returns the station's primary EVA entry. Stations without one are
// skipped by the crawler.
func (s Station) MainEVA() (EVANumber, bool) {
	for _, eva := range s.EVANumbers {
		if eva.IsMain {
			return eva, true
		}
	}
	return EVANumber{}, false
}

func (s Station) City() string {
	if s.MailingAddress == nil {
		return ""
	}
	return s.MailingAddress.City
}

type listStationsResponse struct {
	Result []Station `json:"result"`
}

func (c *Client) GetStation(ctx context.Context, id int64) (Station, error) {
	var station Station
	if err := c.get(ctx, fmt.Sprintf("/stations/%d", id), &station); err != nil {
		return Station{}, err
	}

	return station, nil
}

func (c *Client) ListStations(ctx context.Context) ([]Station, error) {
	var resp listStationsResponse
	if err := c.get(ctx, "/stations", &resp); err != nil {
		return nil, err
	}

	return resp.Result, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("DB-Client-ID", c.clientID)
	req.Header.Set("DB-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("stada: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// StationPlanPDFURL points to the operator's downloadable station plan.
func StationPlanPDFURL(stationID int64) string {
	return fmt.Sprintf("https://www.bahnhof.de/downloads/station-plans/%d.pdf", stationID)
}
