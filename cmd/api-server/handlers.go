package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/protomem/night-stations/internal/database"
	"github.com/protomem/night-stations/internal/external_api/railwaystations"
	"github.com/protomem/night-stations/internal/external_api/stada"
	"github.com/protomem/night-stations/internal/model"
	"github.com/protomem/night-stations/internal/response"
)

const _minQueryLength = 2

// Handle Status
// @Summary Server Status
// @Description Check if the server is up and running
// @Router /status [get]
func (app *application) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := response.JSON(w, http.StatusOK, response.JSONObject{"status": "OK"}); err != nil {
		app.serverError(w, r, err)
	}
}

type searchFilters struct {
	Open24h        bool `json:"open24h"`
	WarmSleep      bool `json:"warmSleep"`
	Toilets        bool `json:"toilets"`
	ToiletsAtNight bool `json:"toiletsAtNight"`
	Outlets        bool `json:"outlets"`
	Wifi           bool `json:"wifi"`
}

func searchFiltersFromRequest(r *http.Request) searchFilters {
	return searchFilters{
		Open24h:        boolQueryParam(r, "open24h"),
		WarmSleep:      boolQueryParam(r, "warmSleep"),
		Toilets:        boolQueryParam(r, "toilets"),
		ToiletsAtNight: boolQueryParam(r, "toiletsAtNight"),
		Outlets:        boolQueryParam(r, "outlets"),
		Wifi:           boolQueryParam(r, "wifi"),
	}
}

// stationSummary is the list-view shape: amenity flags collapsed to plain
// booleans (unknown reads as false) plus the photo enrichment.
type stationSummary struct {
	EVA                int64   `json:"eva"`
	Name               string  `json:"name"`
	City               *string `json:"city"`
	Country            string  `json:"country"`
	Category           *int    `json:"category"`
	HasWarmSleep       bool    `json:"hasWarmSleep"`
	HasOutlets         bool    `json:"hasOutlets"`
	HasToilets         bool    `json:"hasToilets"`
	ToiletsOpenAtNight bool    `json:"toiletsOpenAtNight"`
	IsOpen24h          bool    `json:"isOpen24h"`
	HasWifi            bool    `json:"hasWifi"`
	PhotoURL           *string `json:"photoUrl"`
}

func newStationSummary(station model.Station) stationSummary {
	return stationSummary{
		EVA:                station.EVA,
		Name:               station.Name,
		City:               station.City,
		Country:            station.Country,
		Category:           station.Category,
		HasWarmSleep:       boolValue(station.HasWarmSleep),
		HasOutlets:         boolValue(station.HasOutlets),
		HasToilets:         boolValue(station.HasToilets),
		ToiletsOpenAtNight: boolValue(station.ToiletsOpenAtNight),
		IsOpen24h:          boolValue(station.IsOpen24h),
		HasWifi:            boolValue(station.HasWifi),
	}
}

// attachPhotos enriches summaries with the latest photo of each station,
// fetched concurrently. A failed lookup leaves that station's photo absent
// and never fails the whole response.
func (app *application) attachPhotos(ctx context.Context, stations []model.Station) []stationSummary {
	summaries := make([]stationSummary, len(stations))

	var wg sync.WaitGroup
	for i, station := range stations {
		summaries[i] = newStationSummary(station)

		if station.StationIDGer == nil {
			continue
		}

		wg.Add(1)
		go func(i int, country string, photoID int64) {
			defer wg.Done()

			url, err := app.photos.LatestPhotoURL(ctx, country, photoID)
			if err != nil {
				app.logger.Debug("photo lookup failed", "photoId", photoID, "error", err)
				return
			}
			if url != "" {
				summaries[i].PhotoURL = &url
			}
		}(i, station.Country, *station.StationIDGer)
	}
	wg.Wait()

	return summaries
}

// Handle Search Stations
// @Summary Search Stations
// @Description Fuzzy search by name or city with amenity filters
// @Router / [get]
func (app *application) handleSearchStations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	query := strings.TrimSpace(r.URL.Query().Get("name"))
	filters := searchFiltersFromRequest(r)

	// Under two characters there is nothing sensible to match, so no
	// database round trip happens at all. An empty list, not an error.
	if utf8.RuneCountInString(query) < _minQueryLength {
		if err := response.JSON(w, http.StatusOK, response.JSONObject{
			"stations": []stationSummary{},
			"filters":  filters,
		}); err != nil {
			app.serverError(w, r, err)
		}
		return
	}

	dao := database.NewStationDAO(logger, app.db)

	stations, err := dao.Search(ctx, database.SearchStationsFilter{
		Query:          query,
		Open24h:        filters.Open24h,
		WarmSleep:      filters.WarmSleep,
		Toilets:        filters.Toilets,
		ToiletsAtNight: filters.ToiletsAtNight,
		Outlets:        filters.Outlets,
		Wifi:           filters.Wifi,
	})
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	summaries := app.attachPhotos(ctx, stations)

	if err := response.JSON(w, http.StatusOK, response.JSONObject{
		"stations": summaries,
		"filters":  filters,
	}); err != nil {
		app.serverError(w, r, err)
	}
}

// Handle Favorite Stations
// @Summary Favorite Stations
// @Description Fetch stations by a comma-separated list of EVA numbers
// @Router /favorites [get]
func (app *application) handleFavoriteStations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	evas := parseEVAList(r.URL.Query().Get("evas"))
	if len(evas) == 0 {
		if err := response.JSON(w, http.StatusOK, response.JSONObject{"stations": []stationSummary{}}); err != nil {
			app.serverError(w, r, err)
		}
		return
	}

	stations, err := database.NewStationDAO(logger, app.db).ListByEVAs(ctx, evas)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	summaries := app.attachPhotos(ctx, stations)

	if err := response.JSON(w, http.StatusOK, response.JSONObject{"stations": summaries}); err != nil {
		app.serverError(w, r, err)
	}
}

func parseEVAList(param string) []int64 {
	if param == "" {
		return nil
	}

	parts := strings.Split(param, ",")
	evas := make([]int64, 0, len(parts))
	for _, part := range parts {
		eva, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		evas = append(evas, eva)
	}
	return evas
}

// Handle Get Station
// @Summary Station Detail
// @Description Station with amenity info, photos and plan links
// @Router /station/{eva} [get]
func (app *application) handleGetStation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	eva, err := evaFromRequest(r)
	if err != nil {
		app.badRequest(w, r, errors.New("invalid station id"))
		return
	}

	dao := database.NewStationDAO(logger, app.db)

	station, err := dao.Get(ctx, eva)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			app.serverError(w, r, err)
			return
		}

		station, err = app.createStationFromStada(ctx, dao, eva)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				app.errorMessage(w, r, http.StatusNotFound, "Station not found", nil)
				return
			}

			app.serverError(w, r, err)
			return
		}
	}

	var (
		photos       = []railwaystations.Photo{}
		photoBaseURL = ""
		imageURL     *string
		pdfURL       *string
	)

	if station.StationIDGer != nil {
		set, err := app.photos.StationPhotos(ctx, station.Country, *station.StationIDGer)
		if err != nil {
			// The page degrades to no photos, never fails on this.
			logger.Warn("photo lookup failed", "eva", eva, "error", err)
		} else {
			photos = set.Photos
			photoBaseURL = set.BaseURL
		}

		img := railwaystations.MapImageURL(*station.StationIDGer)
		imageURL = &img
		pdf := stada.StationPlanPDFURL(*station.StationIDGer)
		pdfURL = &pdf
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{
		"station":      station,
		"photos":       photos,
		"photoBaseUrl": photoBaseURL,
		"imageUrl":     imageURL,
		"pdfUrl":       pdfURL,
	}); err != nil {
		app.serverError(w, r, err)
	}
}

const _newStationInfo = "Station information not yet available. Please contribute if you visit this station!"

// createStationFromStada lazily creates a station row on first view, seeded
// from the operator's metadata API. Amenities start unknown. Returns
// model.ErrNotFound when the upstream lookup cannot supply name and
// coordinates.
func (app *application) createStationFromStada(ctx context.Context, dao *database.StationDAO, eva int64) (model.Station, error) {
	upstream, err := app.stada.GetStation(ctx, eva)
	if err != nil {
		app.logger.Warn("station metadata lookup failed", "eva", eva, "error", err)
		return model.Station{}, model.NewError("station", model.ErrNotFound)
	}

	mainEVA, ok := upstream.MainEVA()
	if !ok && len(upstream.EVANumbers) > 0 {
		mainEVA = upstream.EVANumbers[0]
		ok = true
	}
	if upstream.Name == "" || !ok {
		return model.Station{}, model.NewError("station", model.ErrNotFound)
	}

	lat, lon, ok := mainEVA.GeographicCoordinates.LatLon()
	if !ok {
		return model.Station{}, model.NewError("station", model.ErrNotFound)
	}

	dto := database.InsertStationDTO{
		EVA:       eva,
		Name:      upstream.Name,
		Country:   "DE",
		Latitude:  lat,
		Longitude: lon,
	}
	if upstream.Number != 0 {
		number := upstream.Number
		dto.StationIDGer = &number
	}
	if city := upstream.City(); city != "" {
		dto.City = &city
	}
	if upstream.Category != 0 {
		category := upstream.Category
		dto.Category = &category
	}

	info := _newStationInfo
	dto.Amenities = model.Amenities{
		HasWarmSleep:       boolPtr(false),
		HasOutlets:         boolPtr(false),
		HasToilets:         boolPtr(false),
		ToiletsOpenAtNight: boolPtr(false),
		IsOpen24h:          boolPtr(false),
		AdditionalInfo:     &info,
	}

	if err := dao.Insert(ctx, dto); err != nil && !errors.Is(err, model.ErrExists) {
		return model.Station{}, err
	}

	return dao.Get(ctx, eva)
}
