// station-crawler fetches the full StaDa station inventory and converts it
// into the seed format of the stations table: amenity flags derived from the
// operator's facility data, opening hours from the service point schedules.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/protomem/night-stations/internal/env"
	"github.com/protomem/night-stations/internal/external_api/stada"
)

var (
	_cfgFile = flag.String("cfg", "", "path to config file")
	_outDir  = flag.String("out", ".", "directory the JSON snapshots are written to")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

type crawledStation struct {
	EVA      int64  `json:"eva"`
	Name     string `json:"name"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country"`
	Category int    `json:"category"`
	DS100    string `json:"ds100,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	IsOpen24h    bool   `json:"isOpen24h"`
	OpeningHours string `json:"openingHours,omitempty"`

	HasWifi   bool   `json:"hasWifi"`
	WifiNotes string `json:"wifiNotes,omitempty"`

	HasToilets bool `json:"hasToilets"`

	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	if *_cfgFile != "" {
		if err := env.Load(*_cfgFile); err != nil {
			return err
		}
	}

	client := stada.NewClient(
		env.GetString("STADA_BASE_URL", ""),
		env.GetString("STADA_CLIENT_ID", ""),
		env.GetString("STADA_API_KEY", ""),
		nil,
	)

	logger.Info("fetching station inventory", "source", "stada")

	stations, err := client.ListStations(ctx)
	if err != nil {
		return err
	}

	var (
		crawled    = make([]crawledStation, 0, len(stations))
		skipped    = 0
		open24h    = 0
		withHours  = 0
		withWifi   = 0
		withToilet = 0
	)

	for _, station := range stations {
		out, ok := convertStation(station)
		if !ok {
			skipped++
			continue
		}

		if out.IsOpen24h {
			open24h++
		}
		if out.OpeningHours != "" {
			withHours++
		}
		if out.HasWifi {
			withWifi++
		}
		if out.HasToilets {
			withToilet++
		}

		crawled = append(crawled, out)
	}

	logger.Info("converted stations",
		"total", len(stations),
		"converted", len(crawled),
		"skipped", skipped,
		"open24h", open24h,
		"withOpeningHours", withHours,
		"withWifi", withWifi,
		"withToilets", withToilet,
	)

	data, err := json.MarshalIndent(crawled, "", "  ")
	if err != nil {
		return err
	}

	latest := fmt.Sprintf("%s/stations-latest.json", strings.TrimRight(*_outDir, "/"))
	if err := os.WriteFile(latest, data, 0o644); err != nil {
		return err
	}

	stamped := fmt.Sprintf("%s/stations-%s.json", strings.TrimRight(*_outDir, "/"), time.Now().Format("2006-01-02"))
	if err := os.WriteFile(stamped, data, 0o644); err != nil {
		return err
	}

	logger.Info("wrote snapshots", "latest", latest, "stamped", stamped)

	return nil
}

// convertStation maps a StaDa record to the seed format. Stations without a
// usable EVA number or coordinates are dropped.
func convertStation(station stada.Station) (crawledStation, bool) {
	evaEntry, ok := station.MainEVA()
	if !ok {
		if len(station.EVANumbers) == 0 {
			return crawledStation{}, false
		}
		evaEntry = station.EVANumbers[0]
	}

	lat, lon, ok := evaEntry.GeographicCoordinates.LatLon()
	if !ok {
		return crawledStation{}, false
	}

	out := crawledStation{
		EVA:       evaEntry.Number,
		Name:      station.Name,
		City:      station.City(),
		Country:   "DE",
		Category:  station.Category,
		Latitude:  lat,
		Longitude: lon,

		HasWifi:    station.HasWiFi,
		HasToilets: station.HasPublicFacilities,
	}

	if len(station.Ril100IDs) > 0 {
		out.DS100 = station.Ril100IDs[0].RilIdentifier
	}

	if out.HasWifi {
		out.WifiNotes = "Free DB WiFi (WIFIonICE)"
	}

	availability := serviceAvailability(station)
	out.IsOpen24h = isOpen24h(availability)
	if !out.IsOpen24h {
		out.OpeningHours = formatOpeningHours(availability)
	}

	out.AdditionalInfo = facilitySummary(station)

	return out, true
}

// serviceAvailability picks the staffed service point schedule, preferring
// the DB Information desk over local service staff.
func serviceAvailability(station stada.Station) *stada.Availability {
	if station.DBInformation != nil && station.DBInformation.Availability != nil {
		return station.DBInformation.Availability
	}
	if station.LocalServiceStaff != nil && station.LocalServiceStaff.Availability != nil {
		return station.LocalServiceStaff.Availability
	}
	return nil
}

// isOpen24h reports whether every one of the seven weekdays is staffed from
// midnight to midnight.
func isOpen24h(availability *stada.Availability) bool {
	if availability == nil {
		return false
	}

	for _, day := range availability.Weekdays() {
		if day == nil {
			return false
		}
		if day.FromTime != "00:00" || day.ToTime != "24:00" {
			return false
		}
	}

	return true
}

var _weekdayLabels = [...]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// formatOpeningHours renders the weekday schedule as a compact single line,
// e.g. "mon: 08:00-20:00, tue: 08:00-20:00". Unstaffed days are omitted.
func formatOpeningHours(availability *stada.Availability) string {
	if availability == nil {
		return ""
	}

	parts := make([]string, 0, len(_weekdayLabels))
	for i, day := range availability.Weekdays() {
		if day == nil || day.FromTime == "" || day.ToTime == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s-%s", _weekdayLabels[i], day.FromTime, day.ToTime))
	}

	return strings.Join(parts, ", ")
}

// facilitySummary lists the operator facilities useful to someone stranded
// overnight.
func facilitySummary(station stada.Station) string {
	var parts []string

	if station.HasTravelCenter {
		parts = append(parts, "Travel center")
	}
	if station.HasDBLounge {
		parts = append(parts, "DB Lounge")
	}
	if station.HasRailwayMission {
		parts = append(parts, "Railway mission (Bahnhofsmission)")
	}
	if station.HasLostAndFound {
		parts = append(parts, "Lost and found")
	}
	if station.HasTravelNecessities {
		parts = append(parts, "Shops for travel necessities")
	}
	if station.HasLockerSystem {
		parts = append(parts, "Luggage lockers")
	}
	if station.HasTaxiRank {
		parts = append(parts, "Taxi rank")
	}
	if station.HasParking {
		parts = append(parts, "Parking")
	}
	if station.HasBicycleParking {
		parts = append(parts, "Bicycle parking")
	}

	return strings.Join(parts, "; ")
}
