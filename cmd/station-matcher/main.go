// station-matcher joins the bahnvorhersage.de station list with the
// railway-stations.org photo stations by DS100 short code and emits JSON
// plus SQL insert statements for manual database seeding.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/protomem/night-stations/internal/external_api/bahnvorhersage"
	"github.com/protomem/night-stations/internal/external_api/railwaystations"
)

var (
	_country = flag.String("country", "de", "photo API country code")
	_outJSON = flag.String("out-json", "stations.json", "path of the JSON output")
	_outSQL  = flag.String("out-sql", "stations.sql", "path of the SQL output")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

type matchedStation struct {
	EVA          int64   `json:"eva"`
	StationIDGer *int64  `json:"stationIdGer"`
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	logger.Info("fetching station list", "source", "bahnvorhersage.de")
	bahnStations, err := bahnvorhersage.NewClient("", nil).ListStations(ctx)
	if err != nil {
		return err
	}

	logger.Info("fetching photo stations", "source", "railway-stations.org", "country", *_country)
	photoStations, err := railwaystations.NewClient("", nil).PhotosByCountry(ctx, *_country)
	if err != nil {
		return err
	}

	matched, matchCount := matchStations(bahnStations, photoStations, *_country)

	logger.Info("matched stations",
		"total", len(bahnStations),
		"photoStations", len(photoStations),
		"matched", matchCount,
		"matchRate", formatMatchRate(matchCount, len(bahnStations)),
		"unmatched", len(bahnStations)-matchCount,
	)

	stations := dedupeStations(matched)
	if dropped := len(matched) - len(stations); dropped > 0 {
		logger.Info("deduplicated stations", "dropped", dropped)
	}

	data, err := json.MarshalIndent(stations, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*_outJSON, data, 0o644); err != nil {
		return err
	}
	logger.Info("wrote JSON output", "path", *_outJSON, "stations", len(stations))

	if err := os.WriteFile(*_outSQL, []byte(generateSQLInserts(stations)), 0o644); err != nil {
		return err
	}
	logger.Info("wrote SQL output", "path", *_outSQL)

	for i, station := range stations {
		if station.StationIDGer == nil || i >= 3 {
			continue
		}
		logger.Info("example match", "name", station.Name, "eva", station.EVA, "stationIdGer", *station.StationIDGer)
	}

	return nil
}

// formatMatchRate renders the stat for the summary line. An empty upstream
// list reads as "n/a" rather than a division by zero.
func formatMatchRate(matched, total int) string {
	if total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", float64(matched)/float64(total)*100)
}

// matchStations joins the two lists by DS100 short code. Every station of
// the EVA side is kept; the photo-station id is attached when the short
// code matches.
func matchStations(bahnStations []bahnvorhersage.Station, photoStations []railwaystations.PhotoStation, country string) ([]matchedStation, int) {
	byShortCode := make(map[string]int64, len(photoStations))
	for _, station := range photoStations {
		if station.ShortCode == "" {
			continue
		}
		id, err := strconv.ParseInt(station.ID, 10, 64)
		if err != nil {
			continue
		}
		byShortCode[station.ShortCode] = id
	}

	matchCount := 0
	matched := make([]matchedStation, 0, len(bahnStations))
	for _, station := range bahnStations {
		out := matchedStation{
			EVA:       station.EVA,
			Name:      station.Name,
			Country:   country,
			Latitude:  station.Lat,
			Longitude: station.Lon,
		}

		if id, ok := byShortCode[station.DS100]; ok {
			out.StationIDGer = &id
			matchCount++
		}

		matched = append(matched, out)
	}

	return matched, matchCount
}

// dedupeStations drops repeated EVA numbers and repeated photo-station ids,
// first occurrence wins in both cases.
func dedupeStations(stations []matchedStation) []matchedStation {
	seenEVA := make(map[int64]struct{}, len(stations))
	seenPhotoID := make(map[int64]struct{}, len(stations))

	out := make([]matchedStation, 0, len(stations))
	for _, station := range stations {
		if _, ok := seenEVA[station.EVA]; ok {
			continue
		}
		seenEVA[station.EVA] = struct{}{}

		if station.StationIDGer != nil {
			if _, ok := seenPhotoID[*station.StationIDGer]; ok {
				station.StationIDGer = nil
			} else {
				seenPhotoID[*station.StationIDGer] = struct{}{}
			}
		}

		out = append(out, station)
	}

	return out
}

func generateSQLInserts(stations []matchedStation) string {
	var sb strings.Builder

	sb.WriteString("-- Generated SQL INSERT statements for stations\n")
	sb.WriteString("-- Review before running against the database\n\n")

	if len(stations) == 0 {
		return sb.String()
	}

	sb.WriteString("INSERT INTO stations (eva, station_id_ger, name, country, latitude, longitude) VALUES\n")

	for i, station := range stations {
		idGer := "NULL"
		if station.StationIDGer != nil {
			idGer = strconv.FormatInt(*station.StationIDGer, 10)
		}

		name := strings.ReplaceAll(station.Name, "'", "''")

		trailing := ","
		if i == len(stations)-1 {
			trailing = ";"
		}

		fmt.Fprintf(&sb, "  (%d, %s, '%s', '%s', %g, %g)%s\n",
			station.EVA, idGer, name, station.Country, station.Latitude, station.Longitude, trailing)
	}

	return sb.String()
}
