package main

import (
	"strings"
	"testing"

	"github.com/protomem/night-stations/internal/external_api/bahnvorhersage"
	"github.com/protomem/night-stations/internal/external_api/railwaystations"
)

func TestMatchStations(t *testing.T) {
	bahn := []bahnvorhersage.Station{
		{EVA: 8011160, DS100: "BLS", Name: "Berlin Hbf", Lat: 52.5256, Lon: 13.3695},
		{EVA: 8000105, DS100: "FF", Name: "Frankfurt (Main) Hbf", Lat: 50.1071, Lon: 8.6638},
		{EVA: 8000001, DS100: "XXXX", Name: "Unbekannt"},
	}
	photos := []railwaystations.PhotoStation{
		{ID: "1973", ShortCode: "BLS"},
		{ID: "1866", ShortCode: "FF"},
		{ID: "not-a-number", ShortCode: "KK"},
		{ID: "9", ShortCode: ""},
	}

	matched, matchCount := matchStations(bahn, photos, "de")

	if len(matched) != 3 {
		t.Fatalf("expected every EVA station to be kept, got %d", len(matched))
	}
	if matchCount != 2 {
		t.Errorf("expected 2 matches, got %d", matchCount)
	}

	if matched[0].StationIDGer == nil || *matched[0].StationIDGer != 1973 {
		t.Errorf("expected Berlin to match photo station 1973, got %v", matched[0].StationIDGer)
	}
	if matched[2].StationIDGer != nil {
		t.Errorf("expected no match for unknown short code, got %v", *matched[2].StationIDGer)
	}
	if matched[0].Country != "de" {
		t.Errorf("expected country de, got %q", matched[0].Country)
	}
}

func TestDedupeStations(t *testing.T) {
	id1, id2 := int64(10), int64(20)
	dup := int64(10)

	stations := []matchedStation{
		{EVA: 1, StationIDGer: &id1, Name: "first"},
		{EVA: 1, StationIDGer: &id2, Name: "duplicate eva"},
		{EVA: 2, StationIDGer: &dup, Name: "duplicate photo id"},
		{EVA: 3, Name: "no photo id"},
	}

	out := dedupeStations(stations)

	if len(out) != 3 {
		t.Fatalf("expected 3 stations, got %d", len(out))
	}
	if out[0].Name != "first" {
		t.Errorf("first occurrence must win, got %q", out[0].Name)
	}
	// EVA 2 is kept but its already-claimed photo id is dropped.
	if out[1].EVA != 2 || out[1].StationIDGer != nil {
		t.Errorf("expected duplicate photo id to be cleared, got %+v", out[1])
	}
}

func TestGenerateSQLInserts(t *testing.T) {
	id := int64(1973)

	sql := generateSQLInserts([]matchedStation{
		{EVA: 8011160, StationIDGer: &id, Name: "Berlin Hbf", Country: "de", Latitude: 52.5256, Longitude: 13.3695},
		{EVA: 8000284, Name: "Nürnberg O'Brien-Straße", Country: "de"},
	})

	if !strings.Contains(sql, "INSERT INTO stations (eva, station_id_ger, name, country, latitude, longitude) VALUES") {
		t.Errorf("missing insert header:\n%s", sql)
	}
	if !strings.Contains(sql, "(8011160, 1973, 'Berlin Hbf', 'de', 52.5256, 13.3695),") {
		t.Errorf("missing first row:\n%s", sql)
	}
	// Single quotes are doubled, a missing photo id becomes NULL, the last
	// row ends the statement.
	if !strings.Contains(sql, "(8000284, NULL, 'Nürnberg O''Brien-Straße', 'de', 0, 0);") {
		t.Errorf("missing escaped row:\n%s", sql)
	}
}

func TestFormatMatchRate(t *testing.T) {
	tests := []struct {
		matched int
		total   int
		want    string
	}{
		{matched: 2, total: 4, want: "50.00%"},
		{matched: 0, total: 3, want: "0.00%"},
		{matched: 3, total: 3, want: "100.00%"},
		{matched: 0, total: 0, want: "n/a"},
	}

	for _, tt := range tests {
		if got := formatMatchRate(tt.matched, tt.total); got != tt.want {
			t.Errorf("formatMatchRate(%d, %d) = %q, want %q", tt.matched, tt.total, got, tt.want)
		}
	}
}

func TestGenerateSQLInsertsEmpty(t *testing.T) {
	sql := generateSQLInserts(nil)

	if strings.Contains(sql, "INSERT") {
		t.Errorf("empty input must not produce an insert:\n%s", sql)
	}
}
