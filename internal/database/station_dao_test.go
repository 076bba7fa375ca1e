package database

import (
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/protomem/night-stations/internal/model"
)

func testBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func TestBuildSearchQuery(t *testing.T) {
	query, args, err := buildSearchQuery(testBuilder(), SearchStationsFilter{Query: "berlin"})
	if err != nil {
		t.Fatalf("buildSearchQuery returned error: %v", err)
	}

	for _, want := range []string{
		"similarity(name, $1)",
		"similarity(city, $2)",
		"then 0.5 else 0",
		"then 0.3 else 0",
		"AS score",
		"FROM stations",
		"ORDER BY score DESC, category ASC NULLS LAST",
		"LIMIT 30",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	// 6 score args plus 4 match args, no filters.
	if len(args) != 10 {
		t.Fatalf("expected 10 args, got %d: %v", len(args), args)
	}

	if args[0] != "berlin" {
		t.Errorf("expected first arg %q, got %v", "berlin", args[0])
	}
	if args[2] != "berlin%" {
		t.Errorf("expected prefix arg %q, got %v", "berlin%", args[2])
	}
	if args[4] != "%berlin%" {
		t.Errorf("expected substring arg %q, got %v", "%berlin%", args[4])
	}
}

func TestBuildSearchQueryFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  SearchStationsFilter
		columns []string
	}{
		{
			name:    "no filters",
			filter:  SearchStationsFilter{Query: "köln"},
			columns: nil,
		},
		{
			name:    "single filter",
			filter:  SearchStationsFilter{Query: "köln", Wifi: true},
			columns: []string{"has_wifi"},
		},
		{
			name: "all filters conjunctive",
			filter: SearchStationsFilter{
				Query:          "köln",
				Open24h:        true,
				WarmSleep:      true,
				Toilets:        true,
				ToiletsAtNight: true,
				Outlets:        true,
				Wifi:           true,
			},
			columns: []string{
				"is_open_24h", "has_warm_sleep", "has_toilets",
				"toilets_open_at_night", "has_outlets", "has_wifi",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildSearchQuery(testBuilder(), tt.filter)
			if err != nil {
				t.Fatalf("buildSearchQuery returned error: %v", err)
			}

			for _, col := range tt.columns {
				if !strings.Contains(query, col+" = ") {
					t.Errorf("query missing condition on %q:\n%s", col, query)
				}
			}

			if wantArgs := 10 + len(tt.columns); len(args) != wantArgs {
				t.Errorf("expected %d args, got %d", wantArgs, len(args))
			}

			if len(tt.columns) > 1 && strings.Contains(query, " OR is_open_24h") {
				t.Errorf("filters must be ANDed, not ORed:\n%s", query)
			}
		})
	}
}

func TestBuildSearchFallbackQuery(t *testing.T) {
	query, args, err := buildSearchFallbackQuery(testBuilder(), SearchStationsFilter{Query: "ulm", Outlets: true})
	if err != nil {
		t.Fatalf("buildSearchFallbackQuery returned error: %v", err)
	}

	if strings.Contains(query, "similarity") {
		t.Errorf("fallback query must not use similarity:\n%s", query)
	}
	for _, want := range []string{
		"name ILIKE $1",
		"city ILIKE $2",
		"has_outlets = $3",
		"ORDER BY category ASC NULLS LAST, name ASC",
		"LIMIT 30",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d: %v", len(args), args)
	}
	if args[0] != "%ulm%" {
		t.Errorf("expected substring arg %q, got %v", "%ulm%", args[0])
	}
}

func TestAmenityMapColumns(t *testing.T) {
	m := amenityMap(model.Amenities{})

	want := []string{
		"has_warm_sleep", "sleep_notes",
		"has_outlets", "outlet_notes",
		"has_toilets", "toilet_notes", "toilets_open_at_night",
		"is_open_24h", "opening_hours",
		"has_wifi", "wifi_has_limit", "wifi_notes",
		"additional_info",
	}

	if len(m) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(m))
	}
	for _, col := range want {
		if _, ok := m[col]; !ok {
			t.Errorf("amenityMap missing column %q", col)
		}
	}
}

func TestInsertStationMap(t *testing.T) {
	city := "Hamburg"
	m := insertStationMap(InsertStationDTO{
		EVA:       8002549,
		Name:      "Hamburg Hbf",
		City:      &city,
		Country:   "DE",
		Latitude:  53.552736,
		Longitude: 10.006909,
	})

	if m["eva"] != int64(8002549) {
		t.Errorf("expected eva 8002549, got %v", m["eva"])
	}
	if m["name"] != "Hamburg Hbf" {
		t.Errorf("expected name, got %v", m["name"])
	}
	// The amenity columns ride along even when unset.
	if _, ok := m["has_warm_sleep"]; !ok {
		t.Error("insert map must carry the amenity columns")
	}
}
