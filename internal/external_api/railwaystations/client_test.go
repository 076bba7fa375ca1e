package railwaystations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestStationPhotosCached(t *testing.T) {
	var requests atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if r.URL.Path != "/photoStationById/de/1973" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"photoBaseUrl": "https://api.railway-stations.org/photos",
			"stations": [{
				"country": "de",
				"id": "1973",
				"photos": [
					{"id": 2, "path": "/de/1973_2.jpg"},
					{"id": 1, "path": "/de/1973_1.jpg"}
				]
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	set, err := client.StationPhotos(context.Background(), "DE", 1973)
	if err != nil {
		t.Fatalf("StationPhotos returned error: %v", err)
	}

	if len(set.Photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(set.Photos))
	}

	url, ok := set.LatestURL()
	if !ok {
		t.Fatal("expected a latest photo URL")
	}
	if want := "https://api.railway-stations.org/photos/de/1973_2.jpg"; url != want {
		t.Errorf("expected %q, got %q", want, url)
	}

	// Second lookup must come from the cache.
	if _, err := client.StationPhotos(context.Background(), "de", 1973); err != nil {
		t.Fatalf("cached StationPhotos returned error: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestLatestPhotoURLNoPhotos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"photoBaseUrl": "", "stations": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	url, err := client.LatestPhotoURL(context.Background(), "de", 42)
	if err != nil {
		t.Fatalf("LatestPhotoURL returned error: %v", err)
	}
	if url != "" {
		t.Errorf("expected empty URL for a station without photos, got %q", url)
	}
}

func TestStationPhotosUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	if _, err := client.StationPhotos(context.Background(), "de", 42); err == nil {
		t.Fatal("expected an error on upstream failure")
	}
}

func TestPhotosByCountry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photoStationsByCountry/de" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"photoBaseUrl": "https://api.railway-stations.org/photos",
			"stations": [
				{"country": "de", "id": "1", "shortCode": "KK"},
				{"country": "de", "id": "2", "shortCode": "BL"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	stations, err := client.PhotosByCountry(context.Background(), "DE")
	if err != nil {
		t.Fatalf("PhotosByCountry returned error: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
	if stations[0].ShortCode != "KK" {
		t.Errorf("expected short code KK, got %q", stations[0].ShortCode)
	}
}

func TestMapImageURL(t *testing.T) {
	if got, want := MapImageURL(1973), "https://map.railway-stations.org/station.php?stationId=1973"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
