package database

import (
	"strings"
	"testing"
	"time"

	"github.com/protomem/night-stations/internal/model"
)

func TestBuildGetOwnQuery(t *testing.T) {
	query, args, err := buildGetOwnQuery(testBuilder(), 8011160, "user-1")
	if err != nil {
		t.Fatalf("buildGetOwnQuery returned error: %v", err)
	}

	// The lookup must be scoped to the station, the user AND the pending
	// status, so one user can never shadow another's submission and a
	// reviewed edit never blocks a new one.
	for _, want := range []string{
		"FROM pending_edits",
		"station_eva = $1",
		"status = $2",
		"user_id = $3",
		"LIMIT 1",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d: %v", len(args), args)
	}
	if args[0] != int64(8011160) {
		t.Errorf("expected eva arg, got %v", args[0])
	}
	if args[1] != model.EditStatusPending {
		t.Errorf("expected pending status arg, got %v", args[1])
	}
	if args[2] != "user-1" {
		t.Errorf("expected user arg, got %v", args[2])
	}
}

func TestInsertPendingEditMap(t *testing.T) {
	m := insertPendingEditMap(InsertPendingEditDTO{
		StationEVA: 8011160,
		User:       "user-1",
	})

	if m["station_eva"] != int64(8011160) {
		t.Errorf("expected station_eva, got %v", m["station_eva"])
	}
	if m["user_id"] != "user-1" {
		t.Errorf("expected user_id, got %v", m["user_id"])
	}
	if m["status"] != model.EditStatusPending {
		t.Errorf("new edits must start pending, got %v", m["status"])
	}

	// The full amenity set plus the three bookkeeping columns.
	if want := len(amenityMap(model.Amenities{})) + 3; len(m) != want {
		t.Errorf("expected %d columns, got %d", want, len(m))
	}
	if _, ok := m["reviewed_at"]; ok {
		t.Error("a new edit must not carry review columns")
	}
}

func TestReviewedMap(t *testing.T) {
	before := time.Now()
	m := reviewedMap(model.EditStatusApproved, "admin-1")

	if m["status"] != model.EditStatusApproved {
		t.Errorf("expected approved status, got %v", m["status"])
	}
	if m["reviewed_by"] != "admin-1" {
		t.Errorf("expected reviewer id, got %v", m["reviewed_by"])
	}

	reviewedAt, ok := m["reviewed_at"].(time.Time)
	if !ok {
		t.Fatalf("expected reviewed_at to be a time, got %T", m["reviewed_at"])
	}
	if reviewedAt.Before(before) || reviewedAt.After(time.Now()) {
		t.Errorf("reviewed_at not set to the review moment: %v", reviewedAt)
	}

	if len(m) != 3 {
		t.Errorf("review must only touch the verdict columns, got %v", m)
	}
}
