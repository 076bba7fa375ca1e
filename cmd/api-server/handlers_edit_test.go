package main

import (
	"context"
	"testing"

	"github.com/protomem/night-stations/internal/database"
	"github.com/protomem/night-stations/internal/model"
)

type fakePendingEditStore struct {
	existing *model.PendingEdit

	updatedID model.ID
	updated   *model.Amenities
	inserted  *database.InsertPendingEditDTO
}

func (f *fakePendingEditStore) GetOwn(_ context.Context, _ int64, _ string) (model.PendingEdit, error) {
	if f.existing == nil {
		return model.PendingEdit{}, model.NewError("pending edit", model.ErrNotFound)
	}
	return *f.existing, nil
}

func (f *fakePendingEditStore) UpdateFields(_ context.Context, id model.ID, amenities model.Amenities) error {
	f.updatedID = id
	f.updated = &amenities
	return nil
}

func (f *fakePendingEditStore) Insert(_ context.Context, dto database.InsertPendingEditDTO) (model.ID, error) {
	f.inserted = &dto
	return 1, nil
}

func TestStorePendingEditUpdatesInPlace(t *testing.T) {
	store := &fakePendingEditStore{
		existing: &model.PendingEdit{ID: 7, StationEVA: 8011160, User: "user-1"},
	}

	amenities := model.Amenities{HasWifi: boolPtr(true)}

	if err := storePendingEdit(context.Background(), store, 8011160, "user-1", amenities); err != nil {
		t.Fatalf("storePendingEdit returned error: %v", err)
	}

	// The outstanding edit is overwritten, never stacked.
	if store.inserted != nil {
		t.Fatal("expected no new row while an edit is outstanding")
	}
	if store.updatedID != 7 {
		t.Errorf("expected the existing edit (id 7) to be updated, got %d", store.updatedID)
	}
	if store.updated == nil || !boolValue(store.updated.HasWifi) {
		t.Error("expected the submitted fields to be written")
	}
}

func TestStorePendingEditInsertsWhenNoneOutstanding(t *testing.T) {
	store := &fakePendingEditStore{}

	amenities := model.Amenities{HasToilets: boolPtr(true)}

	if err := storePendingEdit(context.Background(), store, 8011160, "user-1", amenities); err != nil {
		t.Fatalf("storePendingEdit returned error: %v", err)
	}

	if store.updated != nil {
		t.Fatal("expected no update without an outstanding edit")
	}
	if store.inserted == nil {
		t.Fatal("expected a new pending edit row")
	}
	if store.inserted.StationEVA != 8011160 || store.inserted.User != "user-1" {
		t.Errorf("unexpected insert target: %+v", store.inserted)
	}
	if !boolValue(store.inserted.Amenities.HasToilets) {
		t.Error("expected the submitted fields on the new row")
	}
}
