package main

import (
	"context"
	"testing"

	"github.com/protomem/night-stations/internal/model"
)

type fakePendingEditActions struct {
	edit *model.PendingEdit

	deletedID  model.ID
	deleted    bool
	reviewedID model.ID
	reviewed   model.EditStatus
	reviewer   string
}

func (f *fakePendingEditActions) Get(_ context.Context, id model.ID) (model.PendingEdit, error) {
	if f.edit == nil || f.edit.ID != id {
		return model.PendingEdit{}, model.NewError("pending edit", model.ErrNotFound)
	}
	return *f.edit, nil
}

func (f *fakePendingEditActions) Delete(_ context.Context, id model.ID) error {
	f.deletedID = id
	f.deleted = true
	return nil
}

func (f *fakePendingEditActions) MarkReviewed(_ context.Context, id model.ID, status model.EditStatus, reviewerID string) error {
	f.reviewedID = id
	f.reviewed = status
	f.reviewer = reviewerID
	return nil
}

func TestRemoveOwnEdit(t *testing.T) {
	tests := []struct {
		name        string
		edit        *model.PendingEdit
		editID      model.ID
		userID      string
		wantSuccess bool
		wantError   string
		wantDeleted bool
	}{
		{
			name:        "owner removes their edit",
			edit:        &model.PendingEdit{ID: 3, User: "user-1"},
			editID:      3,
			userID:      "user-1",
			wantSuccess: true,
			wantDeleted: true,
		},
		{
			name:      "non-owner is refused and the row stays",
			edit:      &model.PendingEdit{ID: 3, User: "user-1"},
			editID:    3,
			userID:    "user-2",
			wantError: "You can only remove your own pending edits",
		},
		{
			name:      "missing edit",
			editID:    99,
			userID:    "user-1",
			wantError: "Edit not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dao := &fakePendingEditActions{edit: tt.edit}

			result, err := removeOwnEdit(context.Background(), dao, tt.editID, tt.userID)
			if err != nil {
				t.Fatalf("removeOwnEdit returned error: %v", err)
			}

			if result.Success != tt.wantSuccess {
				t.Errorf("expected success=%v, got %v", tt.wantSuccess, result.Success)
			}
			if result.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, result.Error)
			}
			if dao.deleted != tt.wantDeleted {
				t.Errorf("expected deleted=%v, got %v", tt.wantDeleted, dao.deleted)
			}
			if tt.wantDeleted && dao.deletedID != tt.editID {
				t.Errorf("expected edit %d deleted, got %d", tt.editID, dao.deletedID)
			}
		})
	}
}

func TestRejectEdit(t *testing.T) {
	dao := &fakePendingEditActions{
		edit: &model.PendingEdit{ID: 5, User: "user-1"},
	}

	result, err := rejectEdit(context.Background(), dao, 5, "admin-1")
	if err != nil {
		t.Fatalf("rejectEdit returned error: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success, got %+v", result)
	}
	if dao.reviewedID != 5 || dao.reviewed != model.EditStatusRejected {
		t.Errorf("expected edit 5 marked rejected, got id=%d status=%q", dao.reviewedID, dao.reviewed)
	}
	if dao.reviewer != "admin-1" {
		t.Errorf("expected reviewer admin-1, got %q", dao.reviewer)
	}
}

func TestRejectEditMissing(t *testing.T) {
	dao := &fakePendingEditActions{}

	result, err := rejectEdit(context.Background(), dao, 99, "admin-1")
	if err != nil {
		t.Fatalf("rejectEdit returned error: %v", err)
	}

	if result.Success || result.Error != "Edit not found" {
		t.Errorf("expected inline not-found failure, got %+v", result)
	}
	if dao.reviewed != "" {
		t.Error("a missing edit must not be marked reviewed")
	}
}
