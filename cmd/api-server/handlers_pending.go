package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/protomem/night-stations/internal/database"
	"github.com/protomem/night-stations/internal/model"
	"github.com/protomem/night-stations/internal/request"
	"github.com/protomem/night-stations/internal/response"
)

// actionResult is the typed failure payload of the moderation actions.
// Authorization and lookup failures render inline instead of becoming HTTP
// errors.
type actionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func actionFailure(message string) actionResult {
	return actionResult{Success: false, Error: message}
}

type pendingEditDetails struct {
	Edit    model.PendingEdit `json:"edit"`
	Station model.Station     `json:"station"`
	User    model.User        `json:"user"`
}

// Handle List Pending Edits
// @Summary Moderation Queue
// @Description Administrators see every pending edit, users see their own
// @Router /pending [get]
func (app *application) handleListPendingEdits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	user, _ := contextUser(r)

	onlyUser := user.ID
	if user.IsAdmin {
		onlyUser = ""
	}

	edits, err := database.NewPendingEditDAO(logger, app.db).ListPending(ctx, onlyUser)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	details, err := app.assemblePendingDetails(r, edits)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{
		"pendingEdits": details,
		"isAdmin":      user.IsAdmin,
	}); err != nil {
		app.serverError(w, r, err)
	}
}

// assemblePendingDetails joins edits with their stations and submitting
// users, one IN query per side.
func (app *application) assemblePendingDetails(r *http.Request, edits []model.PendingEdit) ([]pendingEditDetails, error) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	evaSet := make(map[int64]struct{}, len(edits))
	userSet := make(map[string]struct{}, len(edits))
	for _, edit := range edits {
		evaSet[edit.StationEVA] = struct{}{}
		userSet[edit.User] = struct{}{}
	}

	evas := make([]int64, 0, len(evaSet))
	for eva := range evaSet {
		evas = append(evas, eva)
	}
	userIDs := make([]string, 0, len(userSet))
	for id := range userSet {
		userIDs = append(userIDs, id)
	}

	stations, err := database.NewStationDAO(logger, app.db).ListByEVAs(ctx, evas)
	if err != nil {
		return nil, err
	}
	users, err := database.NewUserDAO(logger, app.db).ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	stationsByEVA := make(map[int64]model.Station, len(stations))
	for _, station := range stations {
		stationsByEVA[station.EVA] = station
	}
	usersByID := make(map[string]model.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	details := make([]pendingEditDetails, 0, len(edits))
	for _, edit := range edits {
		details = append(details, pendingEditDetails{
			Edit:    edit,
			Station: stationsByEVA[edit.StationEVA],
			User:    usersByID[edit.User],
		})
	}
	return details, nil
}

// Handle Approve Edit
// @Summary Approve Pending Edit
// @Description Copies the edit's fields onto the station, then marks it approved
// @Router /pending/approve [post]
func (app *application) handleApproveEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	user, _ := contextUser(r)
	if !user.IsAdmin {
		if err := response.JSON(w, http.StatusOK, actionFailure("Admin access required")); err != nil {
			app.serverError(w, r, err)
		}
		return
	}

	var input requestEditAction
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	editDAO := database.NewPendingEditDAO(logger, app.db)

	edit, err := editDAO.Get(ctx, input.EditID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			if err := response.JSON(w, http.StatusOK, actionFailure("Edit not found")); err != nil {
				app.serverError(w, r, err)
			}
			return
		}

		app.serverError(w, r, err)
		return
	}

	// Two sequential writes: the station update and the status flip are not
	// one atomic unit. If the second fails the edit stays pending and can be
	// approved again.
	if err := database.NewStationDAO(logger, app.db).UpdateAmenities(ctx, edit.StationEVA, edit.Amenities); err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := editDAO.MarkReviewed(ctx, edit.ID, model.EditStatusApproved, user.ID); err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, actionResult{Success: true}); err != nil {
		app.serverError(w, r, err)
	}
}

// pendingEditReviewer is the subset of database.PendingEditDAO the reject
// flow needs.
type pendingEditReviewer interface {
	Get(ctx context.Context, id model.ID) (model.PendingEdit, error)
	MarkReviewed(ctx context.Context, id model.ID, status model.EditStatus, reviewerID string) error
}

// rejectEdit marks the edit rejected without touching the station. A missing
// edit comes back as an inline failure; the error is reserved for the
// database.
func rejectEdit(ctx context.Context, dao pendingEditReviewer, id model.ID, reviewerID string) (actionResult, error) {
	edit, err := dao.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return actionFailure("Edit not found"), nil
		}
		return actionResult{}, err
	}

	if err := dao.MarkReviewed(ctx, edit.ID, model.EditStatusRejected, reviewerID); err != nil {
		return actionResult{}, err
	}

	return actionResult{Success: true}, nil
}

// Handle Reject Edit
// @Summary Reject Pending Edit
// @Description Marks the edit rejected without touching the station
// @Router /pending/reject [post]
func (app *application) handleRejectEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	user, _ := contextUser(r)
	if !user.IsAdmin {
		if err := response.JSON(w, http.StatusOK, actionFailure("Admin access required")); err != nil {
			app.serverError(w, r, err)
		}
		return
	}

	var input requestEditAction
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	result, err := rejectEdit(ctx, database.NewPendingEditDAO(logger, app.db), input.EditID, user.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, result); err != nil {
		app.serverError(w, r, err)
	}
}

// pendingEditRemover is the subset of database.PendingEditDAO the withdraw
// flow needs.
type pendingEditRemover interface {
	Get(ctx context.Context, id model.ID) (model.PendingEdit, error)
	Delete(ctx context.Context, id model.ID) error
}

// removeOwnEdit deletes the edit only when it belongs to the user. A missing
// edit or an ownership mismatch comes back as an inline failure and leaves
// the row untouched.
func removeOwnEdit(ctx context.Context, dao pendingEditRemover, id model.ID, userID string) (actionResult, error) {
	edit, err := dao.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return actionFailure("Edit not found"), nil
		}
		return actionResult{}, err
	}

	if edit.User != userID {
		return actionFailure("You can only remove your own pending edits"), nil
	}

	if err := dao.Delete(ctx, edit.ID); err != nil {
		return actionResult{}, err
	}

	return actionResult{Success: true}, nil
}

// Handle Remove Edit
// @Summary Withdraw Pending Edit
// @Description Users may remove their own pending submissions
// @Router /pending/remove [post]
func (app *application) handleRemoveEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	user, _ := contextUser(r)

	var input requestEditAction
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	result, err := removeOwnEdit(ctx, database.NewPendingEditDAO(logger, app.db), input.EditID, user.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, result); err != nil {
		app.serverError(w, r, err)
	}
}
