package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/protomem/night-stations/internal/database"
	"github.com/protomem/night-stations/internal/model"
	"github.com/protomem/night-stations/internal/request"
	"github.com/protomem/night-stations/internal/response"
	"github.com/protomem/night-stations/internal/validator"
)

// Handle Edit Station
// @Summary Edit Form Data
// @Description Station values overlaid with the user's own pending edit
// @Router /station/{eva}/edit [get]
func (app *application) handleEditStation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	user, _ := contextUser(r)

	eva, err := evaFromRequest(r)
	if err != nil {
		app.badRequest(w, r, errors.New("invalid station id"))
		return
	}

	station, err := database.NewStationDAO(logger, app.db).Get(ctx, eva)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			app.errorMessage(w, r, http.StatusNotFound, "Station not found", nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	original := station.Amenities

	editDAO := database.NewPendingEditDAO(logger, app.db)

	var pendingEditID *model.ID
	pending, err := editDAO.GetOwn(ctx, eva, user.ID)
	switch {
	case err == nil:
		// The form shows the user's proposed values, not the live row.
		station.Amenities = pending.Amenities
		pendingEditID = &pending.ID
	case errors.Is(err, model.ErrNotFound):
		// Nothing outstanding, show the station as-is.
	default:
		app.serverError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, response.JSONObject{
		"station":         station,
		"originalStation": original,
		"hasPendingEdit":  pendingEditID != nil,
		"pendingEditId":   pendingEditID,
		"isAdmin":         user.IsAdmin,
	}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestSubmitEdit struct {
	HasWarmSleep bool    `json:"hasWarmSleep"`
	SleepNotes   *string `json:"sleepNotes"`

	HasOutlets  bool    `json:"hasOutlets"`
	OutletNotes *string `json:"outletNotes"`

	HasToilets         bool    `json:"hasToilets"`
	ToiletNotes        *string `json:"toiletNotes"`
	ToiletsOpenAtNight bool    `json:"toiletsOpenAtNight"`

	IsOpen24h    bool    `json:"isOpen24h"`
	OpeningHours *string `json:"openingHours"`

	HasWifi      bool    `json:"hasWifi"`
	WifiHasLimit bool    `json:"wifiHasLimit"`
	WifiNotes    *string `json:"wifiNotes"`

	AdditionalInfo *string `json:"additionalInfo"`
}

func (input requestSubmitEdit) amenities() model.Amenities {
	return model.Amenities{
		HasWarmSleep:       boolPtr(input.HasWarmSleep),
		SleepNotes:         input.SleepNotes,
		HasOutlets:         boolPtr(input.HasOutlets),
		OutletNotes:        input.OutletNotes,
		HasToilets:         boolPtr(input.HasToilets),
		ToiletNotes:        input.ToiletNotes,
		ToiletsOpenAtNight: boolPtr(input.ToiletsOpenAtNight),
		IsOpen24h:          boolPtr(input.IsOpen24h),
		OpeningHours:       input.OpeningHours,
		HasWifi:            boolPtr(input.HasWifi),
		WifiHasLimit:       boolPtr(input.WifiHasLimit),
		WifiNotes:          input.WifiNotes,
		AdditionalInfo:     input.AdditionalInfo,
	}
}

// pendingEditStore is the subset of database.PendingEditDAO the submit flow
// needs.
type pendingEditStore interface {
	GetOwn(ctx context.Context, eva int64, userID string) (model.PendingEdit, error)
	UpdateFields(ctx context.Context, id model.ID, amenities model.Amenities) error
	Insert(ctx context.Context, dto database.InsertPendingEditDTO) (model.ID, error)
}

// storePendingEdit records a non-administrator's submission. Re-submitting
// before review overwrites the outstanding edit instead of stacking a second
// one, so a user has at most one pending edit per station.
func storePendingEdit(ctx context.Context, dao pendingEditStore, eva int64, userID string, amenities model.Amenities) error {
	existing, err := dao.GetOwn(ctx, eva, userID)
	switch {
	case err == nil:
		return dao.UpdateFields(ctx, existing.ID, amenities)
	case errors.Is(err, model.ErrNotFound):
		_, err := dao.Insert(ctx, database.InsertPendingEditDTO{
			StationEVA: eva,
			User:       userID,
			Amenities:  amenities,
		})
		return err
	default:
		return err
	}
}

// Handle Submit Edit
// @Summary Submit Station Edit
// @Description Administrators write directly; everyone else goes through review
// @Router /station/{eva}/edit [post]
func (app *application) handleSubmitEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.requestLogger(r)

	user, _ := contextUser(r)

	eva, err := evaFromRequest(r)
	if err != nil {
		app.badRequest(w, r, errors.New("invalid station id"))
		return
	}

	var input requestSubmitEdit
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateSubmitEdit(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	stationDAO := database.NewStationDAO(logger, app.db)

	if _, err := stationDAO.Get(ctx, eva); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			app.errorMessage(w, r, http.StatusNotFound, "Station not found", nil)
			return
		}

		app.serverError(w, r, err)
		return
	}

	amenities := input.amenities()

	if user.IsAdmin {
		if err := stationDAO.UpdateAmenities(ctx, eva, amenities); err != nil {
			app.serverError(w, r, err)
			return
		}

		response.Redirect(w, r, http.StatusSeeOther, fmt.Sprintf("/station/%d", eva))
		return
	}

	if err := storePendingEdit(ctx, database.NewPendingEditDAO(logger, app.db), eva, user.ID, amenities); err != nil {
		app.serverError(w, r, err)
		return
	}

	response.Redirect(w, r, http.StatusSeeOther, fmt.Sprintf("/station/%d?submitted=true", eva))
}
