package main

import "github.com/protomem/night-stations/internal/validator"

// Validation rules

const (
	_maxNotesLength        = 2000
	_maxOpeningHoursLength = 500
	_maxInfoLength         = 5000
)

func validateSubmitEdit(v *validator.Validator, input requestSubmitEdit) {
	validateNotes(v, "sleepNotes", input.SleepNotes)
	validateNotes(v, "outletNotes", input.OutletNotes)
	validateNotes(v, "toiletNotes", input.ToiletNotes)
	validateNotes(v, "wifiNotes", input.WifiNotes)

	if input.OpeningHours != nil {
		v.CheckField(
			validator.MaxRunes(*input.OpeningHours, _maxOpeningHoursLength),
			"openingHours",
			"must be shorter",
		)
	}
	if input.AdditionalInfo != nil {
		v.CheckField(
			validator.MaxRunes(*input.AdditionalInfo, _maxInfoLength),
			"additionalInfo",
			"must be shorter",
		)
	}
}

func validateNotes(v *validator.Validator, field string, notes *string) {
	if notes == nil {
		return
	}
	v.CheckField(validator.MaxRunes(*notes, _maxNotesLength), field, "must be shorter")
}
