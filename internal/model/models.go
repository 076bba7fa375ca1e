package model

import "time"

type ID = uint

// Station is keyed by its EVA number, which is assigned externally and
// never generated by this application.
type Station struct {
	EVA       int64     `json:"eva" db:"eva"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	StationIDGer *int64  `json:"stationIdGer" db:"station_id_ger"`
	Name         string  `json:"name" db:"name"`
	City         *string `json:"city" db:"city"`
	Country      string  `json:"country" db:"country"`
	Category     *int    `json:"category" db:"category"`

	Amenities

	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Amenities holds the crowd-editable fields shared between a station row
// and a pending edit. Booleans are tri-state: nil means unknown.
type Amenities struct {
	HasWarmSleep *bool   `json:"hasWarmSleep" db:"has_warm_sleep"`
	SleepNotes   *string `json:"sleepNotes" db:"sleep_notes"`

	HasOutlets  *bool   `json:"hasOutlets" db:"has_outlets"`
	OutletNotes *string `json:"outletNotes" db:"outlet_notes"`

	HasToilets         *bool   `json:"hasToilets" db:"has_toilets"`
	ToiletNotes        *string `json:"toiletNotes" db:"toilet_notes"`
	ToiletsOpenAtNight *bool   `json:"toiletsOpenAtNight" db:"toilets_open_at_night"`

	IsOpen24h    *bool   `json:"isOpen24h" db:"is_open_24h"`
	OpeningHours *string `json:"openingHours" db:"opening_hours"`

	HasWifi      *bool   `json:"hasWifi" db:"has_wifi"`
	WifiHasLimit *bool   `json:"wifiHasLimit" db:"wifi_has_limit"`
	WifiNotes    *string `json:"wifiNotes" db:"wifi_notes"`

	AdditionalInfo *string `json:"additionalInfo" db:"additional_info"`
}

// User is created on first OAuth login. The id is the identity
// provider's subject identifier.
type User struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Email   string  `json:"email" db:"email"`
	Name    string  `json:"name" db:"name"`
	Picture *string `json:"picture,omitempty" db:"picture"`
	IsAdmin bool    `json:"isAdmin" db:"is_admin"`
}

type Session struct {
	Token     string    `json:"-" db:"id"`
	User      string    `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type EditStatus string

const (
	EditStatusPending  EditStatus = "pending"
	EditStatusApproved EditStatus = "approved"
	EditStatusRejected EditStatus = "rejected"
)

type PendingEdit struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	StationEVA int64  `json:"stationEva" db:"station_eva"`
	User       string `json:"userId" db:"user_id"`

	Amenities

	Status     EditStatus `json:"status" db:"status"`
	ReviewedAt *time.Time `json:"reviewedAt" db:"reviewed_at"`
	ReviewedBy *string    `json:"reviewedBy" db:"reviewed_by"`
}
