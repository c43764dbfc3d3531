package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TelemetryAlert is an alert raised for a user by the telemetry pipeline,
// such as a mortality signal from a collar.
type TelemetryAlert struct {
	AlertID     int        `json:"alert_id" validate:"required"`
	AlertType   *string    `json:"alert_type,omitempty"`
	DeviceID    *int       `json:"device_id,omitempty"`
	DeviceMake  *string    `json:"device_make,omitempty"`
	CritterID   *string    `json:"critter_id,omitempty"`
	AnimalID    *string    `json:"animal_id,omitempty"`
	WLHID       *string    `json:"wlh_id,omitempty"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidTo     *time.Time `json:"valid_to,omitempty"`
	SnoozedTo   *time.Time `json:"snoozed_to,omitempty"`
	SnoozeCount *int       `json:"snooze_count,omitempty" validate:"omitempty,min=0"`
}

// MortalityAlertEvent is the payload published on the alert channel when a
// collar reports a mortality, one per user to notify.
type MortalityAlertEvent struct {
	AnimalID  string          `json:"animal_id"`
	WLHID     string          `json:"wlh_id"`
	Species   string          `json:"species"`
	DeviceID  int             `json:"device_id"`
	Frequency decimal.Decimal `json:"frequency"`
	DateTime  string          `json:"date_time"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	FirstName string          `json:"firstname"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	UserID    int             `json:"user_id"`
}

// TestNotificationRequest is POST /alerts/test-notification.
type TestNotificationRequest struct {
	Phone string `query:"phone" validate:"required,min=10"`
	Email string `query:"email" validate:"required,email"`
}

func (r *TestNotificationRequest) Validate() error {
	return validate.Struct(r)
}
