package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Collar is a telemetry device. Frequencies are exact decimals (MHz) so
// 150.050 is not written back as 150.04999.
type Collar struct {
	CollarID               *uuid.UUID       `json:"collar_id,omitempty"`
	CollarTransactionID    *uuid.UUID       `json:"collar_transaction_id,omitempty"`
	CameraDeviceID         *int             `json:"camera_device_id,omitempty"`
	DeviceID               *int             `json:"device_id,omitempty" validate:"omitempty,min=1"`
	DeviceDeploymentStatus *string          `json:"device_deployment_status,omitempty"`
	DeviceMake             *string          `json:"device_make,omitempty"`
	DeviceStatus           *string          `json:"device_status,omitempty"`
	DeviceMalfunctionType  *string          `json:"device_malfunction_type,omitempty"`
	DeviceModel            *string          `json:"device_model,omitempty"`
	DeviceType             *string          `json:"device_type,omitempty"`
	DropoffDeviceID        *int             `json:"dropoff_device_id,omitempty"`
	DropoffFrequency       *decimal.Decimal `json:"dropoff_frequency,omitempty"`
	DropoffFrequencyUnit   *string          `json:"dropoff_frequency_unit,omitempty"`
	Frequency              *decimal.Decimal `json:"frequency,omitempty"`
	FrequencyUnit          *string          `json:"frequency_unit,omitempty"`
	FixRate                *float64         `json:"fix_rate,omitempty"`
	FixSuccessRate         *float64         `json:"fix_success_rate,omitempty"`
	MalfunctionDate        *time.Time       `json:"malfunction_date,omitempty"`
	PurchaseComment        *string          `json:"purchase_comment,omitempty"`
	PurchaseMonth          *int             `json:"purchase_month,omitempty" validate:"omitempty,min=1,max=12"`
	PurchaseYear           *int             `json:"purchase_year,omitempty"`
	RetrievalDate          *time.Time       `json:"retrieval_date,omitempty"`
	Retrieved              *bool            `json:"retrieved,omitempty"`
	SatelliteNetwork       *string          `json:"satellite_network,omitempty"`
	UserComment            *string          `json:"user_comment,omitempty"`
	VendorActivationStatus *bool            `json:"vendor_activation_status,omitempty"`
	ValidFrom              *time.Time       `json:"valid_from,omitempty"`
	ValidTo                *time.Time       `json:"valid_to,omitempty"`
}

// AssignedCollar is a collar currently attached to an animal.
type AssignedCollar struct {
	Collar
	AnimalID *string `json:"animal_id"`
}

// CollarIDRequest addresses one collar by id.
type CollarIDRequest struct {
	CollarID string `param:"collar_id" validate:"required,uuid"`
}

func (r *CollarIDRequest) Validate() error {
	return validate.Struct(r)
}

// ID returns the parsed collar id. Call after Validate.
func (r *CollarIDRequest) ID() uuid.UUID {
	return uuid.MustParse(r.CollarID)
}
