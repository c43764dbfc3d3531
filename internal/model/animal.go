package model

import (
	"time"

	"github.com/google/uuid"
)

// CritterFetchType selects which animals a listing returns.
type CritterFetchType string

const (
	CritterAssigned   CritterFetchType = "assigned"
	CritterUnassigned CritterFetchType = "unassigned"
)

// Animal is a critter as written by upsert_animal. Unset fields are left out
// of the JSON so the stored function keeps their current values.
type Animal struct {
	CritterID                    *uuid.UUID `json:"critter_id,omitempty"`
	CritterTransactionID         *uuid.UUID `json:"critter_transaction_id,omitempty"`
	AnimalID                     *string    `json:"animal_id,omitempty"`
	AnimalStatus                 *string    `json:"animal_status,omitempty"`
	AssociatedAnimalID           *string    `json:"associated_animal_id,omitempty"`
	AssociatedAnimalRelationship *string    `json:"associated_animal_relationship,omitempty"`
	CaptureComment               *string    `json:"capture_comment,omitempty"`
	CaptureDate                  *time.Time `json:"capture_date,omitempty"`
	CaptureLatitude              *float64   `json:"capture_latitude,omitempty" validate:"omitempty,latitude"`
	CaptureLongitude             *float64   `json:"capture_longitude,omitempty" validate:"omitempty,longitude"`
	CaptureUTMEasting            *float64   `json:"capture_utm_easting,omitempty"`
	CaptureUTMNorthing           *float64   `json:"capture_utm_northing,omitempty"`
	CaptureUTMZone               *int       `json:"capture_utm_zone,omitempty"`
	AnimalColouration            *string    `json:"animal_colouration,omitempty"`
	EarTagID                     *string    `json:"ear_tag_id,omitempty"`
	EarTagLeftColour             *string    `json:"ear_tag_left_colour,omitempty"`
	EarTagRightColour            *string    `json:"ear_tag_right_colour,omitempty"`
	EstimatedAge                 *float64   `json:"estimated_age,omitempty"`
	JuvenileAtHeel               *string    `json:"juvenile_at_heel,omitempty"`
	LifeStage                    *string    `json:"life_stage,omitempty"`
	MapColour                    *string    `json:"map_colour,omitempty"`
	MortalityComment             *string    `json:"mortality_comment,omitempty"`
	MortalityDate                *time.Time `json:"mortality_date,omitempty"`
	MortalityLatitude            *float64   `json:"mortality_latitude,omitempty" validate:"omitempty,latitude"`
	MortalityLongitude           *float64   `json:"mortality_longitude,omitempty" validate:"omitempty,longitude"`
	MortalityUTMEasting          *float64   `json:"mortality_utm_easting,omitempty"`
	MortalityUTMNorthing         *float64   `json:"mortality_utm_northing,omitempty"`
	MortalityUTMZone             *int       `json:"mortality_utm_zone,omitempty"`
	ProbableCauseOfDeath         *string    `json:"probable_cause_of_death,omitempty"`
	UltimateCauseOfDeath         *string    `json:"ultimate_cause_of_death,omitempty"`
	PopulationUnit               *string    `json:"population_unit,omitempty"`
	Recapture                    *bool      `json:"recapture,omitempty"`
	Region                       *string    `json:"region,omitempty"`
	ReleaseComment               *string    `json:"release_comment,omitempty"`
	ReleaseDate                  *time.Time `json:"release_date,omitempty"`
	ReleaseLatitude              *float64   `json:"release_latitude,omitempty" validate:"omitempty,latitude"`
	ReleaseLongitude             *float64   `json:"release_longitude,omitempty" validate:"omitempty,longitude"`
	ReleaseUTMEasting            *float64   `json:"release_utm_easting,omitempty"`
	ReleaseUTMNorthing           *float64   `json:"release_utm_northing,omitempty"`
	ReleaseUTMZone               *int       `json:"release_utm_zone,omitempty"`
	Sex                          *string    `json:"sex,omitempty"`
	Species                      *string    `json:"species,omitempty"`
	Translocation                *bool      `json:"translocation,omitempty"`
	WLHID                        *string    `json:"wlh_id,omitempty"`
	UserComment                  *string    `json:"user_comment,omitempty"`
}

// AnimalSummary is one row of the assigned/unassigned animal listings.
// Attachment fields are empty for unassigned animals.
type AnimalSummary struct {
	AssignmentID    *uuid.UUID `json:"assignment_id,omitempty"`
	DeviceID        *int       `json:"device_id,omitempty"`
	CollarID        *uuid.UUID `json:"collar_id,omitempty"`
	AttachmentStart *time.Time `json:"attachment_start,omitempty"`
	DataLifeStart   *time.Time `json:"data_life_start,omitempty"`
	DataLifeEnd     *time.Time `json:"data_life_end,omitempty"`
	AttachmentEnd   *time.Time `json:"attachment_end,omitempty"`

	CritterID      uuid.UUID `json:"critter_id"`
	AnimalID       *string   `json:"animal_id"`
	Species        *string   `json:"species"`
	WLHID          *string   `json:"wlh_id"`
	AnimalStatus   *string   `json:"animal_status"`
	PopulationUnit *string   `json:"population_unit"`
	PermissionType *string   `json:"permission_type"`
}

// ListAnimalsRequest is GET /animals.
type ListAnimalsRequest struct {
	ListQuery
	CritterType CritterFetchType `query:"critterType" validate:"required,oneof=assigned unassigned"`
}

func (r *ListAnimalsRequest) Validate() error {
	return validate.Struct(r)
}

// AnimalIDRequest addresses one critter by id.
type AnimalIDRequest struct {
	CritterID string `param:"critter_id" validate:"required,uuid"`
}

func (r *AnimalIDRequest) Validate() error {
	return validate.Struct(r)
}

// ID returns the parsed critter id. Call after Validate.
func (r *AnimalIDRequest) ID() uuid.UUID {
	return uuid.MustParse(r.CritterID)
}

// AnimalHistoryRequest is GET /animals/:critter_id/history.
type AnimalHistoryRequest struct {
	AnimalIDRequest
	Page int `query:"page" validate:"min=0"`
}

func (r *AnimalHistoryRequest) Validate() error {
	return validate.Struct(r)
}

// DeleteAnimalsRequest is DELETE /animals.
type DeleteAnimalsRequest struct {
	CritterIDs OneOrMany[uuid.UUID] `json:"critter_ids" validate:"required,min=1"`
}

func (r *DeleteAnimalsRequest) Validate() error {
	return validate.Struct(r)
}
