package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/validation"
)

// AttachDeviceRequest attaches a collar to a critter.
//
// The attachment bounds are when the device was physically on the animal;
// the data life bounds are the part of that window whose telemetry is
// considered valid.
type AttachDeviceRequest struct {
	CollarID        uuid.UUID  `json:"collar_id" validate:"required"`
	CritterID       uuid.UUID  `json:"critter_id" validate:"required"`
	AttachmentStart *time.Time `json:"attachment_start" validate:"required"`
	DataLifeStart   *time.Time `json:"data_life_start"`
	AttachmentEnd   *time.Time `json:"attachment_end"`
	DataLifeEnd     *time.Time `json:"data_life_end"`
}

func (r *AttachDeviceRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	var errs []validation.CustomValidationError
	if r.AttachmentEnd != nil && r.AttachmentEnd.Before(*r.AttachmentStart) {
		errs = append(errs, validation.CustomValidationError{Field: "attachment_end", Message: "must not be before attachment_start"})
	}
	if r.DataLifeStart != nil && r.DataLifeStart.Before(*r.AttachmentStart) {
		errs = append(errs, validation.CustomValidationError{Field: "data_life_start", Message: "must not be before attachment_start"})
	}
	if r.DataLifeEnd != nil && r.AttachmentEnd != nil && r.DataLifeEnd.After(*r.AttachmentEnd) {
		errs = append(errs, validation.CustomValidationError{Field: "data_life_end", Message: "must not be after attachment_end"})
	}
	return customErrors(errs...)
}

// RemoveDeviceRequest ends an attachment.
type RemoveDeviceRequest struct {
	AssignmentID  uuid.UUID  `json:"assignment_id" validate:"required"`
	AttachmentEnd *time.Time `json:"attachment_end" validate:"required"`
	DataLifeEnd   *time.Time `json:"data_life_end"`
}

func (r *RemoveDeviceRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.DataLifeEnd != nil && r.DataLifeEnd.After(*r.AttachmentEnd) {
		return customErrors(validation.CustomValidationError{Field: "data_life_end", Message: "must not be after attachment_end"})
	}
	return nil
}

// ChangeDataLifeRequest moves the data life bounds of an attachment. Whether
// the change is allowed (admins only after the first edit, not past the
// attachment bounds) is decided by update_attachment_data_life.
type ChangeDataLifeRequest struct {
	AssignmentID  uuid.UUID  `json:"assignment_id" validate:"required"`
	DataLifeStart *time.Time `json:"data_life_start"`
	DataLifeEnd   *time.Time `json:"data_life_end"`
}

func (r *ChangeDataLifeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.DataLifeStart != nil && r.DataLifeEnd != nil && r.DataLifeEnd.Before(*r.DataLifeStart) {
		return customErrors(validation.CustomValidationError{Field: "data_life_end", Message: "must not be before data_life_start"})
	}
	return nil
}

// AttachmentHistoryRequest is GET /animals/:critter_id/attachments.
type AttachmentHistoryRequest = AnimalIDRequest
