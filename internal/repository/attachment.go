package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/rowset"
)

// AttachmentRepository links devices to critters.
type AttachmentRepository struct {
	base
}

func NewAttachmentRepository(gw *database.Gateway, schemas Schemas) *AttachmentRepository {
	return &AttachmentRepository{base: base{gw: gw, schemas: schemas}}
}

const (
	fnAttach            = "link_collar_to_animal"
	fnDetach            = "unlink_collar_to_animal"
	fnUpdateDataLife    = "update_attachment_data_life"
	fnAttachmentHistory = "get_animal_collar_assignment_history"
)

// Attach starts an attachment and returns the new assignment row.
func (r *AttachmentRepository) Attach(ctx context.Context, user string, req *model.AttachDeviceRequest) (model.Record, error) {
	fn := r.core(fnAttach, "user", "collar_id", "critter_id", "attachment_start", "data_life_start", "attachment_end", "data_life_end")
	v, err := r.call(ctx, fn, true, rowset.Record, "",
		user, req.CollarID, req.CritterID, req.AttachmentStart, req.DataLifeStart, req.AttachmentEnd, req.DataLifeEnd)
	if err != nil {
		return nil, err
	}
	return v.Record, nil
}

// Remove ends an attachment.
func (r *AttachmentRepository) Remove(ctx context.Context, user string, req *model.RemoveDeviceRequest) (model.Record, error) {
	fn := r.core(fnDetach, "user", "assignment_id", "attachment_end", "data_life_end")
	v, err := r.call(ctx, fn, true, rowset.Record, "unable to remove collar",
		user, req.AssignmentID, req.AttachmentEnd, req.DataLifeEnd)
	if err != nil {
		return nil, err
	}
	return v.Record, nil
}

// UpdateDataLife moves the data life bounds of an attachment.
func (r *AttachmentRepository) UpdateDataLife(ctx context.Context, user string, req *model.ChangeDataLifeRequest) (model.Record, error) {
	fn := r.core(fnUpdateDataLife, "user", "assignment_id", "data_life_start", "data_life_end")
	v, err := r.call(ctx, fn, true, rowset.Record, "unable to change data life",
		user, req.AssignmentID, req.DataLifeStart, req.DataLifeEnd)
	if err != nil {
		return nil, err
	}
	return v.Record, nil
}

// History lists every attachment a critter has had.
func (r *AttachmentRepository) History(ctx context.Context, user string, critterID uuid.UUID) ([]model.Record, error) {
	v, err := r.call(ctx, r.core(fnAttachmentHistory, "user", "critter_id"), false, rowset.List,
		"failed to retrieve attachment history", user, critterID)
	if err != nil {
		return nil, err
	}
	return rowset.Decode[model.Record](v)
}
