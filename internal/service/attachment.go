package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/repository"
)

// AttachmentService links collars to critters. Overlap and permission rules
// are enforced by the stored functions.
type AttachmentService struct {
	repo *repository.AttachmentRepository
}

func NewAttachmentService(repo *repository.AttachmentRepository) *AttachmentService {
	return &AttachmentService{repo: repo}
}

func (s *AttachmentService) Attach(ctx context.Context, user string, req *model.AttachDeviceRequest) (model.Record, error) {
	return s.repo.Attach(ctx, user, req)
}

func (s *AttachmentService) Remove(ctx context.Context, user string, req *model.RemoveDeviceRequest) (model.Record, error) {
	return s.repo.Remove(ctx, user, req)
}

func (s *AttachmentService) UpdateDataLife(ctx context.Context, user string, req *model.ChangeDataLifeRequest) (model.Record, error) {
	return s.repo.UpdateDataLife(ctx, user, req)
}

func (s *AttachmentService) History(ctx context.Context, user string, critterID uuid.UUID) ([]model.Record, error) {
	return s.repo.History(ctx, user, critterID)
}
