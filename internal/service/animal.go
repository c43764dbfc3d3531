package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/repository"
)

type AnimalService struct {
	repo *repository.AnimalRepository
}

func NewAnimalService(repo *repository.AnimalRepository) *AnimalService {
	return &AnimalService{repo: repo}
}

// List returns a page of assigned or unassigned critters. Listings are
// always paged; page 0 is treated as the first page.
func (s *AnimalService) List(ctx context.Context, user string, req *model.ListAnimalsRequest) ([]model.AnimalSummary, error) {
	return s.repo.List(ctx, user, req.CritterType, req.PageOrFirst())
}

func (s *AnimalService) Get(ctx context.Context, user string, critterID uuid.UUID) (model.Record, error) {
	return s.repo.Get(ctx, user, critterID)
}

func (s *AnimalService) Upsert(ctx context.Context, user string, animals []model.Animal) (bulk.Response[model.Record], error) {
	return s.repo.Upsert(ctx, user, animals)
}

func (s *AnimalService) Delete(ctx context.Context, user string, critterIDs []uuid.UUID) error {
	return s.repo.Delete(ctx, user, critterIDs)
}

// History returns metadata changes of a critter. Page 0 returns all of them.
func (s *AnimalService) History(ctx context.Context, user string, critterID uuid.UUID, page int) ([]model.Record, error) {
	return s.repo.History(ctx, user, critterID, page)
}
