package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/repository"
)

type CollarService struct {
	repo *repository.CollarRepository
}

func NewCollarService(repo *repository.CollarRepository) *CollarService {
	return &CollarService{repo: repo}
}

// ListAvailable returns collars that are not attached to any animal.
func (s *CollarService) ListAvailable(ctx context.Context, q *model.ListQuery) ([]model.Collar, error) {
	p, err := listParams(q)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAvailable(ctx, p)
}

// ListAssigned returns attached collars the user has access to.
func (s *CollarService) ListAssigned(ctx context.Context, user string, q *model.ListQuery) ([]model.AssignedCollar, error) {
	p, err := listParams(q)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAssigned(ctx, user, p)
}

func (s *CollarService) Add(ctx context.Context, user string, collars []model.Collar) (bulk.Response[model.Record], error) {
	return s.repo.Add(ctx, user, collars)
}

func (s *CollarService) Update(ctx context.Context, user string, collars []model.Collar) (bulk.Response[model.Record], error) {
	return s.repo.Update(ctx, user, collars)
}

func (s *CollarService) History(ctx context.Context, user string, collarID uuid.UUID) ([]model.Record, error) {
	return s.repo.History(ctx, user, collarID)
}

// listParams parses the filter and order of a listing query. Field names
// are checked against the listing's columns later, when the query is built.
func listParams(q *model.ListQuery) (repository.ListParams, error) {
	filter, err := q.Filter()
	if err != nil {
		return repository.ListParams{}, err
	}
	order, err := q.Ordering()
	if err != nil {
		return repository.ListParams{}, err
	}
	return repository.ListParams{Filter: filter, Order: order, Page: q.PageOrFirst()}, nil
}
