package service

import (
	"context"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/repository"
)

type CodeService struct {
	repo *repository.CodeRepository
}

func NewCodeService(repo *repository.CodeRepository) *CodeService {
	return &CodeService{repo: repo}
}

func (s *CodeService) Codes(ctx context.Context, user string, req *model.ListCodesRequest) ([]model.Code, error) {
	return s.repo.Codes(ctx, user, req.CodeHeader, req.Page)
}

func (s *CodeService) Headers(ctx context.Context, codeType string) ([]model.CodeHeader, error) {
	return s.repo.Headers(ctx, codeType)
}

func (s *CodeService) AddHeaders(ctx context.Context, user string, headers []model.CodeHeaderInput) (bulk.Response[model.Record], error) {
	return s.repo.AddHeaders(ctx, user, headers)
}

func (s *CodeService) Add(ctx context.Context, user string, codes []model.CodeInput) (bulk.Response[model.Record], error) {
	return s.repo.Add(ctx, user, codes)
}
