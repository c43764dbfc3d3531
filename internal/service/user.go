package service

import (
	"context"

	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/repository"
)

type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Add(ctx context.Context, req *model.AddUserRequest) (bool, error) {
	return s.repo.Add(ctx, req.User, req.Role)
}

func (s *UserService) Role(ctx context.Context, user string) (string, error) {
	return s.repo.Role(ctx, user)
}

func (s *UserService) List(ctx context.Context, user string) ([]model.User, error) {
	return s.repo.List(ctx, user)
}

func (s *UserService) AssignCritters(ctx context.Context, user string, req *model.AssignCrittersRequest) ([]model.Record, error) {
	return s.repo.AssignCritters(ctx, user, req.AnimalIDs, req.Start, req.End)
}
