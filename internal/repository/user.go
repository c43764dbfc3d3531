package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/rowset"
)

type UserRepository struct {
	base
}

func NewUserRepository(gw *database.Gateway, schemas Schemas) *UserRepository {
	return &UserRepository{base: base{gw: gw, schemas: schemas}}
}

const (
	fnAddUser        = "add_user"
	fnUserRole       = "get_user_role"
	fnGetUsers       = "get_users"
	fnLinkAnimalUser = "link_animal_to_user"
)

// Add creates a user with a role. The stored function reports whether a row
// was written.
func (r *UserRepository) Add(ctx context.Context, u model.User, role string) (bool, error) {
	v, err := r.call(ctx, r.core(fnAddUser, "user", "role"), true, rowset.Scalar,
		"failed to add user", u, role)
	if err != nil {
		return false, err
	}
	return rowset.DecodeScalar[bool](v)
}

// Role returns the role of user, or "" for an unknown user.
func (r *UserRepository) Role(ctx context.Context, user string) (string, error) {
	v, err := r.call(ctx, r.core(fnUserRole, "user"), false, rowset.Scalar,
		"failed to query user role", user)
	if err != nil {
		return "", err
	}
	return rowset.DecodeScalar[string](v)
}

// List returns the users the caller may see.
func (r *UserRepository) List(ctx context.Context, user string) ([]model.User, error) {
	v, err := r.call(ctx, r.core(fnGetUsers, "user"), false, rowset.List,
		"failed to query users", user)
	if err != nil {
		return nil, err
	}
	return rowset.Decode[model.User](v)
}

// AssignCritters grants user access to critters for [start, end).
func (r *UserRepository) AssignCritters(ctx context.Context, user string, critterIDs []uuid.UUID, start, end *time.Time) ([]model.Record, error) {
	v, err := r.call(ctx, r.core(fnLinkAnimalUser, "user", "critter_ids", "valid_from", "valid_to"), true, rowset.List,
		"failed to link user to critter(s)", user, critterIDs, start, end)
	if err != nil {
		return nil, err
	}
	return rowset.Decode[model.Record](v)
}
