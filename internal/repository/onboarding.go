package repository

import (
	"context"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/rowset"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

type OnboardingRepository struct {
	base
}

func NewOnboardingRepository(gw *database.Gateway, schemas Schemas) *OnboardingRepository {
	return &OnboardingRepository{base: base{gw: gw, schemas: schemas}}
}

const (
	fnSubmitOnboarding = "submit_onboarding_request"
	fnHandleOnboarding = "handle_onboarding_request"
	viewOnboarding     = "onboarding_v"
	tableOnboarding    = "onboarding"
)

var onboardingColumns = sqlbuild.NewColumns("domain", "username", "valid_from")

// Submit records a request for access from a user who has none yet.
func (r *OnboardingRepository) Submit(ctx context.Context, u model.OnboardingUser) (model.Record, error) {
	v, err := r.call(ctx, r.core(fnSubmitOnboarding, "user"), true, rowset.Record,
		"failed to submit onboarding request", u)
	if err != nil {
		return nil, err
	}
	return v.Record, nil
}

// Handle grants or denies a pending request.
func (r *OnboardingRepository) Handle(ctx context.Context, user string, req *model.HandleOnboardingRequest) (model.Record, error) {
	fn := r.core(fnHandleOnboarding, "user", "onboarding_id", "access", "role_type")
	v, err := r.call(ctx, fn, true, rowset.Record, "failed to handle onboarding request",
		user, req.OnboardingID, req.Access, req.RoleType)
	if err != nil {
		return nil, err
	}
	return v.Record, nil
}

// List returns every onboarding request.
func (r *OnboardingRepository) List(ctx context.Context) ([]model.Record, error) {
	return list[model.Record](ctx, r.base, sqlbuild.Query{Base: "SELECT * FROM " + r.apiRel(viewOnboarding)},
		"failed to retrieve onboarding requests")
}

// Status returns the latest request of an identity, or nil when it never
// submitted one.
func (r *OnboardingRepository) Status(ctx context.Context, domain, username string) (*model.OnboardingStatus, error) {
	q := sqlbuild.Query{
		Base: "SELECT access, email, valid_from, valid_to, domain, username FROM " + r.coreRel(tableOnboarding),
		Filter: &sqlbuild.Filter{
			Clauses: []sqlbuild.Clause{
				{Field: "domain", Op: sqlbuild.OpEquals, Value: domain},
				{Field: "username", Op: sqlbuild.OpEquals, Value: username},
			},
		},
		Columns: onboardingColumns,
		Alias:   "o",
		Order:   []sqlbuild.OrderBy{{Field: "valid_from", Direction: sqlbuild.Desc}},
		Single:  true,
	}

	rows, err := list[model.OnboardingStatus](ctx, r.base, q, "failed to retrieve onboarding status")
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}
