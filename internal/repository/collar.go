package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/rowset"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

type CollarRepository struct {
	base
}

func NewCollarRepository(gw *database.Gateway, schemas Schemas) *CollarRepository {
	return &CollarRepository{base: base{gw: gw, schemas: schemas}}
}

const (
	fnAddCollar     = "add_collar"
	fnUpdateCollar  = "update_collar"
	fnCollarHistory = "get_collar_history"
	fnCollarAccess  = "get_user_collar_access"
	viewCollar      = "collar_v"
	viewAssignment  = "collar_animal_assignment_v"
	collarAlias     = "c"
)

// CollarColumns are the fields a collar listing may be filtered or ordered by.
var CollarColumns = sqlbuild.NewColumns(
	"collar_id", "device_id", "device_make", "device_model", "device_type",
	"device_status", "device_deployment_status", "frequency", "frequency_unit",
	"satellite_network", "retrieved", "retrieval_date", "malfunction_date",
	"purchase_year", "camera_device_id", "dropoff_device_id", "valid_from", "valid_to",
)

var defaultCollarOrder = []sqlbuild.OrderBy{{Field: "device_id", Direction: sqlbuild.Asc}}

// Add creates devices in one transaction.
func (r *CollarRepository) Add(ctx context.Context, user string, collars []model.Collar) (bulk.Response[model.Record], error) {
	out, err := r.exec(ctx, r.core(fnAddCollar, "user", "collars"), true, "failed to add collar(s)", user, collars)
	if err != nil {
		return bulk.Response[model.Record]{}, err
	}
	return bulk.FromOutcome[model.Record](out, fnAddCollar)
}

// Update modifies devices in one transaction. Each collar must carry its
// collar_id.
func (r *CollarRepository) Update(ctx context.Context, user string, collars []model.Collar) (bulk.Response[model.Record], error) {
	out, err := r.exec(ctx, r.core(fnUpdateCollar, "user", "collars"), true, "failed to update collar", user, collars)
	if err != nil {
		return bulk.Response[model.Record]{}, err
	}
	return bulk.FromOutcome[model.Record](out, fnUpdateCollar)
}

// ListAvailable returns devices with no current attachment.
func (r *CollarRepository) ListAvailable(ctx context.Context, p ListParams) ([]model.Collar, error) {
	sql := "SELECT c.* FROM " + r.apiRel(viewCollar) + " c " +
		"WHERE c.collar_id NOT IN (" +
		"SELECT caa.collar_id FROM " + r.apiRel(viewAssignment) + " caa " +
		"WHERE caa.valid_to >= now() OR caa.valid_to IS NULL)"

	return list[model.Collar](ctx, r.base, r.listing(sql, p), "failed to retrieve available collars")
}

// ListAssigned returns attached devices the user has access to, with the
// animal each is attached to.
func (r *CollarRepository) ListAssigned(ctx context.Context, user string, p ListParams) ([]model.AssignedCollar, error) {
	access, err := r.core(fnCollarAccess).Expr(user)
	if err != nil {
		return nil, err
	}

	sql := "SELECT caa.animal_id, c.* FROM " + r.apiRel(viewCollar) + " c " +
		"INNER JOIN " + r.apiRel(viewAssignment) + " caa ON c.collar_id = caa.collar_id " +
		"WHERE (caa.valid_to >= now() OR caa.valid_to IS NULL) " +
		"AND c.collar_id = ANY((" + string(access) + ")::uuid[])"

	return list[model.AssignedCollar](ctx, r.base, r.listing(sql, p), "failed to retrieve assigned collars")
}

// History returns every version of one device.
func (r *CollarRepository) History(ctx context.Context, user string, collarID uuid.UUID) ([]model.Record, error) {
	v, err := r.call(ctx, r.core(fnCollarHistory, "user", "collar_id"), false, rowset.List,
		"failed to retrieve collar history", user, collarID)
	if err != nil {
		return nil, err
	}
	return rowset.Decode[model.Record](v)
}

func (r *CollarRepository) listing(sql string, p ListParams) sqlbuild.Query {
	order := p.Order
	if len(order) == 0 {
		order = defaultCollarOrder
	}
	return sqlbuild.Query{
		Base:    sql,
		Filter:  p.Filter,
		Columns: CollarColumns,
		Alias:   collarAlias,
		Order:   order,
		Page:    p.Page,
	}
}
