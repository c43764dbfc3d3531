package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/rowset"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

type AnimalRepository struct {
	base
}

func NewAnimalRepository(gw *database.Gateway, schemas Schemas) *AnimalRepository {
	return &AnimalRepository{base: base{gw: gw, schemas: schemas}}
}

const (
	fnUpsertAnimal   = "upsert_animal"
	fnDeleteAnimal   = "delete_animal"
	fnAnimalHistory  = "get_animal_history"
	fnAnimalAccess   = "get_user_animal_permission"
	fnCritterAccess  = "get_user_critter_access_array"
	viewAttached     = "currently_attached_collars_v"
	viewUnattached   = "currently_unattached_critters_v"
	viewAnimal       = "animal_v"
	summaryColumns   = "a.critter_id, a.animal_id, a.species, a.wlh_id, a.animal_status, a.population_unit,"
	unattachedColumn = "cuc.critter_id, cuc.animal_id, cuc.species, cuc.wlh_id, cuc.animal_status, cuc.population_unit,"
)

// Upsert inserts or updates animals in one transaction and reports each
// row's outcome.
func (r *AnimalRepository) Upsert(ctx context.Context, user string, animals []model.Animal) (bulk.Response[model.Record], error) {
	out, err := r.exec(ctx, r.core(fnUpsertAnimal, "user", "animals"), true, "", user, animals)
	if err != nil {
		return bulk.Response[model.Record]{}, err
	}
	return bulk.FromOutcome[model.Record](out, fnUpsertAnimal)
}

// Delete removes critters the user may edit.
func (r *AnimalRepository) Delete(ctx context.Context, user string, critterIDs []uuid.UUID) error {
	out, err := r.exec(ctx, r.core(fnDeleteAnimal, "user", "critter_ids"), true, "", user, critterIDs)
	if err != nil {
		return err
	}
	return out.Err()
}

// List returns one page of the animals the user has access to, either those
// with a device attached or those without.
func (r *AnimalRepository) List(ctx context.Context, user string, kind model.CritterFetchType, page int) ([]model.AnimalSummary, error) {
	q := sqlbuild.Query{Page: page}
	var err error
	switch kind {
	case model.CritterAssigned:
		q.Base, err = r.assignedSQL(user, nil, false)
		q.Alias = "c"
		q.Columns = assignedOrderColumns
		q.Order = []sqlbuild.OrderBy{{Field: "critter_id"}, {Field: "assignment_id"}}
	case model.CritterUnassigned:
		q.Base, err = r.unassignedSQL(user, nil, false)
		q.Alias = "cuc"
		q.Columns = unassignedOrderColumns
		q.Order = []sqlbuild.OrderBy{{Field: "critter_id"}}
	default:
		return nil, fmt.Errorf("%w: critter type %q", sqlbuild.ErrInvalidFilter, kind)
	}
	if err != nil {
		return nil, err
	}

	return list[model.AnimalSummary](ctx, r.base, q, "failed to retrieve critters")
}

// Pages of critters are ordered by key so that consecutive pages never
// overlap. A critter can carry several devices, hence assignment_id.
var (
	assignedOrderColumns   = sqlbuild.NewColumns("critter_id", "assignment_id")
	unassignedOrderColumns = sqlbuild.NewColumns("critter_id")
)

// Get returns every column of one critter, with its current attachment when
// it has one. It returns pgx.ErrNoRows when the critter does not exist or
// the user has no access to it.
func (r *AnimalRepository) Get(ctx context.Context, user string, critterID uuid.UUID) (model.Record, error) {
	id, err := sqlbuild.Encode(critterID)
	if err != nil {
		return nil, err
	}

	attached, err := r.query(ctx, "SELECT 1 FROM "+r.apiRel(viewAttached)+" WHERE critter_id = "+id, "")
	if err != nil {
		return nil, err
	}

	var sql string
	if attached.Len() > 0 {
		sql, err = r.assignedSQL(user, &critterID, true)
	} else {
		sql, err = r.unassignedSQL(user, &critterID, true)
	}
	if err != nil {
		return nil, err
	}

	rows, err := list[model.Record](ctx, r.base, sqlbuild.Query{Base: sql, Single: true}, "failed to retrieve critter")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pgx.ErrNoRows
	}
	return rows[0], nil
}

// History returns one page of the metadata changes made to a critter.
func (r *AnimalRepository) History(ctx context.Context, user string, critterID uuid.UUID, page int) ([]model.Record, error) {
	fn := r.api(fnAnimalHistory, "user", "critter_id")
	call, err := fn.Call(user, critterID)
	if err != nil {
		return nil, err
	}
	sql, err := sqlbuild.Assemble(sqlbuild.Query{Base: call, Page: page})
	if err != nil {
		return nil, err
	}

	out := r.gw.Execute(ctx, sqlbuild.Read(sql), "failed to retrieve critter history")
	v, err := rowset.FromOutcome(out, fn.Name, rowset.List)
	if err != nil {
		return nil, err
	}
	return rowset.Decode[model.Record](v)
}

func (r *AnimalRepository) accessExprs(user, critterColumn string) (permission, access sqlbuild.Raw, err error) {
	permission, err = r.core(fnAnimalAccess).Expr(user, sqlbuild.Raw(critterColumn))
	if err != nil {
		return "", "", err
	}
	access, err = r.core(fnCritterAccess).Expr(user)
	return permission, access, err
}

func (r *AnimalRepository) assignedSQL(user string, critterID *uuid.UUID, allColumns bool) (string, error) {
	permission, access, err := r.accessExprs(user, "a.critter_id")
	if err != nil {
		return "", err
	}
	columns := summaryColumns
	if allColumns {
		columns = "a.*,"
	}

	sql := "SELECT c.assignment_id, c.device_id, c.collar_id, " +
		"c.attachment_start, c.data_life_start, c.data_life_end, c.attachment_end, " +
		columns + " " + string(permission) + " AS permission_type " +
		"FROM " + r.apiRel(viewAttached) + " c " +
		"JOIN " + r.apiRel(viewAnimal) + " a ON c.critter_id = a.critter_id " +
		"WHERE a.critter_id = ANY(" + string(access) + ")"
	return withCritter(sql, "a", critterID)
}

func (r *AnimalRepository) unassignedSQL(user string, critterID *uuid.UUID, allColumns bool) (string, error) {
	permission, access, err := r.accessExprs(user, "cuc.critter_id")
	if err != nil {
		return "", err
	}
	columns := unattachedColumn
	if allColumns {
		columns = "cuc.*,"
	}

	sql := "SELECT " + columns + " " + string(permission) + " AS permission_type " +
		"FROM " + r.apiRel(viewUnattached) + " cuc " +
		"WHERE cuc.critter_id = ANY(" + string(access) + ")"
	return withCritter(sql, "cuc", critterID)
}

func withCritter(sql, alias string, critterID *uuid.UUID) (string, error) {
	if critterID == nil {
		return sql, nil
	}
	id, err := sqlbuild.Encode(*critterID)
	if err != nil {
		return "", err
	}
	return sql + " AND " + alias + ".critter_id = " + id, nil
}
