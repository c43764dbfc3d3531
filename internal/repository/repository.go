// Package repository handles all interactions with the database.
//
// Each repository turns a service call into stored function calls or listing
// queries built with sqlbuild, runs them through the database gateway and
// unwraps the result with rowset or bulk. No repository holds a connection;
// the gateway acquires and releases one per statement.
package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/rowset"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

// Schemas names the schemas the stored functions live in.
type Schemas struct {
	// Core holds tables, views and write functions.
	Core string

	// API holds read-only views and read functions.
	API string
}

type base struct {
	gw      *database.Gateway
	schemas Schemas
}

func (b base) core(name string, params ...string) sqlbuild.Function {
	return sqlbuild.Function{Schema: b.schemas.Core, Name: name, Params: params}
}

func (b base) api(name string, params ...string) sqlbuild.Function {
	return sqlbuild.Function{Schema: b.schemas.API, Name: name, Params: params}
}

// coreRel and apiRel qualify a table or view name.
func (b base) coreRel(name string) string {
	return b.schemas.Core + "." + name
}

func (b base) apiRel(name string) string {
	return b.schemas.API + "." + name
}

// call runs fn and extracts its result in the given shape.
func (b base) call(ctx context.Context, fn sqlbuild.Function, write bool, shape rowset.Shape, contextMessage string, args ...any) (rowset.Value, error) {
	out, err := b.exec(ctx, fn, write, contextMessage, args...)
	if err != nil {
		return rowset.Value{}, err
	}
	return rowset.FromOutcome(out, fn.Name, shape)
}

// exec runs fn and returns the raw outcome, for callers that aggregate it
// themselves.
func (b base) exec(ctx context.Context, fn sqlbuild.Function, write bool, contextMessage string, args ...any) (database.Outcome, error) {
	var (
		stmt sqlbuild.Statement
		err  error
	)
	if write {
		stmt, err = fn.Write(args...)
	} else {
		stmt, err = fn.Read(args...)
	}
	if err != nil {
		return database.Outcome{}, fmt.Errorf("building %s call: %w", fn.Name, err)
	}
	return b.gw.Execute(ctx, stmt, contextMessage), nil
}

// query runs a plain read and returns its rows.
func (b base) query(ctx context.Context, sql, contextMessage string) (*database.ResultSet, error) {
	out := b.gw.Execute(ctx, sqlbuild.Read(sql), contextMessage)
	if err := out.Err(); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// list assembles q, runs it and decodes every row into T.
func list[T any](ctx context.Context, b base, q sqlbuild.Query, contextMessage string) ([]T, error) {
	sql, err := sqlbuild.Assemble(q)
	if err != nil {
		return nil, err
	}
	rs, err := b.query(ctx, sql, contextMessage)
	if err != nil {
		return nil, err
	}
	return rowset.DecodeRows[T](rs)
}

// ListParams narrows, orders and pages a listing.
type ListParams struct {
	Filter *sqlbuild.Filter
	Order  []sqlbuild.OrderBy
	Page   int
}
