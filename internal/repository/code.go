package repository

import (
	"context"

	"github.com/deppfellow/bctw-api/internal/bulk"
	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/model"
	"github.com/deppfellow/bctw-api/internal/rowset"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

// CodeRepository reads and extends the code tables behind every dropdown in
// the client. Reads of a code header go through the cache when one is set.
type CodeRepository struct {
	base
	cache CodeCache
}

func NewCodeRepository(gw *database.Gateway, schemas Schemas, cache CodeCache) *CodeRepository {
	return &CodeRepository{base: base{gw: gw, schemas: schemas}, cache: cache}
}

const (
	fnGetCode       = "get_code"
	fnAddCodeHeader = "add_code_header"
	fnAddCode       = "add_code"
	viewCodeHeader  = "code_header_v"
)

var codeHeaderColumns = sqlbuild.NewColumns("id", "type", "title", "description")

// Codes returns one page of the codes under a header.
func (r *CodeRepository) Codes(ctx context.Context, user, header string, page int) ([]model.Code, error) {
	if r.cache != nil {
		if codes, ok := r.cache.Get(ctx, user, header, page); ok {
			return codes, nil
		}
	}

	v, err := r.call(ctx, r.api(fnGetCode, "user", "code_header", "page"), false, rowset.List,
		"failed to retrieve codes", user, header, page)
	if err != nil {
		return nil, err
	}
	codes, err := rowset.Decode[model.Code](v)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Set(ctx, user, header, page, codes)
	}
	return codes, nil
}

// Headers lists code headers, optionally only the one named codeType.
func (r *CodeRepository) Headers(ctx context.Context, codeType string) ([]model.CodeHeader, error) {
	q := sqlbuild.Query{
		Base: "SELECT code_header_id AS id, code_header_name AS type, " +
			"code_header_title AS title, code_header_description AS description " +
			"FROM " + r.apiRel(viewCodeHeader),
		Columns: codeHeaderColumns,
		Alias:   "h",
	}
	if codeType != "" {
		q.Filter = &sqlbuild.Filter{
			Clauses: []sqlbuild.Clause{{Field: "type", Op: sqlbuild.OpEquals, Value: codeType}},
		}
	}

	return list[model.CodeHeader](ctx, r.base, q, "failed to retrieve code headers")
}

// AddHeaders creates code headers in one transaction.
func (r *CodeRepository) AddHeaders(ctx context.Context, user string, headers []model.CodeHeaderInput) (bulk.Response[model.Record], error) {
	out, err := r.exec(ctx, r.core(fnAddCodeHeader, "user", "headers"), true, "failed to add code headers", user, headers)
	if err != nil {
		return bulk.Response[model.Record]{}, err
	}
	return bulk.FromOutcome[model.Record](out, fnAddCodeHeader)
}

// Add creates codes in one transaction and drops the cached pages of every
// header it touched.
func (r *CodeRepository) Add(ctx context.Context, user string, codes []model.CodeInput) (bulk.Response[model.Record], error) {
	out, err := r.exec(ctx, r.core(fnAddCode, "user", "codes"), true, "failed to add codes", user, codes)
	if err != nil {
		return bulk.Response[model.Record]{}, err
	}
	resp, err := bulk.FromOutcome[model.Record](out, fnAddCode)
	if err != nil {
		return resp, err
	}

	if r.cache != nil && len(resp.Results) > 0 {
		seen := make(map[string]struct{}, len(codes))
		headers := make([]string, 0, len(codes))
		for _, c := range codes {
			if _, ok := seen[c.CodeHeader]; ok {
				continue
			}
			seen[c.CodeHeader] = struct{}{}
			headers = append(headers, c.CodeHeader)
		}
		r.cache.Invalidate(ctx, headers...)
	}
	return resp, nil
}
