// Package model holds the request and response types of the API.
//
// Request types validate themselves (validation.Validatable) and carry the
// echo binding tags; response types mirror the JSON the stored functions and
// views return.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deppfellow/bctw-api/internal/sqlbuild"
	"github.com/deppfellow/bctw-api/internal/validation"
)

var validate = validation.New()

// Record is a row whose columns are defined by a view rather than by this
// service, such as history and detail rows.
type Record = map[string]any

// OneOrMany decodes either a single JSON value or an array of them.
type OneOrMany[T any] []T

func (m *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*m = items
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}
	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return err
	}
	*m = OneOrMany[T]{item}
	return nil
}

// Batch is the body of a bulk write: one object or an array of them.
type Batch[T any] struct {
	Items OneOrMany[T] `validate:"required,min=1,dive"`
}

func (b *Batch[T]) UnmarshalJSON(data []byte) error {
	return b.Items.UnmarshalJSON(data)
}

func (b *Batch[T]) Validate() error {
	return validate.Struct(b)
}

// ListQuery carries paging, filtering and ordering of listing endpoints.
//
//	?page=2&filter=device_make:equals:Vectronic&filter=frequency:gt:150&combinator=or&order=device_id:desc
type ListQuery struct {
	Page       int      `query:"page" validate:"min=0"`
	Filters    []string `query:"filter"`
	Combinator string   `query:"combinator"`
	Order      []string `query:"order"`
}

func (q *ListQuery) Validate() error {
	return validate.Struct(q)
}

// PageOrFirst returns the requested page, defaulting to the first one.
func (q *ListQuery) PageOrFirst() int {
	if q.Page <= 0 {
		return 1
	}
	return q.Page
}

// Filter parses the filter parameters. Each has the form field:op:value;
// values of the "in" operator are separated by "|". The literal null
// matches NULL. A nil Filter is returned when no filter was given.
func (q *ListQuery) Filter() (*sqlbuild.Filter, error) {
	if len(q.Filters) == 0 {
		return nil, nil
	}

	combinator, err := sqlbuild.ParseCombinator(q.Combinator)
	if err != nil {
		return nil, err
	}

	f := &sqlbuild.Filter{Combinator: combinator}
	for _, raw := range q.Filters {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: %q is not field:operator:value", sqlbuild.ErrInvalidFilter, raw)
		}
		op, err := sqlbuild.ParseOp(parts[1])
		if err != nil {
			return nil, err
		}
		f.Clauses = append(f.Clauses, sqlbuild.Clause{
			Field: parts[0],
			Op:    op,
			Value: clauseValue(op, parts[2]),
		})
	}
	return f, nil
}

func clauseValue(op sqlbuild.Op, raw string) any {
	if raw == "null" {
		return nil
	}
	if op == sqlbuild.OpInSet {
		return strings.Split(raw, "|")
	}
	return raw
}

// Ordering parses the order parameters, each field or field:direction.
func (q *ListQuery) Ordering() ([]sqlbuild.OrderBy, error) {
	var order []sqlbuild.OrderBy
	for _, raw := range q.Order {
		field, dir, _ := strings.Cut(raw, ":")
		direction, err := sqlbuild.ParseDirection(dir)
		if err != nil {
			return nil, err
		}
		order = append(order, sqlbuild.OrderBy{Field: field, Direction: direction})
	}
	return order, nil
}

// EmptyRequest is bound by endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

func customErrors(errs ...validation.CustomValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return validation.CustomValidationErrors(errs)
}
