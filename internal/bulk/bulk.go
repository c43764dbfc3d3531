// Package bulk builds the partial-success report of a multi-row stored
// function call.
//
// One upsert of ten records returns ten per-row outcomes in a single result.
// Aggregate splits them into the records that were written and the rows that
// failed, so the client sees "8 succeeded, rows 3 and 7 failed" without
// row-by-row round trips.
package bulk

import (
	"encoding/json"
	"fmt"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/rowset"
)

// ErrorKey is the key a stored function sets on a row that failed.
const ErrorKey = "error"

// RowError is one failed row of a bulk call. RowNum is the row's 1-based
// position in the input, or 0 when the whole call failed.
type RowError struct {
	Row    string `json:"row"`
	Error  string `json:"error"`
	RowNum int    `json:"rownum"`
}

// Response is the report of a bulk call. It is built once and not modified
// afterwards.
type Response[T any] struct {
	Results []T        `json:"results"`
	Errors  []RowError `json:"errors"`
}

// HasErrors reports whether any row, or the whole call, failed.
func (r Response[T]) HasErrors() bool {
	return len(r.Errors) > 0
}

// Builder accumulates a Response. Build hands out copies, so a built Response
// never changes when the builder is used again.
type Builder[T any] struct {
	results []T
	errors  []RowError
}

// NewBuilder returns an empty Builder.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{}
}

// AddResult records a successful row.
func (b *Builder[T]) AddResult(v T) *Builder[T] {
	b.results = append(b.results, v)
	return b
}

// AddError records a failed row.
func (b *Builder[T]) AddError(e RowError) *Builder[T] {
	b.errors = append(b.errors, e)
	return b
}

// Build returns the Response. Both lists are non-nil so they encode as [].
func (b *Builder[T]) Build() Response[T] {
	results := make([]T, len(b.results))
	copy(results, b.results)
	errs := make([]RowError, len(b.errors))
	copy(errs, b.errors)
	return Response[T]{Results: results, Errors: errs}
}

// Failed is the response of a call that failed as a whole.
func Failed[T any](message string) Response[T] {
	return NewBuilder[T]().AddError(RowError{Row: "", Error: message, RowNum: 0}).Build()
}

// RowLabel names a failed row for the client. i is the 0-based position.
type RowLabel func(i int, row map[string]any) string

type options struct {
	label    RowLabel
	errorKey string
}

// Option configures Aggregate.
type Option func(*options)

// WithRowLabel sets how failed rows are labelled.
func WithRowLabel(fn RowLabel) Option {
	return func(o *options) {
		o.label = fn
	}
}

// WithErrorKey changes the key that marks a failed row.
func WithErrorKey(key string) Option {
	return func(o *options) {
		o.errorKey = key
	}
}

// DefaultRowLabel uses the row's "row" field: the input record the stored
// function echoes back with a failure.
func DefaultRowLabel(_ int, row map[string]any) string {
	v, ok := row["row"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Aggregate builds the Response of one bulk call.
//
// A Record or Scalar value is one aggregate outcome and always lands in
// Results. In a List every element with a non-null error key lands in Errors
// and every other element in Results, so the two lists together account for
// every input row.
func Aggregate[T any](v rowset.Value, opts ...Option) (Response[T], error) {
	o := options{label: DefaultRowLabel, errorKey: ErrorKey}
	for _, opt := range opts {
		opt(&o)
	}

	b := NewBuilder[T]()

	switch v.Shape {
	case rowset.Scalar, rowset.Record:
		if v.Empty() {
			return b.Build(), nil
		}
		var src any = v.Scalar
		if v.Shape == rowset.Record {
			src = v.Record
		}
		var rec T
		if err := rowset.Convert(src, &rec); err != nil {
			return Response[T]{}, err
		}
		b.AddResult(rec)

	case rowset.List:
		for i, row := range v.List {
			if msg, failed := rowFailure(row, o.errorKey); failed {
				b.AddError(RowError{Row: o.label(i, row), Error: msg, RowNum: i + 1})
				continue
			}
			var rec T
			if err := rowset.Convert(row, &rec); err != nil {
				return Response[T]{}, fmt.Errorf("row %d: %w", i+1, err)
			}
			b.AddResult(rec)
		}

	default:
		return Response[T]{}, fmt.Errorf("%w: unknown shape %s", rowset.ErrShapeMismatch, v.Shape)
	}

	return b.Build(), nil
}

func rowFailure(row map[string]any, key string) (string, bool) {
	v, ok := row[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return string(b), true
}

// FromOutcome aggregates the result of a bulk stored function call. A failed
// statement becomes a Failed response carrying the outcome's message; only a
// result that does not fit the List shape is returned as an error.
func FromOutcome[T any](out database.Outcome, functionName string, opts ...Option) (Response[T], error) {
	if out.IsError {
		return Failed[T](out.Error.Message), nil
	}
	v, err := rowset.Extract(out.Result, functionName, rowset.List)
	if err != nil {
		return Response[T]{}, err
	}
	return Aggregate[T](v, opts...)
}
