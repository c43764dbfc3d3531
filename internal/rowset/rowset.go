// Package rowset unwraps the single-column return convention of the stored
// functions.
//
// A stored function's result always has exactly one column named after the
// function. That column holds a scalar, a JSON record, or a JSON array of
// records (or one record per row for set-returning functions). The caller
// declares which Shape it expects and Extract checks the result against it
// instead of guessing.
package rowset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/deppfellow/bctw-api/internal/database"
)

// Shape is the caller-declared form of a function's result.
type Shape int

const (
	// Scalar is a single value from the first row.
	Scalar Shape = iota
	// Record is a single JSON object from the first row.
	Record
	// List is a list of JSON objects: either one array in a single row or
	// one object per row.
	List
)

func (s Shape) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case Record:
		return "record"
	case List:
		return "list"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ErrShapeMismatch is matched by every *ShapeMismatchError.
var ErrShapeMismatch = errors.New("result shape mismatch")

// ShapeMismatchError reports a result set that does not follow the
// single-named-column convention, or whose value does not fit the declared
// Shape. It means the caller and the stored function disagree about their
// contract; it is never caused by user input.
type ShapeMismatchError struct {
	Function string
	Want     Shape
	Columns  []string
	Reason   string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("result of %s does not match %s shape: %s (columns: %s)",
		e.Function, e.Want, e.Reason, strings.Join(e.Columns, ", "))
}

// Is makes errors.Is(err, ErrShapeMismatch) work.
func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// Value is the extracted result. Exactly one of Scalar, Record, List is
// meaningful, per Shape. A Record is nil when the function returned no row
// or NULL.
type Value struct {
	Shape  Shape
	Scalar any
	Record map[string]any
	List   []map[string]any
}

// Empty reports whether the value carries no data.
func (v Value) Empty() bool {
	switch v.Shape {
	case Scalar:
		return v.Scalar == nil
	case Record:
		return v.Record == nil
	default:
		return len(v.List) == 0
	}
}

// ColumnName returns the column a call to functionName produces: the name
// with any schema qualifier removed.
func ColumnName(functionName string) string {
	if i := strings.LastIndexByte(functionName, '.'); i >= 0 {
		return functionName[i+1:]
	}
	return functionName
}

// Extract unwraps rs for the stored function functionName.
func Extract(rs *database.ResultSet, functionName string, shape Shape) (Value, error) {
	column := ColumnName(functionName)
	if rs == nil || !rs.HasColumn(column) {
		var cols []string
		if rs != nil {
			cols = rs.Columns
		}
		return Value{}, &ShapeMismatchError{Function: functionName, Want: shape, Columns: cols, Reason: "column " + column + " is absent"}
	}

	mismatch := func(reason string) error {
		return &ShapeMismatchError{Function: functionName, Want: shape, Columns: rs.Columns, Reason: reason}
	}

	switch shape {
	case Scalar:
		if rs.Len() == 0 {
			return Value{Shape: Scalar}, nil
		}
		v := rs.Rows[0][column]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		return Value{Shape: Scalar, Scalar: v}, nil

	case Record:
		if rs.Len() == 0 {
			return Value{Shape: Record}, nil
		}
		decoded, err := decodeJSON(rs.Rows[0][column])
		if err != nil {
			return Value{}, mismatch(err.Error())
		}
		if decoded == nil {
			return Value{Shape: Record}, nil
		}
		rec, ok := decoded.(map[string]any)
		if !ok {
			return Value{}, mismatch(fmt.Sprintf("expected an object, got %T", decoded))
		}
		return Value{Shape: Record, Record: rec}, nil

	case List:
		list, err := extractList(rs, column)
		if err != nil {
			return Value{}, mismatch(err.Error())
		}
		return Value{Shape: List, List: list}, nil
	}

	return Value{}, mismatch("unknown shape")
}

// FromOutcome extracts out's result, or returns out's *database.DatabaseError
// when the statement failed.
func FromOutcome(out database.Outcome, functionName string, shape Shape) (Value, error) {
	if err := out.Err(); err != nil {
		return Value{}, err
	}
	return Extract(out.Result, functionName, shape)
}

func extractList(rs *database.ResultSet, column string) ([]map[string]any, error) {
	list := make([]map[string]any, 0, rs.Len())
	for i, row := range rs.Rows {
		decoded, err := decodeJSON(row[column])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		switch x := decoded.(type) {
		case nil:
			// NULL from an aggregate over zero rows.
		case map[string]any:
			list = append(list, x)
		case []any:
			for j, el := range x {
				rec, ok := el.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("row %d element %d: expected an object, got %T", i+1, j+1, el)
				}
				list = append(list, rec)
			}
		case []map[string]any:
			list = append(list, x...)
		default:
			return nil, fmt.Errorf("row %d: expected an object or array, got %T", i+1, decoded)
		}
	}
	return list, nil
}

// decodeJSON turns a column value into generic JSON data. Text and bytes are
// parsed; values the driver already decoded are returned as-is.
func decodeJSON(v any) (any, error) {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	case json.RawMessage:
		raw = x
	default:
		return v, nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}

// Decode converts a Record or List value into typed records. A Record
// yields a one-element slice; an empty Record yields none.
func Decode[T any](v Value) ([]T, error) {
	var src any
	switch v.Shape {
	case Record:
		if v.Record == nil {
			return []T{}, nil
		}
		src = []map[string]any{v.Record}
	case List:
		src = v.List
	default:
		return nil, fmt.Errorf("%w: cannot decode a %s into records", ErrShapeMismatch, v.Shape)
	}

	out := []T{}
	if err := convert(src, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeOne converts a Record value into T. ok is false for an empty Record.
func DecodeOne[T any](v Value) (rec T, ok bool, err error) {
	if v.Shape != Record {
		return rec, false, fmt.Errorf("%w: cannot decode a %s into one record", ErrShapeMismatch, v.Shape)
	}
	if v.Record == nil {
		return rec, false, nil
	}
	if err := convert(v.Record, &rec); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// DecodeScalar converts a Scalar value into T.
func DecodeScalar[T any](v Value) (T, error) {
	var out T
	if v.Shape != Scalar {
		return out, fmt.Errorf("%w: cannot decode a %s into a scalar", ErrShapeMismatch, v.Shape)
	}
	if t, ok := v.Scalar.(T); ok {
		return t, nil
	}
	err := convert(v.Scalar, &out)
	return out, err
}

// DecodeRows converts every row of a plain query (not a stored function
// call) into T, matching columns to JSON field names. UUID columns, which the
// driver returns as raw 16-byte arrays, are rendered in canonical form first.
func DecodeRows[T any](rs *database.ResultSet) ([]T, error) {
	out := []T{}
	if rs.Len() == 0 {
		return out, nil
	}
	rows := make([]map[string]any, len(rs.Rows))
	for i, row := range rs.Rows {
		normalized := make(map[string]any, len(row))
		for k, v := range row {
			normalized[k] = normalize(v)
		}
		rows[i] = normalized
	}
	if err := convert(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case []byte:
		return string(x)
	}
	return v
}

// Convert maps generic JSON data onto dst through a JSON round trip.
func Convert(src any, dst any) error {
	return convert(src, dst)
}

func convert(src any, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("re-encoding result: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decoding result into %T: %w", dst, err)
	}
	return nil
}
