// Package sqlbuild turns Go values, stored-function calls, filters, ordering
// and page numbers into PostgreSQL statement text.
//
// Everything that ends up inside a statement passes through this package:
//   - Encode renders a single value as a SQL literal
//   - BuildCall / Function.Call render "SELECT schema.fn(arg, ...)"
//   - ApplyFilter / Assemble compose a base query with WHERE, ORDER BY and LIMIT/OFFSET
//   - Read / Transactionify tag a statement for the execution gateway
//
// Identifiers (schemas, function names, filter and order fields) are validated,
// never quoted from user input. Values are always encoded, never concatenated.
package sqlbuild

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NullLiteral is the unquoted SQL null.
const NullLiteral = "NULL"

// Raw is SQL text that is interpolated verbatim by Encode.
//
// Only use it for fragments built by this package (for example a nested
// function call used as an argument). Never wrap request input in Raw.
type Raw string

// EncodingError is returned when a value cannot be rendered as a literal.
// No statement must be executed once an EncodingError was returned.
type EncodingError struct {
	Value  any
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %T as a SQL literal: %s", e.Value, e.Reason)
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	rawJSONType = reflect.TypeOf(json.RawMessage{})
)

// Encode renders v as a PostgreSQL literal.
//
// Supported shapes:
//   - nil, nil pointers/maps/slices -> NULL
//   - string                        -> 'escaped'
//   - integers, floats              -> canonical text (NaN and Inf rejected)
//   - bool                          -> true / false
//   - time.Time                     -> 'RFC3339Nano'
//   - uuid.UUID                     -> 'canonical-uuid'
//   - decimal.Decimal               -> numeric text
//   - []uuid.UUID                   -> ARRAY['..', '..']::uuid[]
//   - slices of scalars             -> ARRAY[..]
//   - maps, structs, slices of them -> 'json'::jsonb
//   - Raw                           -> verbatim
func Encode(v any) (string, error) {
	e := &encoder{orig: v}
	return e.encode(reflect.ValueOf(v))
}

// MustEncode is Encode for values known to be encodable (constants in code).
// It panics on an EncodingError.
func MustEncode(v any) string {
	s, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return s
}

// QuoteString escapes and single-quotes s.
func QuoteString(s string) (string, error) {
	if strings.ContainsRune(s, 0) {
		return "", &EncodingError{Value: s, Reason: "string contains a NUL byte"}
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

// maxEncodeDepth bounds nesting of pointers, interfaces and arrays.
const maxEncodeDepth = 64

type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// encoder walks one value. visiting holds the pointers and slices on the
// current path so that a value containing itself fails instead of recursing
// forever.
type encoder struct {
	orig     any
	depth    int
	visiting map[visit]struct{}
}

func (e *encoder) cyclic() error {
	return &EncodingError{Value: e.orig, Reason: "cyclic value"}
}

// enter records rv on the current path. The returned func removes it again.
func (e *encoder) enter(rv reflect.Value) (func(), error) {
	if e.depth >= maxEncodeDepth {
		return nil, &EncodingError{Value: e.orig, Reason: fmt.Sprintf("nesting deeper than %d", maxEncodeDepth)}
	}
	key := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		key.len = rv.Len()
	}
	if e.visiting == nil {
		e.visiting = make(map[visit]struct{})
	}
	if _, ok := e.visiting[key]; ok {
		return nil, e.cyclic()
	}
	e.visiting[key] = struct{}{}
	e.depth++
	return func() {
		delete(e.visiting, key)
		e.depth--
	}, nil
}

func (e *encoder) encode(rv reflect.Value) (string, error) {
	orig := e.orig
	if !rv.IsValid() {
		return NullLiteral, nil
	}

	// Concrete types first; several of them are structs or arrays that the
	// generic kind switch below would otherwise misread.
	switch x := rv.Interface().(type) {
	case Raw:
		return string(x), nil
	case time.Time:
		return "'" + x.Format(time.RFC3339Nano) + "'", nil
	case uuid.UUID:
		return "'" + x.String() + "'", nil
	case decimal.Decimal:
		return x.String(), nil
	case json.RawMessage:
		if x == nil {
			return NullLiteral, nil
		}
		if !json.Valid(x) {
			return "", &EncodingError{Value: orig, Reason: "invalid JSON"}
		}
		return encodeJSONText(string(x), orig)
	case []uuid.UUID:
		return encodeUUIDArray(x), nil
	case []byte:
		if x == nil {
			return NullLiteral, nil
		}
		return `'\x` + hex.EncodeToString(x) + `'::bytea`, nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return NullLiteral, nil
		}
		leave, err := e.enter(rv)
		if err != nil {
			return "", err
		}
		defer leave()
		return e.encode(rv.Elem())

	case reflect.Interface:
		if rv.IsNil() {
			return NullLiteral, nil
		}
		return e.encode(rv.Elem())

	case reflect.String:
		return QuoteString(rv.String())

	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", &EncodingError{Value: orig, Reason: "non-finite number"}
		}
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		return strconv.FormatFloat(f, 'g', -1, bits), nil

	case reflect.Map:
		if rv.IsNil() {
			return NullLiteral, nil
		}
		return encodeJSON(rv.Interface(), orig)

	case reflect.Struct:
		return encodeJSON(rv.Interface(), orig)

	case reflect.Slice:
		if rv.IsNil() {
			return NullLiteral, nil
		}
		if isRecordElem(rv.Type().Elem()) {
			return encodeJSON(rv.Interface(), orig)
		}
		leave, err := e.enter(rv)
		if err != nil {
			return "", err
		}
		defer leave()
		return e.encodeArray(rv)

	case reflect.Array:
		if isRecordElem(rv.Type().Elem()) {
			return encodeJSON(rv.Interface(), orig)
		}
		return e.encodeArray(rv)
	}

	return "", &EncodingError{Value: orig, Reason: "unsupported kind " + rv.Kind().String()}
}

// isRecordElem reports whether slices of t are sent as a JSON array rather
// than a SQL array.
func isRecordElem(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType, uuidType, decimalType, rawJSONType:
		return false
	}
	return t.Kind() == reflect.Map || t.Kind() == reflect.Struct
}

func (e *encoder) encodeArray(rv reflect.Value) (string, error) {
	if rv.Len() == 0 {
		return "'{}'", nil
	}
	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, err := e.encode(rv.Index(i))
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "ARRAY[" + strings.Join(parts, ", ") + "]", nil
}

func encodeUUIDArray(ids []uuid.UUID) string {
	if len(ids) == 0 {
		return "'{}'::uuid[]"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "'" + id.String() + "'"
	}
	return "ARRAY[" + strings.Join(parts, ", ") + "]::uuid[]"
}

func encodeJSON(v any, orig any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", &EncodingError{Value: orig, Reason: err.Error()}
	}
	return encodeJSONText(string(b), orig)
}

func encodeJSONText(s string, orig any) (string, error) {
	q, err := QuoteString(s)
	if err != nil {
		return "", &EncodingError{Value: orig, Reason: "JSON text contains a NUL byte"}
	}
	return q + "::jsonb", nil
}
