package sqlbuild

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned when a schema, function, alias or column
// name is not a plain SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

// ErrArity is returned by Function.Call when the number of arguments does not
// match the declared parameter list.
var ErrArity = errors.New("argument count does not match function parameters")

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is a plain, unquoted identifier.
func ValidIdentifier(s string) bool {
	return identRegex.MatchString(s)
}

func checkIdentifier(kind, s string) error {
	if !ValidIdentifier(s) {
		return fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, kind, s)
	}
	return nil
}

// BuildCall renders "SELECT schema.name(arg1, arg2, ...)".
//
// Arguments are positional and must follow the stored function's declared
// parameter order; no signature check happens here. A wrong count or order
// surfaces as a database error when the statement runs.
func BuildCall(name string, args []any, schema string) (string, error) {
	ref, err := qualifiedName(schema, name)
	if err != nil {
		return "", err
	}

	encoded := make([]string, len(args))
	for i, a := range args {
		s, err := Encode(a)
		if err != nil {
			return "", fmt.Errorf("argument %d of %s: %w", i+1, ref, err)
		}
		encoded[i] = s
	}

	return "SELECT " + ref + "(" + strings.Join(encoded, ", ") + ")", nil
}

func qualifiedName(schema, name string) (string, error) {
	if err := checkIdentifier("function", name); err != nil {
		return "", err
	}
	if schema == "" {
		return name, nil
	}
	if err := checkIdentifier("schema", schema); err != nil {
		return "", err
	}
	return schema + "." + name, nil
}

// Function describes a stored function called through BuildCall.
//
// Params is optional. When set, Call rejects argument lists whose length
// differs from len(Params) before anything reaches the database.
type Function struct {
	Schema string
	Name   string
	Params []string
}

// Call renders the SELECT for f with args in positional order.
func (f Function) Call(args ...any) (string, error) {
	if f.Params != nil && len(args) != len(f.Params) {
		return "", fmt.Errorf("%w: %s expects %d (%s), got %d",
			ErrArity, f.Name, len(f.Params), strings.Join(f.Params, ", "), len(args))
	}
	return BuildCall(f.Name, args, f.Schema)
}

// Expr renders the bare call "schema.name(args)" without the SELECT, for use
// as a Raw argument or inside a base query.
func (f Function) Expr(args ...any) (Raw, error) {
	sql, err := f.Call(args...)
	if err != nil {
		return "", err
	}
	return Raw(strings.TrimPrefix(sql, "SELECT ")), nil
}

// ColumnName is the name of the single column a call to f returns.
func (f Function) ColumnName() string {
	return f.Name
}
