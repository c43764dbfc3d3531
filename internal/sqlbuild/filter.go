package sqlbuild

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Op is a filter clause operator.
type Op string

const (
	OpEquals      Op = "equals"
	OpNotEquals   Op = "not_equals"
	OpContains    Op = "contains"
	OpGreaterThan Op = "greater_than"
	OpLessThan    Op = "less_than"
	OpInSet       Op = "in"
)

// Combinator joins the clauses of a Filter.
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

var (
	// ErrUnknownField is returned when a filter or order field is not in the
	// relation's column allow-list.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidFilter is returned for malformed clauses (bad operator,
	// list value for a scalar operator, and so on).
	ErrInvalidFilter = errors.New("invalid filter")
)

var opAliases = map[string]Op{
	"equals": OpEquals, "eq": OpEquals, "=": OpEquals,
	"not_equals": OpNotEquals, "neq": OpNotEquals, "ne": OpNotEquals, "<>": OpNotEquals, "!=": OpNotEquals,
	"contains": OpContains, "like": OpContains,
	"greater_than": OpGreaterThan, "gt": OpGreaterThan, ">": OpGreaterThan,
	"less_than": OpLessThan, "lt": OpLessThan, "<": OpLessThan,
	"in": OpInSet, "in_set": OpInSet,
}

// ParseOp maps an operator name from a request onto an Op.
func ParseOp(s string) (Op, error) {
	if op, ok := opAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: operator %q", ErrInvalidFilter, s)
}

// ParseCombinator maps "and"/"or" (any case) onto a Combinator. Empty means And.
func ParseCombinator(s string) (Combinator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AND":
		return And, nil
	case "OR":
		return Or, nil
	}
	return "", fmt.Errorf("%w: combinator %q", ErrInvalidFilter, s)
}

// Clause is a single field/operator/value predicate.
type Clause struct {
	Field string
	Op    Op
	Value any
}

// Filter is a flat list of clauses joined by one combinator.
type Filter struct {
	Clauses    []Clause
	Combinator Combinator
}

// Empty reports whether the filter has no clauses.
func (f Filter) Empty() bool {
	return len(f.Clauses) == 0
}

// Columns is the allow-list of filterable / sortable columns of a relation.
type Columns map[string]struct{}

// NewColumns builds an allow-list.
func NewColumns(names ...string) Columns {
	c := make(Columns, len(names))
	for _, n := range names {
		c[n] = struct{}{}
	}
	return c
}

// Has reports whether name is an allowed column.
func (c Columns) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Names returns the allowed columns in sorted order.
func (c Columns) Names() []string {
	out := make([]string, 0, len(c))
	for n := range c {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// qualify checks field against cols and prefixes it with alias.
func qualify(field string, cols Columns, alias string) (string, error) {
	if !ValidIdentifier(field) || !cols.Has(field) {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if alias == "" {
		return field, nil
	}
	return alias + "." + field, nil
}

// ApplyFilter composes base with f.
//
// An empty filter returns base unchanged. Otherwise the result is
//
//	SELECT * FROM (base) AS alias WHERE <clauses>
//
// so a base that already has its own WHERE clause composes safely. When
// single is set the fragment is constrained to one row with LIMIT 1.
func ApplyFilter(base string, f Filter, cols Columns, alias string, single bool) (string, error) {
	base = trimStatement(base)
	where, err := f.render(cols, alias)
	if err != nil {
		return "", err
	}
	out := base
	if where != "" {
		out, err = wrapWhere(base, alias, where)
		if err != nil {
			return "", err
		}
	}
	if single {
		out += " LIMIT 1"
	}
	return out, nil
}

// derivedAlias names the derived table when the caller gave no alias.
const derivedAlias = "filtered"

func wrapWhere(base, alias, where string) (string, error) {
	name := alias
	if name == "" {
		name = derivedAlias
	} else if err := checkIdentifier("alias", alias); err != nil {
		return "", err
	}
	return "SELECT * FROM (" + base + ") AS " + name + " WHERE " + where, nil
}

// render returns the WHERE predicate text, or "" for an empty filter.
func (f Filter) render(cols Columns, alias string) (string, error) {
	if f.Empty() {
		return "", nil
	}
	pred, err := f.predicate(cols, alias)
	if err != nil {
		return "", err
	}
	sql, args, err := pred.ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return inlineArgs(sql, args)
}

// predicate builds the squirrel expression tree for f.
func (f Filter) predicate(cols Columns, alias string) (sq.Sqlizer, error) {
	comb := f.Combinator
	if comb == "" {
		comb = And
	}
	if comb != And && comb != Or {
		return nil, fmt.Errorf("%w: combinator %q", ErrInvalidFilter, comb)
	}

	parts := make([]sq.Sqlizer, 0, len(f.Clauses))
	for _, c := range f.Clauses {
		p, err := c.predicate(cols, alias)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	if comb == Or {
		return sq.Or(parts), nil
	}
	return sq.And(parts), nil
}

func (c Clause) predicate(cols Columns, alias string) (sq.Sqlizer, error) {
	col, err := qualify(c.Field, cols, alias)
	if err != nil {
		return nil, err
	}

	// Equality with NULL is never true in SQL, so a null value always becomes
	// IS NULL, or IS NOT NULL for not-equals.
	if isNull(c.Value) {
		if c.Op == OpNotEquals {
			return sq.NotEq{col: nil}, nil
		}
		if _, ok := opAliases[string(c.Op)]; !ok {
			return nil, fmt.Errorf("%w: operator %q", ErrInvalidFilter, c.Op)
		}
		return sq.Eq{col: nil}, nil
	}

	if c.Op == OpInSet {
		list, ok := listValue(c.Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a list for %q", ErrInvalidFilter, c.Field, c.Op)
		}
		return sq.Eq{col: list}, nil
	}

	v, ok := scalarValue(c.Value)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a scalar for %q", ErrInvalidFilter, c.Field, c.Op)
	}

	switch c.Op {
	case OpEquals:
		return sq.Eq{col: v}, nil
	case OpNotEquals:
		return sq.NotEq{col: v}, nil
	case OpGreaterThan:
		return sq.Gt{col: v}, nil
	case OpLessThan:
		return sq.Lt{col: v}, nil
	case OpContains:
		return sq.ILike{col + "::text": "%" + escapeLike(fmt.Sprint(v)) + "%"}, nil
	}
	return nil, fmt.Errorf("%w: operator %q", ErrInvalidFilter, c.Op)
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// scalarValue normalises v for squirrel. uuid.UUID is a [16]byte and would
// otherwise be expanded into an IN list.
func scalarValue(v any) (any, bool) {
	switch x := v.(type) {
	case uuid.UUID:
		return x.String(), true
	case []byte:
		return x, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Func, reflect.Chan:
		return nil, false
	}
	return rv.Interface(), true
}

func listValue(v any) ([]any, bool) {
	if ids, ok := v.([]uuid.UUID); ok {
		out := make([]any, len(ids))
		for i, id := range ids {
			out[i] = id.String()
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if _, isUUID := v.(uuid.UUID); isUUID {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		s, ok := scalarValue(rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// inlineArgs replaces each "?" placeholder squirrel emitted with the encoded
// literal of the matching argument. The predicate text only contains
// validated identifiers and operators, so every "?" is a placeholder.
func inlineArgs(sql string, args []any) (string, error) {
	var b strings.Builder
	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] != '?' {
			b.WriteByte(sql[i])
			continue
		}
		if n >= len(args) {
			return "", fmt.Errorf("%w: placeholder without argument", ErrInvalidFilter)
		}
		lit, err := Encode(args[n])
		if err != nil {
			return "", err
		}
		b.WriteString(lit)
		n++
	}
	if n != len(args) {
		return "", fmt.Errorf("%w: %d arguments for %d placeholders", ErrInvalidFilter, len(args), n)
	}
	return b.String(), nil
}

func trimStatement(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "; \t\n")
}
