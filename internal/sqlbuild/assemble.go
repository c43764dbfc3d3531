package sqlbuild

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSize is the number of rows in one page. Page N covers rows
// [(N-1)*PageSize, N*PageSize).
const PageSize = 100

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection maps "asc"/"desc" (any case) onto a Direction. Empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	}
	return "", fmt.Errorf("%w: direction %q", ErrInvalidFilter, s)
}

// OrderBy is one ORDER BY term.
type OrderBy struct {
	Field     string
	Direction Direction
}

// Query describes a paged listing over a base query.
//
// Alias must be the alias the base query gives its main relation; it is also
// used for the derived table when a filter is applied, so order fields resolve
// either way. Columns is the allow-list for both filter and order fields.
type Query struct {
	Base    string
	Filter  *Filter
	Columns Columns
	Alias   string
	Single  bool
	Order   []OrderBy
	Page    int
}

// Assemble renders q as one statement. Clauses are always emitted in the
// order WHERE, ORDER BY, LIMIT/OFFSET whichever of them are present.
//
// Single emits LIMIT 1 and ignores Page. A Page <= 0 means no pagination.
func Assemble(q Query) (string, error) {
	var f Filter
	if q.Filter != nil {
		f = *q.Filter
	}
	sql, err := ApplyFilter(q.Base, f, q.Columns, q.Alias, false)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(sql)

	if len(q.Order) > 0 {
		order, err := orderClause(q.Order, q.Columns, q.Alias)
		if err != nil {
			return "", err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}

	switch {
	case q.Single:
		b.WriteString(" LIMIT 1")
	case q.Page > 0:
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(PageSize))
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(Offset(q.Page)))
	}

	return b.String(), nil
}

// Offset returns the first row index of page (1-based). Pages <= 0 start at 0.
func Offset(page int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * PageSize
}

func orderClause(order []OrderBy, cols Columns, alias string) (string, error) {
	parts := make([]string, len(order))
	for i, o := range order {
		col, err := qualify(o.Field, cols, alias)
		if err != nil {
			return "", err
		}
		dir := o.Direction
		if dir == "" {
			dir = Asc
		}
		if dir != Asc && dir != Desc {
			return "", fmt.Errorf("%w: direction %q", ErrInvalidFilter, o.Direction)
		}
		parts[i] = col + " " + string(dir)
	}
	return strings.Join(parts, ", "), nil
}
