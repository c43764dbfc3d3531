package sqlbuild

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const animalBase = "SELECT * FROM bctw.animal_v a"

var animalColumns = NewColumns("animal_id", "species", "wlh_id", "animal_status", "population_unit", "capture_date")

func wrapped(where string) string {
	return "SELECT * FROM (" + animalBase + ") AS a WHERE " + where
}

func TestApplyFilter_Operators(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name     string
		clause   Clause
		expected string
	}{
		{"equals", Clause{"species", OpEquals, "Caribou"}, wrapped("a.species = 'Caribou'")},
		{"not equals", Clause{"species", OpNotEquals, "Caribou"}, wrapped("a.species <> 'Caribou'")},
		{"contains", Clause{"wlh_id", OpContains, "17-"}, wrapped("a.wlh_id::text ILIKE '%17-%'")},
		{"contains escapes wildcards", Clause{"wlh_id", OpContains, "5%_x"}, wrapped(`a.wlh_id::text ILIKE '%5\%\_x%'`)},
		{"contains on a number", Clause{"population_unit", OpContains, 15}, wrapped("a.population_unit::text ILIKE '%15%'")},
		{"contains on a date", Clause{"capture_date", OpContains, "2021-03"}, wrapped("a.capture_date::text ILIKE '%2021-03%'")},
		{"greater than", Clause{"population_unit", OpGreaterThan, 3}, wrapped("a.population_unit > 3")},
		{"less than", Clause{"population_unit", OpLessThan, -1}, wrapped("a.population_unit < -1")},
		{"in set", Clause{"animal_status", OpInSet, []string{"Alive", "Mortality"}}, wrapped("a.animal_status IN ('Alive','Mortality')")},
		{"in empty set", Clause{"animal_status", OpInSet, []string{}}, wrapped("(1=0)")},
		{"uuid equals", Clause{"animal_id", OpEquals, id}, wrapped("a.animal_id = '" + id.String() + "'")},
		{"uuid set", Clause{"animal_id", OpInSet, []uuid.UUID{id}}, wrapped("a.animal_id IN ('" + id.String() + "')")},
		{"quotes in value", Clause{"species", OpEquals, "x' OR '1'='1"}, wrapped("a.species = 'x'' OR ''1''=''1'")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := Filter{Clauses: []Clause{test.clause}}
			got, err := ApplyFilter(animalBase, f, animalColumns, "a", false)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestApplyFilter_NullValues(t *testing.T) {
	var nilDate *string

	tests := []struct {
		name     string
		op       Op
		value    any
		expected string
	}{
		{"equals", OpEquals, nil, wrapped("a.capture_date IS NULL")},
		{"contains", OpContains, nil, wrapped("a.capture_date IS NULL")},
		{"greater than", OpGreaterThan, nil, wrapped("a.capture_date IS NULL")},
		{"less than", OpLessThan, nilDate, wrapped("a.capture_date IS NULL")},
		{"in set", OpInSet, []string(nil), wrapped("a.capture_date IS NULL")},
		{"not equals", OpNotEquals, nil, wrapped("a.capture_date IS NOT NULL")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := Filter{Clauses: []Clause{{Field: "capture_date", Op: test.op, Value: test.value}}}
			got, err := ApplyFilter(animalBase, f, animalColumns, "a", false)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
			assert.NotContains(t, got, "= NULL")
		})
	}
}

func TestApplyFilter_Combinators(t *testing.T) {
	clauses := []Clause{
		{"species", OpEquals, "Caribou"},
		{"animal_status", OpNotEquals, "Mortality"},
	}

	got, err := ApplyFilter(animalBase, Filter{Clauses: clauses}, animalColumns, "a", false)
	require.NoError(t, err)
	assert.Equal(t, wrapped("(a.species = 'Caribou' AND a.animal_status <> 'Mortality')"), got)

	got, err = ApplyFilter(animalBase, Filter{Clauses: clauses, Combinator: Or}, animalColumns, "a", false)
	require.NoError(t, err)
	assert.Equal(t, wrapped("(a.species = 'Caribou' OR a.animal_status <> 'Mortality')"), got)
}

func TestApplyFilter_EmptyFilterIsNoOp(t *testing.T) {
	got, err := ApplyFilter(animalBase, Filter{}, animalColumns, "a", false)
	require.NoError(t, err)
	assert.Equal(t, animalBase, got)
	assert.NotContains(t, got, "WHERE")

	got, err = ApplyFilter(animalBase+";", Filter{}, animalColumns, "a", false)
	require.NoError(t, err)
	assert.Equal(t, animalBase, got)
}

func TestApplyFilter_Single(t *testing.T) {
	got, err := ApplyFilter(animalBase, Filter{}, animalColumns, "a", true)
	require.NoError(t, err)
	assert.Equal(t, animalBase+" LIMIT 1", got)

	f := Filter{Clauses: []Clause{{"animal_id", OpEquals, "a1"}}}
	got, err = ApplyFilter(animalBase+" WHERE a.deleted = false", f, animalColumns, "a", true)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ("+animalBase+" WHERE a.deleted = false) AS a WHERE a.animal_id = 'a1' LIMIT 1", got)
}

func TestApplyFilter_WithoutAlias(t *testing.T) {
	f := Filter{Clauses: []Clause{{"species", OpEquals, "Moose"}}}
	got, err := ApplyFilter(animalBase, f, animalColumns, "", false)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ("+animalBase+") AS filtered WHERE species = 'Moose'", got)
}

func TestApplyFilter_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		alias  string
		target error
	}{
		{"unknown field", Filter{Clauses: []Clause{{"password", OpEquals, "x"}}}, "a", ErrUnknownField},
		{"injected field", Filter{Clauses: []Clause{{"species = species OR 1", OpEquals, 1}}}, "a", ErrUnknownField},
		{"bad operator", Filter{Clauses: []Clause{{"species", Op("regex"), "x"}}}, "a", ErrInvalidFilter},
		{"list for scalar op", Filter{Clauses: []Clause{{"species", OpEquals, []string{"a"}}}}, "a", ErrInvalidFilter},
		{"scalar for in set", Filter{Clauses: []Clause{{"species", OpInSet, "a"}}}, "a", ErrInvalidFilter},
		{"bad combinator", Filter{Clauses: []Clause{{"species", OpEquals, "a"}}, Combinator: "XOR"}, "a", ErrInvalidFilter},
		{"bad alias", Filter{Clauses: []Clause{{"species", OpEquals, "a"}}}, "a b", ErrInvalidIdentifier},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ApplyFilter(animalBase, test.filter, animalColumns, test.alias, false)
			assert.ErrorIs(t, err, test.target)
		})
	}

	_, err := ApplyFilter(animalBase, Filter{Clauses: []Clause{{"species", OpEquals, "x"}}}, nil, "a", false)
	assert.ErrorIs(t, err, ErrUnknownField, "a nil allow-list admits nothing")
}

func TestParseOpAndCombinator(t *testing.T) {
	for in, want := range map[string]Op{"eq": OpEquals, "NEQ": OpNotEquals, "contains": OpContains, ">": OpGreaterThan, "lt": OpLessThan, "in": OpInSet} {
		got, err := ParseOp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOp("between")
	assert.ErrorIs(t, err, ErrInvalidFilter)

	c, err := ParseCombinator("or")
	require.NoError(t, err)
	assert.Equal(t, Or, c)

	c, err = ParseCombinator("")
	require.NoError(t, err)
	assert.Equal(t, And, c)

	_, err = ParseCombinator("nand")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
