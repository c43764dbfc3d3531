package sqlbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCall(t *testing.T) {
	tests := []struct {
		name     string
		fn       string
		args     []any
		schema   string
		expected string
	}{
		{
			name:     "no arguments",
			fn:       "get_code_headers",
			schema:   "bctw",
			expected: "SELECT bctw.get_code_headers()",
		},
		{
			name:     "positional arguments keep their order",
			fn:       "get_code",
			args:     []any{"idir_user", "species", 1},
			schema:   "bctw",
			expected: "SELECT bctw.get_code('idir_user', 'species', 1)",
		},
		{
			name:     "json record argument",
			fn:       "upsert_animal",
			args:     []any{"idir_user", []map[string]any{{"animal_id": "a1"}}},
			schema:   "bctw",
			expected: `SELECT bctw.upsert_animal('idir_user', '[{"animal_id":"a1"}]'::jsonb)`,
		},
		{
			name:     "unqualified",
			fn:       "now",
			expected: "SELECT now()",
		},
		{
			name:     "null argument",
			fn:       "unlink_collar_to_animal",
			args:     []any{"idir_user", "c1", nil},
			schema:   "bctw",
			expected: "SELECT bctw.unlink_collar_to_animal('idir_user', 'c1', NULL)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := BuildCall(test.fn, test.args, test.schema)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestBuildCall_RejectsBadIdentifiers(t *testing.T) {
	_, err := BuildCall("get_animals(); DROP TABLE animal; --", nil, "bctw")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = BuildCall("get_animals", nil, "bctw.x")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestBuildCall_EncodingErrorStopsTheBuild(t *testing.T) {
	_, err := BuildCall("add_collar", []any{"idir_user", make(chan int)}, "bctw")
	require.Error(t, err)

	var encErr *EncodingError
	assert.ErrorAs(t, err, &encErr)
	assert.Contains(t, err.Error(), "argument 2 of bctw.add_collar")
}

func TestFunction_Call(t *testing.T) {
	fn := Function{Schema: "bctw", Name: "link_collar_to_animal", Params: []string{"stridir", "collarid", "animalid", "data_life"}}

	got, err := fn.Call("idir_user", "c1", "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT bctw.link_collar_to_animal('idir_user', 'c1', 'a1', NULL)", got)

	_, err = fn.Call("idir_user", "c1")
	assert.ErrorIs(t, err, ErrArity)

	unchecked := Function{Schema: "bctw", Name: "link_collar_to_animal"}
	_, err = unchecked.Call("idir_user")
	assert.NoError(t, err, "without Params the database is the judge of arity")
}

func TestFunction_ExprAndStatements(t *testing.T) {
	userID := Function{Schema: "bctw", Name: "get_user_id", Params: []string{"stridir"}}
	expr, err := userID.Expr("idir_user")
	require.NoError(t, err)
	assert.Equal(t, Raw("bctw.get_user_id('idir_user')"), expr)

	outer := Function{Schema: "bctw", Name: "get_user_role"}
	got, err := outer.Call(expr)
	require.NoError(t, err)
	assert.Equal(t, "SELECT bctw.get_user_role(bctw.get_user_id('idir_user'))", got)

	read, err := outer.Read("idir_user")
	require.NoError(t, err)
	assert.False(t, read.Write)

	write, err := outer.Write("idir_user")
	require.NoError(t, err)
	assert.True(t, write.Write)
	assert.Equal(t, read.SQL, write.SQL)

	assert.Equal(t, "get_user_role", outer.ColumnName())
}
