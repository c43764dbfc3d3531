package rowset

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/database/dbtest"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

type animal struct {
	CritterID string  `json:"critter_id"`
	AnimalID  string  `json:"animal_id"`
	Species   string  `json:"species"`
	Latitude  float64 `json:"latitude"`
}

func resultSet(column string, values ...any) *database.ResultSet {
	rows := make([]map[string]any, len(values))
	for i, v := range values {
		rows[i] = map[string]any{column: v}
	}
	return &database.ResultSet{Columns: []string{column}, Rows: rows}
}

func TestExtract_Scalar(t *testing.T) {
	v, err := Extract(resultSet("get_user_role", "administrator"), "bctw.get_user_role", Scalar)
	require.NoError(t, err)
	assert.Equal(t, Scalar, v.Shape)
	assert.Equal(t, "administrator", v.Scalar)

	role, err := DecodeScalar[string](v)
	require.NoError(t, err)
	assert.Equal(t, "administrator", role)

	v, err = Extract(resultSet("get_user_role"), "get_user_role", Scalar)
	require.NoError(t, err)
	assert.True(t, v.Empty())

	v, err = Extract(resultSet("delete_animal", []byte("t")), "delete_animal", Scalar)
	require.NoError(t, err)
	assert.Equal(t, "t", v.Scalar)
}

func TestExtract_Record(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"json text", `{"critter_id":"c1","animal_id":"a1","species":"Caribou","latitude":53.91}`},
		{"json bytes", []byte(`{"critter_id":"c1","animal_id":"a1","species":"Caribou","latitude":53.91}`)},
		{"driver decoded", map[string]any{"critter_id": "c1", "animal_id": "a1", "species": "Caribou", "latitude": 53.91}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, err := Extract(resultSet("get_animal", test.value), "bctw.get_animal", Record)
			require.NoError(t, err)
			assert.Equal(t, "Caribou", v.Record["species"])

			a, ok, err := DecodeOne[animal](v)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, animal{CritterID: "c1", AnimalID: "a1", Species: "Caribou", Latitude: 53.91}, a)
		})
	}
}

func TestExtract_RecordEmpty(t *testing.T) {
	for _, rs := range []*database.ResultSet{resultSet("get_animal"), resultSet("get_animal", nil)} {
		v, err := Extract(rs, "get_animal", Record)
		require.NoError(t, err)
		assert.True(t, v.Empty())

		_, ok, err := DecodeOne[animal](v)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestExtract_List(t *testing.T) {
	t.Run("one array in one row", func(t *testing.T) {
		v, err := Extract(resultSet("upsert_animal", `[{"animal_id":"a1"},{"animal_id":"a2"}]`), "upsert_animal", List)
		require.NoError(t, err)
		require.Len(t, v.List, 2)
		assert.Equal(t, "a2", v.List[1]["animal_id"])
	})

	t.Run("one object per row", func(t *testing.T) {
		v, err := Extract(resultSet("get_animal_history", `{"animal_id":"a1"}`, map[string]any{"animal_id": "a1", "species": "Moose"}), "get_animal_history", List)
		require.NoError(t, err)
		require.Len(t, v.List, 2)

		history, err := Decode[animal](v)
		require.NoError(t, err)
		assert.Equal(t, "Moose", history[1].Species)
	})

	t.Run("null aggregate", func(t *testing.T) {
		v, err := Extract(resultSet("get_user_telemetry_alerts", nil), "get_user_telemetry_alerts", List)
		require.NoError(t, err)
		assert.True(t, v.Empty())
		assert.NotNil(t, v.List)
	})

	t.Run("no rows", func(t *testing.T) {
		v, err := Extract(resultSet("get_user_telemetry_alerts"), "get_user_telemetry_alerts", List)
		require.NoError(t, err)
		assert.Empty(t, v.List)
	})
}

func TestExtract_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		rs    *database.ResultSet
		fn    string
		shape Shape
	}{
		{"column absent", resultSet("get_animals", `[]`), "get_collars", List},
		{"nil result set", nil, "get_collars", Record},
		{"record expected, array found", resultSet("get_animal", `[{"a":1}]`), "get_animal", Record},
		{"record expected, text found", resultSet("get_animal", "not json"), "get_animal", Record},
		{"list of scalars", resultSet("get_codes", `[1,2]`), "get_codes", List},
		{"list expected, number found", resultSet("get_codes", 7), "get_codes", List},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Extract(test.rs, test.fn, test.shape)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrShapeMismatch)

			var mismatch *ShapeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, test.fn, mismatch.Function)

			var dbErr *database.DatabaseError
			assert.False(t, errors.As(err, &dbErr))
		})
	}
}

func TestDecode_WrongShape(t *testing.T) {
	_, err := Decode[animal](Value{Shape: Scalar, Scalar: 1})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, _, err = DecodeOne[animal](Value{Shape: List})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = DecodeScalar[int](Value{Shape: Record})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "get_animals", ColumnName("bctw.get_animals"))
	assert.Equal(t, "get_animals", ColumnName("get_animals"))
}

// A database failure, such as a pool that cannot hand out a connection, must
// stay distinguishable from a result that does not fit its declared shape.
func TestFromOutcome_DatabaseErrorIsNotShapeMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mock.Close()

	gw := database.NewGateway(mock, nil, 0)
	stmt := sqlbuild.Read("SELECT bctw.get_animals('idir_user')")

	exhausted := errors.New("failed to acquire connection: context deadline exceeded")
	dbtest.ExpectQuery(mock, stmt.SQL).WillReturnError(exhausted)
	_, err = FromOutcome(gw.Execute(context.Background(), stmt, ""), "get_animals", List)
	require.Error(t, err)

	var dbErr *database.DatabaseError
	assert.ErrorAs(t, err, &dbErr)
	assert.ErrorIs(t, err, exhausted)
	assert.NotErrorIs(t, err, ErrShapeMismatch)

	dbtest.ExpectQuery(mock, stmt.SQL).WillReturnRows(pgxmock.NewRows([]string{"get_collars"}).AddRow(`[]`))
	_, err = FromOutcome(gw.Execute(context.Background(), stmt, ""), "get_animals", List)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.False(t, errors.As(err, &dbErr))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeRows(t *testing.T) {
	type attached struct {
		AssignmentID string `json:"assignment_id"`
		DeviceID     int    `json:"device_id"`
		Species      string `json:"species"`
	}
	id := [16]byte{0x6f, 0x1d, 0x3f, 0x0e, 0x8c, 0x53, 0x4a, 0x52, 0x9a, 0x1b, 0x3b, 0x0f, 0x1d, 0x2c, 0x4e, 0x5a}

	rs := &database.ResultSet{
		Columns: []string{"assignment_id", "device_id", "species"},
		Rows: []map[string]any{
			{"assignment_id": id, "device_id": int32(101), "species": "Caribou"},
		},
	}

	rows, err := DecodeRows[attached](rs)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, attached{AssignmentID: "6f1d3f0e-8c53-4a52-9a1b-3b0f1d2c4e5a", DeviceID: 101, Species: "Caribou"}, rows[0])

	empty, err := DecodeRows[attached](&database.ResultSet{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
