package bulk

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/rowset"
)

type collar struct {
	DeviceID int    `json:"device_id"`
	Make     string `json:"device_make"`
}

func tenRowsWithFailures(failing ...int) []map[string]any {
	fail := map[int]bool{}
	for _, n := range failing {
		fail[n] = true
	}
	rows := make([]map[string]any, 10)
	for i := range rows {
		n := i + 1
		if fail[n] {
			rows[i] = map[string]any{
				"row":   map[string]any{"device_id": float64(n)},
				"error": fmt.Sprintf("device %d already exists", n),
			}
			continue
		}
		rows[i] = map[string]any{"device_id": float64(n), "device_make": "Vectronic"}
	}
	return rows
}

func TestAggregate_PartialSuccess(t *testing.T) {
	v := rowset.Value{Shape: rowset.List, List: tenRowsWithFailures(3, 7)}

	resp, err := Aggregate[collar](v)
	require.NoError(t, err)

	assert.Len(t, resp.Results, 8)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, 3, resp.Errors[0].RowNum)
	assert.Equal(t, 7, resp.Errors[1].RowNum)
	assert.Equal(t, "device 3 already exists", resp.Errors[0].Error)
	assert.Equal(t, `{"device_id":3}`, resp.Errors[0].Row)
	assert.Equal(t, len(v.List), len(resp.Results)+len(resp.Errors))
	assert.Equal(t, collar{DeviceID: 1, Make: "Vectronic"}, resp.Results[0])
	assert.True(t, resp.HasErrors())
}

func TestAggregate_RowLabel(t *testing.T) {
	v := rowset.Value{Shape: rowset.List, List: tenRowsWithFailures(5)}

	resp, err := Aggregate[map[string]any](v, WithRowLabel(func(i int, _ map[string]any) string {
		return fmt.Sprintf("line %d", i+2)
	}))
	require.NoError(t, err)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "line 6", resp.Errors[0].Row)
	assert.Equal(t, 5, resp.Errors[0].RowNum)
}

func TestAggregate_ErrorKey(t *testing.T) {
	v := rowset.Value{Shape: rowset.List, List: []map[string]any{
		{"device_id": float64(1), "error": nil},
		{"device_id": float64(2), "failure": "bad frequency"},
	}}

	resp, err := Aggregate[collar](v)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2, "a null error marker is a success")

	resp, err = Aggregate[collar](v, WithErrorKey("failure"))
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "bad frequency", resp.Errors[0].Error)
	assert.Equal(t, "", resp.Errors[0].Row)
}

func TestAggregate_RecordIsPushedUnconditionally(t *testing.T) {
	v := rowset.Value{Shape: rowset.Record, Record: map[string]any{"error": "summary says no", "device_id": float64(9)}}

	resp, err := Aggregate[map[string]any](v)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, "summary says no", resp.Results[0]["error"])

	scalar, err := Aggregate[bool](rowset.Value{Shape: rowset.Scalar, Scalar: true})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, scalar.Results)

	empty, err := Aggregate[collar](rowset.Value{Shape: rowset.Record})
	require.NoError(t, err)
	assert.Empty(t, empty.Results)
}

func TestAggregate_ConversionFailure(t *testing.T) {
	v := rowset.Value{Shape: rowset.List, List: []map[string]any{{"device_id": "not a number"}}}
	_, err := Aggregate[collar](v)
	assert.Error(t, err)
}

func TestFailed(t *testing.T) {
	resp := Failed[collar]("failed to add collar(s)")

	assert.Empty(t, resp.Results)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, RowError{Row: "", Error: "failed to add collar(s)", RowNum: 0}, resp.Errors[0])

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[],"errors":[{"row":"","error":"failed to add collar(s)","rownum":0}]}`, string(b))
}

func TestBuilder_BuiltResponseIsImmutable(t *testing.T) {
	b := NewBuilder[int]().AddResult(1)
	first := b.Build()

	b.AddResult(2).AddError(RowError{Error: "x", RowNum: 3})

	assert.Equal(t, []int{1}, first.Results)
	assert.Empty(t, first.Errors)
	assert.Len(t, b.Build().Results, 2)
}

func TestFromOutcome(t *testing.T) {
	t.Run("whole call failed", func(t *testing.T) {
		out := database.Outcome{IsError: true, Error: &database.OutcomeError{Message: "failed to upsert animals", Cause: errors.New("boom")}}
		resp, err := FromOutcome[collar](out, "upsert_animal")
		require.NoError(t, err)
		assert.Equal(t, Failed[collar]("failed to upsert animals"), resp)
	})

	t.Run("per-row outcomes", func(t *testing.T) {
		rs := &database.ResultSet{
			Columns: []string{"add_collar"},
			Rows: []map[string]any{{
				"add_collar": `[{"device_id":1},{"row":{"device_id":2},"error":"duplicate"}]`,
			}},
		}
		resp, err := FromOutcome[collar](database.Outcome{Result: rs}, "bctw.add_collar")
		require.NoError(t, err)
		assert.Len(t, resp.Results, 1)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, 2, resp.Errors[0].RowNum)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		rs := &database.ResultSet{Columns: []string{"other"}, Rows: []map[string]any{{"other": `[]`}}}
		_, err := FromOutcome[collar](database.Outcome{Result: rs}, "add_collar")
		assert.ErrorIs(t, err, rowset.ErrShapeMismatch)
	})
}
