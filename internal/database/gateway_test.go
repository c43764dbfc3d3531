package database

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/bctw-api/internal/database/dbtest"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

func newMockGateway(t *testing.T) (pgxmock.PgxPoolIface, *Gateway, *bytes.Buffer) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	return mock, NewGateway(mock, &logger, 0), &buf
}

const getAnimals = "SELECT bctw.get_animals('idir_user')"

func TestGateway_ReadSuccess(t *testing.T) {
	mock, gw, _ := newMockGateway(t)

	dbtest.ExpectQuery(mock, getAnimals).
		WillReturnRows(pgxmock.NewRows([]string{"get_animals"}).
			AddRow(`[{"animal_id":"a1"}]`))

	out := gw.Execute(context.Background(), sqlbuild.Read(getAnimals), "")

	require.False(t, out.IsError)
	assert.Nil(t, out.Error)
	assert.NoError(t, out.Err())
	require.NotNil(t, out.Result)
	assert.Equal(t, []string{"get_animals"}, out.Result.Columns)
	assert.Equal(t, 1, out.Result.Len())
	assert.Equal(t, `[{"animal_id":"a1"}]`, out.Result.Rows[0]["get_animals"])
	assert.True(t, out.Result.HasColumn("get_animals"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_EmptyResult(t *testing.T) {
	mock, gw, _ := newMockGateway(t)

	dbtest.ExpectQuery(mock, getAnimals).WillReturnRows(pgxmock.NewRows([]string{"get_animals"}))

	out := gw.Execute(context.Background(), sqlbuild.Read(getAnimals), "")

	require.False(t, out.IsError)
	assert.NotNil(t, out.Result.Rows)
	assert.Equal(t, 0, out.Result.Len())
}

func TestGateway_ReadErrorUsesContextMessage(t *testing.T) {
	mock, gw, logs := newMockGateway(t)
	cause := errors.New("failed to connect to `host=db`: dial error")

	dbtest.ExpectQuery(mock, getAnimals).WillReturnError(cause)

	out := gw.Execute(context.Background(), sqlbuild.Read(getAnimals), "failed to retrieve animals")

	require.True(t, out.IsError)
	assert.Nil(t, out.Result)
	require.NotNil(t, out.Error)
	assert.Equal(t, "failed to retrieve animals", out.Error.Message)
	assert.Same(t, cause, out.Error.Cause)

	err := out.Err()
	var dbErr *DatabaseError
	require.ErrorAs(t, err, &dbErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, logs.String(), "failed to retrieve animals")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_ReadErrorFallsBackToDriverMessage(t *testing.T) {
	mock, gw, _ := newMockGateway(t)
	pgErr := &pgconn.PgError{Code: "P0001", Message: "animal a9 does not exist"}

	dbtest.ExpectQuery(mock, getAnimals).WillReturnError(pgErr)

	out := gw.Execute(context.Background(), sqlbuild.Read(getAnimals), "")

	require.True(t, out.IsError)
	assert.Equal(t, "animal a9 does not exist", out.Error.Message)

	var dbErr *DatabaseError
	require.ErrorAs(t, out.Err(), &dbErr)
	got, ok := dbErr.PgError()
	require.True(t, ok)
	assert.Equal(t, "P0001", got.Code)
}

func TestGateway_WriteCommits(t *testing.T) {
	mock, gw, _ := newMockGateway(t)
	const upsert = `SELECT bctw.upsert_animal('idir_user', '[{"animal_id":"a1"}]'::jsonb)`

	mock.ExpectBegin()
	dbtest.ExpectQuery(mock, upsert).
		WillReturnRows(pgxmock.NewRows([]string{"upsert_animal"}).AddRow(`[{"animal_id":"a1"}]`))
	mock.ExpectCommit()

	out := gw.Execute(context.Background(), sqlbuild.Transactionify(upsert), "failed to upsert animals")

	require.False(t, out.IsError)
	assert.Equal(t, 1, out.Result.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_WriteRollsBackOnError(t *testing.T) {
	mock, gw, _ := newMockGateway(t)
	const upsert = `SELECT bctw.upsert_animal('idir_user', '[]'::jsonb)`

	mock.ExpectBegin()
	dbtest.ExpectQuery(mock, upsert).WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
	mock.ExpectRollback()

	out := gw.Execute(context.Background(), sqlbuild.Transactionify(upsert), "")

	require.True(t, out.IsError)
	assert.Equal(t, "duplicate key", out.Error.Message)
	assert.NoError(t, mock.ExpectationsWereMet(), "transaction must be rolled back")
}

func TestGateway_WriteRollsBackOnRowError(t *testing.T) {
	mock, gw, _ := newMockGateway(t)
	const upsert = `SELECT bctw.add_collar('idir_user', '[]'::jsonb)`

	mock.ExpectBegin()
	dbtest.ExpectQuery(mock, upsert).
		WillReturnRows(pgxmock.NewRows([]string{"add_collar"}).
			AddRow(`{"device_id":1}`).
			AddRow(`{"device_id":2}`).
			RowError(1, errors.New("row 2 raised")))
	mock.ExpectRollback()

	out := gw.Execute(context.Background(), sqlbuild.Transactionify(upsert), "")

	require.True(t, out.IsError)
	assert.Nil(t, out.Result, "no partial result on error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_CommitFailure(t *testing.T) {
	mock, gw, _ := newMockGateway(t)
	const upsert = `SELECT bctw.add_code('idir_user', '[]'::jsonb)`

	mock.ExpectBegin()
	dbtest.ExpectQuery(mock, upsert).WillReturnRows(pgxmock.NewRows([]string{"add_code"}).AddRow(`[]`))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	out := gw.Execute(context.Background(), sqlbuild.Transactionify(upsert), "")

	require.True(t, out.IsError)
	assert.Contains(t, out.Error.Message, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_BeginFailure(t *testing.T) {
	mock, gw, _ := newMockGateway(t)

	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	out := gw.Execute(context.Background(), sqlbuild.Transactionify("SELECT bctw.add_code()"), "failed to add codes")

	require.True(t, out.IsError)
	assert.Equal(t, "failed to add codes", out.Error.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_LogsSlowStatements(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer mock.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	gw := NewGateway(mock, &logger, 1)

	dbtest.ExpectQuery(mock, getAnimals).WillReturnRows(pgxmock.NewRows([]string{"get_animals"}).AddRow(`[]`))

	out := gw.Execute(context.Background(), sqlbuild.Read(getAnimals), "")

	require.False(t, out.IsError)
	assert.Contains(t, buf.String(), "slow statement")
}

func TestGateway_UsesRequestLogger(t *testing.T) {
	mock, gw, base := newMockGateway(t)

	var reqBuf bytes.Buffer
	reqLogger := zerolog.New(&reqBuf).With().Str("request_id", "r-1").Logger()
	ctx := reqLogger.WithContext(context.Background())

	dbtest.ExpectQuery(mock, getAnimals).WillReturnError(errors.New("boom"))

	gw.Execute(ctx, sqlbuild.Read(getAnimals), "failed to retrieve animals")

	assert.Contains(t, reqBuf.String(), `"request_id":"r-1"`)
	assert.Empty(t, base.String())
}

func TestTruncate(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncate(short))

	long := make([]byte, maxLoggedStatement+10)
	for i := range long {
		long[i] = 'x'
	}
	got := truncate(string(long))
	assert.Len(t, got, maxLoggedStatement+3)
}
