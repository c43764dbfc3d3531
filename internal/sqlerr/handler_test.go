package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/errs"
	"github.com/deppfellow/bctw-api/internal/rowset"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

func dbErr(cause error) error {
	return &database.DatabaseError{Message: "failed to add collar(s)", Cause: cause}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		message  string
		override bool
	}{
		{
			name:     "stored function exception",
			err:      dbErr(&pgconn.PgError{Code: "P0001", Severity: "ERROR", Message: "device 101 is already attached"}),
			status:   http.StatusBadRequest,
			code:     CodeRejected,
			message:  "device 101 is already attached",
			override: true,
		},
		{
			name:     "unique violation names the column",
			err:      dbErr(&pgconn.PgError{Code: "23505", TableName: "collars", ConstraintName: "collars_device_key"}),
			status:   http.StatusBadRequest,
			code:     "COLLAR_ALREADY_EXISTS",
			message:  "A Collar with this Device already exists",
			override: true,
		},
		{
			name:    "foreign key violation",
			err:     dbErr(&pgconn.PgError{Code: "23503", TableName: "collar_animal_assignment", ColumnName: "critter_id"}),
			status:  http.StatusBadRequest,
			code:    "COLLAR_ANIMAL_ASSIGNMENT_NOT_FOUND",
			message: "The referenced Critter does not exist",
		},
		{
			name:     "not null violation",
			err:      dbErr(&pgconn.PgError{Code: "23502", TableName: "animal", ColumnName: "species"}),
			status:   http.StatusBadRequest,
			code:     "ANIMAL_REQUIRED",
			message:  "The Species is required",
			override: true,
		},
		{
			name:     "insufficient privilege",
			err:      dbErr(&pgconn.PgError{Code: "42501", Message: "user does not have edit permission"}),
			status:   http.StatusForbidden,
			code:     "FORBIDDEN",
			message:  "user does not have edit permission",
			override: true,
		},
		{
			name:     "malformed value",
			err:      dbErr(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "x"`}),
			status:   http.StatusBadRequest,
			code:     CodeInvalidVal,
			message:  `invalid input syntax for type uuid: "x"`,
			override: true,
		},
		{
			name:    "statement timeout",
			err:     dbErr(&pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}),
			status:  http.StatusServiceUnavailable,
			code:    CodeUnavailable,
			message: "The database did not respond in time",
		},
		{
			name:    "unknown sqlstate",
			err:     dbErr(&pgconn.PgError{Code: "XX000", Message: "internal"}),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_SERVER_ERROR",
			message: "Internal Server Error",
		},
		{
			name:    "pool exhausted",
			err:     dbErr(fmt.Errorf("acquire: %w", context.DeadlineExceeded)),
			status:  http.StatusServiceUnavailable,
			code:    "SERVICE_UNAVAILABLE",
			message: "The database did not respond in time",
		},
		{
			name:    "other database failure",
			err:     dbErr(errors.New("conn closed")),
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_SERVER_ERROR",
			message: "Internal Server Error",
		},
		{
			name:     "encoding",
			err:      fmt.Errorf("argument 2 of add_collar: %w", &sqlbuild.EncodingError{Value: "x\x00", Reason: "string contains NUL"}),
			status:   http.StatusBadRequest,
			code:     CodeInvalidVal,
			message:  "Unsupported value: string contains NUL",
			override: true,
		},
		{
			name:     "unknown filter field",
			err:      fmt.Errorf("%w: %q", sqlbuild.ErrUnknownField, "password"),
			status:   http.StatusBadRequest,
			code:     CodeInvalidFilt,
			message:  `unknown field: "password"`,
			override: true,
		},
		{
			name:    "shape mismatch",
			err:     &rowset.ShapeMismatchError{Function: "get_animals", Want: rowset.List, Reason: "column get_animals is absent"},
			status:  http.StatusInternalServerError,
			code:    "INTERNAL_SERVER_ERROR",
			message: "Internal Server Error",
		},
		{
			name:    "no rows",
			err:     pgx.ErrNoRows,
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "Resource not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.ErrorAs(t, HandleError(test.err), &httpErr)
			assert.Equal(t, test.status, httpErr.Status)
			assert.Equal(t, test.code, httpErr.Code)
			assert.Equal(t, test.message, httpErr.Message)
			assert.Equal(t, test.override, httpErr.Override)
		})
	}
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewForbiddenError("nope", true)
	assert.Same(t, original, HandleError(original))
}

func TestHandleError_NotNullCarriesFieldError(t *testing.T) {
	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(&pgconn.PgError{Code: "23502", ColumnName: "Device_ID"}), &httpErr)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, errs.FieldError{Field: "device_id", Error: "is required"}, httpErr.Errors[0])
}

func TestMapCodeAndSeverity(t *testing.T) {
	assert.Equal(t, RaiseException, MapCode("P0001"))
	assert.Equal(t, ConnectionFailure, MapCode("08006"))
	assert.Equal(t, Other, MapCode("99999"))

	assert.Equal(t, SeverityFatal, MapSeverity("fatal"))
	assert.Equal(t, SeverityError, MapSeverity("SOMETHING"))
}

func TestErrCode(t *testing.T) {
	converted := ConvertPgError(&pgconn.PgError{Code: "23514", Severity: "ERROR", Message: "bad"})
	assert.Equal(t, CheckViolation, ErrCode(fmt.Errorf("wrapped: %w", converted)))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))
	assert.Equal(t, "ERROR 23514: bad", converted.Error())
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "email", extractColumnForUniqueViolation("unique_users_email"))
	assert.Equal(t, "device", extractColumnForUniqueViolation("collar_device_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation("collar_pkey"))
	assert.Equal(t, "", extractColumnForUniqueViolation(""))
}
