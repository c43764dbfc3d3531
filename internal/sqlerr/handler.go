package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/errs"
	"github.com/deppfellow/bctw-api/internal/rowset"
	"github.com/deppfellow/bctw-api/internal/sqlbuild"
)

// Codes of errors that do not come from a table constraint.
const (
	CodeRejected    = "REQUEST_REJECTED"
	CodeInvalidVal  = "INVALID_VALUE"
	CodeInvalidFilt = "INVALID_FILTER"
	CodeUnavailable = "DATABASE_UNAVAILABLE"
)

// ErrCode reports the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError classifies a raw PostgreSQL error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		Detail:         src.Detail,
		Hint:           src.Hint,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds <DOMAIN>_<ACTION>, e.g. collars + UniqueViolation
// gives COLLAR_ALREADY_EXISTS.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation, ExclusionViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case ExclusionViolation:
		return fmt.Sprintf("The %s overlaps an existing one", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers a *_id column ("critter_id" gives "Critter"), then
// the singularized table name, then "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns "data_life_start" into "Data Life Start".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var constraintColumn = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// extractColumnForUniqueViolation reads the column from constraint names
// shaped unique_<table>_<column> or <table>_<column>_key.
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := constraintColumn.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts an error from a repository or service into an
// *errs.HTTPError.
//
//   - *errs.HTTPError passes through unchanged
//   - *sqlbuild.EncodingError and rejected filters become 400s
//   - result shape mismatches become 500s (the caller and the stored
//     function disagree; nothing the client can fix)
//   - PostgreSQL errors are mapped by SQLSTATE
//   - timeouts and connection failures become 503s
//   - anything else becomes a generic 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var encErr *sqlbuild.EncodingError
	if errors.As(err, &encErr) {
		code := CodeInvalidVal
		return errs.NewBadRequestError(fmt.Sprintf("Unsupported value: %s", encErr.Reason), true, &code, nil, nil)
	}

	if errors.Is(err, sqlbuild.ErrUnknownField) || errors.Is(err, sqlbuild.ErrInvalidFilter) {
		code := CodeInvalidFilt
		return errs.NewBadRequestError(err.Error(), true, &code, nil, nil)
	}

	if errors.Is(err, rowset.ErrShapeMismatch) {
		return errs.NewInternalServerError()
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromPgError(ConvertPgError(pgerr))
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errs.NewServiceUnavailableError("The database did not respond in time")
	}

	var dbErr *database.DatabaseError
	if errors.As(err, &dbErr) {
		var connErr *pgconn.ConnectError
		if errors.As(err, &connErr) {
			return errs.NewServiceUnavailableError("The database is unavailable")
		}
		return errs.NewInternalServerError()
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

func fromPgError(sqlErr *Error) error {
	errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	userMessage := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case RaiseException:
		// Stored functions raise with a message written for the user.
		code := CodeRejected
		return errs.NewBadRequestError(sqlErr.Message, true, &code, nil, nil)

	case InsufficientPrivilege:
		return errs.NewForbiddenError(sqlErr.Message, true)

	case InvalidTextFormat, InvalidDatetimeFormat:
		code := CodeInvalidVal
		return errs.NewBadRequestError(sqlErr.Message, true, &code, nil, nil)

	case ForeignKeyViolation:
		return errs.NewBadRequestError(userMessage, false, &errorCode, nil, nil)

	case UniqueViolation:
		if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
			userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
		}
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

	case ExclusionViolation, CheckViolation:
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

	case NotNullViolation:
		fieldErrors := []errs.FieldError{
			{
				Field: strings.ToLower(sqlErr.ColumnName),
				Error: "is required",
			},
		}
		return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

	case QueryCanceled, ConnectionFailure:
		code := CodeUnavailable
		unavailable := errs.NewServiceUnavailableError("The database did not respond in time")
		unavailable.Code = code
		return unavailable

	default:
		return errs.NewInternalServerError()
	}
}
