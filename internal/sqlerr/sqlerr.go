// Package sqlerr translates database and query-construction errors into
// client-facing errs.HTTPError values.
//
// PostgreSQL reports failures as SQLSTATE codes. The stored functions behind
// the API raise their own exceptions (SQLSTATE P0001) with a message meant
// for the user, so those pass through as 400s; constraint violations get a
// generated code and a humanized message; everything else becomes a 500
// without leaking driver detail.
package sqlerr

import (
	"fmt"
	"strings"
)

// Code is the category of a PostgreSQL error.
type Code string

const (
	Other                 Code = "other"
	NotNullViolation      Code = "not_null_violation"
	ForeignKeyViolation   Code = "foreign_key_violation"
	UniqueViolation       Code = "unique_violation"
	CheckViolation        Code = "check_violation"
	ExclusionViolation    Code = "exclusion_violation"
	RaiseException        Code = "raise_exception"
	InsufficientPrivilege Code = "insufficient_privilege"
	InvalidTextFormat     Code = "invalid_text_representation"
	InvalidDatetimeFormat Code = "invalid_datetime_format"
	QueryCanceled         Code = "query_canceled"
	UndefinedFunction     Code = "undefined_function"
	ConnectionFailure     Code = "connection_failure"
)

var sqlStates = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"P0001": RaiseException,
	"42501": InsufficientPrivilege,
	"22P02": InvalidTextFormat,
	"22007": InvalidDatetimeFormat,
	"22008": InvalidDatetimeFormat,
	"57014": QueryCanceled,
	"42883": UndefinedFunction,
}

// MapCode maps a SQLSTATE onto a Code. Class 08 (connection exception) maps
// to ConnectionFailure; unknown states map to Other.
func MapCode(sqlState string) Code {
	if code, ok := sqlStates[sqlState]; ok {
		return code
	}
	if strings.HasPrefix(sqlState, "08") {
		return ConnectionFailure
	}
	return Other
}

// Severity is the severity PostgreSQL attached to an error.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity maps the server's severity text onto a Severity, defaulting
// to SeverityError.
func MapSeverity(severity string) Severity {
	switch s := Severity(strings.ToUpper(severity)); s {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return s
	}
	return SeverityError
}

// Error is a classified PostgreSQL error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	Detail         string
	Hint           string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}
