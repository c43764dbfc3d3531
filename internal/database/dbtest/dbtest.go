// Package dbtest holds pgxmock helpers for packages that test through the
// execution gateway.
package dbtest

import (
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

type queryExpecter interface {
	ExpectQuery(expectedSQL string) *pgxmock.ExpectedQuery
}

// ExpectQuery expects sql the way the gateway sends it: with every value
// inlined and the simple protocol requested as the only argument.
func ExpectQuery(mock queryExpecter, sql string) *pgxmock.ExpectedQuery {
	return mock.ExpectQuery(sql).WithArgs(pgx.QueryExecModeSimpleProtocol)
}
