package storage

import (
	"context"
	"database/sql"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// Execer runs statements that do not return rows
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ExecQuerier combines Execer with sqlscan.Querier for operations that
// read before they write
type ExecQuerier interface {
	Execer
	sqlscan.Querier
}
