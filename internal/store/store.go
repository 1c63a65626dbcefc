// Package store provides database access methods for all Pawtal entities.
// Each store struct wraps a Querier and exposes typed query methods.
// Stores bound to a *sql.DB run each statement in its own implicit
// transaction; WithTx rebinds a store to an open transaction so that a
// content write and its revision commit or roll back together.
package store

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
