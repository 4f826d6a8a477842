package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"refpay/internal/port"
)

type ctxtype string

const (
	trKey ctxtype = "tx"
)

var (
	uniqueConstraint pq.ErrorCode = "23505"
)

// querier is the subset of *sql.DB / *sql.Tx the repositories need, so every
// method can run inside or outside a transaction transparently.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTr(ctx context.Context) (*sql.Tx, bool) {
	tr, ok := ctx.Value(trKey).(*sql.Tx)
	return tr, ok
}

// pick returns the ambient transaction when the ctx carries one, otherwise
// the pool itself.
func pick(ctx context.Context, db *sql.DB) querier {
	if tr, ok := getTr(ctx); ok {
		return tr
	}
	return db
}

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueConstraint && pqErr.Constraint == constraint
}

type txManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) port.TxManager {
	return &txManager{db: db}
}

// WithinTx begins a transaction, stashes it in the ctx handed to fn so that
// repository calls join it, and commits only when fn returns nil.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return runInTx(ctx, m.db, fn)
}

func runInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txCtx := context.WithValue(ctx, trKey, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
