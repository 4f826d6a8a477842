package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"refpay/internal/domain"
	"refpay/internal/port"
)

type balanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) port.BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	const query = `SELECT referral_balance FROM users WHERE id = $1`

	var balance decimal.Decimal
	err := pick(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, domain.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get referral balance: %w", err)
	}
	return balance, nil
}

// Adjust applies a signed delta and returns the new balance. It deliberately
// enforces no floor; the caller owns floor semantics.
func (r *balanceRepository) Adjust(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	const query = `UPDATE users
	SET referral_balance = referral_balance + $1
	WHERE id = $2
	RETURNING referral_balance`

	var balance decimal.Decimal
	err := pick(ctx, r.db).QueryRowContext(ctx, query, delta, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, domain.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("adjust referral balance: %w", err)
	}
	return balance, nil
}

// WithLock serializes balance work for one user: it takes a row lock on the
// user inside a transaction and runs fn with that transaction in the ctx.
func (r *balanceRepository) WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	return runInTx(ctx, r.db, func(txCtx context.Context) error {
		tr, _ := getTr(txCtx)

		var id int64
		err := tr.QueryRowContext(txCtx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("lock user row: %w", err)
		}

		return fn(txCtx)
	})
}
