package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"refpay/internal/domain"
)

// RequestRepository persists withdraw requests. Implementations must enforce
// the at-most-one-pending-per-user rule inside CreatePending itself, not via
// a separate check, so concurrent callers cannot both succeed.
type RequestRepository interface {
	CreatePending(ctx context.Context, r *domain.WithdrawRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawRequest, error)
	GetPendingByUser(ctx context.Context, userID int64) (*domain.WithdrawRequest, error)
	ListByStatus(ctx context.Context, status domain.RequestStatus, limit, offset int) ([]domain.WithdrawRequest, error)
	CountByStatus(ctx context.Context, status domain.RequestStatus) (int, error)
	Transition(ctx context.Context, id uuid.UUID, newStatus domain.RequestStatus, adminID int64, comment string) (*domain.WithdrawRequest, error)
}

// BalanceRepository owns the referral balance ledger. Adjust applies a signed
// delta without a floor check; callers decide floor semantics. WithLock runs
// fn inside a transaction holding a row lock on the user, and repository
// calls made with the ctx passed to fn join that transaction.
type BalanceRepository interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Adjust(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error)
	WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error
}

// TxManager runs fn inside a plain transaction with the same ctx propagation
// as BalanceRepository.WithLock, for units that do not revolve around one
// user row.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
