package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"refpay/internal/domain"
)

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) CreatePending(ctx context.Context, r *domain.WithdrawRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WithdrawRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawRequest), args.Error(1)
}

func (m *MockRequestRepository) GetPendingByUser(ctx context.Context, userID int64) (*domain.WithdrawRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawRequest), args.Error(1)
}

func (m *MockRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus, limit, offset int) ([]domain.WithdrawRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WithdrawRequest), args.Error(1)
}

func (m *MockRequestRepository) CountByStatus(ctx context.Context, status domain.RequestStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockRequestRepository) Transition(ctx context.Context, id uuid.UUID, newStatus domain.RequestStatus, adminID int64, comment string) (*domain.WithdrawRequest, error) {
	args := m.Called(ctx, id, newStatus, adminID, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawRequest), args.Error(1)
}

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceRepository) Adjust(ctx context.Context, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBalanceRepository) WithLock(ctx context.Context, userID int64, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, userID, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
