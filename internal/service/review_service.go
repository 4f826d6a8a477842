package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"refpay/internal/domain"
	"refpay/internal/port"
)

const defaultPageSize = 5

type reviewService struct {
	requests port.RequestRepository
	balances port.BalanceRepository
	tx       port.TxManager
	pageSize int
	logger   *log.Logger
}

func NewReviewService(
	requests port.RequestRepository,
	balances port.BalanceRepository,
	tx port.TxManager,
	pageSize int,
	logger *log.Logger,
) port.ReviewService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &reviewService{
		requests: requests,
		balances: balances,
		tx:       tx,
		pageSize: pageSize,
		logger:   logger,
	}
}

// ListPending returns one page of pending requests, most recent first.
// totalPages is never below 1 so an empty queue still renders as page 1/1.
func (s *reviewService) ListPending(ctx context.Context, page int) (domain.PendingPage, error) {
	if page < 0 {
		page = 0
	}

	total, err := s.requests.CountByStatus(ctx, domain.StatusPending)
	if err != nil {
		return domain.PendingPage{}, err
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	requests, err := s.requests.ListByStatus(ctx, domain.StatusPending, s.pageSize, page*s.pageSize)
	if err != nil {
		return domain.PendingPage{}, err
	}

	items := make([]domain.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, toSummary(&requests[i]))
	}

	return domain.PendingPage{
		Items:       items,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

// Resolve applies an admin pay/reject action exactly once. Pay never touches
// the ledger; reject credits the amount back in the same transaction as the
// status transition. The one exception: when the user row is gone the refund
// is logged and the rejection still commits, so the request cannot get stuck
// pending. That discrepancy goes to manual reconciliation.
func (s *reviewService) Resolve(ctx context.Context, id uuid.UUID, action domain.ReviewAction, adminID int64, comment string) (domain.Resolution, error) {
	var updated *domain.WithdrawRequest
	var err error

	switch action {
	case domain.ActionPay:
		updated, err = s.requests.Transition(ctx, id, domain.StatusPaid, adminID, comment)

	case domain.ActionReject:
		err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
			rejected, err := s.requests.Transition(txCtx, id, domain.StatusRejected, adminID, comment)
			if err != nil {
				return err
			}
			updated = rejected
			if _, err := s.balances.Adjust(txCtx, updated.UserID, updated.Amount); err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					s.logger.Printf("refund of %s for rejected request %s failed: %v", updated.Amount, id, err)
					return nil
				}
				return err
			}
			return nil
		})

	default:
		return domain.Resolution{}, domain.ErrUnknownAction
	}

	if err != nil {
		return domain.Resolution{}, err
	}

	s.logger.Printf("withdraw request %s resolved as %s by admin %d", id, updated.Status, adminID)

	return domain.Resolution{
		RequestID: id,
		Action:    action,
		NewStatus: updated.Status,
	}, nil
}

func toSummary(r *domain.WithdrawRequest) domain.RequestSummary {
	return domain.RequestSummary{
		ID:             r.ID,
		UserID:         r.UserID,
		Username:       r.Username,
		FirstName:      r.FirstName,
		Amount:         r.Amount,
		ContactPreview: r.ContactPreview(),
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	}
}
