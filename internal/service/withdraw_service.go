package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"refpay/internal/domain"
	"refpay/internal/port"
)

// errAmountOutOfRange signals that the re-read balance no longer covers the
// amount picked earlier in the dialog. Internal to the submit transaction.
var errAmountOutOfRange = errors.New("amount out of range at submit")

type withdrawService struct {
	requests  port.RequestRepository
	balances  port.BalanceRepository
	dialogs   *dialogStore
	minAmount decimal.Decimal
	currency  string
	logger    *log.Logger
}

func NewWithdrawService(
	requests port.RequestRepository,
	balances port.BalanceRepository,
	minAmount decimal.Decimal,
	currency string,
	logger *log.Logger,
) port.WithdrawService {
	if logger == nil {
		logger = log.Default()
	}
	return &withdrawService{
		requests:  requests,
		balances:  balances,
		dialogs:   newDialogStore(),
		minAmount: minAmount,
		currency:  currency,
		logger:    logger,
	}
}

// Start enters the withdraw dialog: no existing pending request, balance at
// least the configured minimum. On success the balance and minimum are
// snapshotted into the dialog for the amount step.
func (s *withdrawService) Start(ctx context.Context, userID int64) (domain.StartOutcome, error) {
	pending, err := s.requests.GetPendingByUser(ctx, userID)
	if err != nil {
		return domain.StartOutcome{}, err
	}
	if pending != nil {
		return domain.StartOutcome{Reason: domain.ReasonPendingExists}, nil
	}

	balance, err := s.balances.GetBalance(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		balance = decimal.Zero
	} else if err != nil {
		return domain.StartOutcome{}, err
	}

	if balance.LessThan(s.minAmount) {
		return domain.StartOutcome{
			Reason:    domain.ReasonBelowMinimum,
			Balance:   balance,
			MinAmount: s.minAmount,
			Currency:  s.currency,
		}, nil
	}

	s.dialogs.put(userID, dialog{
		phase:     phaseAwaitingAmount,
		balance:   balance,
		minAmount: s.minAmount,
	})

	return domain.StartOutcome{
		Accepted:  true,
		Balance:   balance,
		MinAmount: s.minAmount,
		Currency:  s.currency,
	}, nil
}

// SubmitAmount runs the amount step against the dialog snapshot. A rejected
// amount leaves the dialog where it is so the user can retype.
func (s *withdrawService) SubmitAmount(ctx context.Context, userID int64, raw string) (domain.AmountOutcome, error) {
	d := s.dialogs.get(userID)
	next, out := applyAmount(d, raw)
	if out.Accepted {
		s.dialogs.put(userID, next)
	}
	return out, nil
}

// SubmitContact finishes the dialog: validates the contact, re-checks the
// pending invariant and the live balance, then debits and creates the request
// as one transaction. The dialog is cleared on every exit path except a
// re-promptable contact rejection.
func (s *withdrawService) SubmitContact(ctx context.Context, userID int64, raw string) (domain.SubmitOutcome, error) {
	d := s.dialogs.get(userID)
	if d.phase != phaseAwaitingContact {
		return domain.SubmitOutcome{Reason: domain.ReasonNotInProgress}, nil
	}

	contact, ok := normalizeContact(raw)
	if !ok {
		return domain.SubmitOutcome{Reason: domain.ReasonContactTooShort}, nil
	}

	// A second dialog opened elsewhere may have submitted already; catch the
	// common case cheaply here, the unique index catches the true race below.
	pending, err := s.requests.GetPendingByUser(ctx, userID)
	if err != nil {
		s.dialogs.clear(userID)
		return domain.SubmitOutcome{}, err
	}
	if pending != nil {
		s.dialogs.clear(userID)
		return domain.SubmitOutcome{Reason: domain.ReasonPendingExists}, nil
	}

	var req *domain.WithdrawRequest
	err = s.balances.WithLock(ctx, userID, func(txCtx context.Context) error {
		balance, err := s.balances.GetBalance(txCtx, userID)
		if err != nil {
			return err
		}
		if !d.amount.IsPositive() || d.amount.GreaterThan(balance) {
			return errAmountOutOfRange
		}

		req = &domain.WithdrawRequest{
			ID:        uuid.New(),
			UserID:    userID,
			Amount:    d.amount,
			Contact:   contact,
			Status:    domain.StatusPending,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.requests.CreatePending(txCtx, req); err != nil {
			return err
		}

		if _, err := s.balances.Adjust(txCtx, userID, d.amount.Neg()); err != nil {
			return err
		}
		return nil
	})

	s.dialogs.clear(userID)

	if err != nil {
		switch {
		case errors.Is(err, errAmountOutOfRange):
			return domain.SubmitOutcome{Reason: domain.ReasonOutOfRange, Amount: d.amount}, nil
		case errors.Is(err, domain.ErrDuplicatePending):
			return domain.SubmitOutcome{Reason: domain.ReasonPendingExists}, nil
		default:
			return domain.SubmitOutcome{}, err
		}
	}

	s.logger.Printf("withdraw request %s created for user %d (amount=%s)", req.ID, userID, req.Amount)

	return domain.SubmitOutcome{
		Accepted:  true,
		RequestID: req.ID,
		Amount:    req.Amount,
		Currency:  s.currency,
	}, nil
}

// Cancel discards any accumulated dialog input and returns the user to idle.
func (s *withdrawService) Cancel(ctx context.Context, userID int64) {
	s.dialogs.clear(userID)
}
