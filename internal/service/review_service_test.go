package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"refpay/internal/domain"
)

func pendingRequests(n int) []domain.WithdrawRequest {
	out := make([]domain.WithdrawRequest, n)
	for i := range out {
		out[i] = domain.WithdrawRequest{
			ID:        uuid.New(),
			UserID:    int64(100 + i),
			Amount:    decimal.NewFromInt(int64(200 + i)),
			Contact:   fmt.Sprintf("@user_%d", i),
			Status:    domain.StatusPending,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
			Username:  fmt.Sprintf("user%d", i),
		}
	}
	return out
}

func TestListPending_Pagination(t *testing.T) {
	requests := new(MockRequestRepository)
	svc := NewReviewService(requests, new(MockBalanceRepository), new(MockTxManager), 5, nil)

	requests.On("CountByStatus", mock.Anything, domain.StatusPending).Return(12, nil)
	requests.On("ListByStatus", mock.Anything, domain.StatusPending, 5, 0).
		Return(pendingRequests(5), nil)

	page, err := svc.ListPending(context.Background(), 0)

	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 12, page.TotalCount)
	assert.Equal(t, 0, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
}

func TestListPending_LastShortPage(t *testing.T) {
	requests := new(MockRequestRepository)
	svc := NewReviewService(requests, new(MockBalanceRepository), new(MockTxManager), 5, nil)

	requests.On("CountByStatus", mock.Anything, domain.StatusPending).Return(12, nil)
	requests.On("ListByStatus", mock.Anything, domain.StatusPending, 5, 10).
		Return(pendingRequests(2), nil)

	page, err := svc.ListPending(context.Background(), 2)

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
}

func TestListPending_EmptyQueue(t *testing.T) {
	requests := new(MockRequestRepository)
	svc := NewReviewService(requests, new(MockBalanceRepository), new(MockTxManager), 5, nil)

	requests.On("CountByStatus", mock.Anything, domain.StatusPending).Return(0, nil)
	requests.On("ListByStatus", mock.Anything, domain.StatusPending, 5, 0).
		Return([]domain.WithdrawRequest{}, nil)

	page, err := svc.ListPending(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages, "an empty queue still renders as one page")
}

func TestListPending_ContactPreviewTruncated(t *testing.T) {
	requests := new(MockRequestRepository)
	svc := NewReviewService(requests, new(MockBalanceRepository), new(MockTxManager), 5, nil)

	long := pendingRequests(1)
	long[0].Contact = strings.Repeat("x", 250)

	requests.On("CountByStatus", mock.Anything, domain.StatusPending).Return(1, nil)
	requests.On("ListByStatus", mock.Anything, domain.StatusPending, 5, 0).Return(long, nil)

	page, err := svc.ListPending(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, strings.Repeat("x", 200)+"…", page.Items[0].ContactPreview)
}

func TestResolve_PayDoesNotTouchLedger(t *testing.T) {
	requests := new(MockRequestRepository)
	balances := new(MockBalanceRepository)
	tx := new(MockTxManager)
	svc := NewReviewService(requests, balances, tx, 5, nil)

	id := uuid.New()
	paid := &domain.WithdrawRequest{ID: id, UserID: 7, Amount: decimal.NewFromInt(250), Status: domain.StatusPaid}
	requests.On("Transition", mock.Anything, id, domain.StatusPaid, int64(1), "").Return(paid, nil)

	out, err := svc.Resolve(context.Background(), id, domain.ActionPay, 1, "")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, out.NewStatus)
	assert.Equal(t, id, out.RequestID)
	balances.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "WithinTx", mock.Anything, mock.Anything)
}

func TestResolve_RejectRefundsExactAmount(t *testing.T) {
	requests := new(MockRequestRepository)
	balances := new(MockBalanceRepository)
	tx := new(MockTxManager)
	svc := NewReviewService(requests, balances, tx, 5, nil)

	id := uuid.New()
	amount := decimal.RequireFromString("250.50")
	rejected := &domain.WithdrawRequest{ID: id, UserID: 7, Amount: amount, Status: domain.StatusRejected}

	tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
	requests.On("Transition", mock.Anything, id, domain.StatusRejected, int64(1), "fraud").Return(rejected, nil)
	balances.On("Adjust", mock.Anything, int64(7), decimalEq(amount)).
		Return(decimal.NewFromInt(1000), nil)

	out, err := svc.Resolve(context.Background(), id, domain.ActionReject, 1, "fraud")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, out.NewStatus)
	balances.AssertExpectations(t)
}

func TestResolve_RejectSurvivesVanishedUser(t *testing.T) {
	requests := new(MockRequestRepository)
	balances := new(MockBalanceRepository)
	tx := new(MockTxManager)

	var logBuf bytes.Buffer
	logger := log.New(&logBuf, "", 0)
	svc := NewReviewService(requests, balances, tx, 5, logger)

	id := uuid.New()
	rejected := &domain.WithdrawRequest{ID: id, UserID: 7, Amount: decimal.NewFromInt(250), Status: domain.StatusRejected}

	tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
	requests.On("Transition", mock.Anything, id, domain.StatusRejected, int64(1), "").Return(rejected, nil)
	balances.On("Adjust", mock.Anything, int64(7), mock.Anything).
		Return(decimal.Zero, domain.ErrUserNotFound)

	out, err := svc.Resolve(context.Background(), id, domain.ActionReject, 1, "")

	require.NoError(t, err, "a failed refund must not undo the rejection")
	assert.Equal(t, domain.StatusRejected, out.NewStatus)
	assert.Contains(t, logBuf.String(), "refund", "the discrepancy must be logged for reconciliation")
}

func TestResolve_NotFound(t *testing.T) {
	requests := new(MockRequestRepository)
	svc := NewReviewService(requests, new(MockBalanceRepository), new(MockTxManager), 5, nil)

	id := uuid.New()
	requests.On("Transition", mock.Anything, id, domain.StatusPaid, int64(1), "").
		Return(nil, domain.ErrRequestNotFound)

	_, err := svc.Resolve(context.Background(), id, domain.ActionPay, 1, "")
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestResolve_AlreadyProcessed(t *testing.T) {
	requests := new(MockRequestRepository)
	balances := new(MockBalanceRepository)
	tx := new(MockTxManager)
	svc := NewReviewService(requests, balances, tx, 5, nil)

	id := uuid.New()
	tx.On("WithinTx", mock.Anything, mock.Anything).Return(nil)
	requests.On("Transition", mock.Anything, id, domain.StatusRejected, int64(2), "").
		Return(nil, domain.ErrRequestNotPending)

	_, err := svc.Resolve(context.Background(), id, domain.ActionReject, 2, "")

	assert.ErrorIs(t, err, domain.ErrRequestNotPending)
	balances.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_UnknownAction(t *testing.T) {
	svc := NewReviewService(new(MockRequestRepository), new(MockBalanceRepository), new(MockTxManager), 5, nil)

	_, err := svc.Resolve(context.Background(), uuid.New(), domain.ReviewAction("archive"), 1, "")
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

// Two admins race on the same request; the conditional transition lets
// exactly one through and the other sees NotPending.
func TestResolve_ConcurrentAdminsExactlyOneWins(t *testing.T) {
	requests := new(MockRequestRepository)
	balances := new(MockBalanceRepository)
	tx := new(MockTxManager)
	svc := NewReviewService(requests, balances, tx, 5, nil)

	id := uuid.New()
	paid := &domain.WithdrawRequest{ID: id, UserID: 7, Amount: decimal.NewFromInt(250), Status: domain.StatusPaid}

	requests.On("Transition", mock.Anything, id, domain.StatusPaid, mock.Anything, "").Return(paid, nil).Once()
	requests.On("Transition", mock.Anything, id, domain.StatusPaid, mock.Anything, "").
		Return(nil, domain.ErrRequestNotPending).Once()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for adminID := int64(1); adminID <= 2; adminID++ {
		wg.Add(1)
		go func(adminID int64) {
			defer wg.Done()
			_, err := svc.Resolve(context.Background(), id, domain.ActionPay, adminID, "")
			errs <- err
		}(adminID)
	}
	wg.Wait()
	close(errs)

	wins, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, domain.ErrRequestNotPending):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
}
