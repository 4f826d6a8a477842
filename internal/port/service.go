package port

import (
	"context"

	"github.com/google/uuid"

	"refpay/internal/domain"
)

// WithdrawService drives the per-user withdraw dialog. Validation failures
// come back as rejected outcomes, not errors; errors mean storage trouble.
type WithdrawService interface {
	Start(ctx context.Context, userID int64) (domain.StartOutcome, error)
	SubmitAmount(ctx context.Context, userID int64, raw string) (domain.AmountOutcome, error)
	SubmitContact(ctx context.Context, userID int64, raw string) (domain.SubmitOutcome, error)
	Cancel(ctx context.Context, userID int64)
}

// ReviewService is the admin side: paging over pending requests and
// resolving them.
type ReviewService interface {
	ListPending(ctx context.Context, page int) (domain.PendingPage, error)
	Resolve(ctx context.Context, id uuid.UUID, action domain.ReviewAction, adminID int64, comment string) (domain.Resolution, error)
}
