package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusPaid     RequestStatus = "paid"
	StatusRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from the status.
func (s RequestStatus) Terminal() bool {
	return s == StatusPaid || s == StatusRejected
}

// WithdrawRequest is a user's claim against referral balance awaiting admin
// resolution. Amount and contact are fixed at creation; the processed* fields
// are written exactly once, on the single transition out of pending.
type WithdrawRequest struct {
	ID                 uuid.UUID
	UserID             int64
	Amount             decimal.Decimal
	Contact            string
	Status             RequestStatus
	CreatedAt          time.Time
	ProcessedAt        *time.Time
	ProcessedByAdminID *int64
	AdminComment       *string

	// Display info joined from the users table on reads.
	Username  string
	FirstName string
}

// contactPreviewMax bounds the contact preview rendered to admins. Stored
// contacts keep their full length.
const contactPreviewMax = 200

// ContactPreview returns the trimmed contact, truncated with an ellipsis
// beyond 200 characters. Display-only rule; the stored value is untouched.
func (r *WithdrawRequest) ContactPreview() string {
	c := strings.TrimSpace(r.Contact)
	if utf8.RuneCountInString(c) <= contactPreviewMax {
		return c
	}
	return string([]rune(c)[:contactPreviewMax]) + "…"
}

// StepReason classifies why a workflow step was not accepted. Empty on success.
type StepReason string

const (
	ReasonPendingExists   StepReason = "pending_exists"
	ReasonBelowMinimum    StepReason = "below_minimum"
	ReasonInvalidFormat   StepReason = "invalid_format"
	ReasonOutOfRange      StepReason = "out_of_range"
	ReasonContactTooShort StepReason = "contact_too_short"
	ReasonNotInProgress   StepReason = "not_in_progress"
)

// StartOutcome reports whether the withdraw dialog was entered; on success it
// carries the balance snapshot and configured minimum for the prompt.
type StartOutcome struct {
	Accepted  bool            `json:"accepted"`
	Reason    StepReason      `json:"reason,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	MinAmount decimal.Decimal `json:"min_amount"`
	Currency  string          `json:"currency,omitempty"`
}

// AmountOutcome reports the amount step; on rejection it carries the valid
// range for the re-prompt.
type AmountOutcome struct {
	Accepted  bool            `json:"accepted"`
	Reason    StepReason      `json:"reason,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	MinAmount decimal.Decimal `json:"min_amount"`
}

// SubmitOutcome reports the contact step and, on success, the created request.
type SubmitOutcome struct {
	Accepted  bool            `json:"accepted"`
	Reason    StepReason      `json:"reason,omitempty"`
	RequestID uuid.UUID       `json:"request_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency,omitempty"`
}

// RequestSummary is the admin-facing projection of a request.
type RequestSummary struct {
	ID             uuid.UUID       `json:"id"`
	UserID         int64           `json:"user_id"`
	Username       string          `json:"username,omitempty"`
	FirstName      string          `json:"first_name,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	ContactPreview string          `json:"contact_preview"`
	Status         RequestStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PendingPage is one page of the admin review queue.
type PendingPage struct {
	Items       []RequestSummary `json:"items"`
	TotalCount  int              `json:"total_count"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
}

type ReviewAction string

const (
	ActionPay    ReviewAction = "pay"
	ActionReject ReviewAction = "reject"
)

// Resolution is the outcome of an admin pay/reject action.
type Resolution struct {
	RequestID uuid.UUID     `json:"request_id"`
	Action    ReviewAction  `json:"action"`
	NewStatus RequestStatus `json:"new_status"`
}
