package service

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"refpay/internal/domain"
)

type dialogPhase int

const (
	phaseIdle dialogPhase = iota
	phaseAwaitingAmount
	phaseAwaitingContact
)

// dialog is the tagged per-user state of the withdraw conversation.
// balance and minAmount are snapshotted when the dialog is entered; amount is
// set once the amount step is accepted.
type dialog struct {
	phase     dialogPhase
	balance   decimal.Decimal
	minAmount decimal.Decimal
	amount    decimal.Decimal
}

// applyAmount is the AwaitingAmount -> AwaitingContact transition as a pure
// function, so it is testable without a store. On rejection the returned
// dialog is unchanged and the outcome carries the valid range.
func applyAmount(d dialog, raw string) (dialog, domain.AmountOutcome) {
	if d.phase != phaseAwaitingAmount {
		return d, domain.AmountOutcome{Reason: domain.ReasonNotInProgress}
	}

	amount, ok := parseAmount(raw)
	if !ok {
		return d, domain.AmountOutcome{
			Reason:    domain.ReasonInvalidFormat,
			Balance:   d.balance,
			MinAmount: d.minAmount,
		}
	}

	if amount.LessThan(d.minAmount) || amount.GreaterThan(d.balance) {
		return d, domain.AmountOutcome{
			Reason:    domain.ReasonOutOfRange,
			Amount:    amount,
			Balance:   d.balance,
			MinAmount: d.minAmount,
		}
	}

	next := dialog{
		phase:     phaseAwaitingContact,
		balance:   d.balance,
		minAmount: d.minAmount,
		amount:    amount,
	}
	return next, domain.AmountOutcome{
		Accepted:  true,
		Amount:    amount,
		Balance:   d.balance,
		MinAmount: d.minAmount,
	}
}

// parseAmount normalizes a user-typed amount: trims, accepts comma as the
// decimal separator, requires a strictly positive number.
func parseAmount(raw string) (decimal.Decimal, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

const contactMinLen = 5

// normalizeContact trims the contact and enforces the minimum length. The
// upper bound is display-only and handled at render time.
func normalizeContact(raw string) (string, bool) {
	contact := strings.TrimSpace(raw)
	if utf8.RuneCountInString(contact) < contactMinLen {
		return "", false
	}
	return contact, true
}

// dialogStore keeps per-user dialog state. It is process-local; the zero
// value of dialog (phaseIdle) is what absent users get.
type dialogStore struct {
	mu     sync.Mutex
	byUser map[int64]dialog
}

func newDialogStore() *dialogStore {
	return &dialogStore{byUser: make(map[int64]dialog)}
}

func (s *dialogStore) get(userID int64) dialog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byUser[userID]
}

func (s *dialogStore) put(userID int64, d dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = d
}

func (s *dialogStore) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}
