package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusClosed   AccountStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusClosed:
		return true
	}
	return false
}

// Account is a customer account holding a single balance.
//
// Invariants:
//   - Balance is never negative.
//   - Version increases by one on every persisted change.
//   - Accounts are never deleted, only moved to INACTIVE or CLOSED.
type Account struct {
	ID           uuid.UUID
	Number       string
	CustomerName string
	Email        string
	Mobile       string
	Balance      decimal.Decimal
	Status       AccountStatus
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount builds an ACTIVE account with a generated id and number.
func NewAccount(customerName, email, mobile string, opening decimal.Decimal, now time.Time) (*Account, error) {
	if opening.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", ErrValidationFailed)
	}
	id := uuid.New()
	return &Account{
		ID:           id,
		Number:       NewAccountNumber(id),
		CustomerName: customerName,
		Email:        email,
		Mobile:       mobile,
		Balance:      opening.Round(2),
		Status:       AccountStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewAccountNumber derives a 12 digit account number from an account id.
func NewAccountNumber(id uuid.UUID) string {
	var n uint64
	for _, b := range id[:8] {
		n = n<<8 | uint64(b)
	}
	return fmt.Sprintf("SB%012d", n%1_000_000_000_000)
}

// IsActive reports whether the account accepts transactions.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Debit removes amount from the balance.
func (a *Account) Debit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return Reject(ErrInsufficientBalance, "Insufficient balance. Available: %s, Required: %s",
			a.Balance.StringFixed(2), amount.StringFixed(2))
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}
