package domain

import (
	"bytes"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind selects the payment strategy for a transaction.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "DEPOSIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
	KindTransfer   TransactionKind = "TRANSFER"
)

// Column widths of the persisted free-text fields.
const (
	MaxDescriptionLength = 500
	MaxReasonLength      = 500
)

// TransactionStatus is PENDING until the engine reaches a terminal state.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// Transaction is one requested balance movement and its outcome.
type Transaction struct {
	ID            uuid.UUID
	Reference     string
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        decimal.Decimal
	Kind          TransactionKind
	Status        TransactionStatus
	Description   string
	ErrorMessage  string
	CreatedAt     time.Time
}

// NewTransaction returns a PENDING transaction with a fresh reference.
func NewTransaction(
	kind TransactionKind,
	from, to *uuid.UUID,
	amount decimal.Decimal,
	description string,
	now time.Time,
) *Transaction {
	return &Transaction{
		ID:            uuid.New(),
		Reference:     NewReference(now),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Kind:          kind,
		Status:        StatusPending,
		Description:   clip(description, MaxDescriptionLength),
		CreatedAt:     now,
	}
}

// NewReference returns "TXN" followed by the epoch millis and 32 upper-case
// hex characters of a random uuid.
func NewReference(now time.Time) string {
	u := uuid.New()
	return "TXN" + strconv.FormatInt(now.UnixMilli(), 10) +
		strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
}

// Fail moves the transaction to FAILED with reason.
func (t *Transaction) Fail(reason string) {
	t.Status = StatusFailed
	t.ErrorMessage = clip(reason, MaxReasonLength)
}

// clip truncates s to at most n characters.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Succeed moves the transaction to SUCCESS.
func (t *Transaction) Succeed() {
	t.Status = StatusSuccess
	t.ErrorMessage = ""
}

// IsDebit reports whether the transaction removes funds from a source account.
func (t *Transaction) IsDebit() bool {
	return t.FromAccountID != nil
}

// PrimaryAccountID is the account whose balance is reported back to the
// caller: the source when present, otherwise the destination.
func (t *Transaction) PrimaryAccountID() uuid.UUID {
	if t.FromAccountID != nil {
		return *t.FromAccountID
	}
	if t.ToAccountID != nil {
		return *t.ToAccountID
	}
	return uuid.Nil
}

// LockOrder returns the distinct accounts touched by the transaction in
// ascending byte order. Every caller locks in this order.
func (t *Transaction) LockOrder() []uuid.UUID {
	ids := make([]uuid.UUID, 0, 2)
	if t.FromAccountID != nil {
		ids = append(ids, *t.FromAccountID)
	}
	if t.ToAccountID != nil {
		if len(ids) == 0 || ids[0] != *t.ToAccountID {
			ids = append(ids, *t.ToAccountID)
		}
	}
	if len(ids) == 2 && bytes.Compare(ids[0][:], ids[1][:]) > 0 {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return ids
}

// Touches reports whether the transaction references account id.
func (t *Transaction) Touches(id uuid.UUID) bool {
	return (t.FromAccountID != nil && *t.FromAccountID == id) ||
		(t.ToAccountID != nil && *t.ToAccountID == id)
}
