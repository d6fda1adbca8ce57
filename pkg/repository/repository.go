package repository

import (
	"context"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access operations.
type AccountRepository interface {
	// Get returns the committed account without locking it.
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetForUpdate locks the account row until the enclosing unit of work
	// ends. Acquisition is bounded and fails with domain.ErrAccountLockTimeout.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	// Save persists balance and status and bumps Version.
	Save(ctx context.Context, account *domain.Account) error
}

// TransactionRepository defines the interface for transaction data access operations.
type TransactionRepository interface {
	Save(ctx context.Context, tx *domain.Transaction) error
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	// DebitSumSince sums SUCCESS debits from accountID created at or after since.
	DebitSumSince(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error)
	// ListByAccountAndRange returns transactions touching accountID created
	// within [start, end], newest first.
	ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error)
}

// DailyLimitRepository defines the interface for daily debit counters.
type DailyLimitRepository interface {
	// GetForUpdate returns the locked counter for the day of date, or a new
	// zero counter when none exists yet.
	GetForUpdate(ctx context.Context, accountID uuid.UUID, date time.Time) (*domain.DailyLimitCounter, error)
	Save(ctx context.Context, counter *domain.DailyLimitCounter) error
}

// NotificationRepository defines the interface for notification records.
type NotificationRepository interface {
	Save(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
}
