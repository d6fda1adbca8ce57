package validation

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountRule rejects amounts outside [Min, Max].
type AmountRule struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (AmountRule) Name() string { return "amount" }

func (r AmountRule) Validate(_ context.Context, tx *domain.Transaction, _ State) error {
	switch {
	case !tx.Amount.IsPositive(), tx.Amount.LessThan(r.Min):
		return domain.Reject(domain.ErrValidationFailed, "Amount must be greater than %s", r.Min.StringFixed(2))
	case tx.Amount.GreaterThan(r.Max):
		return domain.Reject(domain.ErrValidationFailed, "Amount exceeds maximum limit of %s", r.Max.StringFixed(2))
	}
	return nil
}

// BalanceRule rejects debits larger than the source balance.
type BalanceRule struct{}

func (BalanceRule) Name() string { return "balance" }

func (BalanceRule) Validate(ctx context.Context, tx *domain.Transaction, st State) error {
	if tx.FromAccountID == nil {
		return nil
	}
	acc, err := st.Account(ctx, *tx.FromAccountID)
	if err != nil {
		return notFound(err, "Source", *tx.FromAccountID)
	}
	if acc.Balance.LessThan(tx.Amount) {
		return domain.Reject(domain.ErrInsufficientBalance, "Insufficient balance. Available: %s, Required: %s",
			acc.Balance.StringFixed(2), tx.Amount.StringFixed(2))
	}
	return nil
}

// StatusRule rejects transactions touching an account that is not ACTIVE.
type StatusRule struct{}

func (StatusRule) Name() string { return "status" }

func (StatusRule) Validate(ctx context.Context, tx *domain.Transaction, st State) error {
	check := func(id *uuid.UUID, role string) error {
		if id == nil {
			return nil
		}
		acc, err := st.Account(ctx, *id)
		if err != nil {
			return notFound(err, role, *id)
		}
		if !acc.IsActive() {
			return domain.Reject(domain.ErrAccountInactive, "%s account is not active: %s", role, id)
		}
		return nil
	}
	if err := check(tx.FromAccountID, "Source"); err != nil {
		return err
	}
	return check(tx.ToAccountID, "Destination")
}

// DailyLimitRule rejects debits that would take today's SUCCESS debit total
// above Ceiling.
type DailyLimitRule struct {
	Ceiling decimal.Decimal
	Now     func() time.Time
}

func (DailyLimitRule) Name() string { return "daily_limit" }

func (r DailyLimitRule) Validate(ctx context.Context, tx *domain.Transaction, st State) error {
	if tx.FromAccountID == nil {
		return nil
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	total, err := st.DebitSumSince(ctx, *tx.FromAccountID, domain.StartOfDay(now()))
	if err != nil {
		return err
	}
	if total.Add(tx.Amount).GreaterThan(r.Ceiling) {
		return domain.Reject(domain.ErrDailyLimitExceeded,
			"Daily transaction limit exceeded. Limit: %s, Today's total: %s, Attempted: %s",
			r.Ceiling.StringFixed(2), total.StringFixed(2), tx.Amount.StringFixed(2))
	}
	return nil
}

func notFound(err error, role string, id uuid.UUID) error {
	if errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrNotFound) {
		return domain.Reject(domain.ErrAccountNotFound, "%s account not found: %s", role, id)
	}
	return err
}
