package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyLimitCounter is the running total of SUCCESS debits for one account
// on one calendar day (UTC).
type DailyLimitCounter struct {
	AccountID uuid.UUID
	Date      time.Time
	Total     decimal.Decimal
	UpdatedAt time.Time
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDailyLimitCounter returns an empty counter for account on the day of t.
func NewDailyLimitCounter(accountID uuid.UUID, t time.Time) *DailyLimitCounter {
	return &DailyLimitCounter{
		AccountID: accountID,
		Date:      StartOfDay(t),
		Total:     decimal.Zero,
	}
}

// Exceeds reports whether adding amount would push the total above ceiling.
func (c *DailyLimitCounter) Exceeds(amount, ceiling decimal.Decimal) bool {
	return c.Total.Add(amount).GreaterThan(ceiling)
}

// Add records a debit.
func (c *DailyLimitCounter) Add(amount decimal.Decimal, now time.Time) {
	c.Total = c.Total.Add(amount)
	c.UpdatedAt = now
}
