// Package validation implements the ordered business rule chain every
// transaction passes before any balance is touched.
//
// Rules are independent: each one reads current state through State and
// returns a *domain.Rejection describing the first problem it finds. The
// chain runs them in order and stops at the first failure. Nothing in this
// package writes state.
package validation

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is read-only access to the data rules decide on.
type State interface {
	// Account returns the account or an error wrapping domain.ErrAccountNotFound.
	Account(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// DebitSumSince returns the sum of SUCCESS debits from id at or after since.
	DebitSumSince(ctx context.Context, id uuid.UUID, since time.Time) (decimal.Decimal, error)
}

// Rule checks one business constraint.
type Rule interface {
	Name() string
	Validate(ctx context.Context, tx *domain.Transaction, st State) error
}

// RuleFunc adapts a function to Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(ctx context.Context, tx *domain.Transaction, st State) error
}

func (f RuleFunc) Name() string { return f.RuleName }

func (f RuleFunc) Validate(ctx context.Context, tx *domain.Transaction, st State) error {
	return f.Fn(ctx, tx, st)
}

// Chain runs rules in order.
type Chain struct {
	rules  []Rule
	logger *slog.Logger
}

// NewChain returns a chain running rules in the given order.
func NewChain(logger *slog.Logger, rules ...Rule) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{rules: rules, logger: logger.With("component", "validation")}
}

// Append adds rules after the existing ones.
func (c *Chain) Append(rules ...Rule) *Chain {
	c.rules = append(c.rules, rules...)
	return c
}

// Rules returns the rule names in execution order.
func (c *Chain) Rules() []string {
	names := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		names = append(names, r.Name())
	}
	return names
}

// Validate runs every rule until one fails. The failure reason is written
// to tx.ErrorMessage and the error is returned unchanged.
func (c *Chain) Validate(ctx context.Context, tx *domain.Transaction, st State) error {
	logger := c.logger.With("reference", tx.Reference, "kind", tx.Kind)
	for _, rule := range c.rules {
		if err := rule.Validate(ctx, tx, st); err != nil {
			logger.Warn("validation failed", "rule", rule.Name(), "reason", err.Error())
			tx.ErrorMessage = err.Error()
			return err
		}
	}
	logger.Debug("validation passed")
	return nil
}

// Default returns the standard chain: amount, balance, status, daily limit.
func Default(limits Limits, now func() time.Time, logger *slog.Logger) *Chain {
	return NewChain(logger,
		AmountRule{Min: limits.MinAmount, Max: limits.MaxAmount},
		BalanceRule{},
		StatusRule{},
		DailyLimitRule{Ceiling: limits.DailyCeiling, Now: now},
	)
}

// Limits are the configured amount bounds and daily ceiling.
type Limits struct {
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	DailyCeiling decimal.Decimal
}
