// Package ledger is the transaction engine. It admits requests through a
// per-account rate limiter, runs the validation chain, dispatches to the
// payment strategy for the transaction kind and applies the balance
// mutation inside one unit of work with ordered account locks.
//
// Every admitted request is recorded exactly once with its final status.
// Business failures are reported as a FAILED Response with a nil error; an
// error is returned only for faults the caller cannot act on, such as an
// unknown transaction kind or a store that cannot persist the outcome.
package ledger

import (
	"log/slog"
	"time"

	"github.com/amirasaad/smartbank/pkg/config"
	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/metrics"
	"github.com/amirasaad/smartbank/pkg/notification"
	"github.com/amirasaad/smartbank/pkg/ratelimit"
	"github.com/amirasaad/smartbank/pkg/repository"
	"github.com/amirasaad/smartbank/pkg/strategy"
	"github.com/amirasaad/smartbank/pkg/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgCompleted       = "Transaction completed successfully"
	msgPaymentFailed   = "Payment processing failed"
	msgDeposit         = "Deposit successful"
	msgWithdrawal      = "Withdrawal successful"
	recentHistoryRange = 30 * 24 * time.Hour
)

// Request describes one balance movement.
type Request struct {
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        decimal.Decimal
	Kind          domain.TransactionKind
	Description   string
}

// Response is the outcome of a transaction request.
type Response struct {
	Reference       string
	Status          domain.TransactionStatus
	Code            domain.Code
	Amount          decimal.Decimal
	TransactionDate time.Time
	Message         string
	// BalanceAfter is the post-transaction balance of the source account,
	// or of the destination for deposits. Nil unless Status is SUCCESS.
	BalanceAfter *decimal.Decimal
}

// Succeeded reports whether the transaction was applied.
func (r *Response) Succeeded() bool {
	return r.Status == domain.StatusSuccess
}

// BalanceResponse is a point-in-time view of one account balance.
type BalanceResponse struct {
	AccountID     uuid.UUID
	AccountNumber string
	Balance       decimal.Decimal
	Currency      string
	Status        domain.AccountStatus
	LastUpdated   time.Time
}

// CreateAccountRequest provisions a new account.
type CreateAccountRequest struct {
	CustomerName   string
	Email          string
	Mobile         string
	InitialBalance decimal.Decimal
}

// Service is the transaction engine.
type Service struct {
	uow           repository.UnitOfWork
	limiter       *ratelimit.Limiter
	chain         *validation.Chain
	strategies    *strategy.Registry
	notifications notification.Submitter
	metrics       *metrics.Collector
	logger        *slog.Logger
	now           func() time.Time
	ceiling       decimal.Decimal
	currency      string
}

// NewService builds the engine from deps. The limiter, chain and strategy
// table are owned by the service.
func NewService(deps config.Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	cfg := deps.Config
	limits := validation.Limits{
		MinAmount:    cfg.Limits.MinAmount,
		MaxAmount:    cfg.Limits.MaxAmount,
		DailyCeiling: cfg.Limits.DailyCeiling,
	}
	return &Service{
		uow: deps.Uow,
		limiter: ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillInterval,
			ratelimit.WithClock(now)),
		chain:         validation.Default(limits, now, logger),
		strategies:    strategy.NewRegistry(logger),
		notifications: deps.Notifications,
		metrics:       deps.Metrics,
		logger:        logger.With("service", "ledger"),
		now:           now,
		ceiling:       cfg.Limits.DailyCeiling,
		currency:      cfg.Limits.Currency,
	}
}

// Limiter exposes the admission limiter so the caller can run its sweeper.
func (s *Service) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Chain exposes the validation chain so callers can append rules.
func (s *Service) Chain() *validation.Chain {
	return s.chain
}
