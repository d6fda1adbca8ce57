// Package strategy maps each transaction kind to its processing policy.
package strategy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/smartbank/pkg/domain"
)

// Strategy validates the shape of a transaction for one kind and performs
// its kind-specific step. Balance movement itself happens in the engine's
// locked mutation.
type Strategy interface {
	Name() string
	Validate(tx *domain.Transaction) bool
	// Process re-validates and returns false on a business rejection.
	Process(ctx context.Context, tx *domain.Transaction) bool
}

// Registry is the closed kind to strategy table.
type Registry struct {
	strategies map[domain.TransactionKind]Strategy
}

// NewRegistry returns a registry with deposit, withdrawal and transfer.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "strategy")
	return &Registry{strategies: map[domain.TransactionKind]Strategy{
		domain.KindDeposit:    &Deposit{logger: logger},
		domain.KindWithdrawal: &Withdrawal{logger: logger},
		domain.KindTransfer:   &Transfer{logger: logger},
	}}
}

// For returns the strategy for kind.
func (r *Registry) For(kind domain.TransactionKind) (Strategy, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTransactionKind, kind)
	}
	return s, nil
}

// Deposit credits a destination account.
type Deposit struct{ logger *slog.Logger }

func (*Deposit) Name() string { return string(domain.KindDeposit) }

func (*Deposit) Validate(tx *domain.Transaction) bool {
	return tx.Amount.IsPositive() && tx.ToAccountID != nil
}

func (s *Deposit) Process(_ context.Context, tx *domain.Transaction) bool {
	if !s.Validate(tx) {
		s.logger.Warn("deposit rejected", "reference", tx.Reference)
		return false
	}
	s.logger.Info("processing deposit", "reference", tx.Reference, "to", tx.ToAccountID, "amount", tx.Amount.String())
	return true
}

// Withdrawal debits a source account.
type Withdrawal struct{ logger *slog.Logger }

func (*Withdrawal) Name() string { return string(domain.KindWithdrawal) }

func (*Withdrawal) Validate(tx *domain.Transaction) bool {
	return tx.Amount.IsPositive() && tx.FromAccountID != nil
}

func (s *Withdrawal) Process(_ context.Context, tx *domain.Transaction) bool {
	if !s.Validate(tx) {
		s.logger.Warn("withdrawal rejected", "reference", tx.Reference)
		return false
	}
	s.logger.Info("processing withdrawal", "reference", tx.Reference, "from", tx.FromAccountID, "amount", tx.Amount.String())
	return true
}

// Transfer moves funds between two distinct accounts.
type Transfer struct{ logger *slog.Logger }

func (*Transfer) Name() string { return string(domain.KindTransfer) }

func (*Transfer) Validate(tx *domain.Transaction) bool {
	return tx.Amount.IsPositive() &&
		tx.FromAccountID != nil &&
		tx.ToAccountID != nil &&
		*tx.FromAccountID != *tx.ToAccountID
}

func (s *Transfer) Process(_ context.Context, tx *domain.Transaction) bool {
	if !s.Validate(tx) {
		s.logger.Warn("transfer rejected", "reference", tx.Reference)
		return false
	}
	s.logger.Info("processing transfer", "reference", tx.Reference,
		"from", tx.FromAccountID, "to", tx.ToAccountID, "amount", tx.Amount.String())
	return true
}
