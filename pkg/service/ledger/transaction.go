package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProcessTransaction runs a request of any kind through the full pipeline.
func (s *Service) ProcessTransaction(ctx context.Context, req Request) (*Response, error) {
	return s.process(ctx, req, msgCompleted)
}

// Deposit credits accountID.
func (s *Service) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*Response, error) {
	return s.process(ctx, Request{
		ToAccountID: &accountID,
		Amount:      amount,
		Kind:        domain.KindDeposit,
		Description: "Cash deposit",
	}, msgDeposit)
}

// Withdraw debits accountID.
func (s *Service) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*Response, error) {
	return s.process(ctx, Request{
		FromAccountID: &accountID,
		Amount:        amount,
		Kind:          domain.KindWithdrawal,
		Description:   "Cash withdrawal",
	}, msgWithdrawal)
}

// Transfer moves amount from one account to another.
func (s *Service) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) (*Response, error) {
	return s.process(ctx, Request{
		FromAccountID: &fromID,
		ToAccountID:   &toID,
		Amount:        amount,
		Kind:          domain.KindTransfer,
	}, "")
}

func rateLimitKey(req Request) string {
	if req.FromAccountID != nil {
		return "txn_" + req.FromAccountID.String()
	}
	if req.ToAccountID != nil {
		return "txn_" + req.ToAccountID.String()
	}
	return "txn_"
}

func (s *Service) process(ctx context.Context, req Request, successMsg string) (*Response, error) {
	started := time.Now()
	now := s.now()
	logger := s.logger.With("kind", req.Kind, "amount", req.Amount.String())

	if !s.limiter.Allow(rateLimitKey(req)) {
		logger.Warn("transaction rejected by rate limiter", "key", rateLimitKey(req))
		s.metrics.RecordAdmissionRejected()
		s.metrics.RecordTransaction(string(req.Kind), string(domain.StatusFailed),
			string(domain.CodeAdmissionRejected), time.Since(started))
		return &Response{
			Status:          domain.StatusFailed,
			Code:            domain.CodeAdmissionRejected,
			Amount:          req.Amount,
			TransactionDate: now,
			Message:         domain.ErrAdmissionRejected.Error(),
		}, nil
	}

	strat, err := s.strategies.For(req.Kind)
	if err != nil {
		logger.Error("no strategy for transaction kind", "error", err)
		return nil, err
	}

	tx := domain.NewTransaction(req.Kind, req.FromAccountID, req.ToAccountID, req.Amount, req.Description, now)
	logger = logger.With("reference", tx.Reference)
	logger.Info("processing transaction")

	if err := s.checkShape(tx); err != nil {
		return s.fail(ctx, tx, err, started)
	}
	if err := s.chain.Validate(ctx, tx, state{uow: s.uow}); err != nil {
		return s.fail(ctx, tx, err, started)
	}
	if !strat.Process(ctx, tx) {
		return s.fail(ctx, tx, domain.Reject(domain.ErrValidationFailed, msgPaymentFailed), started)
	}

	result, err := s.execute(ctx, tx)
	if err != nil {
		if errors.Is(err, domain.ErrAccountLockTimeout) {
			s.metrics.RecordLockTimeout()
		}
		logger.Error("transaction mutation failed", "error", err)
		return s.fail(ctx, tx, err, started)
	}

	if successMsg == "" {
		successMsg = "Transfer successful to " + result.counterpartyNumber
	}
	logger.Info("transaction completed", "balance_after", result.balance.String())
	s.metrics.RecordTransaction(string(tx.Kind), string(tx.Status), "", time.Since(started))
	s.notify(ctx, tx, result.primary)

	balance := result.balance
	return &Response{
		Reference:       tx.Reference,
		Status:          tx.Status,
		Amount:          tx.Amount,
		TransactionDate: tx.CreatedAt,
		Message:         successMsg,
		BalanceAfter:    &balance,
	}, nil
}

// checkShape rejects requests whose accounts do not fit the kind.
func (s *Service) checkShape(tx *domain.Transaction) error {
	switch {
	case tx.FromAccountID == nil && tx.ToAccountID == nil:
		return domain.Reject(domain.ErrValidationFailed, "At least one account is required")
	case tx.Kind == domain.KindTransfer && tx.FromAccountID != nil && tx.ToAccountID != nil &&
		*tx.FromAccountID == *tx.ToAccountID:
		return domain.Reject(domain.ErrSameAccountTransfer, "Cannot transfer to the same account")
	case tx.Kind == domain.KindDeposit && tx.FromAccountID != nil:
		return domain.Reject(domain.ErrValidationFailed, "Deposit cannot have a source account")
	case tx.Kind == domain.KindWithdrawal && tx.ToAccountID != nil:
		return domain.Reject(domain.ErrValidationFailed, "Withdrawal cannot have a destination account")
	}
	return nil
}

// fail records tx as FAILED in its own unit of work.
func (s *Service) fail(ctx context.Context, tx *domain.Transaction, cause error, started time.Time) (*Response, error) {
	tx.Fail(cause.Error())
	code := domain.CodeOf(cause)
	s.metrics.RecordTransaction(string(tx.Kind), string(tx.Status), string(code), time.Since(started))

	persistCtx := context.WithoutCancel(ctx)
	err := s.uow.Do(persistCtx, func(uow repository.UnitOfWork) error {
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		return txs.Save(persistCtx, tx)
	})
	if err != nil {
		s.logger.Error("failed to record failed transaction", "reference", tx.Reference, "error", err)
		return nil, fmt.Errorf("record failed transaction %s: %w", tx.Reference, err)
	}

	s.logger.Warn("transaction failed", "reference", tx.Reference, "code", code, "reason", tx.ErrorMessage)
	return &Response{
		Reference:       tx.Reference,
		Status:          tx.Status,
		Code:            code,
		Amount:          tx.Amount,
		TransactionDate: tx.CreatedAt,
		Message:         tx.ErrorMessage,
	}, nil
}

type mutation struct {
	balance            decimal.Decimal
	primary            domain.Account
	counterpartyNumber string
}

// execute applies tx under ordered account locks. Balances, the daily
// counter and the SUCCESS record commit together or not at all.
func (s *Service) execute(ctx context.Context, tx *domain.Transaction) (*mutation, error) {
	var result mutation
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}

		order := tx.LockOrder()
		locked := make(map[uuid.UUID]*domain.Account, len(order))
		for _, id := range order {
			a, err := accounts.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if !a.IsActive() {
				return domain.Reject(domain.ErrAccountInactive,
					"Account is not active. Current status: %s", a.Status)
			}
			locked[id] = a
		}

		if tx.FromAccountID != nil {
			from := locked[*tx.FromAccountID]
			if err := from.Debit(tx.Amount); err != nil {
				return err
			}
			if err := s.consumeDailyLimit(ctx, uow, from.ID, tx.Amount); err != nil {
				return err
			}
		}
		if tx.ToAccountID != nil {
			locked[*tx.ToAccountID].Credit(tx.Amount)
		}

		for _, id := range order {
			if err := accounts.Save(ctx, locked[id]); err != nil {
				return err
			}
		}

		tx.Succeed()
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if err := txs.Save(ctx, tx); err != nil {
			return err
		}

		primary := locked[tx.PrimaryAccountID()]
		result.balance = primary.Balance
		result.primary = *primary
		if tx.ToAccountID != nil {
			result.counterpartyNumber = locked[*tx.ToAccountID].Number
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) consumeDailyLimit(
	ctx context.Context,
	uow repository.UnitOfWork,
	accountID uuid.UUID,
	amount decimal.Decimal,
) error {
	limits, err := uow.DailyLimitRepository()
	if err != nil {
		return err
	}
	now := s.now()
	counter, err := limits.GetForUpdate(ctx, accountID, now)
	if err != nil {
		return err
	}
	if counter.Exceeds(amount, s.ceiling) {
		return domain.Reject(domain.ErrDailyLimitExceeded,
			"Daily transaction limit exceeded. Limit: %s, Today's total: %s, Attempted: %s",
			s.ceiling.StringFixed(2), counter.Total.StringFixed(2), amount.StringFixed(2))
	}
	counter.Add(amount, now)
	return limits.Save(ctx, counter)
}

// notify emits a best-effort notification for the primary account. It runs
// after commit and never changes the outcome.
func (s *Service) notify(ctx context.Context, tx *domain.Transaction, account domain.Account) {
	if s.notifications == nil {
		return
	}
	recipient, channel := account.Email, "EMAIL"
	if recipient == "" {
		recipient, channel = account.Mobile, "SMS"
	}
	if recipient == "" {
		return
	}
	msg := fmt.Sprintf("%s of %s on account %s completed. Reference: %s. Available balance: %s",
		tx.Kind, tx.Amount.StringFixed(2), account.Number, tx.Reference, account.Balance.StringFixed(2))
	if _, err := s.notifications.Submit(ctx, recipient, channel, msg); err != nil {
		s.logger.Warn("transaction notification not queued", "reference", tx.Reference, "error", err)
	}
}

// state is read-only access to committed data for the validation chain.
type state struct {
	uow repository.UnitOfWork
}

func (st state) Account(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	accounts, err := st.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return accounts.Get(ctx, id)
}

func (st state) DebitSumSince(ctx context.Context, id uuid.UUID, since time.Time) (decimal.Decimal, error) {
	txs, err := st.uow.TransactionRepository()
	if err != nil {
		return decimal.Zero, err
	}
	return txs.DebitSumSince(ctx, id, since)
}
