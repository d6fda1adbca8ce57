package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/repository"
	"github.com/google/uuid"
)

// CreateAccount provisions an ACTIVE account with a generated number.
func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (a *domain.Account, err error) {
	logger := s.logger.With("customer", req.CustomerName)
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", domain.ErrValidationFailed)
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err = domain.NewAccount(req.CustomerName, req.Email, req.Mobile, req.InitialBalance, s.now())
		if err != nil {
			return err
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		logger.Error("CreateAccount failed", "error", err)
		return nil, err
	}
	logger.Info("account created", "account_id", a.ID, "number", a.Number)
	return a, nil
}

// GetBalance returns the committed balance of accountID.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (*BalanceResponse, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	a, err := repo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		AccountID:     a.ID,
		AccountNumber: a.Number,
		Balance:       a.Balance,
		Currency:      s.currency,
		Status:        a.Status,
		LastUpdated:   a.UpdatedAt,
	}, nil
}

// SetAccountStatus moves an account between ACTIVE and INACTIVE or closes
// it. A CLOSED account cannot change status again.
func (s *Service) SetAccountStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus) (a *domain.Account, err error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown account status %q", domain.ErrValidationFailed, status)
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err = repo.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if a.Status == domain.AccountStatusClosed && status != domain.AccountStatusClosed {
			return fmt.Errorf("%w: account %s is closed", domain.ErrValidationFailed, a.Number)
		}
		a.Status = status
		return repo.Save(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("account status changed", "account_id", accountID, "status", status)
	return a, nil
}

// GetHistory returns transactions touching accountID created within
// [start, end], newest first.
func (s *Service) GetHistory(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	logger := s.logger.With("account_id", accountID, "start", start, "end", end)
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	if _, err := accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, domain.ErrInvalidDateRange
	}
	txs, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	list, err := txs.ListByAccountAndRange(ctx, accountID, start, end)
	if err != nil {
		logger.Error("GetHistory failed", "error", err)
		return nil, err
	}
	logger.Debug("history fetched", "count", len(list))
	return list, nil
}

// RecentHistory returns the last 30 days of transactions.
func (s *Service) RecentHistory(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	now := s.now()
	return s.GetHistory(ctx, accountID, now.Add(-recentHistoryRange), now)
}

// TodayHistory returns transactions since midnight UTC.
func (s *Service) TodayHistory(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	now := s.now()
	return s.GetHistory(ctx, accountID, domain.StartOfDay(now), now)
}
