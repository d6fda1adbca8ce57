package account

import (
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/service/ledger"
	"github.com/shopspring/decimal"
)

//revive:disable

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	CustomerName   string          `json:"customerName" validate:"required,min=2,max=100"`
	Email          string          `json:"email" validate:"omitempty,email"`
	MobileNumber   string          `json:"mobileNumber" validate:"omitempty,min=10,max=15,numeric"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// UpdateStatusRequest represents the request body for changing an account status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE CLOSED"`
}

// AccountDTO is the API response representation of an account.
type AccountDTO struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	CustomerName  string          `json:"customerName"`
	Email         string          `json:"email,omitempty"`
	MobileNumber  string          `json:"mobileNumber,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// BalanceDTO is the API response representation of a balance lookup.
type BalanceDTO struct {
	AccountID     string          `json:"accountId"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

func ToAccountDTO(a *domain.Account) AccountDTO {
	return AccountDTO{
		ID:            a.ID.String(),
		AccountNumber: a.Number,
		CustomerName:  a.CustomerName,
		Email:         a.Email,
		MobileNumber:  a.Mobile,
		Balance:       a.Balance,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
}

func ToBalanceDTO(b *ledger.BalanceResponse) BalanceDTO {
	return BalanceDTO{
		AccountID:     b.AccountID.String(),
		AccountNumber: b.AccountNumber,
		Balance:       b.Balance,
		Currency:      b.Currency,
		Status:        string(b.Status),
		LastUpdated:   b.LastUpdated,
	}
}
