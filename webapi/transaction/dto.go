package transaction

import (
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/service/ledger"
	"github.com/shopspring/decimal"
)

//revive:disable

// TransactionRequest is the body of POST /api/v1/transactions.
type TransactionRequest struct {
	FromAccountID   string          `json:"fromAccountId" validate:"omitempty,uuid"`
	ToAccountID     string          `json:"toAccountId" validate:"omitempty,uuid"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transactionType" validate:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER"`
	Description     string          `json:"description" validate:"max=500"`
}

// AccountAmountRequest is the body of the deposit and withdraw endpoints.
type AccountAmountRequest struct {
	AccountID string          `json:"accountId" validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransferRequest is the body of POST /api/v1/transactions/transfer.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountId" validate:"required,uuid"`
	ToAccountID   string          `json:"toAccountId" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransactionResponse is the API view of an engine outcome.
type TransactionResponse struct {
	TransactionReference    string           `json:"transactionReference,omitempty"`
	Status                  string           `json:"status"`
	Code                    string           `json:"code,omitempty"`
	Amount                  decimal.Decimal  `json:"amount"`
	TransactionDate         time.Time        `json:"transactionDate"`
	Message                 string           `json:"message"`
	BalanceAfterTransaction *decimal.Decimal `json:"balanceAfterTransaction,omitempty"`
}

func ToTransactionResponse(r *ledger.Response) TransactionResponse {
	return TransactionResponse{
		TransactionReference:    r.Reference,
		Status:                  string(r.Status),
		Code:                    string(r.Code),
		Amount:                  r.Amount,
		TransactionDate:         r.TransactionDate,
		Message:                 r.Message,
		BalanceAfterTransaction: r.BalanceAfter,
	}
}

// TransactionDTO is the API representation of a recorded transaction.
type TransactionDTO struct {
	ID                   string          `json:"id"`
	TransactionReference string          `json:"transactionReference"`
	FromAccountID        *string         `json:"fromAccountId,omitempty"`
	ToAccountID          *string         `json:"toAccountId,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Type                 string          `json:"type"`
	Status               string          `json:"status"`
	Description          string          `json:"description,omitempty"`
	ErrorMessage         string          `json:"errorMessage,omitempty"`
	TransactionDate      time.Time       `json:"transactionDate"`
}

func ToTransactionDTO(tx *domain.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:                   tx.ID.String(),
		TransactionReference: tx.Reference,
		Amount:               tx.Amount,
		Type:                 string(tx.Kind),
		Status:               string(tx.Status),
		Description:          tx.Description,
		ErrorMessage:         tx.ErrorMessage,
		TransactionDate:      tx.CreatedAt,
	}
	if tx.FromAccountID != nil {
		s := tx.FromAccountID.String()
		dto.FromAccountID = &s
	}
	if tx.ToAccountID != nil {
		s := tx.ToAccountID.String()
		dto.ToAccountID = &s
	}
	return dto
}

func ToTransactionDTOs(txs []*domain.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ToTransactionDTO(tx))
	}
	return out
}
