package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	account, err := domain.NewAccount("Jane Doe", "jane@example.com", "5550100", decimal.RequireFromString("1000"), now)
	require.NoError(err)
	assert.NotEqual(uuid.Nil, account.ID)
	assert.Equal(domain.AccountStatusActive, account.Status)
	assert.Regexp(`^SB\d{12}$`, account.Number)
	assert.True(account.Balance.Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(now, account.CreatedAt)
}

func TestNewAccount_NegativeOpeningBalance(t *testing.T) {
	t.Parallel()
	_, err := domain.NewAccount("Jane Doe", "", "", decimal.NewFromInt(-1), time.Now())
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestAccount_DebitCredit(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	account := &domain.Account{Balance: decimal.RequireFromString("1000.00"), Status: domain.AccountStatusActive}
	assert.NoError(account.Debit(decimal.RequireFromString("200.00")))
	assert.True(account.Balance.Equal(decimal.RequireFromString("800.00")))

	err := account.Debit(decimal.RequireFromString("900.00"))
	assert.ErrorIs(err, domain.ErrInsufficientBalance)
	assert.Contains(err.Error(), "Available: 800.00, Required: 900.00")
	assert.True(account.Balance.Equal(decimal.RequireFromString("800.00")), "failed debit must not change the balance")

	account.Credit(decimal.RequireFromString("0.50"))
	assert.True(account.Balance.Equal(decimal.RequireFromString("800.50")))
}

func TestAccountStatus_Valid(t *testing.T) {
	t.Parallel()
	for _, s := range []domain.AccountStatus{domain.AccountStatusActive, domain.AccountStatusInactive, domain.AccountStatusClosed} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, domain.AccountStatus("FROZEN").Valid())
}

func TestCodeOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want domain.Code
	}{
		{nil, domain.CodeNone},
		{domain.ErrAdmissionRejected, domain.CodeAdmissionRejected},
		{fmt.Errorf("%w: Amount must be greater than 0.01", domain.ErrValidationFailed), domain.CodeValidationFailed},
		{fmt.Errorf("%w: %s", domain.ErrAccountNotFound, uuid.New()), domain.CodeAccountNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrInsufficientBalance), domain.CodeInsufficientBalance},
		{domain.ErrDailyLimitExceeded, domain.CodeDailyLimitExceeded},
		{domain.ErrSameAccountTransfer, domain.CodeSameAccountTransfer},
		{domain.ErrAccountLockTimeout, domain.CodeAccountLockTimeout},
		{domain.ErrQueueSaturated, domain.CodeQueueSaturated},
		{domain.ErrUnknownTransactionKind, domain.CodeUnknownTransactionKind},
		{fmt.Errorf("boom"), domain.CodeInternal},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, domain.CodeOf(tc.err), "%v", tc.err)
	}
}
