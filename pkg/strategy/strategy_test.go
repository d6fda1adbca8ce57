package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_For(t *testing.T) {
	r := NewRegistry(nil)
	for _, kind := range []domain.TransactionKind{domain.KindDeposit, domain.KindWithdrawal, domain.KindTransfer} {
		s, err := r.For(kind)
		require.NoError(t, err)
		assert.Equal(t, string(kind), s.Name())
	}

	_, err := r.For("REFUND")
	assert.ErrorIs(t, err, domain.ErrUnknownTransactionKind)
	assert.Equal(t, domain.CodeUnknownTransactionKind, domain.CodeOf(err))
}

func TestStrategies_Validate(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ten := decimal.NewFromInt(10)
	zero := decimal.Zero
	mk := func(kind domain.TransactionKind, from, to *uuid.UUID, amount decimal.Decimal) *domain.Transaction {
		return domain.NewTransaction(kind, from, to, amount, "", time.Now())
	}

	tests := []struct {
		name string
		tx   *domain.Transaction
		want bool
	}{
		{"deposit ok", mk(domain.KindDeposit, nil, &b, ten), true},
		{"deposit no destination", mk(domain.KindDeposit, &a, nil, ten), false},
		{"deposit zero", mk(domain.KindDeposit, nil, &b, zero), false},
		{"withdrawal ok", mk(domain.KindWithdrawal, &a, nil, ten), true},
		{"withdrawal no source", mk(domain.KindWithdrawal, nil, &b, ten), false},
		{"transfer ok", mk(domain.KindTransfer, &a, &b, ten), true},
		{"transfer same account", mk(domain.KindTransfer, &a, &a, ten), false},
		{"transfer missing side", mk(domain.KindTransfer, &a, nil, ten), false},
		{"transfer negative", mk(domain.KindTransfer, &a, &b, decimal.NewFromInt(-1)), false},
	}

	r := NewRegistry(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := r.For(tc.tx.Kind)
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Validate(tc.tx))
			assert.Equal(t, tc.want, s.Process(context.Background(), tc.tx), "process re-validates")
		})
	}
}
