package validation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeState struct {
	accounts map[uuid.UUID]*domain.Account
	debits   map[uuid.UUID]decimal.Decimal
	calls    int
	err      error
}

func (f *fakeState) Account(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	acc, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return acc, nil
}

func (f *fakeState) DebitSumSince(_ context.Context, id uuid.UUID, _ time.Time) (decimal.Decimal, error) {
	return f.debits[id], nil
}

type ChainTestSuite struct {
	suite.Suite
	state  *fakeState
	chain  *Chain
	source uuid.UUID
	dest   uuid.UUID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s *ChainTestSuite) SetupTest() {
	s.source, s.dest = uuid.New(), uuid.New()
	s.state = &fakeState{
		accounts: map[uuid.UUID]*domain.Account{
			s.source: {ID: s.source, Balance: dec("1000.00"), Status: domain.AccountStatusActive},
			s.dest:   {ID: s.dest, Balance: dec("50.00"), Status: domain.AccountStatusActive},
		},
		debits: map[uuid.UUID]decimal.Decimal{},
	}
	s.chain = Default(Limits{
		MinAmount:    dec("0.01"),
		MaxAmount:    dec("1000000.00"),
		DailyCeiling: dec("500000.00"),
	}, time.Now, nil)
}

func (s *ChainTestSuite) transfer(amount string) *domain.Transaction {
	return domain.NewTransaction(domain.KindTransfer, &s.source, &s.dest, dec(amount), "", time.Now())
}

func (s *ChainTestSuite) TestOrder() {
	s.Equal([]string{"amount", "balance", "status", "daily_limit"}, s.chain.Rules())
}

func (s *ChainTestSuite) TestPasses() {
	s.NoError(s.chain.Validate(context.Background(), s.transfer("250.00"), s.state))
}

func (s *ChainTestSuite) TestAmountBounds() {
	for _, amount := range []string{"0", "-5", "0.001"} {
		tx := s.transfer(amount)
		err := s.chain.Validate(context.Background(), tx, s.state)
		s.ErrorIs(err, domain.ErrValidationFailed, amount)
		s.Equal("Amount must be greater than 0.01", tx.ErrorMessage)
	}
	tx := s.transfer("1000000.01")
	s.ErrorIs(s.chain.Validate(context.Background(), tx, s.state), domain.ErrValidationFailed)
	s.Equal("Amount exceeds maximum limit of 1000000.00", tx.ErrorMessage)
	s.Zero(s.state.calls, "amount failures short-circuit before any state read")
}

func (s *ChainTestSuite) TestInsufficientBalance() {
	tx := s.transfer("1000.01")
	err := s.chain.Validate(context.Background(), tx, s.state)
	s.ErrorIs(err, domain.ErrInsufficientBalance)
	s.Equal("Insufficient balance. Available: 1000.00, Required: 1000.01", tx.ErrorMessage)
}

func (s *ChainTestSuite) TestDepositSkipsBalanceAndLimit() {
	s.state.debits[s.dest] = dec("500000.00")
	tx := domain.NewTransaction(domain.KindDeposit, nil, &s.dest, dec("999999.00"), "", time.Now())
	s.NoError(s.chain.Validate(context.Background(), tx, s.state))
}

func (s *ChainTestSuite) TestInactiveDestination() {
	s.state.accounts[s.dest].Status = domain.AccountStatusClosed
	tx := s.transfer("10.00")
	err := s.chain.Validate(context.Background(), tx, s.state)
	s.ErrorIs(err, domain.ErrAccountInactive)
	s.Equal("Destination account is not active: "+s.dest.String(), tx.ErrorMessage)
}

func (s *ChainTestSuite) TestMissingAccount() {
	missing := uuid.New()
	tx := domain.NewTransaction(domain.KindWithdrawal, &missing, nil, dec("1.00"), "", time.Now())
	err := s.chain.Validate(context.Background(), tx, s.state)
	s.ErrorIs(err, domain.ErrAccountNotFound)
	s.Equal("Source account not found: "+missing.String(), tx.ErrorMessage)
}

func (s *ChainTestSuite) TestDailyLimit() {
	s.state.accounts[s.source].Balance = dec("900000.00")
	s.state.debits[s.source] = dec("499990.00")

	s.NoError(s.chain.Validate(context.Background(), s.transfer("10.00"), s.state))

	tx := s.transfer("10.01")
	err := s.chain.Validate(context.Background(), tx, s.state)
	s.ErrorIs(err, domain.ErrDailyLimitExceeded)
	s.Equal("Daily transaction limit exceeded. Limit: 500000.00, Today's total: 499990.00, Attempted: 10.01", tx.ErrorMessage)
}

func (s *ChainTestSuite) TestStateErrorPropagates() {
	boom := errors.New("connection reset")
	s.state.err = boom
	err := s.chain.Validate(context.Background(), s.transfer("1.00"), s.state)
	s.ErrorIs(err, boom)
	s.Equal(domain.CodeInternal, domain.CodeOf(err))
}

func TestChainTestSuite(t *testing.T) {
	suite.Run(t, new(ChainTestSuite))
}

func TestChain_AppendCustomRule(t *testing.T) {
	blocked := uuid.New()
	chain := NewChain(nil, AmountRule{Min: dec("0.01"), Max: dec("100")}).Append(RuleFunc{
		RuleName: "blocklist",
		Fn: func(_ context.Context, tx *domain.Transaction, _ State) error {
			if tx.Touches(blocked) {
				return domain.Reject(domain.ErrValidationFailed, "Account is blocked: %s", blocked)
			}
			return nil
		},
	})
	require.Equal(t, []string{"amount", "blocklist"}, chain.Rules())

	tx := domain.NewTransaction(domain.KindDeposit, nil, &blocked, dec("1"), "", time.Now())
	err := chain.Validate(context.Background(), tx, &fakeState{})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Contains(t, tx.ErrorMessage, "blocked")
}
