package domain_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference_Format(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1767225600000)
	ref := domain.NewReference(now)
	assert.Regexp(t, `^TXN1767225600000[0-9A-F]{32}$`, ref)
}

func TestNewReference_UniqueUnderConcurrency(t *testing.T) {
	t.Parallel()
	const workers, perWorker = 16, 500
	now := time.Now()

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for iter := 0; iter < workers; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for iter := 0; iter < perWorker; iter++ {
				// Same millisecond for every call.
				local = append(local, domain.NewReference(now))
			}
			mu.Lock()
			for _, r := range local {
				seen[r] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestTransaction_LockOrder(t *testing.T) {
	t.Parallel()
	a, b := uuid.New(), uuid.New()
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	amount := decimal.NewFromInt(10)

	forward := domain.NewTransaction(domain.KindTransfer, &a, &b, amount, "", time.Now())
	backward := domain.NewTransaction(domain.KindTransfer, &b, &a, amount, "", time.Now())
	assert.Equal(t, []uuid.UUID{a, b}, forward.LockOrder())
	assert.Equal(t, []uuid.UUID{a, b}, backward.LockOrder(), "lock order must not depend on direction")

	deposit := domain.NewTransaction(domain.KindDeposit, nil, &b, amount, "", time.Now())
	assert.Equal(t, []uuid.UUID{b}, deposit.LockOrder())

	same := domain.NewTransaction(domain.KindTransfer, &a, &a, amount, "", time.Now())
	assert.Equal(t, []uuid.UUID{a}, same.LockOrder())
}

func TestTransaction_PrimaryAccount(t *testing.T) {
	t.Parallel()
	from, to := uuid.New(), uuid.New()
	amount := decimal.NewFromInt(1)

	assert.Equal(t, from, domain.NewTransaction(domain.KindTransfer, &from, &to, amount, "", time.Now()).PrimaryAccountID())
	assert.Equal(t, from, domain.NewTransaction(domain.KindWithdrawal, &from, nil, amount, "", time.Now()).PrimaryAccountID())
	assert.Equal(t, to, domain.NewTransaction(domain.KindDeposit, nil, &to, amount, "", time.Now()).PrimaryAccountID())
}

func TestTransaction_StatusTransitions(t *testing.T) {
	t.Parallel()
	to := uuid.New()
	tx := domain.NewTransaction(domain.KindDeposit, nil, &to, decimal.NewFromInt(5), "salary", time.Now())
	require.Equal(t, domain.StatusPending, tx.Status)
	assert.False(t, tx.IsDebit())

	tx.Fail("Payment processing failed")
	assert.Equal(t, domain.StatusFailed, tx.Status)
	assert.Equal(t, "Payment processing failed", tx.ErrorMessage)
}

func TestTransaction_TextIsClippedToColumnWidth(t *testing.T) {
	t.Parallel()
	to := uuid.New()
	long := strings.Repeat("é", domain.MaxDescriptionLength+20)

	tx := domain.NewTransaction(domain.KindDeposit, nil, &to, decimal.NewFromInt(5), long, time.Now())
	assert.Equal(t, domain.MaxDescriptionLength, utf8.RuneCountInString(tx.Description))

	tx.Fail(strings.Repeat("x", domain.MaxReasonLength+1))
	assert.Len(t, tx.ErrorMessage, domain.MaxReasonLength)

	short := domain.NewTransaction(domain.KindDeposit, nil, &to, decimal.NewFromInt(5), "salary", time.Now())
	assert.Equal(t, "salary", short.Description)
}

func TestDailyLimitCounter(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 5, 4, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	c := domain.NewDailyLimitCounter(uuid.New(), at)
	assert.Equal(t, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), c.Date)

	ceiling := decimal.RequireFromString("500000.00")
	c.Add(decimal.RequireFromString("499999.99"), at)
	assert.False(t, c.Exceeds(decimal.RequireFromString("0.01"), ceiling))
	assert.True(t, c.Exceeds(decimal.RequireFromString("0.02"), ceiling))
}

func TestNewNotification(t *testing.T) {
	t.Parallel()
	_, err := domain.NewNotification("bob", "", "hi", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotificationInvalid)

	n, err := domain.NewNotification("bob", "email", "hi", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "EMAIL", n.Channel)
	assert.Equal(t, domain.NotificationPending, n.Status)

	sent := time.Now()
	n.MarkSent(sent)
	assert.Equal(t, domain.NotificationSuccess, n.Status)
	assert.Equal(t, &sent, n.SentAt)
}
