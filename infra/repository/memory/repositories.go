package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errLockOutsideUnitOfWork = errors.New("row locks require a unit of work")

type accountRepository struct{ u *UoW }

func (r *accountRepository) Get(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	if t := r.u.txn; t != nil {
		if a, ok := t.accounts[id]; ok {
			return &a, nil
		}
	}
	s := r.u.store
	s.mu.RLock()
	a, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return &a, nil
}

func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	t := r.u.txn
	if t == nil {
		return nil, errLockOutsideUnitOfWork
	}
	if err := r.u.store.acquire(ctx, t, id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *accountRepository) Create(_ context.Context, a *domain.Account) error {
	s := r.u.store
	if t := r.u.txn; t != nil {
		s.mu.RLock()
		_, exists := s.accounts[a.ID]
		s.mu.RUnlock()
		if _, pending := t.accounts[a.ID]; exists || pending {
			return domain.ErrAlreadyExists
		}
		t.accounts[a.ID] = *a
		t.baseVersion[a.ID] = -1
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.accounts[a.ID] = *a
	return nil
}

func (r *accountRepository) Save(ctx context.Context, a *domain.Account) error {
	current, err := r.Get(ctx, a.ID)
	if err != nil {
		return err
	}
	if current.Version != a.Version {
		return fmt.Errorf("%w: %s", domain.ErrVersionConflict, a.ID)
	}
	saved := *a
	saved.Version++
	saved.UpdatedAt = time.Now().UTC()

	s := r.u.store
	if t := r.u.txn; t != nil {
		if _, tracked := t.baseVersion[a.ID]; !tracked {
			t.baseVersion[a.ID] = a.Version
		}
		t.accounts[a.ID] = saved
	} else {
		s.mu.Lock()
		if s.accounts[a.ID].Version != a.Version {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", domain.ErrVersionConflict, a.ID)
		}
		s.accounts[a.ID] = saved
		s.mu.Unlock()
	}
	a.Version = saved.Version
	a.UpdatedAt = saved.UpdatedAt
	return nil
}

type transactionRepository struct{ u *UoW }

func (r *transactionRepository) Save(_ context.Context, tx *domain.Transaction) error {
	if t := r.u.txn; t != nil {
		t.transactions = append(t.transactions, *tx)
		return nil
	}
	s := r.u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byReference[tx.Reference]; dup {
		return fmt.Errorf("%w: reference %s", domain.ErrAlreadyExists, tx.Reference)
	}
	s.transactions[tx.ID] = *tx
	s.byReference[tx.Reference] = tx.ID
	return nil
}

func (r *transactionRepository) GetByReference(_ context.Context, reference string) (*domain.Transaction, error) {
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byReference[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	tx := s.transactions[id]
	return &tx, nil
}

func (r *transactionRepository) DebitSumSince(_ context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := decimal.Zero
	for _, tx := range s.transactions {
		if tx.Status == domain.StatusSuccess &&
			tx.FromAccountID != nil && *tx.FromAccountID == accountID &&
			!tx.CreatedAt.Before(since) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (r *transactionRepository) ListByAccountAndRange(
	_ context.Context,
	accountID uuid.UUID,
	start, end time.Time,
) ([]*domain.Transaction, error) {
	s := r.u.store
	s.mu.RLock()
	out := make([]*domain.Transaction, 0)
	for _, tx := range s.transactions {
		if tx.Touches(accountID) && !tx.CreatedAt.Before(start) && !tx.CreatedAt.After(end) {
			tx := tx
			out = append(out, &tx)
		}
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Reference > out[j].Reference
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type dailyLimitRepository struct{ u *UoW }

// GetForUpdate locks the owning account, which guards the counter.
func (r *dailyLimitRepository) GetForUpdate(ctx context.Context, accountID uuid.UUID, date time.Time) (*domain.DailyLimitCounter, error) {
	t := r.u.txn
	if t == nil {
		return nil, errLockOutsideUnitOfWork
	}
	if err := r.u.store.acquire(ctx, t, accountID); err != nil {
		return nil, err
	}
	key := keyOf(accountID, date)
	if c, ok := t.limits[key]; ok {
		return &c, nil
	}
	s := r.u.store
	s.mu.RLock()
	c, ok := s.limits[key]
	s.mu.RUnlock()
	if !ok {
		return domain.NewDailyLimitCounter(accountID, date), nil
	}
	return &c, nil
}

func (r *dailyLimitRepository) Save(_ context.Context, c *domain.DailyLimitCounter) error {
	key := keyOf(c.AccountID, c.Date)
	if t := r.u.txn; t != nil {
		t.limits[key] = *c
		return nil
	}
	s := r.u.store
	s.mu.Lock()
	s.limits[key] = *c
	s.mu.Unlock()
	return nil
}

type notificationRepository struct{ u *UoW }

func (r *notificationRepository) Save(_ context.Context, n *domain.Notification) error {
	if t := r.u.txn; t != nil {
		t.notifications[n.ID] = *n
		return nil
	}
	s := r.u.store
	s.mu.Lock()
	s.notifications[n.ID] = *n
	s.mu.Unlock()
	return nil
}

func (r *notificationRepository) Get(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	s := r.u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &n, nil
}
