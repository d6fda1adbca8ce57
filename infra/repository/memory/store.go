// Package memory is an in-process implementation of the repository
// contracts. It honours the same locking and atomicity rules as the
// postgres store: account locks taken inside UnitOfWork.Do are exclusive,
// bounded by a timeout and held until Do returns, and writes made inside Do
// become visible together on commit or not at all.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/google/uuid"
)

const defaultLockTimeout = 5 * time.Second

// Store holds committed state and the per-account lock table.
type Store struct {
	mu            sync.RWMutex
	accounts      map[uuid.UUID]domain.Account
	transactions  map[uuid.UUID]domain.Transaction
	byReference   map[string]uuid.UUID
	limits        map[limitKey]domain.DailyLimitCounter
	notifications map[uuid.UUID]domain.Notification

	locksMu     sync.Mutex
	locks       map[uuid.UUID]chan struct{}
	lockTimeout time.Duration
}

type limitKey struct {
	account uuid.UUID
	day     int64
}

func keyOf(accountID uuid.UUID, date time.Time) limitKey {
	return limitKey{account: accountID, day: domain.StartOfDay(date).Unix()}
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long GetForUpdate waits for an account lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts:      make(map[uuid.UUID]domain.Account),
		transactions:  make(map[uuid.UUID]domain.Transaction),
		byReference:   make(map[string]uuid.UUID),
		limits:        make(map[limitKey]domain.DailyLimitCounter),
		notifications: make(map[uuid.UUID]domain.Notification),
		locks:         make(map[uuid.UUID]chan struct{}),
		lockTimeout:   defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) lockFor(id uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

// acquire takes the exclusive lock on id for t. Re-acquiring a lock the
// transaction already holds is a no-op.
func (s *Store) acquire(ctx context.Context, t *txn, id uuid.UUID) error {
	if t.holds(id) {
		return nil
	}
	ch := s.lockFor(id)
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		t.held = append(t.held, id)
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s", domain.ErrAccountLockTimeout, id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release(t *txn) {
	for i := len(t.held) - 1; i >= 0; i-- {
		<-s.lockFor(t.held[i])
	}
	t.held = nil
}

// commit applies every buffered write or none of them.
func (s *Store) commit(t *txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(t.transactions))
	for _, tx := range t.transactions {
		if _, dup := s.byReference[tx.Reference]; dup {
			return fmt.Errorf("%w: reference %s", domain.ErrAlreadyExists, tx.Reference)
		}
		if _, dup := seen[tx.Reference]; dup {
			return fmt.Errorf("%w: reference %s", domain.ErrAlreadyExists, tx.Reference)
		}
		seen[tx.Reference] = struct{}{}
	}
	for id := range t.accounts {
		if cur, ok := s.accounts[id]; ok && cur.Version != t.baseVersion[id] {
			return fmt.Errorf("%w: %s", domain.ErrVersionConflict, id)
		}
	}

	for id, a := range t.accounts {
		s.accounts[id] = a
	}
	for _, tx := range t.transactions {
		s.transactions[tx.ID] = tx
		s.byReference[tx.Reference] = tx.ID
	}
	for k, c := range t.limits {
		s.limits[k] = c
	}
	for id, n := range t.notifications {
		s.notifications[id] = n
	}
	return nil
}

// txn buffers the writes of one unit of work.
type txn struct {
	held          []uuid.UUID
	accounts      map[uuid.UUID]domain.Account
	baseVersion   map[uuid.UUID]int64
	transactions  []domain.Transaction
	limits        map[limitKey]domain.DailyLimitCounter
	notifications map[uuid.UUID]domain.Notification
}

func newTxn() *txn {
	return &txn{
		accounts:      make(map[uuid.UUID]domain.Account),
		baseVersion:   make(map[uuid.UUID]int64),
		limits:        make(map[limitKey]domain.DailyLimitCounter),
		notifications: make(map[uuid.UUID]domain.Notification),
	}
}

func (t *txn) holds(id uuid.UUID) bool {
	for _, h := range t.held {
		if h == id {
			return true
		}
	}
	return false
}
