package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/amirasaad/smartbank/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Repositories handed out inside Do share the gorm transaction, so row locks
// taken through them last until commit or rollback.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	lockTimeout  time.Duration
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// UoWOption configures a UoW.
type UoWOption func(*UoW)

// WithLockTimeout bounds how long row lock acquisition may wait inside Do.
func WithLockTimeout(d time.Duration) UoWOption {
	return func(u *UoW) { u.lockTimeout = d }
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB, opts ...UoWOption) *UoW {
	u := &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			repository.AccountRepositoryType:      func(db *gorm.DB) any { return NewAccountRepository(db) },
			repository.TransactionRepositoryType:  func(db *gorm.DB) any { return NewTransactionRepository(db) },
			repository.DailyLimitRepositoryType:   func(db *gorm.DB) any { return NewDailyLimitRepository(db) },
			repository.NotificationRepositoryType: func(db *gorm.DB) any { return NewNotificationRepository(db) },
		},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.lockTimeout > 0 {
			// SET does not accept bind parameters.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		txnUow := &UoW{db: u.db, tx: tx, lockTimeout: u.lockTimeout, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
	return MapGormErrorToDomain(err)
}

// GetRepository provides generic, type-safe access to repositories using the transaction session.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return repository.Get[repository.AccountRepository](u)
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return repository.Get[repository.TransactionRepository](u)
}

func (u *UoW) DailyLimitRepository() (repository.DailyLimitRepository, error) {
	return repository.Get[repository.DailyLimitRepository](u)
}

func (u *UoW) NotificationRepository() (repository.NotificationRepository, error) {
	return repository.Get[repository.NotificationRepository](u)
}

var _ repository.UnitOfWork = (*UoW)(nil)
