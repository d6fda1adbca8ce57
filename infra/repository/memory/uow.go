package memory

import (
	"context"
	"fmt"
	"reflect"

	"github.com/amirasaad/smartbank/pkg/repository"
)

// UoW implements repository.UnitOfWork over a Store.
type UoW struct {
	store *Store
	txn   *txn
}

// NewUoW returns a unit of work over store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn with repositories bound to a fresh transaction. Account locks
// taken through them are released after commit or rollback. A nested Do
// joins the enclosing transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.txn != nil {
		return fn(u)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t := newTxn()
	defer u.store.release(t)

	if err := fn(&UoW{store: u.store, txn: t}); err != nil {
		return err
	}
	return u.store.commit(t)
}

func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	switch repoType {
	case repository.AccountRepositoryType:
		return &accountRepository{u: u}, nil
	case repository.TransactionRepositoryType:
		return &transactionRepository{u: u}, nil
	case repository.DailyLimitRepositoryType:
		return &dailyLimitRepository{u: u}, nil
	case repository.NotificationRepositoryType:
		return &notificationRepository{u: u}, nil
	}
	return nil, fmt.Errorf("unsupported repository type: %v", repoType)
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
