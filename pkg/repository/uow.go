package repository

import (
	"context"
	"errors"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Repositories obtained from the UnitOfWork passed to Do share its
// transaction: row locks taken through them are held until Do returns, and
// every write commits or rolls back together. Repositories obtained outside
// Do read committed state.
//
//	err := uow.Do(ctx, func(uow UnitOfWork) error {
//	    accounts, err := uow.AccountRepository()
//	    ...
//	})
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested type, bound to the current transaction/session.
	//   repoAny, err := uow.GetRepository(reflect.TypeOf((*AccountRepository)(nil)).Elem())
	GetRepository(repoType reflect.Type) (any, error)

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	DailyLimitRepository() (DailyLimitRepository, error)
	NotificationRepository() (NotificationRepository, error)
}

// Repository types accepted by GetRepository.
var (
	AccountRepositoryType      = reflect.TypeOf((*AccountRepository)(nil)).Elem()
	TransactionRepositoryType  = reflect.TypeOf((*TransactionRepository)(nil)).Elem()
	DailyLimitRepositoryType   = reflect.TypeOf((*DailyLimitRepository)(nil)).Elem()
	NotificationRepositoryType = reflect.TypeOf((*NotificationRepository)(nil)).Elem()
)

// ErrUnexpectedRepository is returned when a registered constructor yields the wrong type.
var ErrUnexpectedRepository = errors.New("repository has unexpected type")

// Get is a typed wrapper around UnitOfWork.GetRepository.
func Get[T any](uow UnitOfWork) (T, error) {
	var zero T
	repoAny, err := uow.GetRepository(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, ErrUnexpectedRepository
	}
	return repo, nil
}
