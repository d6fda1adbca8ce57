package repository

import (
	"errors"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the ledger reacts to.
const (
	pgLockNotAvailable = "55P03"
	pgUniqueViolation  = "23505"
)

// MapGormErrorToDomain converts GORM and postgres errors to domain errors.
// It traverses the error chain so wrapped driver errors are recognised.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(currentErr, &pgErr) {
			switch pgErr.Code {
			case pgLockNotAvailable:
				return domain.ErrAccountLockTimeout
			case pgUniqueViolation:
				return domain.ErrAlreadyExists
			}
		}

		currentErr = errors.Unwrap(currentErr)
	}

	return err
}

// WrapError wraps a GORM operation and automatically maps errors.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
