package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns an AccountRepository bound to db. Pass the
// transaction handle to make GetForUpdate locks span the transaction.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, accountError(err, id)
	}
	return accountFromModel(&m), nil
}

// GetForUpdate issues SELECT ... FOR UPDATE. The wait is bounded by the
// lock_timeout the unit of work sets on its transaction.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var m Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, accountError(err, id)
	}
	return accountFromModel(&m), nil
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(accountToModel(a)).Error
	})
}

// Save writes balance and status guarded by the version that was read.
func (r *accountRepository) Save(ctx context.Context, a *domain.Account) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ? AND version = ?", a.ID, a.Version).
		Updates(map[string]any{
			"balance":    a.Balance,
			"status":     string(a.Status),
			"version":    a.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrVersionConflict, a.ID)
	}
	a.Version++
	a.UpdatedAt = now
	return nil
}

func accountError(err error, id uuid.UUID) error {
	mapped := MapGormErrorToDomain(err)
	if errors.Is(mapped, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return mapped
}
