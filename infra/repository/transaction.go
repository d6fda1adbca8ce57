package repository

import (
	"context"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a TransactionRepository bound to db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Save inserts the transaction. Each transaction is written once, in its
// terminal state.
func (r *transactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(transactionToModel(tx)).Error
	})
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "reference = ?", reference).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return transactionFromModel(&m), nil
}

func (r *transactionRepository) DebitSumSince(ctx context.Context, accountID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("from_account_id = ? AND status = ? AND created_at >= ?", accountID, string(domain.StatusSuccess), since).
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, MapGormErrorToDomain(err)
	}
	return sum, nil
}

func (r *transactionRepository) ListByAccountAndRange(
	ctx context.Context,
	accountID uuid.UUID,
	start, end time.Time,
) ([]*domain.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("(from_account_id = ? OR to_account_id = ?) AND created_at BETWEEN ? AND ?", accountID, accountID, start, end).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*domain.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionFromModel(&ms[i]))
	}
	return out, nil
}
