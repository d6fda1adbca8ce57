package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type dailyLimitRepository struct {
	db *gorm.DB
}

// NewDailyLimitRepository returns a DailyLimitRepository bound to db.
func NewDailyLimitRepository(db *gorm.DB) repository.DailyLimitRepository {
	return &dailyLimitRepository{db: db}
}

func (r *dailyLimitRepository) GetForUpdate(ctx context.Context, accountID uuid.UUID, date time.Time) (*domain.DailyLimitCounter, error) {
	day := domain.StartOfDay(date)
	var m DailyLimit
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ? AND limit_date = ?", accountID, day).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewDailyLimitCounter(accountID, day), nil
	}
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return &domain.DailyLimitCounter{
		AccountID: m.AccountID,
		Date:      m.LimitDate,
		Total:     m.Total,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// Save upserts the counter on (account_id, limit_date).
func (r *dailyLimitRepository) Save(ctx context.Context, c *domain.DailyLimitCounter) error {
	m := DailyLimit{
		AccountID: c.AccountID,
		LimitDate: domain.StartOfDay(c.Date),
		Total:     c.Total,
		UpdatedAt: c.UpdatedAt,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "account_id"}, {Name: "limit_date"}},
				DoUpdates: clause.AssignmentColumns([]string{"total", "updated_at"}),
			}).
			Create(&m).Error
	})
}
