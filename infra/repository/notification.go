package repository

import (
	"context"

	"github.com/amirasaad/smartbank/pkg/domain"
	"github.com/amirasaad/smartbank/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a NotificationRepository bound to db.
func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

// Save inserts the record or overwrites it on a later status change.
func (r *notificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(notificationToModel(n)).Error
	})
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var m Notification
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return notificationFromModel(&m), nil
}
