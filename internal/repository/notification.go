package repository

import (
	"context"

	"silenceboost/internal/models"

	"gorm.io/gorm"
)

// notificationBatchSize bounds a single INSERT when a war outcome fans out
// to every participant at once.
const notificationBatchSize = 100

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, ns []models.Notification) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) CreateBatch(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(ns, notificationBatchSize).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var ns []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ns).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ns, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
