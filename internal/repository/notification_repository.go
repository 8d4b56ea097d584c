package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.DB.Create(n).Error
}

func (r *NotificationRepository) CreateBatch(ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.DB.Create(&ns).Error
}

func (r *NotificationRepository) FindByID(id uint) (*model.Notification, error) {
	var n model.Notification
	if err := r.DB.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByRecipient returns a page of notifications plus total and unread counts.
func (r *NotificationRepository) ListByRecipient(recipientID uint, isRead *bool, page, limit int) ([]model.Notification, int64, int64, error) {
	var notifications []model.Notification
	var total, unread int64

	query := r.DB.Model(&model.Notification{}).Where("recipient = ?", recipientID)
	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}
	if err := r.DB.Model(&model.Notification{}).
		Where("recipient = ? AND is_read = ?", recipientID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	return notifications, total, unread, err
}

func (r *NotificationRepository) MarkRead(id uint) error {
	return r.DB.Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(recipientID uint) error {
	return r.DB.Model(&model.Notification{}).
		Where("recipient = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}
