package repository

import (
	"exam_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

func (r *OutboxRepository) Append(event *model.OutboxEvent) error {
	return r.DB.Create(event).Error
}

// PendingBatch returns the oldest pending events, capped at limit.
func (r *OutboxRepository) PendingBatch(limit int) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	err := r.DB.Where("status = ?", model.OutboxPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *OutboxRepository) MarkDispatched(id string) error {
	now := time.Now()
	return r.DB.Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.OutboxDispatched,
			"dispatched_at": now,
		}).Error
}

// RecordFailure bumps the attempt counter; the event stays pending and will
// be retried on the next dispatcher tick.
func (r *OutboxRepository) RecordFailure(id string) error {
	return r.DB.Model(&model.OutboxEvent{}).Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
