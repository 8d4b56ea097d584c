package service

import (
	"encoding/json"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/monitoring"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Notifier receives decoded outbox events. NotificationService satisfies it.
type Notifier interface {
	ResultAvailable(studentID, examID uint) error
	EvaluationComplete(studentID, examID uint, score, total float64) error
	ExamScheduled(studentIDs []uint, examID uint, title string, startTime time.Time) error
}

// OutboxSource is the pending-event store the dispatcher drains.
// repository.OutboxRepository satisfies it.
type OutboxSource interface {
	PendingBatch(limit int) ([]model.OutboxEvent, error)
	MarkDispatched(id string) error
	RecordFailure(id string) error
}

// OutboxDispatcher drains pending outbox rows and hands them to the Notifier.
// It runs on a ticker in the app; each tick processes at most BatchSize rows.
type OutboxDispatcher struct {
	OutboxRepo OutboxSource
	Notifier   Notifier
	Logger     *zap.Logger
	BatchSize  int
}

func NewOutboxDispatcher(outboxRepo OutboxSource, notifier Notifier, logger *zap.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		OutboxRepo: outboxRepo,
		Notifier:   notifier,
		Logger:     logger,
		BatchSize:  50,
	}
}

// DispatchPending delivers one batch. Failed events keep their pending status
// and are retried next tick, so delivery is at-least-once.
func (d *OutboxDispatcher) DispatchPending() {
	events, err := d.OutboxRepo.PendingBatch(d.BatchSize)
	if err != nil {
		d.Logger.Error("outbox: loading pending events failed", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := d.deliver(&event); err != nil {
			d.Logger.Warn("outbox: delivery failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.EventType)),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err))
			if err := d.OutboxRepo.RecordFailure(event.ID); err != nil {
				d.Logger.Error("outbox: recording failure failed", zap.String("event_id", event.ID), zap.Error(err))
			}
			monitoring.OutboxDispatches.WithLabelValues("failure").Inc()
			continue
		}
		if err := d.OutboxRepo.MarkDispatched(event.ID); err != nil {
			d.Logger.Error("outbox: marking dispatched failed", zap.String("event_id", event.ID), zap.Error(err))
			continue
		}
		monitoring.OutboxDispatches.WithLabelValues("success").Inc()
	}
}

func (d *OutboxDispatcher) deliver(event *model.OutboxEvent) error {
	switch event.EventType {
	case model.EventResultAvailable:
		var payload model.ResultAvailablePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		return d.Notifier.ResultAvailable(payload.StudentID, payload.ExamID)
	case model.EventEvaluationComplete:
		var payload model.EvaluationCompletePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		return d.Notifier.EvaluationComplete(payload.StudentID, payload.ExamID, payload.Score, payload.Total)
	case model.EventExamScheduled:
		var payload model.ExamScheduledPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		return d.Notifier.ExamScheduled(payload.StudentIDs, payload.ExamID, payload.Title, payload.StartTime)
	default:
		return fmt.Errorf("unknown outbox event type %q", event.EventType)
	}
}
