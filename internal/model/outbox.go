package model

import (
	"encoding/json"
	"time"
)

type OutboxEventType string

const (
	EventResultAvailable    OutboxEventType = "result-available"
	EventEvaluationComplete OutboxEventType = "evaluation-complete"
	EventExamScheduled      OutboxEventType = "exam-scheduled"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxDispatched OutboxStatus = "dispatched"
)

// OutboxEvent records a notification side effect inside the transaction that
// produced it. A background dispatcher delivers pending rows after commit, so
// delivery failure never rolls back or fails the originating operation.
type OutboxEvent struct {
	UUIDBase
	EventType    OutboxEventType `gorm:"size:30;not null" json:"eventType"`
	Payload      json.RawMessage `gorm:"type:json" json:"payload"`
	Status       OutboxStatus    `gorm:"size:15;default:'pending';index" json:"status"`
	Attempts     int             `gorm:"default:0" json:"attempts"`
	DispatchedAt *time.Time      `json:"dispatchedAt,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// ResultAvailablePayload accompanies EventResultAvailable.
type ResultAvailablePayload struct {
	StudentID uint `json:"studentId"`
	ExamID    uint `json:"examId"`
}

// EvaluationCompletePayload accompanies EventEvaluationComplete.
type EvaluationCompletePayload struct {
	StudentID uint    `json:"studentId"`
	ExamID    uint    `json:"examId"`
	Score     float64 `json:"score"`
	Total     float64 `json:"total"`
}

// ExamScheduledPayload accompanies EventExamScheduled.
type ExamScheduledPayload struct {
	StudentIDs []uint    `json:"studentIds"`
	ExamID     uint      `json:"examId"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"startTime"`
}

func NewOutboxEvent(eventType OutboxEventType, payload interface{}) *OutboxEvent {
	raw, _ := json.Marshal(payload)
	return &OutboxEvent{
		EventType: eventType,
		Payload:   raw,
		Status:    OutboxPending,
	}
}
