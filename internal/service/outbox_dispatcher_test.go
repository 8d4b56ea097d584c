package service

import (
	"errors"
	"testing"
	"time"

	"exam_portal_backend/internal/model"

	"go.uber.org/zap"
)

type fakeOutboxSource struct {
	pending    []model.OutboxEvent
	dispatched []string
	failed     []string
}

func (f *fakeOutboxSource) PendingBatch(limit int) ([]model.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxSource) MarkDispatched(id string) error {
	f.dispatched = append(f.dispatched, id)
	return nil
}

func (f *fakeOutboxSource) RecordFailure(id string) error {
	f.failed = append(f.failed, id)
	return nil
}

type recordingNotifier struct {
	results     []model.ResultAvailablePayload
	evaluations []model.EvaluationCompletePayload
	schedules   []model.ExamScheduledPayload
	failWith    error
}

func (n *recordingNotifier) ResultAvailable(studentID, examID uint) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.results = append(n.results, model.ResultAvailablePayload{StudentID: studentID, ExamID: examID})
	return nil
}

func (n *recordingNotifier) EvaluationComplete(studentID, examID uint, score, total float64) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.evaluations = append(n.evaluations, model.EvaluationCompletePayload{
		StudentID: studentID, ExamID: examID, Score: score, Total: total,
	})
	return nil
}

func (n *recordingNotifier) ExamScheduled(studentIDs []uint, examID uint, title string, startTime time.Time) error {
	if n.failWith != nil {
		return n.failWith
	}
	n.schedules = append(n.schedules, model.ExamScheduledPayload{
		StudentIDs: studentIDs, ExamID: examID, Title: title, StartTime: startTime,
	})
	return nil
}

func pendingEvent(id string, eventType model.OutboxEventType, payload interface{}) model.OutboxEvent {
	event := model.NewOutboxEvent(eventType, payload)
	event.ID = id
	return *event
}

func TestDispatchPendingDeliversAndMarks(t *testing.T) {
	source := &fakeOutboxSource{pending: []model.OutboxEvent{
		pendingEvent("e1", model.EventResultAvailable, model.ResultAvailablePayload{StudentID: 7, ExamID: 1}),
		pendingEvent("e2", model.EventEvaluationComplete, model.EvaluationCompletePayload{StudentID: 7, ExamID: 1, Score: 13, Total: 100}),
		pendingEvent("e3", model.EventExamScheduled, model.ExamScheduledPayload{StudentIDs: []uint{7, 8}, ExamID: 2, Title: "Final"}),
	}}
	notifier := &recordingNotifier{}

	dispatcher := NewOutboxDispatcher(source, notifier, zap.NewNop())
	dispatcher.DispatchPending()

	if len(source.dispatched) != 3 {
		t.Fatalf("dispatched %d events, want 3", len(source.dispatched))
	}
	if len(source.failed) != 0 {
		t.Fatalf("unexpected failures: %v", source.failed)
	}
	if len(notifier.results) != 1 || notifier.results[0].StudentID != 7 {
		t.Fatalf("result notifications = %+v", notifier.results)
	}
	if len(notifier.evaluations) != 1 || notifier.evaluations[0].Score != 13 {
		t.Fatalf("evaluation notifications = %+v", notifier.evaluations)
	}
	if len(notifier.schedules) != 1 || len(notifier.schedules[0].StudentIDs) != 2 {
		t.Fatalf("schedule notifications = %+v", notifier.schedules)
	}
}

func TestDispatchPendingRecordsFailuresAndKeepsGoing(t *testing.T) {
	source := &fakeOutboxSource{pending: []model.OutboxEvent{
		pendingEvent("e1", model.EventResultAvailable, model.ResultAvailablePayload{StudentID: 7, ExamID: 1}),
		pendingEvent("e2", model.EventResultAvailable, model.ResultAvailablePayload{StudentID: 8, ExamID: 1}),
	}}
	notifier := &recordingNotifier{failWith: errors.New("smtp down")}

	dispatcher := NewOutboxDispatcher(source, notifier, zap.NewNop())
	dispatcher.DispatchPending()

	if len(source.failed) != 2 {
		t.Fatalf("failed %d events, want 2", len(source.failed))
	}
	if len(source.dispatched) != 0 {
		t.Fatalf("nothing should be marked dispatched, got %v", source.dispatched)
	}
}

func TestDispatchPendingUnknownTypeFails(t *testing.T) {
	source := &fakeOutboxSource{pending: []model.OutboxEvent{
		pendingEvent("e1", "mystery", map[string]int{"x": 1}),
	}}

	dispatcher := NewOutboxDispatcher(source, &recordingNotifier{}, zap.NewNop())
	dispatcher.DispatchPending()

	if len(source.failed) != 1 {
		t.Fatal("unknown event type must be recorded as a failure")
	}
}
