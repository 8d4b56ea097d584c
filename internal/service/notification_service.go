package service

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// NotificationService delivers in-app notifications and serves the
// recipient-side inbox queries.
type NotificationService struct {
	NotificationRepo *repository.NotificationRepository
	ExamRepo         *repository.ExamRepository
}

func NewNotificationService(notificationRepo *repository.NotificationRepository, examRepo *repository.ExamRepository) *NotificationService {
	return &NotificationService{
		NotificationRepo: notificationRepo,
		ExamRepo:         examRepo,
	}
}

func (s *NotificationService) examTitle(examID uint) string {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return "an exam"
	}
	return exam.Title
}

// ResultAvailable tells a student their result was published on submit.
func (s *NotificationService) ResultAvailable(studentID, examID uint) error {
	related := examID
	return s.NotificationRepo.Create(&model.Notification{
		Recipient:   studentID,
		Title:       "Result available",
		Message:     fmt.Sprintf("Your result for %q is available.", s.examTitle(examID)),
		Type:        model.NotificationResult,
		RelatedExam: &related,
		Priority:    model.PriorityMedium,
	})
}

// EvaluationComplete tells a student their attempt was evaluated.
func (s *NotificationService) EvaluationComplete(studentID, examID uint, score, total float64) error {
	related := examID
	return s.NotificationRepo.Create(&model.Notification{
		Recipient:   studentID,
		Title:       "Evaluation complete",
		Message:     fmt.Sprintf("Your attempt for %q was evaluated: %.2f / %.2f.", s.examTitle(examID), score, total),
		Type:        model.NotificationResult,
		RelatedExam: &related,
		Priority:    model.PriorityHigh,
	})
}

// ExamScheduled fans one scheduled-exam notice out to the allow-list.
func (s *NotificationService) ExamScheduled(studentIDs []uint, examID uint, title string, startTime time.Time) error {
	if len(studentIDs) == 0 {
		return nil
	}
	related := examID
	message := fmt.Sprintf("Exam %q is scheduled for %s.", title, startTime.Format(time.RFC1123))
	notifications := make([]model.Notification, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		notifications = append(notifications, model.Notification{
			Recipient:   studentID,
			Title:       "Exam scheduled",
			Message:     message,
			Type:        model.NotificationExam,
			RelatedExam: &related,
			Priority:    model.PriorityMedium,
		})
	}
	return s.NotificationRepo.CreateBatch(notifications)
}

func (s *NotificationService) List(recipientID uint, isRead *bool, page, limit int) ([]model.Notification, int64, int64, error) {
	return s.NotificationRepo.ListByRecipient(recipientID, isRead, page, limit)
}

// MarkRead marks one notification read, refusing cross-recipient access.
func (s *NotificationService) MarkRead(recipientID, notificationID uint) error {
	notification, err := s.NotificationRepo.FindByID(notificationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotificationNotFound
	}
	if err != nil {
		return err
	}
	if notification.Recipient != recipientID {
		return util.ErrPermissionDenied
	}
	return s.NotificationRepo.MarkRead(notificationID)
}

func (s *NotificationService) MarkAllRead(recipientID uint) error {
	return s.NotificationRepo.MarkAllRead(recipientID)
}
