package repository

import (
	"encoding/json"
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// isDuplicateKey matches both gorm's translated error and the raw MySQL errno,
// since TranslateError does not cover every driver path.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

// Create inserts the attempt together with its materialized answer slots.
// The unique (exam_id, student_id) index is the race arbiter for concurrent
// starts; the losing insert surfaces ErrDuplicateAttempt.
func (r *AttemptRepository) Create(attempt *model.ExamAttempt) error {
	err := r.DB.Create(attempt).Error
	if isDuplicateKey(err) {
		return util.ErrDuplicateAttempt
	}
	return err
}

func (r *AttemptRepository) FindByID(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempt_answers.`order` ASC")
		}).
		First(&attempt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindByExamAndStudent(examID, studentID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.DB.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempt_answers.`order` ASC")
		}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// UpdateAnswerPayload overwrites a single answer slot's payload in place.
// Last write wins; concurrent saves for different questions touch disjoint
// rows. A questionId that matches no slot affects zero rows, which the
// caller treats as a tolerated no-op.
func (r *AttemptRepository) UpdateAnswerPayload(attemptID, questionID uint, payload json.RawMessage) error {
	var value interface{}
	if len(payload) > 0 {
		value = string(payload)
	}
	return r.DB.Model(&model.AttemptAnswer{}).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Update("answer", value).Error
}

// CompleteSubmission persists the graded attempt, conditioned on the row
// still being in-progress so that racing submits serialize on the status
// column. Zero rows affected means someone else already moved the attempt.
func (r *AttemptRepository) CompleteSubmission(attempt *model.ExamAttempt, event *model.OutboxEvent) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ExamAttempt{}).
			Where("id = ? AND status = ?", attempt.ID, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":               attempt.Status,
				"submitted_at":         attempt.SubmittedAt,
				"total_marks_obtained": attempt.TotalMarksObtained,
				"percentage":           attempt.Percentage,
				"is_passed":            attempt.IsPassed,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAlreadySubmitted
		}
		for _, ans := range attempt.Answers {
			if err := tx.Model(&model.AttemptAnswer{}).
				Where("attempt_id = ? AND question_id = ?", attempt.ID, ans.QuestionID).
				Updates(map[string]interface{}{
					"is_correct":     ans.IsCorrect,
					"marks_obtained": ans.MarksObtained,
				}).Error; err != nil {
				return err
			}
		}
		if event != nil {
			return tx.Create(event).Error
		}
		return nil
	})
}

// SaveEvaluation persists manual grading. Unconditional on status: evaluate
// is re-runnable on already-evaluated attempts as a correction path.
func (r *AttemptRepository) SaveEvaluation(attempt *model.ExamAttempt, event *model.OutboxEvent) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ExamAttempt{}).
			Where("id = ?", attempt.ID).
			Updates(map[string]interface{}{
				"status":               attempt.Status,
				"total_marks_obtained": attempt.TotalMarksObtained,
				"percentage":           attempt.Percentage,
				"is_passed":            attempt.IsPassed,
				"evaluated_by":         attempt.EvaluatedBy,
				"evaluated_at":         attempt.EvaluatedAt,
				"feedback":             attempt.Feedback,
			}).Error; err != nil {
			return err
		}
		for _, ans := range attempt.Answers {
			if err := tx.Model(&model.AttemptAnswer{}).
				Where("attempt_id = ? AND question_id = ?", attempt.ID, ans.QuestionID).
				Update("marks_obtained", ans.MarksObtained).Error; err != nil {
				return err
			}
		}
		if event != nil {
			return tx.Create(event).Error
		}
		return nil
	})
}

func (r *AttemptRepository) ListByStudent(studentID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Preload("Exam").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByExam(examID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Preload("Student").
		Where("exam_id = ?", examID).
		Order("submitted_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// AbandonExpired sweeps in-progress attempts whose exam window closed more
// than the grace period ago into the abandoned terminal state.
func (r *AttemptRepository) AbandonExpired(grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace)
	res := r.DB.Exec(
		"UPDATE exam_attempts a JOIN exams e ON a.exam_id = e.id SET a.status = ? WHERE a.status = ? AND e.end_time < ?",
		model.AttemptAbandoned, model.AttemptInProgress, cutoff,
	)
	return res.RowsAffected, res.Error
}
