package repository

import (
	"context"
	"encoding/json"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExamRepository struct {
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewExamRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *ExamRepository {
	return &ExamRepository{DB: db, Redis: rdb, CacheTTL: cacheTTL}
}

func examCacheKey(id uint) string {
	return fmt.Sprintf("exam:%d", id)
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

// FindByID loads an exam with its ordered question list and allow-list.
// Reads go through the Redis cache; attempt start and submit hit this on
// every call, and exam definitions change rarely.
func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	ctx := context.Background()

	if r.Redis != nil {
		if raw, err := r.Redis.Get(ctx, examCacheKey(id)).Bytes(); err == nil {
			var cached model.Exam
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	var exam model.Exam
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("exam_questions.`order` ASC")
		}).
		Preload("Questions.Question").
		Preload("AllowedStudents").
		First(&exam, id).Error
	if err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if raw, err := json.Marshal(&exam); err == nil {
			if err := r.Redis.Set(ctx, examCacheKey(id), raw, r.CacheTTL).Err(); err != nil {
				logger.Log.Warn("exam cache write failed", zap.Uint("examId", id), zap.Error(err))
			}
		}
	}

	return &exam, nil
}

// Invalidate drops the cached copy after any write.
func (r *ExamRepository) Invalidate(id uint) {
	if r.Redis == nil {
		return
	}
	if err := r.Redis.Del(context.Background(), examCacheKey(id)).Err(); err != nil {
		logger.Log.Warn("exam cache invalidation failed", zap.Uint("examId", id), zap.Error(err))
	}
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	err := r.DB.Save(exam).Error
	if err == nil {
		r.Invalidate(exam.ID)
	}
	return err
}

func (r *ExamRepository) Delete(id uint) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamAllowedStudent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Exam{}, id).Error
	})
	if err == nil {
		r.Invalidate(id)
	}
	return err
}

func (r *ExamRepository) SetPublished(id uint, published bool) error {
	err := r.DB.Model(&model.Exam{}).Where("id = ?", id).Update("is_published", published).Error
	if err == nil {
		r.Invalidate(id)
	}
	return err
}

// ReplaceQuestions swaps the exam's question list, preserving request order.
func (r *ExamRepository) ReplaceQuestions(tx *gorm.DB, examID uint, questionIDs []uint) error {
	if err := tx.Where("exam_id = ?", examID).Delete(&model.ExamQuestion{}).Error; err != nil {
		return err
	}
	if len(questionIDs) == 0 {
		return nil
	}
	links := make([]model.ExamQuestion, 0, len(questionIDs))
	for idx, qid := range questionIDs {
		links = append(links, model.ExamQuestion{
			ExamID:     examID,
			QuestionID: qid,
			Order:      idx + 1,
		})
	}
	return tx.Create(&links).Error
}

// ReplaceAllowedStudents swaps the exam's explicit allow-list.
func (r *ExamRepository) ReplaceAllowedStudents(tx *gorm.DB, examID uint, studentIDs []uint) error {
	if err := tx.Where("exam_id = ?", examID).Delete(&model.ExamAllowedStudent{}).Error; err != nil {
		return err
	}
	if len(studentIDs) == 0 {
		return nil
	}
	links := make([]model.ExamAllowedStudent, 0, len(studentIDs))
	for _, sid := range studentIDs {
		links = append(links, model.ExamAllowedStudent{ExamID: examID, StudentID: sid})
	}
	return tx.Create(&links).Error
}

// ListForStudent returns published exams the student may access, by explicit
// allow-list membership or department+semester match.
func (r *ExamRepository) ListForStudent(student *model.User, onlyUpcoming bool) ([]model.Exam, error) {
	var exams []model.Exam
	query := r.DB.Model(&model.Exam{}).
		Joins("LEFT JOIN exam_allowed_students eas ON eas.exam_id = exams.id AND eas.deleted_at IS NULL").
		Where("exams.is_published = ?", true).
		Where("eas.student_id = ? OR (exams.department <> '' AND exams.department = ? AND exams.semester = ?)",
			student.ID, student.Department, student.Semester).
		Group("exams.id")
	if onlyUpcoming {
		query = query.Where("exams.start_time > ?", time.Now())
	}
	err := query.Order("exams.start_time DESC").Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) ListByCreator(creatorID uint) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Where("created_by = ?", creatorID).Order("start_time DESC").Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) ListAll() ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Order("start_time DESC").Find(&exams).Error
	return exams, err
}
