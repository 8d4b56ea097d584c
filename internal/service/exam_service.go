package service

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type ExamService struct {
	ExamRepo     *repository.ExamRepository
	QuestionRepo *repository.QuestionRepository
	DB           *gorm.DB
}

func NewExamService(examRepo *repository.ExamRepository, questionRepo *repository.QuestionRepository, db *gorm.DB) *ExamService {
	return &ExamService{
		ExamRepo:     examRepo,
		QuestionRepo: questionRepo,
		DB:           db,
	}
}

type ExamRequest struct {
	Title              string                `json:"title" binding:"required"`
	Description        string                `json:"description"`
	Subject            string                `json:"subject" binding:"required"`
	Duration           int                   `json:"duration" binding:"required,gt=0"`
	TotalMarks         float64               `json:"totalMarks" binding:"required"`
	PassingMarks       float64               `json:"passingMarks"`
	StartTime          time.Time             `json:"startTime" binding:"required"`
	EndTime            time.Time             `json:"endTime" binding:"required"`
	Instructions       string                `json:"instructions"`
	QuestionIDs        []uint                `json:"questionIds" binding:"required,min=1"`
	RandomizeQuestions *bool                 `json:"randomizeQuestions"`
	Department         string                `json:"department"`
	Semester           int                   `json:"semester"`
	AllowedStudentIDs  []uint                `json:"allowedStudents"`
	IsPublished        bool                  `json:"isPublished"`
	NegativeMarking    model.NegativeMarking `json:"negativeMarking"`
}

func (req *ExamRequest) validate() error {
	if !req.StartTime.Before(req.EndTime) {
		return errors.New("startTime must be before endTime")
	}
	if req.TotalMarks < 0 || req.PassingMarks < 0 {
		return errors.New("marks must be non-negative")
	}
	if req.NegativeMarking.MarksPerWrong < 0 {
		return errors.New("marksPerWrong must be non-negative")
	}
	return nil
}

// CreateExam stores the exam with its ordered question list and allow-list.
// When the allow-list is non-empty, an exam-scheduled event is appended in
// the same transaction so those students get notified after commit.
func (s *ExamService) CreateExam(creatorID uint, req ExamRequest) (*model.Exam, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.FindByIDs(req.QuestionIDs)
	if err != nil {
		return nil, err
	}
	for _, qid := range req.QuestionIDs {
		if _, ok := questions[qid]; !ok {
			return nil, util.ErrQuestionNotFound
		}
	}

	randomize := true
	if req.RandomizeQuestions != nil {
		randomize = *req.RandomizeQuestions
	}

	exam := &model.Exam{
		Title:              req.Title,
		Description:        req.Description,
		Subject:            req.Subject,
		Duration:           req.Duration,
		TotalMarks:         req.TotalMarks,
		PassingMarks:       req.PassingMarks,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Instructions:       req.Instructions,
		RandomizeQuestions: randomize,
		Department:         req.Department,
		Semester:           req.Semester,
		IsPublished:        req.IsPublished,
		CreatedBy:          creatorID,
		NegativeMarking:    req.NegativeMarking,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exam).Error; err != nil {
			return err
		}
		if err := s.ExamRepo.ReplaceQuestions(tx, exam.ID, req.QuestionIDs); err != nil {
			return err
		}
		if err := s.ExamRepo.ReplaceAllowedStudents(tx, exam.ID, req.AllowedStudentIDs); err != nil {
			return err
		}
		if len(req.AllowedStudentIDs) > 0 {
			event := model.NewOutboxEvent(model.EventExamScheduled, model.ExamScheduledPayload{
				StudentIDs: req.AllowedStudentIDs,
				ExamID:     exam.ID,
				Title:      exam.Title,
				StartTime:  exam.StartTime,
			})
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(exam.ID)
}

func (s *ExamService) Get(id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	return exam, err
}

func (s *ExamService) UpdateExam(id uint, req ExamRequest) (*model.Exam, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	exam, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.FindByIDs(req.QuestionIDs)
	if err != nil {
		return nil, err
	}
	for _, qid := range req.QuestionIDs {
		if _, ok := questions[qid]; !ok {
			return nil, util.ErrQuestionNotFound
		}
	}

	exam.Title = req.Title
	exam.Description = req.Description
	exam.Subject = req.Subject
	exam.Duration = req.Duration
	exam.TotalMarks = req.TotalMarks
	exam.PassingMarks = req.PassingMarks
	exam.StartTime = req.StartTime
	exam.EndTime = req.EndTime
	exam.Instructions = req.Instructions
	if req.RandomizeQuestions != nil {
		exam.RandomizeQuestions = *req.RandomizeQuestions
	}
	exam.Department = req.Department
	exam.Semester = req.Semester
	exam.NegativeMarking = req.NegativeMarking
	exam.Questions = nil
	exam.AllowedStudents = nil

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(exam).Error; err != nil {
			return err
		}
		if err := s.ExamRepo.ReplaceQuestions(tx, exam.ID, req.QuestionIDs); err != nil {
			return err
		}
		return s.ExamRepo.ReplaceAllowedStudents(tx, exam.ID, req.AllowedStudentIDs)
	})
	if err != nil {
		return nil, err
	}

	s.ExamRepo.Invalidate(exam.ID)
	return s.Get(exam.ID)
}

// DeleteExam removes an exam that has no attempts yet.
func (s *ExamService) DeleteExam(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	var attempts int64
	if err := s.DB.Model(&model.ExamAttempt{}).Where("exam_id = ?", id).Count(&attempts).Error; err != nil {
		return err
	}
	if attempts > 0 {
		return errors.New("exam has attempts and cannot be deleted")
	}
	return s.ExamRepo.Delete(id)
}

func (s *ExamService) TogglePublish(id uint) (*model.Exam, error) {
	exam, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.ExamRepo.SetPublished(id, !exam.IsPublished); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// ListForUser filters by role: students see accessible published exams,
// faculty their own, admin everything.
func (s *ExamService) ListForUser(user *model.User) ([]model.Exam, error) {
	switch user.Role {
	case model.Student:
		return s.ExamRepo.ListForStudent(user, false)
	case model.Faculty:
		return s.ExamRepo.ListByCreator(user.ID)
	default:
		return s.ExamRepo.ListAll()
	}
}

func (s *ExamService) UpcomingForStudent(user *model.User) ([]model.Exam, error) {
	return s.ExamRepo.ListForStudent(user, true)
}
