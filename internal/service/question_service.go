package service

import (
	"encoding/json"
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{QuestionRepo: questionRepo}
}

type QuestionRequest struct {
	QuestionText  string                 `json:"questionText" binding:"required"`
	QuestionType  string                 `json:"questionType" binding:"required,oneof=multiple-choice true-false descriptive coding"`
	Options       []model.QuestionOption `json:"options,omitempty"`
	CorrectAnswer string                 `json:"correctAnswer,omitempty"`
	Points        float64                `json:"points" binding:"required,gt=0"`
	Difficulty    string                 `json:"difficulty,omitempty"`
	Topic         string                 `json:"topic" binding:"required"`
	Subject       string                 `json:"subject" binding:"required"`
	Tags          []string               `json:"tags,omitempty"`
	Explanation   string                 `json:"explanation,omitempty"`
	CodeTemplate  string                 `json:"codeTemplate,omitempty"`
	TestCases     []model.TestCase       `json:"testCases,omitempty"`
}

func (req *QuestionRequest) validate() error {
	qt := model.QuestionType(req.QuestionType)
	if qt.IsObjective() {
		if len(req.Options) < 2 {
			return errors.New("choice questions need at least two options")
		}
		correct := 0
		for _, opt := range req.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return errors.New("choice questions need exactly one correct option")
		}
	}
	return nil
}

func (req *QuestionRequest) toModel(creatorID uint) *model.Question {
	q := &model.Question{
		QuestionText:  req.QuestionText,
		QuestionType:  model.QuestionType(req.QuestionType),
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Topic:         req.Topic,
		Subject:       req.Subject,
		Explanation:   req.Explanation,
		CodeTemplate:  req.CodeTemplate,
		CreatedBy:     creatorID,
	}
	if req.Difficulty != "" {
		q.Difficulty = req.Difficulty
	}
	if len(req.Options) > 0 {
		q.Options, _ = json.Marshal(req.Options)
	}
	if len(req.Tags) > 0 {
		q.Tags, _ = json.Marshal(req.Tags)
	}
	if len(req.TestCases) > 0 {
		q.TestCases, _ = json.Marshal(req.TestCases)
	}
	return q
}

func (s *QuestionService) Create(creatorID uint, req QuestionRequest) (*model.Question, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	q := req.toModel(creatorID)
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) BulkCreate(creatorID uint, reqs []QuestionRequest) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(reqs))
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			return nil, err
		}
		questions = append(questions, *req.toModel(creatorID))
	}
	if err := s.QuestionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) Update(id uint, req QuestionRequest) (*model.Question, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	updated := req.toModel(existing.CreatedBy)
	updated.BaseModel = existing.BaseModel
	if err := s.QuestionRepo.Update(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete refuses to remove questions still referenced by an exam.
func (s *QuestionService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	used, err := s.QuestionRepo.UsedInExams(id)
	if err != nil {
		return err
	}
	if used {
		return errors.New("question is used in an exam and cannot be deleted")
	}
	return s.QuestionRepo.Delete(id)
}

func (s *QuestionService) List(filters repository.QuestionFilters, page, limit int) ([]model.Question, int64, error) {
	return s.QuestionRepo.List(filters, page, limit)
}

func (s *QuestionService) Subjects() ([]string, error) {
	return s.QuestionRepo.DistinctSubjects()
}

func (s *QuestionService) TopicsBySubject(subject string) ([]string, error) {
	return s.QuestionRepo.TopicsBySubject(subject)
}
