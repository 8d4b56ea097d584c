package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) CreateBatch(qs []model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	return r.DB.Create(&qs).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// FindByIDs loads a batch of questions keyed by id.
func (r *QuestionRepository) FindByIDs(ids []uint) (map[uint]model.Question, error) {
	result := make(map[uint]model.Question, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var questions []model.Question
	if err := r.DB.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	for _, q := range questions {
		result[q.ID] = q
	}
	return result, nil
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

type QuestionFilters struct {
	Subject      string
	Topic        string
	Difficulty   string
	QuestionType string
	Search       string
	CreatedBy    uint
}

func (r *QuestionRepository) List(filters QuestionFilters, page, limit int) ([]model.Question, int64, error) {
	var questions []model.Question
	var total int64

	query := r.DB.Model(&model.Question{})
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}
	if filters.Topic != "" {
		query = query.Where("topic = ?", filters.Topic)
	}
	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}
	if filters.QuestionType != "" {
		query = query.Where("question_type = ?", filters.QuestionType)
	}
	if filters.Search != "" {
		query = query.Where("question_text LIKE ?", "%"+filters.Search+"%")
	}
	if filters.CreatedBy > 0 {
		query = query.Where("created_by = ?", filters.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error
	return questions, total, err
}

func (r *QuestionRepository) DistinctSubjects() ([]string, error) {
	var subjects []string
	err := r.DB.Model(&model.Question{}).Distinct("subject").Order("subject").Pluck("subject", &subjects).Error
	return subjects, err
}

func (r *QuestionRepository) TopicsBySubject(subject string) ([]string, error) {
	var topics []string
	err := r.DB.Model(&model.Question{}).Where("subject = ?", subject).
		Distinct("topic").Order("topic").Pluck("topic", &topics).Error
	return topics, err
}

// UsedInExams reports whether any exam still references the question.
func (r *QuestionRepository) UsedInExams(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ExamQuestion{}).Where("question_id = ?", id).Count(&count).Error
	return count > 0, err
}
