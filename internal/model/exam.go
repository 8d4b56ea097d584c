package model

import "time"

// NegativeMarking is an exam's policy for wrong objective answers.
type NegativeMarking struct {
	Enabled       bool    `gorm:"default:false" json:"enabled"`
	MarksPerWrong float64 `gorm:"default:0" json:"marksPerWrong"`
}

// swagger:model Exam
type Exam struct {
	BaseModel
	Title              string          `gorm:"size:255;not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	Subject            string          `gorm:"size:100;not null" json:"subject"`
	Duration           int             `gorm:"not null" json:"duration"` // minutes
	TotalMarks         float64         `gorm:"not null" json:"totalMarks"`
	PassingMarks       float64         `gorm:"not null" json:"passingMarks"`
	StartTime          time.Time       `gorm:"not null;index:idx_exam_window" json:"startTime"`
	EndTime            time.Time       `gorm:"not null;index:idx_exam_window" json:"endTime"`
	Instructions       string          `gorm:"type:text" json:"instructions"`
	RandomizeQuestions bool            `gorm:"default:true" json:"randomizeQuestions"`
	Department         string          `gorm:"size:100" json:"department"`
	Semester           int             `gorm:"default:0" json:"semester"`
	IsPublished        bool            `gorm:"default:false;index:idx_exam_window" json:"isPublished"`
	CreatedBy          uint            `gorm:"index;type:bigint unsigned" json:"createdBy"`
	NegativeMarking    NegativeMarking `gorm:"embedded;embeddedPrefix:negative_marking_" json:"negativeMarking"`

	Questions       []ExamQuestion       `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
	AllowedStudents []ExamAllowedStudent `gorm:"foreignKey:ExamID" json:"allowedStudents,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamQuestion links an exam to a question in a fixed order.
type ExamQuestion struct {
	BaseModel
	ExamID     uint      `gorm:"index;type:bigint unsigned" json:"examId"`
	QuestionID uint      `gorm:"index;type:bigint unsigned" json:"questionId"`
	Order      int       `gorm:"default:0" json:"order"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}

// ExamAllowedStudent is one entry of an exam's explicit allow-list.
type ExamAllowedStudent struct {
	BaseModel
	ExamID    uint `gorm:"uniqueIndex:uniq_exam_allowed;type:bigint unsigned" json:"examId"`
	StudentID uint `gorm:"uniqueIndex:uniq_exam_allowed;index;type:bigint unsigned" json:"studentId"`
}

func (ExamAllowedStudent) TableName() string {
	return "exam_allowed_students"
}

// QuestionIDs returns the exam's question ids in stored order.
func (e *Exam) QuestionIDs() []uint {
	ids := make([]uint, 0, len(e.Questions))
	for _, q := range e.Questions {
		ids = append(ids, q.QuestionID)
	}
	return ids
}
