package model

import (
	"encoding/json"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in-progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptEvaluated  AttemptStatus = "evaluated"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// IsTerminal reports whether no further writes are permitted, except the
// explicit re-evaluation path on evaluated attempts.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptEvaluated || s == AttemptAbandoned
}

// ExamAttempt is one student's single, unique instance of taking an exam.
// The (exam_id, student_id) unique index enforces at most one attempt per
// pair; concurrent starts race on the index, not on a read-then-write check.
// swagger:model ExamAttempt
type ExamAttempt struct {
	BaseModel
	ExamID             uint          `gorm:"uniqueIndex:uniq_exam_student;type:bigint unsigned;not null" json:"examId"`
	StudentID          uint          `gorm:"uniqueIndex:uniq_exam_student;index;type:bigint unsigned;not null" json:"studentId"`
	Status             AttemptStatus `gorm:"size:20;default:'in-progress';index" json:"status"`
	StartedAt          time.Time     `json:"startedAt"`
	SubmittedAt        *time.Time    `json:"submittedAt,omitempty"`
	TotalMarksObtained float64       `gorm:"default:0" json:"totalMarksObtained"`
	Percentage         float64       `json:"percentage"`
	IsPassed           bool          `gorm:"default:false" json:"isPassed"`
	EvaluatedBy        *uint         `gorm:"type:bigint unsigned" json:"evaluatedBy,omitempty"`
	EvaluatedAt        *time.Time    `json:"evaluatedAt,omitempty"`
	Feedback           string        `gorm:"type:text" json:"feedback"`
	IPAddress          string        `gorm:"size:45" json:"ipAddress,omitempty"`
	BrowserInfo        string        `gorm:"size:255" json:"browserInfo,omitempty"`

	Exam    *Exam           `gorm:"foreignKey:ExamID" json:"exam,omitempty"`
	Student *User           `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Answers []AttemptAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// AttemptAnswer is one per exam question, materialized at start time. The
// answer slot list keeps fixed cardinality and stable order for the life of
// the attempt; only the payload and marks change.
type AttemptAnswer struct {
	BaseModel
	AttemptID     uint            `gorm:"uniqueIndex:uniq_attempt_question;type:bigint unsigned;not null" json:"attemptId"`
	QuestionID    uint            `gorm:"uniqueIndex:uniq_attempt_question;index;type:bigint unsigned;not null" json:"questionId"`
	Order         int             `gorm:"default:0" json:"order"`
	Answer        json.RawMessage `gorm:"type:json" json:"answer,omitempty"`
	IsCorrect     bool            `gorm:"default:false" json:"isCorrect"`
	MarksObtained float64         `gorm:"default:0" json:"marksObtained"` // signed under negative marking
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}

// AnswerText decodes a payload submitted for choice questions. The second
// return is false when the payload is absent, JSON null, or not a string;
// grading treats all of those as a failed comparison.
func (a *AttemptAnswer) AnswerText() (string, bool) {
	if len(a.Answer) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(a.Answer, &s); err != nil {
		return "", false
	}
	return s, true
}
