package model

import "encoding/json"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	Descriptive    QuestionType = "descriptive"
	Coding         QuestionType = "coding"
)

// IsObjective reports whether answers of this type are auto-graded at submission.
func (t QuestionType) IsObjective() bool {
	return t == MultipleChoice || t == TrueFalse
}

// QuestionOption is one entry of a choice question's option list.
type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// TestCase is stored with coding questions for the evaluator's reference.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	IsHidden       bool   `json:"isHidden"`
}

// swagger:model Question
type Question struct {
	BaseModel
	QuestionText  string          `gorm:"type:text;not null" json:"questionText"`
	QuestionType  QuestionType    `gorm:"size:20;not null;index" json:"questionType"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"` // []QuestionOption, choice types only
	CorrectAnswer string          `gorm:"type:text" json:"correctAnswer,omitempty"`
	Points        float64         `gorm:"default:1" json:"points"`
	Difficulty    string          `gorm:"type:enum('easy','medium','hard');default:'medium'" json:"difficulty"`
	Topic         string          `gorm:"size:100;not null;index" json:"topic"`
	Subject       string          `gorm:"size:100;not null;index" json:"subject"`
	Tags          json.RawMessage `gorm:"type:json" json:"tags,omitempty"` // []string
	Explanation   string          `gorm:"type:text" json:"explanation,omitempty"`
	CodeTemplate  string          `gorm:"type:text" json:"codeTemplate,omitempty"`
	TestCases     json.RawMessage `gorm:"type:json" json:"testCases,omitempty"` // []TestCase
	CreatedBy     uint            `gorm:"index;type:bigint unsigned" json:"createdBy"`
}

func (Question) TableName() string {
	return "questions"
}

// ParsedOptions decodes the stored option list. Empty for non-choice types.
func (q *Question) ParsedOptions() []QuestionOption {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// CorrectOptionText returns the text of the option flagged correct.
func (q *Question) CorrectOptionText() (string, bool) {
	for _, opt := range q.ParsedOptions() {
		if opt.IsCorrect {
			return opt.Text, true
		}
	}
	return "", false
}
