package service

import (
	"exam_portal_backend/internal/model"
	"testing"
)

func TestQuestionRequestValidate(t *testing.T) {
	base := QuestionRequest{
		QuestionText: "Pick one",
		QuestionType: string(model.MultipleChoice),
		Points:       5,
		Topic:        "arrays",
		Subject:      "CS",
	}

	tests := []struct {
		name    string
		mutate  func(*QuestionRequest)
		wantErr bool
	}{
		{
			"valid choice question",
			func(r *QuestionRequest) {
				r.Options = []model.QuestionOption{
					{Text: "A", IsCorrect: true},
					{Text: "B"},
				}
			},
			false,
		},
		{
			"too few options",
			func(r *QuestionRequest) {
				r.Options = []model.QuestionOption{{Text: "A", IsCorrect: true}}
			},
			true,
		},
		{
			"no correct option",
			func(r *QuestionRequest) {
				r.Options = []model.QuestionOption{{Text: "A"}, {Text: "B"}}
			},
			true,
		},
		{
			"two correct options",
			func(r *QuestionRequest) {
				r.Options = []model.QuestionOption{
					{Text: "A", IsCorrect: true},
					{Text: "B", IsCorrect: true},
				}
			},
			true,
		},
		{
			"descriptive needs no options",
			func(r *QuestionRequest) {
				r.QuestionType = string(model.Descriptive)
				r.Options = nil
			},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			err := req.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionRequestToModelMarshalsJSONFields(t *testing.T) {
	req := QuestionRequest{
		QuestionText: "Pick one",
		QuestionType: string(model.MultipleChoice),
		Options: []model.QuestionOption{
			{Text: "A", IsCorrect: true},
			{Text: "B"},
		},
		Points:  5,
		Topic:   "arrays",
		Subject: "CS",
		Tags:    []string{"easy", "intro"},
	}

	q := req.toModel(42)

	if q.CreatedBy != 42 {
		t.Fatalf("createdBy = %d, want 42", q.CreatedBy)
	}
	if correct, ok := q.CorrectOptionText(); !ok || correct != "A" {
		t.Fatalf("correct option = %q (%v), want \"A\"", correct, ok)
	}
	if len(q.Tags) == 0 {
		t.Fatal("tags not marshaled")
	}
}
