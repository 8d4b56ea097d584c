package service

import (
	"encoding/json"
	"exam_portal_backend/internal/model"
	"testing"
)

func choiceQuestion(id uint, points float64, correct string, others ...string) model.Question {
	opts := []model.QuestionOption{{Text: correct, IsCorrect: true}}
	for _, o := range others {
		opts = append(opts, model.QuestionOption{Text: o})
	}
	raw, _ := json.Marshal(opts)
	return model.Question{
		BaseModel:    model.BaseModel{ID: id},
		QuestionType: model.MultipleChoice,
		Options:      raw,
		Points:       points,
	}
}

func descriptiveQuestion(id uint, points float64) model.Question {
	return model.Question{
		BaseModel:    model.BaseModel{ID: id},
		QuestionType: model.Descriptive,
		Points:       points,
	}
}

func answer(questionID uint, payload string) model.AttemptAnswer {
	a := model.AttemptAnswer{QuestionID: questionID}
	if payload != "" {
		a.Answer = json.RawMessage(payload)
	}
	return a
}

func TestGradeObjective(t *testing.T) {
	questions := map[uint]model.Question{
		1: choiceQuestion(1, 5, "B", "A", "C"),
		2: choiceQuestion(2, 5, "true", "false"),
		3: choiceQuestion(3, 5, "D", "E"),
		4: choiceQuestion(4, 5, "X", "Y"),
	}
	policy := model.NegativeMarking{Enabled: true, MarksPerWrong: 1}

	answers := []model.AttemptAnswer{
		answer(1, `"B"`),     // correct: +5
		answer(2, `"false"`), // wrong: -1
		answer(3, `null`),    // null payload counts as wrong: -1
		answer(4, ""),        // never answered: -1
	}

	graded, total, hasSubjective := gradeObjective(answers, questions, policy)

	if hasSubjective {
		t.Fatal("expected fully objective exam")
	}
	if total != 2 {
		t.Fatalf("total = %v, want 2", total)
	}

	wantMarks := []float64{5, -1, -1, -1}
	wantCorrect := []bool{true, false, false, false}
	for i, g := range graded {
		if g.MarksObtained != wantMarks[i] {
			t.Errorf("answer %d: marks = %v, want %v", i, g.MarksObtained, wantMarks[i])
		}
		if g.IsCorrect != wantCorrect[i] {
			t.Errorf("answer %d: isCorrect = %v, want %v", i, g.IsCorrect, wantCorrect[i])
		}
	}

	// Inputs stay untouched.
	for i, a := range answers {
		if a.MarksObtained != 0 || a.IsCorrect {
			t.Errorf("input answer %d was mutated", i)
		}
	}
}

func TestGradeObjectiveWithoutNegativeMarking(t *testing.T) {
	questions := map[uint]model.Question{
		1: choiceQuestion(1, 4, "A", "B"),
	}
	answers := []model.AttemptAnswer{answer(1, `"B"`)}

	_, total, _ := gradeObjective(answers, questions, model.NegativeMarking{})
	if total != 0 {
		t.Fatalf("total = %v, want 0", total)
	}
}

func TestGradeObjectiveSkipsSubjective(t *testing.T) {
	questions := map[uint]model.Question{
		1: choiceQuestion(1, 5, "A", "B"),
		2: descriptiveQuestion(2, 10),
	}
	answers := []model.AttemptAnswer{
		answer(1, `"A"`),
		answer(2, `"an essay"`),
	}

	graded, total, hasSubjective := gradeObjective(answers, questions, model.NegativeMarking{Enabled: true, MarksPerWrong: 2})

	if !hasSubjective {
		t.Fatal("expected subjective answers to be flagged")
	}
	if total != 5 {
		t.Fatalf("total = %v, want 5", total)
	}
	if graded[1].MarksObtained != 0 || graded[1].IsCorrect {
		t.Error("descriptive answer must stay ungraded")
	}
}

func TestSumMarksAfterPartialEvaluation(t *testing.T) {
	// Auto-graded marks persist in their slots; a manual score list covering
	// only the subjective questions still yields the full total.
	answers := []model.AttemptAnswer{
		{QuestionID: 1, MarksObtained: 5},
		{QuestionID: 2, MarksObtained: -1},
		{QuestionID: 3, MarksObtained: 9}, // manually scored
	}
	if got := sumMarks(answers); got != 13 {
		t.Fatalf("total = %v, want 13", got)
	}
}

func TestFinalize(t *testing.T) {
	exam := &model.Exam{TotalMarks: 100, PassingMarks: 40}

	tests := []struct {
		name       string
		total      float64
		percentage float64
		isPassed   bool
	}{
		{"boundary total passes", 40, 40, true},
		{"below boundary fails", 39.5, 39.5, false},
		{"negative total yields negative percentage", -5, -5, false},
		{"full marks", 100, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percentage, isPassed := finalize(tt.total, exam)
			if percentage != tt.percentage {
				t.Errorf("percentage = %v, want %v", percentage, tt.percentage)
			}
			if isPassed != tt.isPassed {
				t.Errorf("isPassed = %v, want %v", isPassed, tt.isPassed)
			}
		})
	}
}
