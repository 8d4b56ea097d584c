package service

import (
	"exam_portal_backend/internal/model"
)

// gradeObjective scores every answer whose question is auto-gradable and
// returns a graded copy of the slice, the resulting total, and whether any
// answer still needs manual evaluation. It is a pure fold: inputs are not
// mutated, and the total is derived from the returned slice alone.
//
// A payload that is absent, JSON null, or not equal to the correct option
// text fails the comparison and takes the wrong-answer branch, including
// the negative-marking deduction when the policy is enabled.
func gradeObjective(answers []model.AttemptAnswer, questions map[uint]model.Question, policy model.NegativeMarking) ([]model.AttemptAnswer, float64, bool) {
	graded := make([]model.AttemptAnswer, len(answers))
	copy(graded, answers)

	hasSubjective := false
	for i := range graded {
		q, ok := questions[graded[i].QuestionID]
		if !ok {
			continue
		}
		if !q.QuestionType.IsObjective() {
			// Descriptive and coding answers stay ungraded here.
			hasSubjective = true
			continue
		}

		correct, hasCorrect := q.CorrectOptionText()
		text, hasText := graded[i].AnswerText()
		if hasCorrect && hasText && text == correct {
			graded[i].IsCorrect = true
			graded[i].MarksObtained = q.Points
		} else {
			graded[i].IsCorrect = false
			graded[i].MarksObtained = 0
			if policy.Enabled {
				graded[i].MarksObtained = -policy.MarksPerWrong
			}
		}
	}

	return graded, sumMarks(graded), hasSubjective
}

// sumMarks folds the per-answer marks into a total. Used both at submission
// (subjective slots still hold zero) and at evaluation, where previously
// auto-graded marks persist in their slots and so survive partial score lists.
func sumMarks(answers []model.AttemptAnswer) float64 {
	var total float64
	for _, a := range answers {
		total += a.MarksObtained
	}
	return total
}

// finalize computes the evaluated result figures. The percentage is a plain
// ratio: a negative total under negative marking yields a negative
// percentage, by the same arithmetic. Passing is boundary inclusive.
func finalize(total float64, exam *model.Exam) (percentage float64, isPassed bool) {
	return total / exam.TotalMarks * 100, total >= exam.PassingMarks
}
