package service

import (
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// ExamLookup is the read-only exam collaborator, assumed strongly consistent.
type ExamLookup interface {
	FindByID(id uint) (*model.Exam, error)
}

// QuestionLookup is the read-only question collaborator.
type QuestionLookup interface {
	FindByIDs(ids []uint) (map[uint]model.Question, error)
}

// AttemptStore owns attempt persistence. Implementations must enforce the
// (exam, student) uniqueness atomically on Create and serialize
// CompleteSubmission on the attempt's prior status.
type AttemptStore interface {
	Create(attempt *model.ExamAttempt) error
	FindByID(id uint) (*model.ExamAttempt, error)
	FindByExamAndStudent(examID, studentID uint) (*model.ExamAttempt, error)
	UpdateAnswerPayload(attemptID, questionID uint, payload json.RawMessage) error
	CompleteSubmission(attempt *model.ExamAttempt, event *model.OutboxEvent) error
	SaveEvaluation(attempt *model.ExamAttempt, event *model.OutboxEvent) error
	ListByStudent(studentID uint) ([]model.ExamAttempt, error)
	ListByExam(examID uint) ([]model.ExamAttempt, error)
	AbandonExpired(grace time.Duration) (int64, error)
}

// AttemptService orchestrates the attempt lifecycle: in-progress → submitted
// → evaluated, with abandoned as the sweep-only terminal state. All status
// movement is forward; terminal attempts accept no writes except the
// explicit re-evaluation path.
type AttemptService struct {
	Exams     ExamLookup
	Questions QuestionLookup
	Attempts  AttemptStore

	// seed feeds the per-attempt question permutation. Injected so attempt
	// creation is deterministic under test while production gets a fresh
	// order per attempt.
	seed func() int64
}

func NewAttemptService(exams ExamLookup, questions QuestionLookup, attempts AttemptStore, seed func() int64) *AttemptService {
	if seed == nil {
		seed = func() int64 { return time.Now().UnixNano() }
	}
	return &AttemptService{
		Exams:     exams,
		Questions: questions,
		Attempts:  attempts,
		seed:      seed,
	}
}

// StartAttempt materializes the student's one attempt for the exam: one empty
// answer slot per exam question, in exam order or a fresh pseudo-random
// permutation of it. A concurrent or repeated start loses against the unique
// index and gets the existing attempt back alongside ErrDuplicateAttempt, so
// client retries are idempotent.
func (s *AttemptService) StartAttempt(studentID, examID uint, ipAddress, browserInfo string) (*model.ExamAttempt, error) {
	exam, err := s.Exams.FindByID(examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}

	if !exam.IsPublished {
		return nil, util.ErrExamNotPublished
	}
	now := time.Now()
	if now.Before(exam.StartTime) {
		return nil, util.ErrExamNotStarted
	}
	if now.After(exam.EndTime) {
		return nil, util.ErrExamEnded
	}

	questionIDs := exam.QuestionIDs()
	order := make([]int, len(questionIDs))
	for i := range order {
		order[i] = i
	}
	if exam.RandomizeQuestions {
		order = rand.New(rand.NewSource(s.seed())).Perm(len(questionIDs))
	}

	answers := make([]model.AttemptAnswer, 0, len(questionIDs))
	for idx, pos := range order {
		answers = append(answers, model.AttemptAnswer{
			QuestionID:    questionIDs[pos],
			Order:         idx + 1,
			Answer:        nil,
			IsCorrect:     false,
			MarksObtained: 0,
		})
	}

	attempt := &model.ExamAttempt{
		ExamID:      examID,
		StudentID:   studentID,
		Status:      model.AttemptInProgress,
		StartedAt:   now,
		IPAddress:   ipAddress,
		BrowserInfo: browserInfo,
		Answers:     answers,
	}

	if err := s.Attempts.Create(attempt); err != nil {
		if errors.Is(err, util.ErrDuplicateAttempt) {
			existing, findErr := s.Attempts.FindByExamAndStudent(examID, studentID)
			if findErr != nil {
				return nil, findErr
			}
			return existing, util.ErrDuplicateAttempt
		}
		return nil, err
	}

	monitoring.AttemptTransitions.WithLabelValues(string(model.AttemptInProgress)).Inc()
	return attempt, nil
}

// SaveAnswer overwrites one answer slot's payload, last write wins. A
// questionId not belonging to the attempt is silently ignored, matching
// tolerant auto-save semantics.
func (s *AttemptService) SaveAnswer(attemptID, studentID, questionID uint, payload json.RawMessage) error {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return err
	}
	if attempt.StudentID != studentID {
		return util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return util.ErrInvalidState
	}
	return s.Attempts.UpdateAnswerPayload(attemptID, questionID, payload)
}

// Submit auto-grades every objective answer and moves the attempt to
// submitted, or straight to evaluated when nothing needs manual grading, in
// which case the result notification is queued in the same transaction.
func (s *AttemptService) Submit(attemptID, studentID uint) (*model.ExamAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAlreadySubmitted
	}

	exam, err := s.Exams.FindByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]uint, 0, len(attempt.Answers))
	for _, a := range attempt.Answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	questions, err := s.Questions.FindByIDs(questionIDs)
	if err != nil {
		return nil, err
	}

	graded, total, hasSubjective := gradeObjective(attempt.Answers, questions, exam.NegativeMarking)
	now := time.Now()
	attempt.Answers = graded
	attempt.SubmittedAt = &now
	attempt.TotalMarksObtained = total
	attempt.Status = model.AttemptSubmitted

	var event *model.OutboxEvent
	if !hasSubjective {
		// Fully auto-gradable exam: short-circuit to the terminal state.
		attempt.Status = model.AttemptEvaluated
		attempt.Percentage, attempt.IsPassed = finalize(total, exam)
		event = model.NewOutboxEvent(model.EventResultAvailable, model.ResultAvailablePayload{
			StudentID: studentID,
			ExamID:    exam.ID,
		})
	}

	if err := s.Attempts.CompleteSubmission(attempt, event); err != nil {
		return nil, err
	}

	monitoring.AttemptTransitions.WithLabelValues(string(attempt.Status)).Inc()
	return attempt, nil
}

// AnswerScore is one manual score entry for Evaluate.
type AnswerScore struct {
	QuestionID    uint    `json:"questionId"`
	MarksObtained float64 `json:"marksObtained"`
}

// Evaluate applies manual scores and finalizes the attempt. Entries for
// unknown questions are ignored. The total is recomputed over every answer,
// so auto-graded marks persist through a partial score list, and re-running
// with different scores deterministically overwrites the previous outcome.
// Abandoned attempts accept no writes.
func (s *AttemptService) Evaluate(attemptID, evaluatorID uint, scores []AnswerScore, feedback string) (*model.ExamAttempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptAbandoned {
		return nil, util.ErrInvalidState
	}

	exam, err := s.Exams.FindByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]float64, len(scores))
	for _, sc := range scores {
		byQuestion[sc.QuestionID] = sc.MarksObtained
	}
	for i := range attempt.Answers {
		if marks, ok := byQuestion[attempt.Answers[i].QuestionID]; ok {
			attempt.Answers[i].MarksObtained = marks
		}
	}

	total := sumMarks(attempt.Answers)
	now := time.Now()
	attempt.TotalMarksObtained = total
	attempt.Percentage, attempt.IsPassed = finalize(total, exam)
	attempt.Status = model.AttemptEvaluated
	attempt.EvaluatedBy = &evaluatorID
	attempt.EvaluatedAt = &now
	attempt.Feedback = feedback

	event := model.NewOutboxEvent(model.EventEvaluationComplete, model.EvaluationCompletePayload{
		StudentID: attempt.StudentID,
		ExamID:    exam.ID,
		Score:     total,
		Total:     exam.TotalMarks,
	})

	if err := s.Attempts.SaveEvaluation(attempt, event); err != nil {
		return nil, err
	}

	monitoring.AttemptTransitions.WithLabelValues(string(model.AttemptEvaluated)).Inc()
	return attempt, nil
}

// GetAttempt returns an attempt; ownership and role gating are the caller's
// responsibility via the access policy.
func (s *AttemptService) GetAttempt(attemptID uint) (*model.ExamAttempt, error) {
	return s.Attempts.FindByID(attemptID)
}

func (s *AttemptService) GetMyAttempt(examID, studentID uint) (*model.ExamAttempt, error) {
	return s.Attempts.FindByExamAndStudent(examID, studentID)
}

func (s *AttemptService) MyAttempts(studentID uint) ([]model.ExamAttempt, error) {
	return s.Attempts.ListByStudent(studentID)
}

func (s *AttemptService) AttemptsByExam(examID uint) ([]model.ExamAttempt, error) {
	return s.Attempts.ListByExam(examID)
}

// SweepAbandoned moves in-progress attempts whose exam window closed past the
// grace period into the abandoned terminal state. Driven by the background
// ticker.
func (s *AttemptService) SweepAbandoned(grace time.Duration) (int64, error) {
	n, err := s.Attempts.AbandonExpired(grace)
	if err == nil && n > 0 {
		monitoring.AttemptTransitions.WithLabelValues(string(model.AttemptAbandoned)).Add(float64(n))
	}
	return n, err
}
