package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

// ---- in-memory fakes for the lifecycle collaborators ----

type fakeExamLookup struct {
	exams map[uint]*model.Exam
}

func (f *fakeExamLookup) FindByID(id uint) (*model.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

type fakeQuestionLookup struct {
	questions map[uint]model.Question
}

func (f *fakeQuestionLookup) FindByIDs(ids []uint) (map[uint]model.Question, error) {
	out := make(map[uint]model.Question, len(ids))
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

type fakeAttemptStore struct {
	nextID   uint
	attempts map[uint]*model.ExamAttempt
	events   []*model.OutboxEvent
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{nextID: 1, attempts: map[uint]*model.ExamAttempt{}}
}

func (f *fakeAttemptStore) Create(attempt *model.ExamAttempt) error {
	for _, existing := range f.attempts {
		if existing.ExamID == attempt.ExamID && existing.StudentID == attempt.StudentID {
			return util.ErrDuplicateAttempt
		}
	}
	attempt.ID = f.nextID
	f.nextID++
	f.attempts[attempt.ID] = attempt
	return nil
}

func (f *fakeAttemptStore) FindByID(id uint) (*model.ExamAttempt, error) {
	attempt, ok := f.attempts[id]
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	cp := *attempt
	cp.Answers = append([]model.AttemptAnswer(nil), attempt.Answers...)
	return &cp, nil
}

func (f *fakeAttemptStore) FindByExamAndStudent(examID, studentID uint) (*model.ExamAttempt, error) {
	for _, attempt := range f.attempts {
		if attempt.ExamID == examID && attempt.StudentID == studentID {
			return attempt, nil
		}
	}
	return nil, util.ErrAttemptNotFound
}

func (f *fakeAttemptStore) UpdateAnswerPayload(attemptID, questionID uint, payload json.RawMessage) error {
	attempt, ok := f.attempts[attemptID]
	if !ok {
		return util.ErrAttemptNotFound
	}
	for i := range attempt.Answers {
		if attempt.Answers[i].QuestionID == questionID {
			attempt.Answers[i].Answer = payload
			return nil
		}
	}
	// Unknown question: tolerated silently, like the zero-row UPDATE.
	return nil
}

func (f *fakeAttemptStore) CompleteSubmission(attempt *model.ExamAttempt, event *model.OutboxEvent) error {
	stored, ok := f.attempts[attempt.ID]
	if !ok {
		return util.ErrAttemptNotFound
	}
	if stored.Status != model.AttemptInProgress {
		return util.ErrAlreadySubmitted
	}
	f.attempts[attempt.ID] = attempt
	if event != nil {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeAttemptStore) SaveEvaluation(attempt *model.ExamAttempt, event *model.OutboxEvent) error {
	if _, ok := f.attempts[attempt.ID]; !ok {
		return util.ErrAttemptNotFound
	}
	f.attempts[attempt.ID] = attempt
	if event != nil {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeAttemptStore) ListByStudent(studentID uint) ([]model.ExamAttempt, error) {
	var out []model.ExamAttempt
	for _, attempt := range f.attempts {
		if attempt.StudentID == studentID {
			out = append(out, *attempt)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) ListByExam(examID uint) ([]model.ExamAttempt, error) {
	var out []model.ExamAttempt
	for _, attempt := range f.attempts {
		if attempt.ExamID == examID {
			out = append(out, *attempt)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) AbandonExpired(grace time.Duration) (int64, error) {
	return 0, nil
}

// ---- fixtures ----

func openExam(id uint, questionIDs ...uint) *model.Exam {
	exam := &model.Exam{
		BaseModel:    model.BaseModel{ID: id},
		Title:        "Midterm",
		TotalMarks:   100,
		PassingMarks: 40,
		StartTime:    time.Now().Add(-time.Hour),
		EndTime:      time.Now().Add(time.Hour),
		IsPublished:  true,
	}
	for i, qid := range questionIDs {
		exam.Questions = append(exam.Questions, model.ExamQuestion{
			ExamID:     id,
			QuestionID: qid,
			Order:      i + 1,
		})
	}
	return exam
}

func newTestService(exam *model.Exam, questions map[uint]model.Question, seed func() int64) (*AttemptService, *fakeAttemptStore) {
	store := newFakeAttemptStore()
	svc := NewAttemptService(
		&fakeExamLookup{exams: map[uint]*model.Exam{exam.ID: exam}},
		&fakeQuestionLookup{questions: questions},
		store,
		seed,
	)
	return svc, store
}

func objectiveBank() map[uint]model.Question {
	return map[uint]model.Question{
		10: choiceQuestion(10, 5, "B", "A"),
		11: choiceQuestion(11, 5, "true", "false"),
		12: choiceQuestion(12, 5, "C", "D"),
	}
}

// ---- start ----

func TestStartAttemptMaterializesAnswerSlots(t *testing.T) {
	exam := openExam(1, 10, 11, 12)
	exam.RandomizeQuestions = false
	svc, _ := newTestService(exam, objectiveBank(), nil)

	attempt, err := svc.StartAttempt(7, 1, "10.0.0.1", "agent")
	if err != nil {
		t.Fatal(err)
	}

	if attempt.Status != model.AttemptInProgress {
		t.Fatalf("status = %s, want in-progress", attempt.Status)
	}
	if len(attempt.Answers) != 3 {
		t.Fatalf("got %d answer slots, want 3", len(attempt.Answers))
	}
	for i, a := range attempt.Answers {
		if a.Order != i+1 {
			t.Errorf("slot %d order = %d, want %d", i, a.Order, i+1)
		}
		if a.Answer != nil {
			t.Errorf("slot %d has a payload before any save", i)
		}
	}
	// Without randomization the slots follow the exam's stored order.
	want := []uint{10, 11, 12}
	for i, a := range attempt.Answers {
		if a.QuestionID != want[i] {
			t.Errorf("slot %d question = %d, want %d", i, a.QuestionID, want[i])
		}
	}
}

func TestStartAttemptPermutationIsSeedDeterministic(t *testing.T) {
	seed := func() int64 { return 42 }

	order := func() []uint {
		exam := openExam(1, 10, 11, 12)
		exam.RandomizeQuestions = true
		svc, _ := newTestService(exam, objectiveBank(), seed)
		attempt, err := svc.StartAttempt(7, 1, "", "")
		if err != nil {
			t.Fatal(err)
		}
		ids := make([]uint, len(attempt.Answers))
		for i, a := range attempt.Answers {
			ids[i] = a.QuestionID
		}
		return ids
	}

	first, second := order(), order()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different orders: %v vs %v", first, second)
		}
	}
}

func TestStartAttemptDuplicateReturnsExisting(t *testing.T) {
	exam := openExam(1, 10)
	svc, _ := newTestService(exam, objectiveBank(), nil)

	first, err := svc.StartAttempt(7, 1, "", "")
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.StartAttempt(7, 1, "", "")
	if !errors.Is(err, util.ErrDuplicateAttempt) {
		t.Fatalf("err = %v, want ErrDuplicateAttempt", err)
	}
	if second == nil || second.ID != first.ID {
		t.Fatal("duplicate start must return the existing attempt")
	}
}

func TestStartAttemptScheduleGating(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Exam)
		wantErr error
	}{
		{"unknown exam", nil, util.ErrExamNotFound},
		{"unpublished", func(e *model.Exam) { e.IsPublished = false }, util.ErrExamNotPublished},
		{"before window", func(e *model.Exam) { e.StartTime = time.Now().Add(time.Hour) }, util.ErrExamNotStarted},
		{"after window", func(e *model.Exam) { e.EndTime = time.Now().Add(-time.Minute) }, util.ErrExamEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam := openExam(1, 10)
			examID := exam.ID
			if tt.mutate != nil {
				tt.mutate(exam)
			} else {
				examID = 999
			}
			svc, _ := newTestService(exam, objectiveBank(), nil)
			if _, err := svc.StartAttempt(7, examID, "", ""); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---- saveAnswer ----

func TestSaveAnswerLastWriteWins(t *testing.T) {
	exam := openExam(1, 10, 11)
	exam.RandomizeQuestions = false
	svc, store := newTestService(exam, objectiveBank(), nil)

	attempt, err := svc.StartAttempt(7, 1, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.SaveAnswer(attempt.ID, 7, 10, json.RawMessage(`"A"`)); err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveAnswer(attempt.ID, 7, 10, json.RawMessage(`"B"`)); err != nil {
		t.Fatal(err)
	}

	stored := store.attempts[attempt.ID]
	if got := string(stored.Answers[0].Answer); got != `"B"` {
		t.Fatalf("payload = %s, want \"B\"", got)
	}
	// Only the targeted slot changed.
	if stored.Answers[1].Answer != nil {
		t.Fatal("untouched slot gained a payload")
	}
}

func TestSaveAnswerUnknownQuestionIsSilentNoop(t *testing.T) {
	exam := openExam(1, 10)
	svc, store := newTestService(exam, objectiveBank(), nil)

	attempt, _ := svc.StartAttempt(7, 1, "", "")

	if err := svc.SaveAnswer(attempt.ID, 7, 999, json.RawMessage(`"A"`)); err != nil {
		t.Fatalf("unknown question must not error, got %v", err)
	}
	if store.attempts[attempt.ID].Answers[0].Answer != nil {
		t.Fatal("existing slot was modified")
	}
}

func TestSaveAnswerGuards(t *testing.T) {
	exam := openExam(1, 10)
	svc, store := newTestService(exam, objectiveBank(), nil)
	attempt, _ := svc.StartAttempt(7, 1, "", "")

	if err := svc.SaveAnswer(attempt.ID, 8, 10, json.RawMessage(`"A"`)); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("foreign student: err = %v, want ErrPermissionDenied", err)
	}

	store.attempts[attempt.ID].Status = model.AttemptSubmitted
	if err := svc.SaveAnswer(attempt.ID, 7, 10, json.RawMessage(`"A"`)); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("submitted attempt: err = %v, want ErrInvalidState", err)
	}
}

// ---- submit ----

func TestSubmitFullyObjectiveShortCircuitsToEvaluated(t *testing.T) {
	exam := openExam(1, 10, 11, 12)
	exam.RandomizeQuestions = false
	exam.NegativeMarking = model.NegativeMarking{Enabled: true, MarksPerWrong: 1}
	svc, store := newTestService(exam, objectiveBank(), nil)

	attempt, _ := svc.StartAttempt(7, 1, "", "")
	svc.SaveAnswer(attempt.ID, 7, 10, json.RawMessage(`"B"`))     // +5
	svc.SaveAnswer(attempt.ID, 7, 11, json.RawMessage(`"false"`)) // -1
	// question 12 never answered: -1

	submitted, err := svc.Submit(attempt.ID, 7)
	if err != nil {
		t.Fatal(err)
	}

	if submitted.Status != model.AttemptEvaluated {
		t.Fatalf("status = %s, want evaluated", submitted.Status)
	}
	if submitted.TotalMarksObtained != 3 {
		t.Fatalf("total = %v, want 3", submitted.TotalMarksObtained)
	}
	if submitted.Percentage != 3 {
		t.Fatalf("percentage = %v, want 3", submitted.Percentage)
	}
	if submitted.IsPassed {
		t.Fatal("3/100 must not pass at passing mark 40")
	}
	if submitted.SubmittedAt == nil {
		t.Fatal("submittedAt not set")
	}

	if len(store.events) != 1 || store.events[0].EventType != model.EventResultAvailable {
		t.Fatalf("expected one result-available event, got %+v", store.events)
	}
}

func TestSubmitWithSubjectiveStopsAtSubmitted(t *testing.T) {
	questions := objectiveBank()
	questions[20] = descriptiveQuestion(20, 10)
	exam := openExam(1, 10, 20)
	exam.RandomizeQuestions = false
	svc, store := newTestService(exam, questions, nil)

	attempt, _ := svc.StartAttempt(7, 1, "", "")
	svc.SaveAnswer(attempt.ID, 7, 10, json.RawMessage(`"B"`))
	svc.SaveAnswer(attempt.ID, 7, 20, json.RawMessage(`"an essay"`))

	submitted, err := svc.Submit(attempt.ID, 7)
	if err != nil {
		t.Fatal(err)
	}

	if submitted.Status != model.AttemptSubmitted {
		t.Fatalf("status = %s, want submitted", submitted.Status)
	}
	if submitted.TotalMarksObtained != 5 {
		t.Fatalf("total = %v, want 5 (objective marks only)", submitted.TotalMarksObtained)
	}
	if len(store.events) != 0 {
		t.Fatal("no result event before manual evaluation")
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	exam := openExam(1, 10)
	svc, _ := newTestService(exam, objectiveBank(), nil)

	attempt, _ := svc.StartAttempt(7, 1, "", "")
	if _, err := svc.Submit(attempt.ID, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(attempt.ID, 7); !errors.Is(err, util.ErrAlreadySubmitted) {
		t.Fatalf("err = %v, want ErrAlreadySubmitted", err)
	}
}

// ---- evaluate ----

func TestEvaluateAppliesPartialScores(t *testing.T) {
	questions := objectiveBank()
	questions[20] = descriptiveQuestion(20, 10)
	exam := openExam(1, 10, 11, 20)
	exam.RandomizeQuestions = false
	exam.NegativeMarking = model.NegativeMarking{Enabled: true, MarksPerWrong: 1}
	svc, store := newTestService(exam, questions, nil)

	attempt, _ := svc.StartAttempt(7, 1, "", "")
	svc.SaveAnswer(attempt.ID, 7, 10, json.RawMessage(`"B"`))     // +5
	svc.SaveAnswer(attempt.ID, 7, 11, json.RawMessage(`"false"`)) // -1
	if _, err := svc.Submit(attempt.ID, 7); err != nil {
		t.Fatal(err)
	}

	// Score list covers only the descriptive question; auto-graded marks
	// must still count toward the total.
	evaluated, err := svc.Evaluate(attempt.ID, 99, []AnswerScore{
		{QuestionID: 20, MarksObtained: 9},
		{QuestionID: 555, MarksObtained: 50}, // unknown, ignored
	}, "good work")
	if err != nil {
		t.Fatal(err)
	}

	if evaluated.TotalMarksObtained != 13 {
		t.Fatalf("total = %v, want 13", evaluated.TotalMarksObtained)
	}
	if evaluated.Status != model.AttemptEvaluated {
		t.Fatalf("status = %s, want evaluated", evaluated.Status)
	}
	if evaluated.EvaluatedBy == nil || *evaluated.EvaluatedBy != 99 {
		t.Fatal("evaluatedBy not recorded")
	}
	if evaluated.Feedback != "good work" {
		t.Fatal("feedback not recorded")
	}

	var sawEvaluation bool
	for _, e := range store.events {
		if e.EventType == model.EventEvaluationComplete {
			sawEvaluation = true
		}
	}
	if !sawEvaluation {
		t.Fatal("expected an evaluation-complete event")
	}
}

func TestEvaluateIsRerunnable(t *testing.T) {
	questions := map[uint]model.Question{20: descriptiveQuestion(20, 10)}
	exam := openExam(1, 20)
	svc, _ := newTestService(exam, questions, nil)

	attempt, _ := svc.StartAttempt(7, 1, "", "")
	if _, err := svc.Submit(attempt.ID, 7); err != nil {
		t.Fatal(err)
	}

	first, err := svc.Evaluate(attempt.ID, 99, []AnswerScore{{QuestionID: 20, MarksObtained: 4}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.TotalMarksObtained != 4 {
		t.Fatalf("first total = %v, want 4", first.TotalMarksObtained)
	}

	second, err := svc.Evaluate(attempt.ID, 99, []AnswerScore{{QuestionID: 20, MarksObtained: 8}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if second.TotalMarksObtained != 8 {
		t.Fatalf("re-evaluation total = %v, want 8", second.TotalMarksObtained)
	}
}

func TestEvaluateRejectsAbandoned(t *testing.T) {
	exam := openExam(1, 10)
	svc, store := newTestService(exam, objectiveBank(), nil)

	attempt, _ := svc.StartAttempt(7, 1, "", "")
	store.attempts[attempt.ID].Status = model.AttemptAbandoned

	if _, err := svc.Evaluate(attempt.ID, 99, nil, ""); !errors.Is(err, util.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}
