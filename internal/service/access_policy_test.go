package service

import (
	"exam_portal_backend/internal/model"
	"testing"
)

func policyUser(id uint, role model.UserRole, department string, semester int) *model.User {
	return &model.User{
		BaseModel:  model.BaseModel{ID: id},
		Role:       role,
		Department: department,
		Semester:   semester,
	}
}

func policyExam(createdBy uint, department string, semester int, allowed ...uint) *model.Exam {
	exam := &model.Exam{
		BaseModel:   model.BaseModel{ID: 1},
		IsPublished: true,
		CreatedBy:   createdBy,
		Department:  department,
		Semester:    semester,
	}
	for _, studentID := range allowed {
		exam.AllowedStudents = append(exam.AllowedStudents, model.ExamAllowedStudent{
			ExamID:    exam.ID,
			StudentID: studentID,
		})
	}
	return exam
}

func TestCanStart(t *testing.T) {
	policy := NewAccessPolicy()

	tests := []struct {
		name string
		user *model.User
		exam *model.Exam
		want bool
	}{
		{"allow-listed student", policyUser(7, model.Student, "", 0), policyExam(1, "", 0, 7), true},
		{"not on allow-list", policyUser(8, model.Student, "", 0), policyExam(1, "", 0, 7), false},
		{"department and semester match", policyUser(7, model.Student, "CSE", 3), policyExam(1, "CSE", 3), true},
		{"department matches, semester differs", policyUser(7, model.Student, "CSE", 4), policyExam(1, "CSE", 3), false},
		{"empty exam department never matches", policyUser(7, model.Student, "", 0), policyExam(1, "", 0), false},
		{"faculty cannot start", policyUser(7, model.Faculty, "CSE", 3), policyExam(1, "CSE", 3), false},
		{"nil user", nil, policyExam(1, "", 0, 7), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanStart(tt.user, tt.exam); got != tt.want {
				t.Fatalf("CanStart = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewExam(t *testing.T) {
	policy := NewAccessPolicy()

	unpublished := policyExam(1, "", 0, 7)
	unpublished.IsPublished = false

	if !policy.CanViewExam(policyUser(2, model.Faculty, "", 0), unpublished) {
		t.Error("faculty must see unpublished exams")
	}
	if policy.CanViewExam(policyUser(7, model.Student, "", 0), unpublished) {
		t.Error("students must not see unpublished exams")
	}
	if !policy.CanViewExam(policyUser(7, model.Student, "", 0), policyExam(1, "", 0, 7)) {
		t.Error("allow-listed student must see the published exam")
	}
}

func TestCanViewAttempt(t *testing.T) {
	policy := NewAccessPolicy()
	attempt := &model.ExamAttempt{StudentID: 7}

	if !policy.CanView(policyUser(7, model.Student, "", 0), attempt) {
		t.Error("owner must view their attempt")
	}
	if policy.CanView(policyUser(8, model.Student, "", 0), attempt) {
		t.Error("another student must not view the attempt")
	}
	if !policy.CanView(policyUser(2, model.Faculty, "", 0), attempt) {
		t.Error("faculty must view attempts")
	}
	if !policy.CanView(policyUser(3, model.Admin, "", 0), attempt) {
		t.Error("admin must view attempts")
	}
}

func TestCanEvaluate(t *testing.T) {
	policy := NewAccessPolicy()

	if policy.CanEvaluate(policyUser(7, model.Student, "", 0)) {
		t.Error("students must not evaluate")
	}
	if !policy.CanEvaluate(policyUser(2, model.Faculty, "", 0)) {
		t.Error("faculty must evaluate")
	}
	if !policy.CanEvaluate(policyUser(3, model.Admin, "", 0)) {
		t.Error("admin must evaluate")
	}
}

func TestCanManageExam(t *testing.T) {
	policy := NewAccessPolicy()
	exam := policyExam(2, "", 0)

	if !policy.CanManageExam(policyUser(2, model.Faculty, "", 0), exam) {
		t.Error("creator must manage their exam")
	}
	if policy.CanManageExam(policyUser(5, model.Faculty, "", 0), exam) {
		t.Error("other faculty must not manage the exam")
	}
	if !policy.CanManageExam(policyUser(3, model.Admin, "", 0), exam) {
		t.Error("admin must manage any exam")
	}
}
