package service

import (
	"exam_portal_backend/internal/model"
)

// AccessPolicy is the single capability check consulted by the request layer
// for every exam and attempt operation.
type AccessPolicy struct{}

func NewAccessPolicy() *AccessPolicy {
	return &AccessPolicy{}
}

// allowedForStudent checks the exam's access rule: explicit allow-list
// membership, or department+semester match.
func allowedForStudent(user *model.User, exam *model.Exam) bool {
	for _, entry := range exam.AllowedStudents {
		if entry.StudentID == user.ID {
			return true
		}
	}
	return exam.Department != "" &&
		exam.Department == user.Department &&
		exam.Semester == user.Semester
}

// CanStart permits the owning student to begin an attempt on an exam they
// have access to. Schedule and publication gating stay with the lifecycle
// manager; this is purely the who-may question.
func (p *AccessPolicy) CanStart(user *model.User, exam *model.Exam) bool {
	if user == nil || exam == nil {
		return false
	}
	if user.Role != model.Student {
		return false
	}
	return allowedForStudent(user, exam)
}

// CanViewExam permits faculty and admin unconditionally; students only see
// published exams they have access to.
func (p *AccessPolicy) CanViewExam(user *model.User, exam *model.Exam) bool {
	if user == nil || exam == nil {
		return false
	}
	if user.Role == model.Faculty || user.Role == model.Admin {
		return true
	}
	return exam.IsPublished && allowedForStudent(user, exam)
}

// CanView permits the attempt's owning student plus any evaluator role.
func (p *AccessPolicy) CanView(user *model.User, attempt *model.ExamAttempt) bool {
	if user == nil || attempt == nil {
		return false
	}
	if user.Role == model.Faculty || user.Role == model.Admin {
		return true
	}
	return attempt.StudentID == user.ID
}

// CanEvaluate permits faculty and admin.
func (p *AccessPolicy) CanEvaluate(user *model.User) bool {
	if user == nil {
		return false
	}
	return user.Role == model.Faculty || user.Role == model.Admin
}

// CanManageExam permits the creating faculty member and any admin.
func (p *AccessPolicy) CanManageExam(user *model.User, exam *model.Exam) bool {
	if user == nil || exam == nil {
		return false
	}
	if user.Role == model.Admin {
		return true
	}
	return user.Role == model.Faculty && exam.CreatedBy == user.ID
}
