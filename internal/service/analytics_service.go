package service

import (
	"exam_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// AnalyticsService computes the role-specific dashboard figures. Queries run
// straight against GORM since the aggregates do not map onto repository
// methods used elsewhere.
type AnalyticsService struct {
	DB *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

type StudentDashboard struct {
	TotalAttempts     int64   `json:"totalAttempts"`
	CompletedAttempts int64   `json:"completedAttempts"`
	UpcomingExams     int64   `json:"upcomingExams"`
	AveragePercentage float64 `json:"averagePercentage"`
	PassedCount       int64   `json:"passedCount"`
}

type FacultyDashboard struct {
	TotalExams         int64 `json:"totalExams"`
	PublishedExams     int64 `json:"publishedExams"`
	TotalAttempts      int64 `json:"totalAttempts"`
	PendingEvaluations int64 `json:"pendingEvaluations"`
}

type AdminDashboard struct {
	TotalUsers      int64 `json:"totalUsers"`
	TotalStudents   int64 `json:"totalStudents"`
	TotalFaculty    int64 `json:"totalFaculty"`
	TotalExams      int64 `json:"totalExams"`
	TotalQuestions  int64 `json:"totalQuestions"`
	TotalAttempts   int64 `json:"totalAttempts"`
	ActiveAttempts  int64 `json:"activeAttempts"`
	TotalEvaluated  int64 `json:"totalEvaluated"`
	NotificationsNr int64 `json:"notificationCount"`
}

func (s *AnalyticsService) StudentStats(user *model.User) (*StudentDashboard, error) {
	var stats StudentDashboard

	base := s.DB.Model(&model.ExamAttempt{}).Where("student_id = ?", user.ID)
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", model.AttemptEvaluated).Count(&stats.CompletedAttempts).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ? AND is_passed = ?", model.AttemptEvaluated, true).Count(&stats.PassedCount).Error; err != nil {
		return nil, err
	}

	var avg *float64
	err := s.DB.Model(&model.ExamAttempt{}).
		Select("AVG(percentage)").
		Where("student_id = ? AND status = ?", user.ID, model.AttemptEvaluated).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AveragePercentage = *avg
	}

	upcoming := s.DB.Model(&model.Exam{}).
		Joins("LEFT JOIN exam_allowed_students eas ON eas.exam_id = exams.id AND eas.student_id = ?", user.ID).
		Where("exams.is_published = ? AND exams.start_time > ?", true, time.Now()).
		Where("eas.id IS NOT NULL OR (exams.department = ? AND exams.department <> '' AND exams.semester = ?)",
			user.Department, user.Semester)
	if err := upcoming.Distinct("exams.id").Count(&stats.UpcomingExams).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *AnalyticsService) FacultyStats(user *model.User) (*FacultyDashboard, error) {
	var stats FacultyDashboard

	exams := s.DB.Model(&model.Exam{}).Where("created_by = ?", user.ID)
	if err := exams.Session(&gorm.Session{}).Count(&stats.TotalExams).Error; err != nil {
		return nil, err
	}
	if err := exams.Session(&gorm.Session{}).Where("is_published = ?", true).Count(&stats.PublishedExams).Error; err != nil {
		return nil, err
	}

	attempts := s.DB.Model(&model.ExamAttempt{}).
		Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
		Where("exams.created_by = ?", user.ID)
	if err := attempts.Session(&gorm.Session{}).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if err := attempts.Session(&gorm.Session{}).Where("exam_attempts.status = ?", model.AttemptSubmitted).Count(&stats.PendingEvaluations).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *AnalyticsService) AdminStats() (*AdminDashboard, error) {
	var stats AdminDashboard

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.DB.Model(&model.User{})},
		{&stats.TotalStudents, s.DB.Model(&model.User{}).Where("role = ?", model.Student)},
		{&stats.TotalFaculty, s.DB.Model(&model.User{}).Where("role = ?", model.Faculty)},
		{&stats.TotalExams, s.DB.Model(&model.Exam{})},
		{&stats.TotalQuestions, s.DB.Model(&model.Question{})},
		{&stats.TotalAttempts, s.DB.Model(&model.ExamAttempt{})},
		{&stats.ActiveAttempts, s.DB.Model(&model.ExamAttempt{}).Where("status = ?", model.AttemptInProgress)},
		{&stats.TotalEvaluated, s.DB.Model(&model.ExamAttempt{}).Where("status = ?", model.AttemptEvaluated)},
		{&stats.NotificationsNr, s.DB.Model(&model.Notification{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
