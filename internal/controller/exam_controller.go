package controller

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
	UserService *service.UserService
	Policy      *service.AccessPolicy
}

func NewExamController(examService *service.ExamService, userService *service.UserService, policy *service.AccessPolicy) *ExamController {
	return &ExamController{
		ExamService: examService,
		UserService: userService,
		Policy:      policy,
	}
}

func (c *ExamController) currentUser(ctx *gin.Context) *model.User {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return nil
	}
	user, err := c.UserService.Get(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

// studentExamView strips grading data from the question list so students
// never see correct options, answers or explanations before evaluation.
func studentExamView(exam *model.Exam) gin.H {
	questions := make([]gin.H, 0, len(exam.Questions))
	for _, eq := range exam.Questions {
		if eq.Question == nil {
			continue
		}
		q := eq.Question
		options := make([]gin.H, 0)
		for _, opt := range q.ParsedOptions() {
			options = append(options, gin.H{"text": opt.Text})
		}
		questions = append(questions, gin.H{
			"id":           q.ID,
			"questionText": q.QuestionText,
			"questionType": q.QuestionType,
			"points":       q.Points,
			"options":      options,
			"codeTemplate": q.CodeTemplate,
			"order":        eq.Order,
		})
	}

	return gin.H{
		"id":                 exam.ID,
		"title":              exam.Title,
		"description":        exam.Description,
		"subject":            exam.Subject,
		"duration":           exam.Duration,
		"totalMarks":         exam.TotalMarks,
		"passingMarks":       exam.PassingMarks,
		"startTime":          exam.StartTime,
		"endTime":            exam.EndTime,
		"instructions":       exam.Instructions,
		"randomizeQuestions": exam.RandomizeQuestions,
		"negativeMarking":    exam.NegativeMarking,
		"questions":          questions,
	}
}

// CreateExam godoc
// @Summary Create an exam
// @Tags exams
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ExamRequest true "exam payload"
// @Success 201 {object} util.Response{data=model.Exam}
// @Failure 400 {object} util.Response
// @Router /api/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.CreateExam(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.BadRequest(ctx, "one or more questions do not exist")
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Created(ctx, exam)
}

// GetExam godoc
// @Summary Fetch one exam
// @Description Students get a sanitized view without grading data
// @Tags exams
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "exam id"
// @Success 200 {object} util.Response{data=model.Exam}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	exam, err := c.ExamService.Get(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	user := c.currentUser(ctx)
	if !c.Policy.CanViewExam(user, exam) {
		util.Forbidden(ctx)
		return
	}

	if user.Role == model.Student {
		util.Success(ctx, studentExamView(exam))
		return
	}
	util.Success(ctx, exam)
}

// UpdateExam godoc
// @Summary Update an exam
// @Tags exams
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "exam id"
// @Param   body body service.ExamRequest true "exam payload"
// @Success 200 {object} util.Response{data=model.Exam}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	exam, err := c.ExamService.Get(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if !c.Policy.CanManageExam(c.currentUser(ctx), exam) {
		util.Forbidden(ctx)
		return
	}

	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.ExamService.UpdateExam(uint(id), req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, updated)
}

// DeleteExam godoc
// @Summary Delete an exam
// @Description Fails when the exam already has attempts
// @Tags exams
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "exam id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	exam, err := c.ExamService.Get(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if !c.Policy.CanManageExam(c.currentUser(ctx), exam) {
		util.Forbidden(ctx)
		return
	}

	if err := c.ExamService.DeleteExam(uint(id)); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, nil)
}

// TogglePublish godoc
// @Summary Publish or unpublish an exam
// @Tags exams
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "exam id"
// @Success 200 {object} util.Response{data=model.Exam}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exams/{id}/publish [put]
func (c *ExamController) TogglePublish(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	exam, err := c.ExamService.Get(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if !c.Policy.CanManageExam(c.currentUser(ctx), exam) {
		util.Forbidden(ctx)
		return
	}

	updated, err := c.ExamService.TogglePublish(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, updated)
}

// ListExams godoc
// @Summary List exams visible to the caller
// @Description Students see accessible published exams, faculty their own, admin everything
// @Tags exams
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Exam}
// @Router /api/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	user := c.currentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	exams, err := c.ExamService.ListForUser(user)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, exams)
}

// UpcomingExams godoc
// @Summary Published exams that have not started yet
// @Tags exams
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Exam}
// @Router /api/exams/upcoming [get]
func (c *ExamController) UpcomingExams(ctx *gin.Context) {
	user := c.currentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	exams, err := c.ExamService.UpcomingForStudent(user)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, exams)
}
