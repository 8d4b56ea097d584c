package controller

import (
	"encoding/json"
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
	ExamService    *service.ExamService
	UserService    *service.UserService
	Policy         *service.AccessPolicy
}

func NewAttemptController(attemptService *service.AttemptService, examService *service.ExamService, userService *service.UserService, policy *service.AccessPolicy) *AttemptController {
	return &AttemptController{
		AttemptService: attemptService,
		ExamService:    examService,
		UserService:    userService,
		Policy:         policy,
	}
}

func (c *AttemptController) currentUser(ctx *gin.Context) *model.User {
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

// StartAttempt godoc
// @Summary Start an exam attempt
// @Description Idempotent: a repeated start returns the existing attempt with 409
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   examId path int true "exam id"
// @Success 201 {object} util.Response{data=model.ExamAttempt}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response{data=model.ExamAttempt}
// @Router /api/exam-attempts/start/{examId} [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("examId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	user := c.currentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	exam, err := c.ExamService.Get(uint(examID))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if !c.Policy.CanStart(user, exam) {
		util.Forbidden(ctx)
		return
	}

	attempt, err := c.AttemptService.StartAttempt(user.ID, uint(examID), ctx.ClientIP(), ctx.GetHeader("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrDuplicateAttempt):
			// The existing attempt rides along so the client can resume it.
			ctx.JSON(http.StatusConflict, util.Response{
				Code:    http.StatusConflict,
				Message: err.Error(),
				Data:    attempt,
			})
		case errors.Is(err, util.ErrExamNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrExamNotPublished),
			errors.Is(err, util.ErrExamNotStarted),
			errors.Is(err, util.ErrExamEnded):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, attempt)
}

type SaveAnswerRequest struct {
	QuestionID uint            `json:"questionId" binding:"required"`
	Answer     json.RawMessage `json:"answer"`
}

// SaveAnswer godoc
// @Summary Save one answer
// @Description Overwrites the answer payload for one question, last write wins
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path int true "attempt id"
// @Param   body body SaveAnswerRequest true "answer payload"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam-attempts/{attemptId}/answer [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attemptId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	claims := util.GetUserFromContext(ctx)

	var req SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err = c.AttemptService.SaveAnswer(uint(attemptID), claims.UserID, req.QuestionID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrInvalidState):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// SubmitAttempt godoc
// @Summary Submit an attempt
// @Description Auto-grades objective answers; fully objective exams finalize immediately
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path int true "attempt id"
// @Success 200 {object} util.Response{data=model.ExamAttempt}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam-attempts/{attemptId}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attemptId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	claims := util.GetUserFromContext(ctx)

	attempt, err := c.AttemptService.Submit(uint(attemptID), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrAlreadySubmitted):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, attempt)
}

type EvaluateRequest struct {
	Scores   []service.AnswerScore `json:"scores"`
	Feedback string                `json:"feedback"`
}

// EvaluateAttempt godoc
// @Summary Evaluate an attempt
// @Description Applies manual scores and finalizes the result; re-runnable
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path int true "attempt id"
// @Param   body body EvaluateRequest true "manual scores"
// @Success 200 {object} util.Response{data=model.ExamAttempt}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam-attempts/{attemptId}/evaluate [put]
func (c *AttemptController) EvaluateAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attemptId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	user := c.currentUser(ctx)
	if !c.Policy.CanEvaluate(user) {
		util.Forbidden(ctx)
		return
	}

	var req EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.AttemptService.Evaluate(uint(attemptID), user.ID, req.Scores, req.Feedback)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidState):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, attempt)
}

// GetAttempt godoc
// @Summary Fetch one attempt
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path int true "attempt id"
// @Success 200 {object} util.Response{data=model.ExamAttempt}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exam-attempts/{attemptId} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	attemptID, err := strconv.ParseUint(ctx.Param("attemptId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	attempt, err := c.AttemptService.GetAttempt(uint(attemptID))
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if !c.Policy.CanView(c.currentUser(ctx), attempt) {
		util.Forbidden(ctx)
		return
	}

	util.Success(ctx, attempt)
}

// GetMyAttempt godoc
// @Summary The caller's attempt for one exam
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   examId path int true "exam id"
// @Success 200 {object} util.Response{data=model.ExamAttempt}
// @Failure 404 {object} util.Response
// @Router /api/exam-attempts/my/{examId} [get]
func (c *AttemptController) GetMyAttempt(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("examId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	claims := util.GetUserFromContext(ctx)

	attempt, err := c.AttemptService.GetMyAttempt(uint(examID), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, attempt)
}

// MyAttempts godoc
// @Summary All attempts of the caller
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ExamAttempt}
// @Router /api/exam-attempts/my-attempts [get]
func (c *AttemptController) MyAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	attempts, err := c.AttemptService.MyAttempts(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}

// AttemptsByExam godoc
// @Summary All attempts on one exam
// @Description For evaluators: lists every student attempt on the exam
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   examId path int true "exam id"
// @Success 200 {object} util.Response{data=[]model.ExamAttempt}
// @Failure 403 {object} util.Response
// @Router /api/exam-attempts/exam/{examId} [get]
func (c *AttemptController) AttemptsByExam(ctx *gin.Context) {
	examID, err := strconv.ParseUint(ctx.Param("examId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	if !c.Policy.CanEvaluate(c.currentUser(ctx)) {
		util.Forbidden(ctx)
		return
	}

	attempts, err := c.AttemptService.AttemptsByExam(uint(examID))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}
