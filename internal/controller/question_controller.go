package controller

import (
	"errors"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// CreateQuestion godoc
// @Summary Create a question
// @Tags questions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuestionRequest true "question payload"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Create(claims.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, question)
}

// BulkCreateQuestions godoc
// @Summary Create several questions at once
// @Tags questions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body []service.QuestionRequest true "question payloads"
// @Success 201 {object} util.Response{data=[]model.Question}
// @Failure 400 {object} util.Response
// @Router /api/questions/bulk [post]
func (c *QuestionController) BulkCreateQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var reqs []service.QuestionRequest
	if err := ctx.ShouldBindJSON(&reqs); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if len(reqs) == 0 {
		util.BadRequest(ctx, "empty question list")
		return
	}

	questions, err := c.QuestionService.BulkCreate(claims.UserID, reqs)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, questions)
}

// GetQuestion godoc
// @Summary Fetch one question
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "question id"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	question, err := c.QuestionService.Get(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, question)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags questions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "question id"
// @Param   body body service.QuestionRequest true "question payload"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Update(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Description Fails when the question is still referenced by an exam
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "question id"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	if err := c.QuestionService.Delete(uint(id)); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, nil)
}

// ListQuestions godoc
// @Summary List questions
// @Description Paginated listing with subject, topic, difficulty, type and text filters
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   subject query string false "subject"
// @Param   topic query string false "topic"
// @Param   difficulty query string false "difficulty"
// @Param   type query string false "question type"
// @Param   search query string false "free text"
// @Param   page query int false "page number"
// @Param   limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	filters := repository.QuestionFilters{
		Subject:      ctx.Query("subject"),
		Topic:        ctx.Query("topic"),
		Difficulty:   ctx.Query("difficulty"),
		QuestionType: ctx.Query("type"),
		Search:       ctx.Query("search"),
	}
	if mine := ctx.Query("mine"); mine == "true" {
		claims := util.GetUserFromContext(ctx)
		filters.CreatedBy = claims.UserID
	}

	questions, total, err := c.QuestionService.List(filters, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  questions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// ListSubjects godoc
// @Summary Distinct subjects in the question bank
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/questions/subjects [get]
func (c *QuestionController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.QuestionService.Subjects()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// ListTopics godoc
// @Summary Topics of one subject
// @Tags questions
// @Produce  json
// @Security ApiKeyAuth
// @Param   subject query string true "subject"
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/questions/topics [get]
func (c *QuestionController) ListTopics(ctx *gin.Context) {
	subject := ctx.Query("subject")
	if subject == "" {
		util.BadRequest(ctx, "subject is required")
		return
	}
	topics, err := c.QuestionService.TopicsBySubject(subject)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}
